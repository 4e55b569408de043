package template

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unidoc/unioffice/document"
)

func TestApplyReplacementsOrder(t *testing.T) {
	// later prompts reference values of earlier placeholders
	replacements := []Replacement{
		{Placeholder: "{company}", Value: "Acme B.V."},
		{Placeholder: "{summary}", Value: "A report on {company}"},
	}

	out := applyReplacements("{summary} prepared for {company}", replacements)
	assert.Equal(t, "A report on {company} prepared for Acme B.V.", out)

	// applying twice is not idempotent on purpose; order is the contract
	out = applyReplacements("{company}", replacements)
	assert.Equal(t, "Acme B.V.", out)
}

func TestReplaceInParagraphAcrossRuns(t *testing.T) {
	doc := document.New()
	p := doc.AddParagraph()
	p.AddRun().AddText("Dear {cli")
	p.AddRun().AddText("ent}, welcome.")

	replaceInParagraph(p, []Replacement{{Placeholder: "{client}", Value: "Acme"}})

	assert.Equal(t, "Dear Acme, welcome.", paragraphText(p))
	assert.Len(t, p.Runs(), 1)
}

func TestReplaceInParagraphKeepsUntouchedRuns(t *testing.T) {
	doc := document.New()
	p := doc.AddParagraph()
	p.AddRun().AddText("no placeholders ")
	p.AddRun().AddText("here")

	replaceInParagraph(p, []Replacement{{Placeholder: "{client}", Value: "Acme"}})

	assert.Len(t, p.Runs(), 2)
}

func TestReplaceInParagraphPreservesPageBreak(t *testing.T) {
	doc := document.New()
	p := doc.AddParagraph()
	run := p.AddRun()
	run.AddText("Cover for {client}")
	run.AddPageBreak()

	replaceInParagraph(p, []Replacement{{Placeholder: "{client}", Value: "Acme"}})

	assert.Equal(t, "Cover for Acme", paragraphText(p))
	assert.True(t, hasPageBreak(p))
}

func TestFillTemplateReachesTablesHeadersFooters(t *testing.T) {
	doc := document.New()

	cover := doc.AddParagraph()
	run := cover.AddRun()
	run.AddText("{title}")
	run.AddPageBreak()

	body := doc.AddParagraph()
	body.AddRun().AddText("Body mentions {client}.")

	table := doc.AddTable()
	cell := table.AddRow().AddCell()
	cell.AddParagraph().AddRun().AddText("Cell with {client}")

	header := doc.AddHeader()
	header.AddParagraph().AddRun().AddText("Header {client}")
	footer := doc.AddFooter()
	footer.AddParagraph().AddRun().AddText("Footer {client}")

	fillTemplate(doc, []Replacement{
		{Placeholder: "{title}", Value: "Annual Review"},
		{Placeholder: "{client}", Value: "Acme"},
	})

	assert.Equal(t, "Annual Review", paragraphText(doc.Paragraphs()[0]))
	assert.True(t, hasPageBreak(doc.Paragraphs()[0]))
	assert.Equal(t, "Body mentions Acme.", paragraphText(doc.Paragraphs()[1]))
	assert.Equal(t, "Cell with Acme",
		paragraphText(doc.Tables()[0].Rows()[0].Cells()[0].Paragraphs()[0]))
	assert.Equal(t, "Header Acme", paragraphText(doc.Headers()[0].Paragraphs()[0]))
	assert.Equal(t, "Footer Acme", paragraphText(doc.Footers()[0].Paragraphs()[0]))
}

type stubCompleter struct {
	replies map[string]string
	prompts []string
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	s.prompts = append(s.prompts, user)
	for needle, reply := range s.replies {
		if strings.Contains(user, needle) {
			return reply, nil
		}
	}
	return "generic answer", nil
}

func TestReadTranscript(t *testing.T) {
	doc := document.New()
	doc.AddParagraph().AddRun().AddText("Interviewer: hello")
	doc.AddParagraph().AddRun().AddText("Client: hi")
	var buf bytes.Buffer
	require.NoError(t, doc.Save(&buf))

	text, err := readTranscript(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Interviewer: hello\nClient: hi", text)
}
