package template

import (
	"strings"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

// Replacement is one placeholder substitution. Order matters: later
// prompts may reference the values of earlier placeholders.
type Replacement struct {
	Placeholder string
	Value       string
}

func applyReplacements(text string, replacements []Replacement) string {
	for _, r := range replacements {
		text = strings.ReplaceAll(text, r.Placeholder, r.Value)
	}
	return text
}

func paragraphText(p document.Paragraph) string {
	var b strings.Builder
	for _, run := range p.Runs() {
		b.WriteString(run.Text())
	}
	return b.String()
}

// hasPageBreak reports whether any run of the paragraph carries an
// explicit page break.
func hasPageBreak(p document.Paragraph) bool {
	for _, run := range p.Runs() {
		for _, inner := range run.X().EG_RunInnerContent {
			if inner.Br != nil && inner.Br.TypeAttr == wml.ST_BrTypePage {
				return true
			}
		}
	}
	return false
}

// replaceInParagraph substitutes placeholders across run boundaries.
// Paragraphs without a match keep their runs and formatting; a matched
// paragraph is rewritten as a single run, re-adding its page break.
func replaceInParagraph(p document.Paragraph, replacements []Replacement) {
	text := paragraphText(p)
	replaced := applyReplacements(text, replacements)
	if replaced == text {
		return
	}

	hadBreak := hasPageBreak(p)
	for _, run := range p.Runs() {
		p.RemoveRun(run)
	}
	run := p.AddRun()
	run.AddText(replaced)
	if hadBreak {
		run.AddPageBreak()
	}
}

// fillTemplate substitutes placeholders everywhere in the document: the
// title page, the body after the first page break, tables, headers and
// footers.
func fillTemplate(doc *document.Document, replacements []Replacement) {
	paragraphs := doc.Paragraphs()

	// Title page: everything up to and including the first page break.
	afterBreak := len(paragraphs)
	for i, p := range paragraphs {
		brk := hasPageBreak(p)
		replaceInParagraph(p, replacements)
		if brk {
			afterBreak = i + 1
			break
		}
	}

	for _, p := range paragraphs[afterBreak:] {
		replaceInParagraph(p, replacements)
	}

	for _, table := range doc.Tables() {
		for _, row := range table.Rows() {
			for _, cell := range row.Cells() {
				for _, p := range cell.Paragraphs() {
					replaceInParagraph(p, replacements)
				}
			}
		}
	}

	for _, header := range doc.Headers() {
		for _, p := range header.Paragraphs() {
			replaceInParagraph(p, replacements)
		}
	}
	for _, footer := range doc.Footers() {
		for _, p := range footer.Paragraphs() {
			replaceInParagraph(p, replacements)
		}
	}
}
