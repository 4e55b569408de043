package template

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/unidoc/unioffice/document"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/pkg/pdftext"
	"github.com/rsmnext/assistant-backend/internal/session"
)

const tpSystemMessage = "You are an expert on Transfer Pricing and financial analysis. " +
	"Use the information in the following context to answer the user's question. " +
	"Assign the greatest priority to the information that you gather from the financial analysis and the interview transcript. " +
	"If asked something not covered in this data, you may search the web. " +
	"Ensure your analysis is CONCISE, SHARP, in paragraph form, and not long. Never use bullet points. " +
	"DO NOT INCLUDE MARKDOWN FORMATTING OR # SIGNS. Keep it to 200-300 words, maintain a professional tone. " +
	"Make sure to include direct sources and citations for the data you use for your decisions. " +
	"Also include your reasoning for conclusions in brackets (). " +
	"If something is from the transcript or financial statement, include that citation in brackets with a URL to the specific section. " +
	"Likewise include a URL to the relevant website if the information you got was from searching the internet. " +
	"You **may** consider the OECD guidelines below as helpful targets, but do NOT structure your response around them.\n\n"

// TemplateUsecase fills a report template from a variables workbook. Each
// workbook row either carries a static value or a prompt answered against
// the combined guideline, transcript and financial context.
type TemplateUsecase struct {
	completer Completer
	logger    *zap.Logger
}

func NewUsecase(completer Completer, logger *zap.Logger) *TemplateUsecase {
	return &TemplateUsecase{
		completer: completer,
		logger:    logger,
	}
}

// FillResult holds the generated report and the variables workbook with
// resolved values annotated in place.
type FillResult struct {
	FilledDOCX    []byte
	AnnotatedXLSX []byte
}

// Fill runs the whole flow: build the context, resolve every placeholder
// row in order, then substitute the placeholders through the template.
// The artifacts stay in the session for later download.
func (uc *TemplateUsecase) Fill(ctx context.Context, sess *session.Session, req *entity.TemplateFillRequest) (*FillResult, error) {
	if err := validateInputs(req); err != nil {
		return nil, err
	}

	contextText, err := uc.buildContext(ctx, req)
	if err != nil {
		return nil, err
	}

	replacements, annotated, err := uc.resolveVariables(ctx, req.Variables.Content, contextText)
	if err != nil {
		return nil, err
	}

	doc, err := document.Read(bytes.NewReader(req.Template.Content), int64(len(req.Template.Content)))
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	fillTemplate(doc, replacements)

	var out bytes.Buffer
	if err := doc.Save(&out); err != nil {
		return nil, fmt.Errorf("save filled template: %w", err)
	}

	ctxzap.Info(ctx, "template filled",
		zap.Int("replacements", len(replacements)),
		zap.Int("bytes", out.Len()),
	)

	result := &FillResult{
		FilledDOCX:    out.Bytes(),
		AnnotatedXLSX: annotated,
	}
	sess.SetTemplateArtifacts(&session.TemplateArtifacts{
		FilledDOCX:    result.FilledDOCX,
		AnnotatedXLSX: result.AnnotatedXLSX,
	})
	return result, nil
}

// Artifacts returns the outputs of the session's last fill run.
func (uc *TemplateUsecase) Artifacts(sess *session.Session) (*session.TemplateArtifacts, error) {
	artifacts, ok := sess.TemplateArtifacts()
	if !ok {
		return nil, entity.ErrNoPipelineRun
	}
	return artifacts, nil
}

func validateInputs(req *entity.TemplateFillRequest) error {
	inputs := []struct {
		name string
		file entity.FileData
	}{
		{"guidelines", req.Guidelines},
		{"transcript", req.Transcript},
		{"financials", req.Financials},
		{"variables", req.Variables},
		{"template", req.Template},
	}
	for _, in := range inputs {
		if len(in.file.Content) == 0 {
			return fmt.Errorf("%w: %s", entity.ErrMissingTemplateInput, in.name)
		}
	}
	return nil
}

// buildContext concatenates the guidelines, the interview transcript and
// the financial analysis with page markers.
func (uc *TemplateUsecase) buildContext(ctx context.Context, req *entity.TemplateFillRequest) (string, error) {
	guidelines := strings.TrimSpace(string(req.Guidelines.Content))

	transcript, err := readTranscript(req.Transcript.Content)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}

	pages, err := pdftext.ExtractPages(bytes.NewReader(req.Financials.Content), int64(len(req.Financials.Content)))
	if err != nil {
		return "", fmt.Errorf("read financial analysis: %w", err)
	}
	marked := make([]string, len(pages))
	for i, page := range pages {
		marked[i] = fmt.Sprintf("--- Page %d ---\n%s", i+1, page)
	}

	ctxzap.Info(ctx, "context assembled",
		zap.Int("guideline_chars", len(guidelines)),
		zap.Int("transcript_chars", len(transcript)),
		zap.Int("financial_pages", len(pages)),
	)

	return guidelines + "\n\n" + transcript + "\n\n" + strings.Join(marked, "\n\n"), nil
}

func readTranscript(data []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var lines []string
	for _, p := range doc.Paragraphs() {
		lines = append(lines, paragraphText(p))
	}
	return strings.Join(lines, "\n"), nil
}
