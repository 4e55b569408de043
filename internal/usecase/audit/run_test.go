package audit

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/config"
	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/session"
)

type stubCompleter struct {
	answer string
	risks  string
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	if strings.Contains(system, "JSON array") {
		return s.risks, nil
	}
	return s.answer, nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)%7 + 1), float32(len(text)%3 + 1), 1}
	}
	return vectors, nil
}

func (e stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func buildPDF(t *testing.T, text string) []byte {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 8, text, "", "L", false)

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func testSession() *session.Session {
	return session.NewStore(0).Create(entity.User{Username: "alice"})
}

func testAuditConfig() config.AuditConfig {
	return config.AuditConfig{ChunkSize: 20, ChunkOverlap: 5, TopK: 2, PageMargin: 0}
}

func TestRunPipeline(t *testing.T) {
	completer := &stubCompleter{
		answer: "The company sells widgets to retailers [1].\n[1] https://example.com/products",
		risks:  `[{"risk_type":"Revenue recognition","Likelihood":"High","Material Quantitative Impact?":"High"}]`,
	}
	uc := NewUsecase(completer, stubEmbedder{}, testAuditConfig(), zap.NewNop())
	sess := testSession()

	req := &entity.AuditRunRequest{
		PublicFiles: []entity.FileData{
			{Filename: "annual_report.pdf", Content: buildPDF(t, strings.Repeat("The company sells widgets across Europe. ", 10))},
		},
		Questions:   entity.FileData{Filename: "1300.xlsx", Content: buildQuestionWorkbook(t, true)},
		RiskMemo:    entity.FileData{Filename: "memo.xlsx", Content: buildMemoWorkbook(t)},
		CompanyName: "Acme B.V.",
		BookYear:    "2025",
	}

	result, err := uc.Run(context.Background(), sess, req)
	require.NoError(t, err)

	require.Len(t, result.Answers, 2)
	assert.Equal(t, "The company sells widgets to retailers [1].", result.Answers[0].Answer)
	assert.Equal(t, "[1] https://example.com/products", result.Answers[0].Sources)

	require.Len(t, result.Risks, 1)
	assert.Equal(t, entity.RiskSignificant, result.Risks[0].Significant)

	assert.Greater(t, result.ChunkCount, 0)
	assert.NotEmpty(t, result.AnswersXLSX)
	assert.NotEmpty(t, result.RiskMemoXLSX)
	assert.Equal(t, []string{"annual_report.pdf"}, result.PublicSources)

	// result is retrievable from the session afterwards
	stored, err := uc.Result(sess)
	require.NoError(t, err)
	assert.Equal(t, result, stored)
}

func TestRunValidatesParameters(t *testing.T) {
	uc := NewUsecase(&stubCompleter{}, stubEmbedder{}, testAuditConfig(), zap.NewNop())

	_, err := uc.Run(context.Background(), testSession(), &entity.AuditRunRequest{
		ChunkSize:    10,
		ChunkOverlap: 10,
	})
	assert.ErrorIs(t, err, entity.ErrInvalidChunking)

	_, err = uc.Run(context.Background(), testSession(), &entity.AuditRunRequest{
		Questions: entity.FileData{},
	})
	assert.ErrorIs(t, err, entity.ErrMissingTemplateInput)
}

func TestRunRejectsEmptyCorpus(t *testing.T) {
	uc := NewUsecase(&stubCompleter{}, stubEmbedder{}, testAuditConfig(), zap.NewNop())

	_, err := uc.Run(context.Background(), testSession(), &entity.AuditRunRequest{
		Questions: entity.FileData{Content: buildQuestionWorkbook(t, true)},
		RiskMemo:  entity.FileData{Content: buildMemoWorkbook(t)},
	})
	assert.ErrorIs(t, err, entity.ErrEmptyCorpus)
}

func TestResultWithoutRun(t *testing.T) {
	uc := NewUsecase(&stubCompleter{}, stubEmbedder{}, testAuditConfig(), zap.NewNop())
	_, err := uc.Result(testSession())
	assert.ErrorIs(t, err, entity.ErrNoPipelineRun)
}
