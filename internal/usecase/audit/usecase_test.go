package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rsmnext/assistant-backend/internal/entity"
)

func TestSplitSources(t *testing.T) {
	answer, sources := splitSources(
		"The company operates in twelve countries [1].\n[1] https://example.com/about/locations\n[2] https://example.com/annual-report")
	assert.Equal(t, "The company operates in twelve countries [1].", answer)
	assert.Equal(t, "[1] https://example.com/about/locations\n[2] https://example.com/annual-report", sources)

	answer, sources = splitSources("No citations in this reply.")
	assert.Equal(t, "No citations in this reply.", answer)
	assert.Equal(t, "", sources)

	// a [1] in running text does not split unless it starts a line
	answer, sources = splitSources("See note [1] for details.")
	assert.Equal(t, "See note [1] for details.", answer)
	assert.Equal(t, "", sources)
}

func TestQuestionContext(t *testing.T) {
	ctx := questionContext(
		[]entity.RetrievedChunk{{Source: "report.pdf", Text: "public text"}},
		[]entity.RetrievedChunk{{Source: "ledger.pdf", Text: "client text"}},
		entity.QuestionRow{Question: "Who owns the company?", Example: "The company is owned by X."},
	)

	assert.Contains(t, ctx, "PUBLIC CONTEXT:\n[report.pdf] public text")
	assert.Contains(t, ctx, "CLIENT CONTEXT:\n[ledger.pdf] client text")
	assert.Contains(t, ctx, "FORMAT EXAMPLE:\n Q: Who owns the company?\n A: The company is owned by X.")
	assert.Contains(t, ctx, "DO NOT RESPOND WITH MARKDOWN")
}

func TestValueOr(t *testing.T) {
	assert.Equal(t, 10, valueOr(10, 200))
	assert.Equal(t, 200, valueOr(0, 200))
	assert.Equal(t, 200, valueOr(-5, 200))
}
