package audit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/rsmnext/assistant-backend/internal/entity"
)

func buildQuestionWorkbook(t *testing.T, withAnswerColumns bool) []byte {
	t.Helper()

	wb := spreadsheet.New()
	sheet := wb.AddSheet()
	sheet.SetName(questionSheetName)

	header := sheet.AddRow()
	header.AddCell().SetString("#")
	header.AddCell().SetString("Question")
	header.AddCell().SetString("Best practice answer")
	if withAnswerColumns {
		header.AddCell().SetString("Generated answer")
		header.AddCell().SetString("Sources")
	}

	row := sheet.AddRow()
	row.AddCell().SetString("1.1")
	row.AddCell().SetString("Who are the main customers?")
	row.AddCell().SetString("The main customers are X and Y.")

	// section separator row has no number
	sep := sheet.AddRow()
	sep.AddCell().SetString("")
	sep.AddCell().SetString("Section B")

	row = sheet.AddRow()
	row.AddCell().SetString("2.1")
	row.AddCell().SetString("Which markets does the company serve?")

	var buf bytes.Buffer
	require.NoError(t, wb.Save(&buf))
	return buf.Bytes()
}

func TestOpenQuestionBookReadsRows(t *testing.T) {
	book, err := openQuestionBook(buildQuestionWorkbook(t, true))
	require.NoError(t, err)

	require.Len(t, book.rows, 2)
	assert.Equal(t, "1.1", book.rows[0].Number)
	assert.Equal(t, "Who are the main customers?", book.rows[0].Question)
	assert.Equal(t, "The main customers are X and Y.", book.rows[0].Example)
	assert.Equal(t, "2.1", book.rows[1].Number)

	assert.Equal(t, "A", book.cols.number)
	assert.Equal(t, "B", book.cols.question)
	assert.Equal(t, "D", book.cols.answer)
	assert.Equal(t, "E", book.cols.sources)
}

func TestOpenQuestionBookAppendsMissingColumns(t *testing.T) {
	book, err := openQuestionBook(buildQuestionWorkbook(t, false))
	require.NoError(t, err)

	assert.Equal(t, "D", book.cols.answer)
	assert.Equal(t, "E", book.cols.sources)
	assert.Equal(t, "Generated answer", book.sheet.Cell("D1").GetFormattedValue())
	assert.Equal(t, "Sources", book.sheet.Cell("E1").GetFormattedValue())
}

func TestQuestionBookRoundTripsAnswers(t *testing.T) {
	book, err := openQuestionBook(buildQuestionWorkbook(t, true))
	require.NoError(t, err)

	book.setAnswer(book.rows[0].Row, "They sell to X.", "[1] https://example.com/customers")

	data, err := book.bytes()
	require.NoError(t, err)

	reopened, err := openQuestionBook(data)
	require.NoError(t, err)
	row := reopened.rows[0].Row
	assert.Equal(t, "They sell to X.",
		reopened.sheet.Cell(reopened.cols.answer+"2").GetFormattedValue())
	assert.Equal(t, uint32(2), row)
}

func TestOpenQuestionBookRejectsWrongSheet(t *testing.T) {
	wb := spreadsheet.New()
	sheet := wb.AddSheet()
	sheet.SetName("Tabelle1")
	var buf bytes.Buffer
	require.NoError(t, wb.Save(&buf))

	_, err := openQuestionBook(buf.Bytes())
	assert.Error(t, err)
}

func buildMemoWorkbook(t *testing.T) []byte {
	t.Helper()

	wb := spreadsheet.New()
	sheet := wb.AddSheet()
	sheet.SetName(memoSheetName)

	var buf bytes.Buffer
	require.NoError(t, wb.Save(&buf))
	return buf.Bytes()
}

func TestMemoBookWritesHeaderAndRisks(t *testing.T) {
	memo, err := openMemoBook(buildMemoWorkbook(t))
	require.NoError(t, err)

	memo.setHeader("Acme B.V.", "2025")
	memo.writeRisks([]entity.RiskRecord{
		{
			RiskType:        "Revenue recognition",
			FraudRiskFactor: entity.RiskYes,
			Likelihood:      entity.RiskHigh,
			Impact:          entity.RiskHigh,
			Significant:     entity.RiskSignificant,
		},
	})

	assert.Equal(t, "Acme B.V.", memo.sheet.Cell("C4").GetFormattedValue())
	assert.Equal(t, "2025", memo.sheet.Cell("C6").GetFormattedValue())
	assert.Equal(t, "Revenue recognition", memo.sheet.Cell("B31").GetFormattedValue())
	assert.Equal(t, entity.RiskSignificant, memo.sheet.Cell("J31").GetFormattedValue())

	// written bytes must survive a reopen
	data, err := memo.bytes()
	require.NoError(t, err)
	_, err = openMemoBook(data)
	assert.NoError(t, err)
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "A", columnName(0))
	assert.Equal(t, "Z", columnName(25))
	assert.Equal(t, "AA", columnName(26))
	assert.Equal(t, "AX", columnName(49))
}
