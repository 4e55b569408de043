package audit

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/rsmnext/assistant-backend/internal/entity"
)

const (
	questionSheetName = "1300"
	memoSheetName     = "Memo"

	// memoCompanyCell and memoYearCell are fixed by the memo template.
	memoCompanyCell = "C4"
	memoYearCell    = "C6"

	// memoFirstRiskRow is the first data row of the risk table.
	memoFirstRiskRow = 31

	// headerScanLimit bounds the header search on the question sheet.
	headerScanLimit = 50
)

// questionColumns holds the column letters resolved from the question
// sheet's header row. Answer columns are appended when the template does
// not carry them yet.
type questionColumns struct {
	number   string
	question string
	example  string
	answer   string
	sources  string
}

// questionBook wraps the uploaded question workbook. Answers are written
// back into the same workbook so formatting survives.
type questionBook struct {
	wb    *spreadsheet.Workbook
	sheet spreadsheet.Sheet
	cols  questionColumns
	rows  []entity.QuestionRow
}

func openQuestionBook(data []byte) (*questionBook, error) {
	wb, err := spreadsheet.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read question workbook: %w", err)
	}

	sheet, err := wb.GetSheet(questionSheetName)
	if err != nil {
		return nil, fmt.Errorf("question workbook has no %q sheet: %w", questionSheetName, err)
	}

	cols, err := resolveColumns(sheet)
	if err != nil {
		return nil, err
	}

	book := &questionBook{
		wb:    wb,
		sheet: sheet,
		cols:  cols,
	}
	book.rows = book.readQuestions()
	return book, nil
}

// resolveColumns locates the known headers in row 1. Rows without a value
// in the number column are treated as section separators later.
func resolveColumns(sheet spreadsheet.Sheet) (questionColumns, error) {
	var cols questionColumns
	lastUsed := 0
	for i := 0; i < headerScanLimit; i++ {
		letter := columnName(i)
		header := strings.TrimSpace(sheet.Cell(letter + "1").GetFormattedValue())
		if header != "" {
			lastUsed = i
		}
		switch header {
		case "#":
			cols.number = letter
		case "Question":
			cols.question = letter
		case "Best practice answer":
			cols.example = letter
		case "Generated answer":
			cols.answer = letter
		case "Sources":
			cols.sources = letter
		}
	}

	if cols.number == "" || cols.question == "" {
		return cols, fmt.Errorf("%w: question sheet needs \"#\" and \"Question\" headers", entity.ErrInvalidFile)
	}

	if cols.answer == "" {
		lastUsed++
		cols.answer = columnName(lastUsed)
		sheet.Cell(cols.answer + "1").SetString("Generated answer")
	}
	if cols.sources == "" {
		lastUsed++
		cols.sources = columnName(lastUsed)
		sheet.Cell(cols.sources + "1").SetString("Sources")
	}

	return cols, nil
}

func (b *questionBook) readQuestions() []entity.QuestionRow {
	var out []entity.QuestionRow
	for _, row := range b.sheet.Rows() {
		n := row.RowNumber()
		if n < 2 {
			continue
		}
		number := strings.TrimSpace(b.sheet.Cell(b.cols.number + fmt.Sprint(n)).GetFormattedValue())
		if number == "" {
			continue
		}
		question := strings.TrimSpace(b.sheet.Cell(b.cols.question + fmt.Sprint(n)).GetFormattedValue())
		if question == "" {
			continue
		}
		var example string
		if b.cols.example != "" {
			example = strings.TrimSpace(b.sheet.Cell(b.cols.example + fmt.Sprint(n)).GetFormattedValue())
		}
		out = append(out, entity.QuestionRow{
			Row:      n,
			Number:   number,
			Question: question,
			Example:  example,
		})
	}
	return out
}

func (b *questionBook) setAnswer(row uint32, answer, sources string) {
	b.sheet.Cell(fmt.Sprintf("%s%d", b.cols.answer, row)).SetString(answer)
	cell := b.sheet.Cell(fmt.Sprintf("%s%d", b.cols.sources, row))
	if sources == "" {
		cell.Clear()
		return
	}
	cell.SetString(sources)
}

func (b *questionBook) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.wb.Save(&buf); err != nil {
		return nil, fmt.Errorf("save question workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// memoRiskColumns maps risk record fields onto the memo table, in table
// order starting at column C. Column A is the ordinal, B the risk type.
var memoRiskColumns = []struct {
	letter string
	value  func(r entity.RiskRecord) string
}{
	{"C", func(r entity.RiskRecord) string { return r.FraudRiskFactor }},
	{"D", func(r entity.RiskRecord) string { return r.InternalControls }},
	{"E", func(r entity.RiskRecord) string { return r.Likelihood }},
	{"F", func(r entity.RiskRecord) string { return r.LikelihoodExplanation }},
	{"G", func(r entity.RiskRecord) string { return r.Impact }},
	{"H", func(r entity.RiskRecord) string { return r.ImpactExplanation }},
	{"I", func(r entity.RiskRecord) string { return r.Conclusion }},
	{"J", func(r entity.RiskRecord) string { return r.Significant }},
}

// memoBook wraps the uploaded risk memo template.
type memoBook struct {
	wb    *spreadsheet.Workbook
	sheet spreadsheet.Sheet
}

func openMemoBook(data []byte) (*memoBook, error) {
	wb, err := spreadsheet.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read memo workbook: %w", err)
	}

	sheet, err := wb.GetSheet(memoSheetName)
	if err != nil {
		return nil, fmt.Errorf("memo workbook has no %q sheet: %w", memoSheetName, err)
	}

	return &memoBook{wb: wb, sheet: sheet}, nil
}

func (b *memoBook) setHeader(company, year string) {
	b.sheet.Cell(memoCompanyCell).SetString(company)
	b.sheet.Cell(memoYearCell).SetString(year)
}

// writeRisks clears any previous table contents and writes the extracted
// rows starting at the fixed first data row.
func (b *memoBook) writeRisks(risks []entity.RiskRecord) {
	for _, row := range b.sheet.Rows() {
		n := row.RowNumber()
		if n < memoFirstRiskRow {
			continue
		}
		b.sheet.Cell(fmt.Sprintf("A%d", n)).Clear()
		b.sheet.Cell(fmt.Sprintf("B%d", n)).Clear()
		for _, col := range memoRiskColumns {
			b.sheet.Cell(fmt.Sprintf("%s%d", col.letter, n)).Clear()
		}
	}

	for i, risk := range risks {
		n := memoFirstRiskRow + i
		b.sheet.Cell(fmt.Sprintf("A%d", n)).SetNumber(float64(i + 1))
		b.sheet.Cell(fmt.Sprintf("B%d", n)).SetString(risk.RiskType)
		for _, col := range memoRiskColumns {
			b.sheet.Cell(fmt.Sprintf("%s%d", col.letter, n)).SetString(col.value(risk))
		}
	}
}

func (b *memoBook) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.wb.Save(&buf); err != nil {
		return nil, fmt.Errorf("save memo workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// columnName converts a zero-based column index to its letter reference.
func columnName(idx int) string {
	name := ""
	for idx >= 0 {
		name = string(rune('A'+idx%26)) + name
		idx = idx/26 - 1
	}
	return name
}
