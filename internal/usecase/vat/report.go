package vat

import (
	"bytes"
	"fmt"

	"github.com/unidoc/unioffice/spreadsheet"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/session"
)

var reportHeaders = []string{"Country", "VAT Number", "Status", "Name", "Address", "Timestamp"}

// buildReport renders the result table into a fresh workbook.
func buildReport(results []entity.VATResult) (*session.VATReport, error) {
	wb := spreadsheet.New()
	sheet := wb.AddSheet()
	sheet.SetName("VAT Results")

	header := sheet.AddRow()
	for _, title := range reportHeaders {
		header.AddCell().SetString(title)
	}

	for _, r := range results {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Country)
		row.AddCell().SetString(r.Number)
		row.AddCell().SetString(r.Status)
		row.AddCell().SetString(r.Name)
		row.AddCell().SetString(r.Address)
		row.AddCell().SetString(r.CheckedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := wb.Save(&buf); err != nil {
		return nil, fmt.Errorf("save VAT report: %w", err)
	}

	return &session.VATReport{
		Results: results,
		XLSX:    buf.Bytes(),
	}, nil
}
