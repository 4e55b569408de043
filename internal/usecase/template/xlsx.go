package template

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/unidoc/unioffice/spreadsheet"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/entity"
)

// Variables workbook layout: column C holds the static value, D the
// placeholder token, E an optional prompt, and G receives the resolved
// value.
const (
	staticColumn      = "C"
	placeholderColumn = "D"
	promptColumn      = "E"
	annotationColumn  = "G"
)

// resolveVariables walks the variables workbook top to bottom. Rows with a
// prompt are answered by the model, after substituting the values already
// resolved for earlier placeholders; rows without one take the static
// value. Every resolved value is annotated back into the sheet.
func (uc *TemplateUsecase) resolveVariables(ctx context.Context, data []byte, contextText string) ([]Replacement, []byte, error) {
	wb, err := spreadsheet.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("read variables workbook: %w", err)
	}

	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: variables workbook has no sheets", entity.ErrInvalidFile)
	}
	sheet := sheets[0]

	var replacements []Replacement
	for _, row := range sheet.Rows() {
		n := row.RowNumber()
		if n < 2 {
			continue
		}

		placeholder := strings.TrimSpace(sheet.Cell(fmt.Sprintf("%s%d", placeholderColumn, n)).GetFormattedValue())
		if placeholder == "" {
			continue
		}

		prompt := strings.TrimSpace(sheet.Cell(fmt.Sprintf("%s%d", promptColumn, n)).GetFormattedValue())

		var value string
		if prompt != "" {
			resolved := applyReplacements(prompt, replacements)
			value, err = uc.completer.Complete(ctx, tpSystemMessage, contextText+resolved)
			if err != nil {
				return nil, nil, fmt.Errorf("resolve %s: %w", placeholder, err)
			}
			value = strings.TrimSpace(value)
		} else {
			value = sheet.Cell(fmt.Sprintf("%s%d", staticColumn, n)).GetFormattedValue()
		}

		sheet.Cell(fmt.Sprintf("%s%d", annotationColumn, n)).SetString(value)
		replacements = append(replacements, Replacement{Placeholder: placeholder, Value: value})

		ctxzap.Info(ctx, "variable resolved",
			zap.String("placeholder", placeholder),
			zap.Bool("prompted", prompt != ""),
		)
	}

	var buf bytes.Buffer
	if err := wb.Save(&buf); err != nil {
		return nil, nil, fmt.Errorf("save annotated workbook: %w", err)
	}
	return replacements, buf.Bytes(), nil
}
