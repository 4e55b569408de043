package vat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/integration/vies"
	"github.com/rsmnext/assistant-backend/internal/session"
)

const (
	statusValid   = "Valid"
	statusInvalid = "Invalid"

	nameUnavailable    = "(name unavailable)"
	addressUnavailable = "(address unavailable)"
)

// VATUsecase runs registry checks sequentially over a pasted batch. A row
// that cannot be checked still appears in the results with its failure in
// the status and name columns, so a long batch never dies halfway.
type VATUsecase struct {
	checker RegistryChecker
	logger  *zap.Logger
	cet     *time.Location
}

func NewUsecase(checker RegistryChecker, logger *zap.Logger) *VATUsecase {
	// Timestamps follow CET/CEST regardless of server timezone.
	cet, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		cet = time.UTC
	}
	return &VATUsecase{
		checker: checker,
		logger:  logger,
		cet:     cet,
	}
}

// Check validates every number in the batch and stores the result table
// in the session for the XLSX download.
func (uc *VATUsecase) Check(ctx context.Context, sess *session.Session, numbers []string) (*entity.VATCheckResponse, error) {
	batch := cleanBatch(numbers)
	if len(batch) == 0 {
		return nil, entity.ErrNoVATNumbers
	}

	results := make([]entity.VATResult, 0, len(batch))
	for i, raw := range batch {
		results = append(results, uc.checkOne(ctx, raw))
		ctxzap.Info(ctx, "VAT number checked",
			zap.Int("processed", i+1),
			zap.Int("total", len(batch)),
			zap.String("status", results[i].Status),
		)
	}

	report, err := buildReport(results)
	if err != nil {
		return nil, err
	}
	sess.SetVATReport(report)

	return &entity.VATCheckResponse{Results: results}, nil
}

// Report returns the last result workbook of the session.
func (uc *VATUsecase) Report(sess *session.Session) (*session.VATReport, error) {
	report, ok := sess.VATReport()
	if !ok {
		return nil, entity.ErrNoVATReport
	}
	return report, nil
}

func (uc *VATUsecase) checkOne(ctx context.Context, raw string) entity.VATResult {
	result := entity.VATResult{CheckedAt: time.Now().In(uc.cet)}

	if len(raw) < 3 {
		result.Status = statusInvalid
		result.Name = entity.ErrVATNumberShort.Error()
		result.Number = raw
		return result
	}

	result.Country = strings.ToUpper(raw[:2])
	result.Number = strings.ReplaceAll(raw[2:], " ", "")

	check, err := uc.checker.CheckVAT(ctx, result.Country, result.Number)
	if err != nil {
		result.Status = statusInvalid
		result.Name = checkFailure(err)
		return result
	}

	result.Status = statusInvalid
	if check.Valid {
		result.Status = statusValid
	}
	result.Name = orFallback(check.Name, nameUnavailable)
	result.Address = orFallback(check.Address, addressUnavailable)
	return result
}

// checkFailure renders a per-row failure. Registry faults get their
// operator wording; anything else surfaces the raw error.
func checkFailure(err error) string {
	var fault *vies.FaultError
	if errors.As(err, &fault) {
		return fault.Message()
	}
	return err.Error()
}

func cleanBatch(numbers []string) []string {
	var out []string
	for _, n := range numbers {
		if trimmed := strings.TrimSpace(n); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func orFallback(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
