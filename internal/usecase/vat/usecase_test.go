package vat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/integration/vies"
	"github.com/rsmnext/assistant-backend/internal/session"
)

type stubChecker struct {
	results map[string]*vies.CheckResult
	errs    map[string]error
	calls   []string
}

func (s *stubChecker) CheckVAT(ctx context.Context, country, number string) (*vies.CheckResult, error) {
	key := country + number
	s.calls = append(s.calls, key)
	if err, ok := s.errs[key]; ok {
		return nil, err
	}
	if r, ok := s.results[key]; ok {
		return r, nil
	}
	return &vies.CheckResult{}, nil
}

func newSession() *session.Session {
	return session.NewStore(0).Create(entity.User{Username: "alice"})
}

func TestCheckBatch(t *testing.T) {
	checker := &stubChecker{
		results: map[string]*vies.CheckResult{
			"NL123456789B01": {Valid: true, Name: "EXAMPLE B.V.", Address: "Weena 1 Rotterdam"},
			"DE999999999":    {Valid: false},
		},
	}
	uc := NewUsecase(checker, zap.NewNop())
	sess := newSession()

	resp, err := uc.Check(context.Background(), sess, []string{
		"  NL123 456 789B01 ",
		"de999999999",
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	first := resp.Results[0]
	assert.Equal(t, "NL", first.Country)
	assert.Equal(t, "123456789B01", first.Number)
	assert.Equal(t, "Valid", first.Status)
	assert.Equal(t, "EXAMPLE B.V.", first.Name)
	assert.False(t, first.CheckedAt.IsZero())

	second := resp.Results[1]
	assert.Equal(t, "DE", second.Country)
	assert.Equal(t, "Invalid", second.Status)
	assert.Equal(t, "(name unavailable)", second.Name)
	assert.Equal(t, "(address unavailable)", second.Address)

	// results are stored for the download
	report, err := uc.Report(sess)
	require.NoError(t, err)
	assert.NotEmpty(t, report.XLSX)
	assert.Len(t, report.Results, 2)
}

func TestCheckShortNumberRow(t *testing.T) {
	uc := NewUsecase(&stubChecker{}, zap.NewNop())

	resp, err := uc.Check(context.Background(), newSession(), []string{"NL"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	row := resp.Results[0]
	assert.Equal(t, "Invalid", row.Status)
	assert.Equal(t, "NL", row.Number)
	assert.Equal(t, entity.ErrVATNumberShort.Error(), row.Name)
}

func TestCheckFaultRow(t *testing.T) {
	checker := &stubChecker{
		errs: map[string]error{
			"FR12345678901": &vies.FaultError{Code: "env:Server"},
			"BE0123456789":  errors.New("connection reset"),
		},
	}
	uc := NewUsecase(checker, zap.NewNop())

	resp, err := uc.Check(context.Background(), newSession(), []string{"FR12345678901", "BE0123456789"})
	require.NoError(t, err)

	assert.Equal(t, "Server Not Responding, try later", resp.Results[0].Name)
	assert.Equal(t, "Invalid", resp.Results[0].Status)
	assert.Equal(t, "connection reset", resp.Results[1].Name)
}

func TestCheckEmptyBatch(t *testing.T) {
	uc := NewUsecase(&stubChecker{}, zap.NewNop())

	_, err := uc.Check(context.Background(), newSession(), []string{"", "  ", "\n"})
	assert.ErrorIs(t, err, entity.ErrNoVATNumbers)

	_, err = uc.Check(context.Background(), newSession(), nil)
	assert.ErrorIs(t, err, entity.ErrNoVATNumbers)
}

func TestReportWithoutRun(t *testing.T) {
	uc := NewUsecase(&stubChecker{}, zap.NewNop())

	_, err := uc.Report(newSession())
	assert.ErrorIs(t, err, entity.ErrNoVATReport)
}
