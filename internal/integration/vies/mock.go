package vies

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector treats even-length numbers as registered companies.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) CheckVAT(ctx context.Context, country, number string) (*CheckResult, error) {
	ctxzap.Info(ctx, "[MOCK] checking VAT number",
		zap.String("country", country),
	)

	if len(number)%2 != 0 {
		return &CheckResult{Valid: false}, nil
	}
	return &CheckResult{
		Valid:   true,
		Name:    "MOCK TRADING B.V.",
		Address: "Weena 1, 3013 AA Rotterdam",
	}, nil
}
