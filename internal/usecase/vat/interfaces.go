package vat

import (
	"context"

	"github.com/rsmnext/assistant-backend/internal/integration/vies"
)

type RegistryChecker interface {
	CheckVAT(ctx context.Context, country, number string) (*vies.CheckResult, error)
}
