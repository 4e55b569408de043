package vat

import (
	"context"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/session"
)

type VATUsecase interface {
	Check(ctx context.Context, sess *session.Session, numbers []string) (*entity.VATCheckResponse, error)
	Report(sess *session.Session) (*session.VATReport, error)
}
