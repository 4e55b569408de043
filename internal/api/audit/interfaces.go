package audit

import (
	"context"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/session"
)

type AuditUsecase interface {
	Run(ctx context.Context, sess *session.Session, req *entity.AuditRunRequest) (*entity.PipelineResult, error)
	Result(sess *session.Session) (*entity.PipelineResult, error)
}
