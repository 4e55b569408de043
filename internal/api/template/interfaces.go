package template

import (
	"context"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/session"
	templateuc "github.com/rsmnext/assistant-backend/internal/usecase/template"
)

type TemplateUsecase interface {
	Fill(ctx context.Context, sess *session.Session, req *entity.TemplateFillRequest) (*templateuc.FillResult, error)
	Artifacts(sess *session.Session) (*session.TemplateArtifacts, error)
}
