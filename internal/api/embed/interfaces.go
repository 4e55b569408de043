package embed

import (
	"github.com/rsmnext/assistant-backend/internal/entity"
	embeduc "github.com/rsmnext/assistant-backend/internal/usecase/embed"
)

type EmbedUsecase interface {
	Targets() []entity.EmbedTarget
	SupportLink(req *embeduc.SupportRequest) (string, error)
}
