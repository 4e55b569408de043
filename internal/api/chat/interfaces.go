package chat

import (
	"context"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/session"
	chatuc "github.com/rsmnext/assistant-backend/internal/usecase/chat"
)

type ChatUsecase interface {
	Send(ctx context.Context, sess *session.Session, message string) (*entity.ChatResponse, error)
	History(sess *session.Session) *entity.HistoryResponse
	Clear(ctx context.Context, sess *session.Session)
	Export(ctx context.Context, sess *session.Session, format entity.ResultFormat) (*chatuc.ExportResult, error)
}
