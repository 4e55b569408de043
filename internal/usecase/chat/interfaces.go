package chat

import (
	"context"

	"github.com/rsmnext/assistant-backend/internal/entity"
)

type ResponseAcquirer interface {
	Acquire(ctx context.Context, prompt, chatContext string, history []entity.HistoryPair) (string, error)
}
