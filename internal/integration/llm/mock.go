package llm

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/entity"
)

// MockConnector is an in-process stand-in for the hosted deployment, used
// when ENABLE_MOCKS is set.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Acquire(ctx context.Context, prompt, chatContext string, history []entity.HistoryPair) (string, error) {
	ctxzap.Info(ctx, "[MOCK] acquiring LLM answer",
		zap.Int("prompt_length", len(prompt)),
		zap.Int("history_pairs", len(history)),
	)
	return fmt.Sprintf("Mock answer to: %s", prompt), nil
}

func (m *MockConnector) Complete(ctx context.Context, system, user string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] completing instruction prompt",
		zap.Int("prompt_length", len(user)),
	)
	return "[]", nil
}
