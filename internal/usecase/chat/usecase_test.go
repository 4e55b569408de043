package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/pkg/formatter"
	"github.com/rsmnext/assistant-backend/internal/session"
)

type stubAcquirer struct {
	reply   string
	err     error
	prompt  string
	context string
	history []entity.HistoryPair
	calls   int
}

func (s *stubAcquirer) Acquire(ctx context.Context, prompt, chatContext string, history []entity.HistoryPair) (string, error) {
	s.calls++
	s.prompt = prompt
	s.context = chatContext
	s.history = history
	return s.reply, s.err
}

func newSession() *session.Session {
	return session.NewStore(0).Create(entity.User{Username: "alice"})
}

func TestSendAppendsBothTurns(t *testing.T) {
	acquirer := &stubAcquirer{reply: "hello back"}
	uc := NewUsecase(acquirer, formatter.NewFactory(), 12, 6, zap.NewNop())
	sess := newSession()

	resp, err := uc.Send(context.Background(), sess, "  hello  ")
	require.NoError(t, err)

	assert.Equal(t, "hello back", resp.Reply)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, entity.RoleUser, resp.Messages[0].Role)
	assert.Equal(t, "hello", resp.Messages[0].Content)
	assert.Equal(t, entity.RoleAssistant, resp.Messages[1].Role)

	// the first turn's context window is just the new message
	assert.Equal(t, "hello", acquirer.prompt)
	assert.Equal(t, "user: hello", acquirer.context)
	assert.Empty(t, acquirer.history)
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	uc := NewUsecase(&stubAcquirer{}, formatter.NewFactory(), 12, 6, zap.NewNop())

	_, err := uc.Send(context.Background(), newSession(), "   \n ")
	assert.ErrorIs(t, err, entity.ErrEmptyPrompt)
}

func TestSendPassesContextAndHistory(t *testing.T) {
	acquirer := &stubAcquirer{reply: "r"}
	uc := NewUsecase(acquirer, formatter.NewFactory(), 12, 6, zap.NewNop())
	sess := newSession()

	_, err := uc.Send(context.Background(), sess, "first")
	require.NoError(t, err)
	_, err = uc.Send(context.Background(), sess, "second")
	require.NoError(t, err)

	// the new user message is part of the context window
	assert.Equal(t, "user: first\nassistant: r\nuser: second", acquirer.context)
	require.Len(t, acquirer.history, 1)
	assert.Equal(t, "first", acquirer.history[0].Inputs.ChatInput)
	assert.Equal(t, "r", acquirer.history[0].Outputs.ChatOutput)
}

func TestSendTruncatesLog(t *testing.T) {
	acquirer := &stubAcquirer{reply: "ok"}
	uc := NewUsecase(acquirer, formatter.NewFactory(), 4, 6, zap.NewNop())
	sess := newSession()

	for i := 0; i < 5; i++ {
		_, err := uc.Send(context.Background(), sess, fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	messages := sess.Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, "msg 3", messages[0].Content)
}

func TestSendRendersErrorsAsReplies(t *testing.T) {
	acquirer := &stubAcquirer{err: entity.ErrMissingLLMConfig}
	uc := NewUsecase(acquirer, formatter.NewFactory(), 12, 6, zap.NewNop())
	sess := newSession()

	resp, err := uc.Send(context.Background(), sess, "hello")
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "not configured")

	acquirer.err = &entity.ExhaustionError{Attempts: 3, LastStatus: 200, LastBody: "{}"}
	resp, err = uc.Send(context.Background(), sess, "again")
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "did not return a usable answer")

	acquirer.err = errors.New("connection refused")
	resp, err = uc.Send(context.Background(), sess, "once more")
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "temporarily unavailable")
}

func TestHistoryPairsSkipsUnpairedMessages(t *testing.T) {
	messages := []entity.Message{
		{Role: entity.RoleUser, Content: "u1"},
		{Role: entity.RoleAssistant, Content: "a1"},
		{Role: entity.RoleUser, Content: "dangling"},
	}
	pairs := historyPairs(messages, 6)
	require.Len(t, pairs, 1)
	assert.Equal(t, "u1", pairs[0].Inputs.ChatInput)
}

func TestHistoryPairsKeepsNewest(t *testing.T) {
	var messages []entity.Message
	for i := 0; i < 10; i++ {
		messages = append(messages,
			entity.Message{Role: entity.RoleUser, Content: fmt.Sprintf("u%d", i)},
			entity.Message{Role: entity.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
	}
	pairs := historyPairs(messages, 6)
	require.Len(t, pairs, 6)
	assert.Equal(t, "u4", pairs[0].Inputs.ChatInput)
	assert.Equal(t, "u9", pairs[5].Inputs.ChatInput)
}

func TestExport(t *testing.T) {
	uc := NewUsecase(&stubAcquirer{reply: "fine, thanks"}, formatter.NewFactory(), 12, 6, zap.NewNop())
	sess := newSession()

	_, err := uc.Send(context.Background(), sess, "how are you?")
	require.NoError(t, err)

	result, err := uc.Export(context.Background(), sess, entity.FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "chat-transcript.md", result.Filename)
	assert.Contains(t, string(result.Data), "User: how are you?")
	assert.Contains(t, string(result.Data), "Assistant: fine, thanks")

	_, err = uc.Export(context.Background(), sess, entity.ResultFormat("csv"))
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}
