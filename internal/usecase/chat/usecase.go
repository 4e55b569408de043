package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/entity"
	"github.com/rsmnext/assistant-backend/internal/pkg/formatter"
	"github.com/rsmnext/assistant-backend/internal/session"
)

// ChatUsecase runs the rolling conversation. Acquisition failures never
// fail the request; they are rendered as assistant replies so the operator
// sees what went wrong in the conversation itself.
type ChatUsecase struct {
	acquirer   ResponseAcquirer
	formatters *formatter.Factory
	maxContext int
	maxHistory int
	logger     *zap.Logger
}

func NewUsecase(acquirer ResponseAcquirer, formatters *formatter.Factory, maxContext, maxHistory int, logger *zap.Logger) *ChatUsecase {
	return &ChatUsecase{
		acquirer:   acquirer,
		formatters: formatters,
		maxContext: maxContext,
		maxHistory: maxHistory,
		logger:     logger,
	}
}

// Send appends the user message, acquires a reply and appends it. The
// context window handed to the endpoint includes the new message; the
// history pairs cover only the answered turns before it.
func (uc *ChatUsecase) Send(ctx context.Context, sess *session.Session, message string) (*entity.ChatResponse, error) {
	prompt := strings.TrimSpace(message)
	if prompt == "" {
		return nil, entity.ErrEmptyPrompt
	}

	sess.Append(entity.Message{Role: entity.RoleUser, Content: prompt}, uc.maxContext)

	current := sess.Messages()
	chatContext := renderContext(current)
	history := historyPairs(current, uc.maxHistory)

	reply, err := uc.acquirer.Acquire(ctx, prompt, chatContext, history)
	if err != nil {
		ctxzap.Warn(ctx, "LLM acquisition failed", zap.Error(err))
		reply = errorReply(err)
	}

	sess.Append(entity.Message{Role: entity.RoleAssistant, Content: reply}, uc.maxContext)

	ctxzap.Info(ctx, "chat turn completed",
		zap.Int("log_length", len(sess.Messages())),
		zap.Bool("degraded", err != nil),
	)

	return &entity.ChatResponse{
		Reply:    reply,
		Messages: sess.Messages(),
	}, nil
}

// History returns the current conversation log.
func (uc *ChatUsecase) History(sess *session.Session) *entity.HistoryResponse {
	return &entity.HistoryResponse{Messages: sess.Messages()}
}

// Clear empties the conversation log.
func (uc *ChatUsecase) Clear(ctx context.Context, sess *session.Session) {
	sess.Clear()
	ctxzap.Info(ctx, "conversation cleared")
}

// ExportResult is a rendered transcript ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export renders the conversation log in the requested format.
func (uc *ChatUsecase) Export(ctx context.Context, sess *session.Session, format entity.ResultFormat) (*ExportResult, error) {
	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
	}

	data, err := f.Format(renderTranscript(sess.Messages()))
	if err != nil {
		return nil, fmt.Errorf("render transcript: %w", err)
	}

	ctxzap.Info(ctx, "transcript exported",
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
	)

	return &ExportResult{
		Filename:    "chat-transcript" + f.FileExtension(),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

// renderContext flattens the log into "role: content" lines for the
// system-message context.
func renderContext(messages []entity.Message) string {
	if len(messages) == 0 {
		return ""
	}
	lines := make([]string, len(messages))
	for i, msg := range messages {
		lines[i] = msg.Role + ": " + msg.Content
	}
	return strings.Join(lines, "\n")
}

// historyPairs repackages the log as (user, assistant) turns, newest max
// pairs only. An unanswered trailing user message is dropped.
func historyPairs(messages []entity.Message, max int) []entity.HistoryPair {
	var pairs []entity.HistoryPair
	for i := 0; i+1 < len(messages); i++ {
		if messages[i].Role == entity.RoleUser && messages[i+1].Role == entity.RoleAssistant {
			pairs = append(pairs, entity.HistoryPair{
				Inputs:  entity.HistoryInput{ChatInput: messages[i].Content},
				Outputs: entity.HistoryOutput{ChatOutput: messages[i+1].Content},
			})
			i++
		}
	}
	if max > 0 && len(pairs) > max {
		pairs = pairs[len(pairs)-max:]
	}
	return pairs
}

func renderTranscript(messages []entity.Message) string {
	lines := make([]string, len(messages))
	for i, msg := range messages {
		lines[i] = speakerLabel(msg.Role) + ": " + msg.Content
	}
	return strings.Join(lines, "\n\n")
}

func speakerLabel(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}

// errorReply turns an acquisition failure into the text shown in place of
// the assistant's answer.
func errorReply(err error) string {
	var exhaustion *entity.ExhaustionError
	switch {
	case errors.Is(err, entity.ErrMissingLLMConfig):
		return "The assistant endpoint is not configured. Set the endpoint URL and API key, then try again."
	case errors.As(err, &exhaustion):
		return "The assistant endpoint did not return a usable answer: " + exhaustion.Error()
	default:
		return "The assistant is temporarily unavailable: " + err.Error()
	}
}
