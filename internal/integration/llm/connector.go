package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/config"
	"github.com/rsmnext/assistant-backend/internal/entity"
	pkghttp "github.com/rsmnext/assistant-backend/pkg/http"
)

const maxDiagnosticBody = 1024

// Connector talks to a hosted chat-completion deployment whose exact
// request schema is not known in advance. It detects the endpoint family
// from the URL, then walks an ordered list of candidate payload shapes
// until one produces a usable answer.
type Connector struct {
	cfg       config.LLMConfig
	client    *pkghttp.Connector
	family    Family
	shapes    []CandidateShape
	detector  *Detector
	sysPrefix string
}

func NewConnector(cfg config.LLMConfig, logger *zap.Logger) *Connector {
	family := DetectFamily(cfg.Endpoint)

	authOpt := pkghttp.WithAPIKeyHeader(cfg.APIKey)
	if family == FamilyManagedCompute {
		authOpt = pkghttp.WithAuthToken(cfg.APIKey)
	}

	client := pkghttp.NewConnector(
		&pkghttp.ConnectorConfig{
			BaseURL: cfg.Endpoint,
			Logger:  logger,
		},
		pkghttp.WithRequestTimeout(cfg.Timeout),
		pkghttp.WithRequestLogging(),
		authOpt,
	)

	return &Connector{
		cfg:       cfg,
		client:    client,
		family:    family,
		shapes:    CandidateShapes(family),
		detector:  NewDetector(Strategy(cfg.SignatureStrategy), cfg.DisableDefaultFilter),
		sysPrefix: "You are a helpful assistant for an internal audit and advisory team.",
	}
}

// Acquire sends the prompt and returns the first acceptable answer. The
// context string, when present, is prepended to the system message of the
// messages-style shapes. Missing endpoint or key fails before any call.
func (c *Connector) Acquire(ctx context.Context, prompt, chatContext string, history []entity.HistoryPair) (string, error) {
	if c.cfg.Endpoint == "" || c.cfg.APIKey == "" {
		return "", entity.ErrMissingLLMConfig
	}
	if strings.TrimSpace(prompt) == "" {
		return "", entity.ErrEmptyPrompt
	}

	in := ShapeInputs{
		Prompt:   prompt,
		History:  history,
		Messages: c.buildMessages(prompt, chatContext),
	}

	lastStatus := 0
	lastBody := ""

	for _, shape := range c.shapes {
		payload, err := json.Marshal(shape.Build(in))
		if err != nil {
			return "", err
		}

		status, body, err := c.client.DoBytes(ctx, http.MethodPost, "", "application/json", payload)
		if err != nil {
			ctxzap.Warn(ctx, "LLM request failed",
				zap.String("shape", shape.Label),
				zap.Error(err),
			)
			lastStatus = 0
			lastBody = err.Error()
			continue
		}

		lastStatus = status
		lastBody = string(body)

		if status != http.StatusOK {
			ctxzap.Debug(ctx, "LLM shape rejected",
				zap.String("shape", shape.Label),
				zap.Int("status", status),
			)
			continue
		}

		answer, ok := c.acceptBody(body)
		if !ok {
			ctxzap.Debug(ctx, "LLM answer rejected",
				zap.String("shape", shape.Label),
			)
			continue
		}

		ctxzap.Debug(ctx, "LLM answer accepted",
			zap.String("shape", shape.Label),
			zap.String("family", string(c.family)),
		)
		return answer, nil
	}

	return "", &entity.ExhaustionError{
		Attempts:   len(c.shapes),
		LastStatus: lastStatus,
		LastBody:   truncate(lastBody, maxDiagnosticBody),
	}
}

// Complete runs a single instruction prompt with no conversation history.
// Unlike Acquire it never negotiates: the body is always the flat
// {"messages": [...]} form and the answer is read from
// choices[0].message.content. Batch callers depend on that fixed contract.
func (c *Connector) Complete(ctx context.Context, system, user string) (string, error) {
	if c.cfg.Endpoint == "" || c.cfg.APIKey == "" {
		return "", entity.ErrMissingLLMConfig
	}
	if strings.TrimSpace(user) == "" {
		return "", entity.ErrEmptyPrompt
	}

	messages := make([]entity.Message, 0, 2)
	if system != "" {
		messages = append(messages, entity.Message{Role: entity.RoleSystem, Content: system})
	}
	messages = append(messages, entity.Message{Role: entity.RoleUser, Content: user})

	payload, err := json.Marshal(map[string]any{"messages": messages})
	if err != nil {
		return "", err
	}

	status, body, err := c.client.DoBytes(ctx, http.MethodPost, "", "application/json", payload)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("completion request: status %d: %s", status, truncate(string(body), maxDiagnosticBody))
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("completion response is not JSON: %s", truncate(string(body), maxDiagnosticBody))
	}

	answer, ok := extractChoices(data)
	if !ok || strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("completion response has no choices content: %s", truncate(string(body), maxDiagnosticBody))
	}
	return answer, nil
}

// acceptBody decides whether a 200 response carries a real answer. JSON
// bodies go through the field precedence list; anything else is taken as
// raw text. Both paths reject stock placeholder answers.
func (c *Connector) acceptBody(body []byte) (string, bool) {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		text := strings.TrimSpace(string(body))
		if text == "" || c.detector.LooksLikeDefault(text) {
			return "", false
		}
		return text, true
	}

	answer, ok := extractText(data)
	if !ok {
		// No known field; surface the whole body so an operator can see
		// what the deployment actually speaks.
		raw, err := json.Marshal(data)
		if err != nil {
			return "", false
		}
		text := string(raw)
		if c.detector.LooksLikeDefault(text) {
			return "", false
		}
		return text, true
	}

	if strings.TrimSpace(answer) == "" || c.detector.LooksLikeDefault(answer) {
		return "", false
	}
	return answer, true
}

func (c *Connector) buildMessages(prompt, chatContext string) []entity.Message {
	system := c.sysPrefix
	if chatContext != "" {
		system += "\n\nConversation so far:\n" + chatContext
	}
	return []entity.Message{
		{Role: entity.RoleSystem, Content: system},
		{Role: entity.RoleUser, Content: prompt},
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
