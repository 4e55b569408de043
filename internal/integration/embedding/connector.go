package embedding

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/config"
	"github.com/rsmnext/assistant-backend/internal/entity"
	pkghttp "github.com/rsmnext/assistant-backend/pkg/http"
)

// Connector calls the hosted embedding deployment. Unlike the chat
// endpoint there is no shape negotiation: the request and response formats
// are fixed, and any failure is a hard error.
type Connector struct {
	cfg    config.EmbeddingConfig
	client *pkghttp.Connector
}

func NewConnector(cfg config.EmbeddingConfig, logger *zap.Logger) *Connector {
	client := pkghttp.NewConnector(
		&pkghttp.ConnectorConfig{
			BaseURL: cfg.Endpoint,
			Logger:  logger,
		},
		pkghttp.WithRequestTimeout(cfg.Timeout),
		pkghttp.WithRequestLogging(),
		pkghttp.WithAPIKeyHeader(cfg.APIKey),
	)

	return &Connector{
		cfg:    cfg,
		client: client,
	}
}

type embedRequest struct {
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// EmbedBatch embeds every text in one call and returns the vectors in
// input order.
func (c *Connector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if c.cfg.Endpoint == "" || c.cfg.APIKey == "" {
		return nil, entity.ErrMissingLLMConfig
	}
	if len(texts) == 0 {
		return nil, entity.ErrEmptyCorpus
	}

	var resp embedResponse
	err := c.client.DoRequest(ctx, http.MethodPost, "", &embedRequest{Input: texts}, &resp)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response holds %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		if len(item.Embedding) == 0 {
			return nil, fmt.Errorf("embedding %d is empty", i)
		}
		vectors[i] = item.Embedding
	}

	return vectors, nil
}

// Embed embeds a single text.
func (c *Connector) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
