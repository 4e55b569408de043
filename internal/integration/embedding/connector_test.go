package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rsmnext/assistant-backend/internal/config"
	"github.com/rsmnext/assistant-backend/internal/entity"
)

func testConnector(endpoint string) *Connector {
	return NewConnector(config.EmbeddingConfig{
		Endpoint: endpoint,
		APIKey:   "test-key",
		Timeout:  5 * time.Second,
	}, zap.NewNop())
}

func TestEmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Input, 2)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2}, "index": 0},
				{"embedding": []float32{0.3, 0.4}, "index": 1},
			},
		})
	}))
	defer srv.Close()

	vectors, err := testConnector(srv.URL).EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.3, 0.4}, vectors[1])
}

func TestEmbedBatchCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"embedding":[0.1],"index":0}]}`))
	}))
	defer srv.Close()

	_, err := testConnector(srv.URL).EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 inputs")
}

func TestEmbedBatchValidation(t *testing.T) {
	c := NewConnector(config.EmbeddingConfig{}, zap.NewNop())
	_, err := c.EmbedBatch(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, entity.ErrMissingLLMConfig)

	_, err = testConnector("http://localhost:0").EmbedBatch(context.Background(), nil)
	assert.ErrorIs(t, err, entity.ErrEmptyCorpus)
}

func TestEmbedBatchRejectsEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"embedding":[],"index":0}]}`))
	}))
	defer srv.Close()

	_, err := testConnector(srv.URL).Embed(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
