package audit

import "context"

type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}
