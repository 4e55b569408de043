package template

import "context"

type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
