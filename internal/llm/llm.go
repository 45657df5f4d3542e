package llm

import (
	"context"
	"errors"
)

var ErrEmptyCompletion = errors.New("llm: empty completion from model")

// Completer is the single text-completion capability the core consumes.
// Implementations wrap a concrete model API; failures are returned as-is and
// the caller decides whether they are fatal.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}
