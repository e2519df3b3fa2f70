package rewriter

import (
	"context"
)

const (
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
)

// Model submits one rewrite request to a language model and returns the raw
// response text.
type Model interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}
