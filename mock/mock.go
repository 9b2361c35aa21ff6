// Package mock provides test doubles for gemchat interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/gemchat"
)

// Interface compliance checks.
var (
	_ gemchat.Completer   = (*Completer)(nil)
	_ gemchat.ModelLister = (*ModelLister)(nil)
	_ gemchat.Client      = (*Client)(nil)
)

// Completer is a test double for gemchat.Completer.
// Set CompleteFn before calling Complete.
type Completer struct {
	CompleteFn func(ctx context.Context, req gemchat.Request) (string, error)
}

// Complete delegates to CompleteFn.
func (c *Completer) Complete(ctx context.Context, req gemchat.Request) (string, error) {
	return c.CompleteFn(ctx, req)
}

// ModelLister is a test double for gemchat.ModelLister.
type ModelLister struct {
	ListModelsFn func(ctx context.Context) ([]gemchat.ModelInfo, error)
}

// ListModels delegates to ListModelsFn.
func (l *ModelLister) ListModels(ctx context.Context) ([]gemchat.ModelInfo, error) {
	return l.ListModelsFn(ctx)
}

// Client combines Completer and ModelLister.
type Client struct {
	Completer
	ModelLister
}
