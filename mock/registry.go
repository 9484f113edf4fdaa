package mock

import (
	"context"

	"github.com/fwojciec/kindlefeed"
)

var _ kindlefeed.Registry = (*Registry)(nil)

// Registry is a mock implementation of kindlefeed.Registry.
type Registry struct {
	FindPendingEntriesFn func(ctx context.Context) ([]*kindlefeed.Entry, error)
	MarkReadFn           func(ctx context.Context, id string) error
}

func (r *Registry) FindPendingEntries(ctx context.Context) ([]*kindlefeed.Entry, error) {
	return r.FindPendingEntriesFn(ctx)
}

func (r *Registry) MarkRead(ctx context.Context, id string) error {
	return r.MarkReadFn(ctx, id)
}
