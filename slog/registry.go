package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/kindlefeed"
)

// Ensure LoggingRegistry implements kindlefeed.Registry.
var _ kindlefeed.Registry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps a Registry with logging of queries and updates.
type LoggingRegistry struct {
	next   kindlefeed.Registry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next kindlefeed.Registry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// FindPendingEntries logs how many entries the registry returned.
func (r *LoggingRegistry) FindPendingEntries(ctx context.Context) (entries []*kindlefeed.Entry, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"count", len(entries),
			"duration", time.Since(begin),
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		r.logger.Log(ctx, levelFor(err), "find entries", attrs...)
	}(time.Now())

	return r.next.FindPendingEntries(ctx)
}

// MarkRead logs each entry marked read.
func (r *LoggingRegistry) MarkRead(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"id", id,
			"duration", time.Since(begin),
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		r.logger.Log(ctx, levelFor(err), "mark read", attrs...)
	}(time.Now())

	return r.next.MarkRead(ctx, id)
}
