package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/kindlefeed"
)

// Ensure LoggingMailer implements kindlefeed.Mailer.
var _ kindlefeed.Mailer = (*LoggingMailer)(nil)

// LoggingMailer wraps a Mailer with logging of each send.
type LoggingMailer struct {
	next   kindlefeed.Mailer
	logger *slog.Logger
}

// NewLoggingMailer creates a new LoggingMailer.
func NewLoggingMailer(next kindlefeed.Mailer, logger *slog.Logger) *LoggingMailer {
	return &LoggingMailer{next: next, logger: logger}
}

// Send logs the title, size and article count of the sent document.
func (m *LoggingMailer) Send(ctx context.Context, doc *kindlefeed.Document) (err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"title", doc.Title,
			"articles", len(doc.Articles),
			"bytes", len(doc.HTML),
			"duration", time.Since(begin),
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		m.logger.Log(ctx, levelFor(err), "send", attrs...)
	}(time.Now())

	return m.next.Send(ctx, doc)
}
