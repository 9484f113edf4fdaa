package mock

import (
	"context"

	"github.com/fwojciec/kindlefeed"
)

var _ kindlefeed.Mailer = (*Mailer)(nil)

// Mailer is a mock implementation of kindlefeed.Mailer.
type Mailer struct {
	SendFn func(ctx context.Context, doc *kindlefeed.Document) error
}

func (m *Mailer) Send(ctx context.Context, doc *kindlefeed.Document) error {
	return m.SendFn(ctx, doc)
}

var _ kindlefeed.ArtifactWriter = (*ArtifactWriter)(nil)

// ArtifactWriter is a mock implementation of kindlefeed.ArtifactWriter.
type ArtifactWriter struct {
	WriteArticleFn  func(ctx context.Context, article *kindlefeed.Article) error
	WriteDocumentFn func(ctx context.Context, doc *kindlefeed.Document) error
}

func (w *ArtifactWriter) WriteArticle(ctx context.Context, article *kindlefeed.Article) error {
	return w.WriteArticleFn(ctx, article)
}

func (w *ArtifactWriter) WriteDocument(ctx context.Context, doc *kindlefeed.Document) error {
	return w.WriteDocumentFn(ctx, doc)
}

var _ kindlefeed.DeliveryService = (*DeliveryService)(nil)

// DeliveryService is a mock implementation of kindlefeed.DeliveryService.
type DeliveryService struct {
	CreateDeliveryFn   func(ctx context.Context, d *kindlefeed.Delivery) error
	FindDeliveryByIDFn func(ctx context.Context, id string) (*kindlefeed.Delivery, error)
	FindDeliveriesFn   func(ctx context.Context, filter kindlefeed.DeliveryFilter) ([]*kindlefeed.Delivery, error)
}

func (s *DeliveryService) CreateDelivery(ctx context.Context, d *kindlefeed.Delivery) error {
	return s.CreateDeliveryFn(ctx, d)
}

func (s *DeliveryService) FindDeliveryByID(ctx context.Context, id string) (*kindlefeed.Delivery, error) {
	return s.FindDeliveryByIDFn(ctx, id)
}

func (s *DeliveryService) FindDeliveries(ctx context.Context, filter kindlefeed.DeliveryFilter) ([]*kindlefeed.Delivery, error) {
	return s.FindDeliveriesFn(ctx, filter)
}
