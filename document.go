package kindlefeed

import (
	"context"
	"time"
)

// Document is the assembled reading document sent in one run.
type Document struct {
	// Title carries a human-readable date and a discriminator. It is also
	// the mail subject and the attachment name without extension.
	Title string `json:"title"`

	// HTML is the complete document: index followed by article bodies.
	HTML string `json:"html"`

	CreatedAt time.Time  `json:"createdAt"`
	Articles  []*Article `json:"articles"`
}

// AttachmentName returns the file name the document is delivered under.
func (d *Document) AttachmentName() string {
	return d.Title + ".html"
}

// Mailer delivers assembled documents.
type Mailer interface {
	// Send mails doc to the configured destination.
	// Returns EDELIVERY if the session or the send fails.
	Send(ctx context.Context, doc *Document) error
}

// ArtifactWriter persists local copies of run output for inspection.
type ArtifactWriter interface {
	WriteArticle(ctx context.Context, article *Article) error
	WriteDocument(ctx context.Context, doc *Document) error
}

// Delivery records one sent document.
type Delivery struct {
	ID       string              `json:"id"`
	Title    string              `json:"title"`
	Bytes    int                 `json:"bytes"`
	SentAt   time.Time           `json:"sentAt"`
	Articles []*DeliveredArticle `json:"articles"`
}

// DeliveredArticle records one article included in a delivery.
type DeliveredArticle struct {
	EntryID     string `json:"entryId"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	ContentHash string `json:"contentHash"`
	Position    int    `json:"position"`
}

// Validate returns an error if the delivery contains invalid fields.
func (d *Delivery) Validate() error {
	if d.Title == "" {
		return Errorf(EINVALID, "delivery title required")
	}
	for _, a := range d.Articles {
		if a.URL == "" {
			return Errorf(EINVALID, "delivered article URL required")
		}
	}
	return nil
}

// DeliveryService represents a service for the local delivery history.
type DeliveryService interface {
	// CreateDelivery stores a delivery with its articles.
	CreateDelivery(ctx context.Context, d *Delivery) error

	// FindDeliveryByID retrieves a delivery by ID.
	// Returns ENOTFOUND if delivery does not exist.
	FindDeliveryByID(ctx context.Context, id string) (*Delivery, error)

	// FindDeliveries retrieves deliveries matching the filter, newest first.
	FindDeliveries(ctx context.Context, filter DeliveryFilter) ([]*Delivery, error)
}

// DeliveryFilter represents a filter for FindDeliveries.
type DeliveryFilter struct {
	URL *string `json:"url"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
