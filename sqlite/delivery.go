package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/kindlefeed"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ kindlefeed.DeliveryService = (*DeliveryService)(nil)

// DeliveryService implements kindlefeed.DeliveryService using SQLite.
type DeliveryService struct {
	db *DB
}

// NewDeliveryService creates a new DeliveryService.
func NewDeliveryService(db *DB) *DeliveryService {
	return &DeliveryService{db: db}
}

// CreateDelivery stores d and its articles in one transaction. It assigns
// the ID and, when unset, the send time.
func (s *DeliveryService) CreateDelivery(ctx context.Context, d *kindlefeed.Delivery) error {
	if err := d.Validate(); err != nil {
		return err
	}

	d.ID = uuid.New().String()
	if d.SentAt.IsZero() {
		d.SentAt = time.Now()
	}
	d.SentAt = d.SentAt.UTC().Truncate(time.Second)
	sentAt := formatTime(d.SentAt)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO deliveries (id, title, bytes, sent_at)
		VALUES (?, ?, ?, ?)
	`, d.ID, d.Title, d.Bytes, sentAt); err != nil {
		return err
	}

	for i, a := range d.Articles {
		a.Position = i
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO delivered_articles (delivery_id, position, entry_id, url, title, content_hash)
			VALUES (?, ?, ?, ?, ?, ?)
		`, d.ID, a.Position, a.EntryID, a.URL, a.Title, a.ContentHash); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindDeliveryByID retrieves a delivery and its articles by ID.
func (s *DeliveryService) FindDeliveryByID(ctx context.Context, id string) (*kindlefeed.Delivery, error) {
	var d kindlefeed.Delivery
	var sentAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, bytes, sent_at
		FROM deliveries
		WHERE id = ?
	`, id).Scan(&d.ID, &d.Title, &d.Bytes, &sentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kindlefeed.Errorf(kindlefeed.ENOTFOUND, "delivery %s not found", id)
	}
	if err != nil {
		return nil, err
	}

	if d.SentAt, err = parseTime(sentAt, "sent_at"); err != nil {
		return nil, err
	}
	if d.Articles, err = s.findArticles(ctx, d.ID); err != nil {
		return nil, err
	}
	return &d, nil
}

// FindDeliveries retrieves deliveries matching the filter, newest first.
func (s *DeliveryService) FindDeliveries(ctx context.Context, filter kindlefeed.DeliveryFilter) ([]*kindlefeed.Delivery, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, title, bytes, sent_at FROM deliveries WHERE 1=1")

	if filter.URL != nil {
		query.WriteString(" AND id IN (SELECT delivery_id FROM delivered_articles WHERE url = ?)")
		args = append(args, *filter.URL)
	}

	query.WriteString(" ORDER BY sent_at DESC, rowid DESC")
	writePagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []*kindlefeed.Delivery
	for rows.Next() {
		var d kindlefeed.Delivery
		var sentAt string
		if err := rows.Scan(&d.ID, &d.Title, &d.Bytes, &sentAt); err != nil {
			return nil, err
		}
		if d.SentAt, err = parseTime(sentAt, "sent_at"); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, d := range deliveries {
		if d.Articles, err = s.findArticles(ctx, d.ID); err != nil {
			return nil, err
		}
	}
	return deliveries, nil
}

func (s *DeliveryService) findArticles(ctx context.Context, deliveryID string) ([]*kindlefeed.DeliveredArticle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, entry_id, url, title, content_hash
		FROM delivered_articles
		WHERE delivery_id = ?
		ORDER BY position ASC
	`, deliveryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*kindlefeed.DeliveredArticle
	for rows.Next() {
		var a kindlefeed.DeliveredArticle
		if err := rows.Scan(&a.Position, &a.EntryID, &a.URL, &a.Title, &a.ContentHash); err != nil {
			return nil, err
		}
		articles = append(articles, &a)
	}
	return articles, rows.Err()
}
