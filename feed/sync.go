package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/kindlefeed"
)

// Syncer runs one sync: list entries, extract each article in order,
// assemble, deliver, then mark the delivered entries read.
type Syncer struct {
	Registry kindlefeed.Registry
	Articles kindlefeed.ArticleExtractor
	Mailer   kindlefeed.Mailer

	// Artifacts, if set, receives local copies of articles and the document.
	Artifacts kindlefeed.ArtifactWriter

	// History, if set, records each sent document.
	History kindlefeed.DeliveryService

	// Skip selects entries that are never fetched.
	Skip kindlefeed.SkipRule

	// IsolateFailures keeps going when one article fails. Otherwise the
	// first failure aborts the run before anything is sent.
	IsolateFailures bool

	// MarkSkipped also marks skipped entries read after a successful send.
	MarkSkipped bool

	// DryRun assembles the document without sending it or marking entries.
	DryRun bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Result holds the outcome of a sync.
type Result struct {
	// Document is the assembled document, nil if there was nothing to send.
	Document *kindlefeed.Document

	// Sent reports whether the document was delivered.
	Sent bool

	Included    []*kindlefeed.Entry
	Skipped     []*kindlefeed.Entry
	Failed      []Failure
	AlreadyRead int

	// Marked lists entries successfully marked read.
	Marked       []*kindlefeed.Entry
	MarkFailures []Failure

	// Warnings collects non-fatal errors from artifacts and history.
	Warnings []error
}

// Failure pairs an entry with the error it produced.
type Failure struct {
	Entry *kindlefeed.Entry
	Err   error
}

// ProgressEvent reports progress during a sync.
type ProgressEvent struct {
	Type  ProgressType
	Entry *kindlefeed.Entry
	Total int
	Error error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressExtracted
	ProgressSkipped
	ProgressFailed
	ProgressSent
	ProgressMarked
	ProgressMarkFailed
	ProgressWarning
)

// ProgressFunc is a callback for reporting sync progress.
type ProgressFunc func(event ProgressEvent)

// Sync runs the pipeline once.
//
// Registry query failures return EREGISTRY and delivery failures EDELIVERY.
// Neither marks any entry. Malformed entries (EINVALID) and article
// failures (EFETCH, EPARSE) abort unless IsolateFailures is set. Failures to mark entries after a
// successful send are reported in the result, never as an error.
func (s *Syncer) Sync(ctx context.Context, progress ProgressFunc) (*Result, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	entries, err := s.Registry.FindPendingEntries(ctx)
	if err != nil {
		return nil, stageError(kindlefeed.EREGISTRY, err, "list entries")
	}

	progress(ProgressEvent{Type: ProgressStarted, Total: len(entries)})

	result := &Result{}
	var articles []*kindlefeed.Article

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := entry.Validate(); err != nil {
			progress(ProgressEvent{Type: ProgressFailed, Entry: entry, Error: err})
			if !s.IsolateFailures {
				return nil, err
			}
			result.Failed = append(result.Failed, Failure{Entry: entry, Err: err})
			continue
		}

		if entry.Read {
			result.AlreadyRead++
			continue
		}

		if s.Skip.Skip(entry.URL) {
			result.Skipped = append(result.Skipped, entry)
			progress(ProgressEvent{Type: ProgressSkipped, Entry: entry})
			continue
		}

		article, err := s.Articles.ExtractArticle(ctx, entry.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if kindlefeed.ErrorCode(err) == kindlefeed.EINTERNAL {
				err = kindlefeed.Errorf(kindlefeed.EFETCH, "%s: %v", entry.URL, err)
			}
			progress(ProgressEvent{Type: ProgressFailed, Entry: entry, Error: err})
			if !s.IsolateFailures {
				return nil, err
			}
			result.Failed = append(result.Failed, Failure{Entry: entry, Err: err})
			continue
		}
		article.EntryID = entry.ID

		articles = append(articles, article)
		result.Included = append(result.Included, entry)
		progress(ProgressEvent{Type: ProgressExtracted, Entry: entry})

		if s.Artifacts != nil {
			if err := s.Artifacts.WriteArticle(ctx, article); err != nil {
				s.warn(result, progress, fmt.Errorf("write article %s: %w", entry.URL, err))
			}
		}
	}

	if len(articles) == 0 {
		return result, nil
	}

	doc := kindlefeed.AssembleDocument(articles, now())
	result.Document = doc

	if s.Artifacts != nil {
		if err := s.Artifacts.WriteDocument(ctx, doc); err != nil {
			s.warn(result, progress, fmt.Errorf("write document: %w", err))
		}
	}

	if s.DryRun {
		return result, nil
	}

	if err := s.Mailer.Send(ctx, doc); err != nil {
		return nil, stageError(kindlefeed.EDELIVERY, err, "send %q", doc.Title)
	}
	result.Sent = true
	progress(ProgressEvent{Type: ProgressSent, Total: len(articles)})

	// The document is out; finish bookkeeping even if ctx is canceled now.
	ctx = context.WithoutCancel(ctx)

	if s.History != nil {
		if err := s.History.CreateDelivery(ctx, newDelivery(doc, now())); err != nil {
			s.warn(result, progress, fmt.Errorf("record delivery: %w", err))
		}
	}

	toMark := result.Included
	if s.MarkSkipped {
		toMark = append(append([]*kindlefeed.Entry(nil), result.Included...), result.Skipped...)
	}
	for _, entry := range toMark {
		if err := s.Registry.MarkRead(ctx, entry.ID); err != nil {
			err = stageError(kindlefeed.EREGISTRY, err, "mark %s read", entry.ID)
			result.MarkFailures = append(result.MarkFailures, Failure{Entry: entry, Err: err})
			progress(ProgressEvent{Type: ProgressMarkFailed, Entry: entry, Error: err})
			continue
		}
		result.Marked = append(result.Marked, entry)
		progress(ProgressEvent{Type: ProgressMarked, Entry: entry})
	}

	return result, nil
}

func (s *Syncer) warn(result *Result, progress ProgressFunc, err error) {
	result.Warnings = append(result.Warnings, err)
	progress(ProgressEvent{Type: ProgressWarning, Error: err})
}

func newDelivery(doc *kindlefeed.Document, sentAt time.Time) *kindlefeed.Delivery {
	d := &kindlefeed.Delivery{
		Title:  doc.Title,
		Bytes:  len(doc.HTML),
		SentAt: sentAt,
	}
	for i, a := range doc.Articles {
		d.Articles = append(d.Articles, &kindlefeed.DeliveredArticle{
			EntryID:     a.EntryID,
			URL:         a.URL,
			Title:       a.Title,
			ContentHash: ComputeHash(a.Content),
			Position:    i,
		})
	}
	return d
}

// stageError keeps the code of application errors and tags everything else
// with the code of the stage that failed.
func stageError(code string, err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if kindlefeed.ErrorCode(err) != kindlefeed.EINTERNAL {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return kindlefeed.Errorf(code, "%s: %v", msg, err)
}
