package feed_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/kindlefeed"
	"github.com/fwojciec/kindlefeed/feed"
	"github.com/fwojciec/kindlefeed/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var syncNow = time.Date(2026, time.October, 6, 7, 30, 0, 42_000_000, time.UTC)

// syncFixture wires a Syncer to recording mocks.
type syncFixture struct {
	entries  []*kindlefeed.Entry
	fetched  []string
	sent     []*kindlefeed.Document
	marked   []string
	failURLs map[string]error
	sendErr  error
	markErr  map[string]error
}

func newSyncFixture(entries ...*kindlefeed.Entry) *syncFixture {
	return &syncFixture{
		entries:  entries,
		failURLs: map[string]error{},
		markErr:  map[string]error{},
	}
}

func (f *syncFixture) syncer() *feed.Syncer {
	return &feed.Syncer{
		Registry: &mock.Registry{
			FindPendingEntriesFn: func(_ context.Context) ([]*kindlefeed.Entry, error) {
				return f.entries, nil
			},
			MarkReadFn: func(_ context.Context, id string) error {
				if err := f.markErr[id]; err != nil {
					return err
				}
				f.marked = append(f.marked, id)
				return nil
			},
		},
		Articles: &mock.ArticleExtractor{
			ExtractArticleFn: func(_ context.Context, url string) (*kindlefeed.Article, error) {
				f.fetched = append(f.fetched, url)
				if err := f.failURLs[url]; err != nil {
					return nil, err
				}
				return &kindlefeed.Article{
					URL:     url,
					Title:   "Title of " + url[strings.LastIndex(url, "/")+1:],
					Content: "<p>content of " + url + "</p>",
				}, nil
			},
		},
		Mailer: &mock.Mailer{
			SendFn: func(_ context.Context, doc *kindlefeed.Document) error {
				if f.sendErr != nil {
					return f.sendErr
				}
				f.sent = append(f.sent, doc)
				return nil
			},
		},
		Skip: kindlefeed.SkipRule{Extensions: kindlefeed.DefaultSkipExtensions},
		Now:  func() time.Time { return syncNow },
	}
}

func TestSyncer_Sync(t *testing.T) {
	t.Parallel()

	t.Run("sends one document and marks only fetched entries", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(
			&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"},
			&kindlefeed.Entry{ID: "B", URL: "https://x.test/file.pdf"},
		)

		result, err := f.syncer().Sync(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://x.test/post1"}, f.fetched)
		require.Len(t, f.sent, 1)
		doc := f.sent[0]
		assert.Equal(t, 1, strings.Count(doc.HTML, `<h3><a href="#article-`))
		assert.Contains(t, doc.HTML, `<h3><a href="#article-0">Title of post1</a></h3>`)
		assert.Equal(t, "Today's Feed October 06, 2026 042", doc.Title)
		assert.Equal(t, []string{"A"}, f.marked)
		assert.True(t, result.Sent)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "B", result.Skipped[0].ID)
	})

	t.Run("marks skipped entries when enabled", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(
			&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"},
			&kindlefeed.Entry{ID: "B", URL: "https://x.test/file.pdf"},
		)
		s := f.syncer()
		s.MarkSkipped = true

		_, err := s.Sync(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, f.marked)
	})

	t.Run("aborts on the first article failure", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"})
		f.failURLs["https://x.test/post1"] = kindlefeed.Errorf(kindlefeed.EFETCH, "https://x.test/post1: HTTP 500")

		result, err := f.syncer().Sync(context.Background(), nil)

		require.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, kindlefeed.EFETCH, kindlefeed.ErrorCode(err))
		assert.Contains(t, err.Error(), "https://x.test/post1")
		assert.Empty(t, f.sent)
		assert.Empty(t, f.marked)
	})

	t.Run("wraps plain extraction errors with the entry URL", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"})
		f.failURLs["https://x.test/post1"] = errors.New("boom")

		_, err := f.syncer().Sync(context.Background(), nil)

		require.Error(t, err)
		assert.Equal(t, kindlefeed.EFETCH, kindlefeed.ErrorCode(err))
		assert.Contains(t, kindlefeed.ErrorMessage(err), "https://x.test/post1")
	})

	t.Run("stops processing after the first failure", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(
			&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"},
			&kindlefeed.Entry{ID: "B", URL: "https://x.test/post2"},
			&kindlefeed.Entry{ID: "C", URL: "https://x.test/post3"},
		)
		f.failURLs["https://x.test/post2"] = kindlefeed.Errorf(kindlefeed.EPARSE, "no content")

		_, err := f.syncer().Sync(context.Background(), nil)

		require.Error(t, err)
		assert.Equal(t, kindlefeed.EPARSE, kindlefeed.ErrorCode(err))
		assert.Equal(t, []string{"https://x.test/post1", "https://x.test/post2"}, f.fetched)
		assert.Empty(t, f.sent)
		assert.Empty(t, f.marked)
	})

	t.Run("isolates failures when enabled", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(
			&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"},
			&kindlefeed.Entry{ID: "B", URL: "https://x.test/post2"},
			&kindlefeed.Entry{ID: "C", URL: "https://x.test/post3"},
		)
		f.failURLs["https://x.test/post2"] = kindlefeed.Errorf(kindlefeed.EFETCH, "timeout")
		s := f.syncer()
		s.IsolateFailures = true

		result, err := s.Sync(context.Background(), nil)

		require.NoError(t, err)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "B", result.Failed[0].Entry.ID)
		assert.Equal(t, []string{"A", "C"}, f.marked)
		require.Len(t, f.sent, 1)
		assert.Contains(t, f.sent[0].HTML, "Title of post1")
		assert.Contains(t, f.sent[0].HTML, "Title of post3")
		assert.NotContains(t, f.sent[0].HTML, "Title of post2")
	})

	t.Run("rejects malformed entries before fetching", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(
			&kindlefeed.Entry{ID: "A", URL: ""},
			&kindlefeed.Entry{ID: "B", URL: "https://x.test/post2"},
		)

		result, err := f.syncer().Sync(context.Background(), nil)

		require.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, kindlefeed.EINVALID, kindlefeed.ErrorCode(err))
		assert.Empty(t, f.fetched)
		assert.Empty(t, f.sent)
	})

	t.Run("isolates malformed entries when enabled", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(
			&kindlefeed.Entry{URL: "https://x.test/post1"},
			&kindlefeed.Entry{ID: "B", URL: "https://x.test/post2"},
		)
		s := f.syncer()
		s.IsolateFailures = true

		result, err := s.Sync(context.Background(), nil)

		require.NoError(t, err)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, kindlefeed.EINVALID, kindlefeed.ErrorCode(result.Failed[0].Err))
		assert.Equal(t, []string{"https://x.test/post2"}, f.fetched)
		assert.Equal(t, []string{"B"}, f.marked)
	})

	t.Run("preserves registry order in the document", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(
			&kindlefeed.Entry{ID: "C", URL: "https://x.test/zeta"},
			&kindlefeed.Entry{ID: "A", URL: "https://x.test/alpha"},
		)

		result, err := f.syncer().Sync(context.Background(), nil)

		require.NoError(t, err)
		html := result.Document.HTML
		assert.Less(t, strings.Index(html, "Title of zeta"), strings.Index(html, "Title of alpha"))
		require.Len(t, result.Document.Articles, 2)
		assert.Equal(t, "C", result.Document.Articles[0].EntryID)
		assert.Equal(t, "A", result.Document.Articles[1].EntryID)
	})

	t.Run("ignores entries already read", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(
			&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1", Read: true},
			&kindlefeed.Entry{ID: "B", URL: "https://x.test/post2"},
		)

		result, err := f.syncer().Sync(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.AlreadyRead)
		assert.Equal(t, []string{"https://x.test/post2"}, f.fetched)
		assert.Equal(t, []string{"B"}, f.marked)
	})

	t.Run("sends nothing when no article was extracted", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(&kindlefeed.Entry{ID: "B", URL: "https://x.test/file.pdf"})

		result, err := f.syncer().Sync(context.Background(), nil)

		require.NoError(t, err)
		assert.Nil(t, result.Document)
		assert.False(t, result.Sent)
		assert.Empty(t, f.sent)
		assert.Empty(t, f.marked)
	})

	t.Run("sends nothing for an empty registry", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture()

		result, err := f.syncer().Sync(context.Background(), nil)

		require.NoError(t, err)
		assert.False(t, result.Sent)
		assert.Empty(t, f.sent)
	})

	t.Run("returns registry error when listing fails", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture()
		s := f.syncer()
		s.Registry = &mock.Registry{
			FindPendingEntriesFn: func(_ context.Context) ([]*kindlefeed.Entry, error) {
				return nil, errors.New("401 unauthorized")
			},
		}

		_, err := s.Sync(context.Background(), nil)

		require.Error(t, err)
		assert.Equal(t, kindlefeed.EREGISTRY, kindlefeed.ErrorCode(err))
		assert.Empty(t, f.fetched)
	})

	t.Run("keeps code of application errors from the registry", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture()
		s := f.syncer()
		s.Registry = &mock.Registry{
			FindPendingEntriesFn: func(_ context.Context) ([]*kindlefeed.Entry, error) {
				return nil, kindlefeed.Errorf(kindlefeed.EREGISTRY, "database not found")
			},
		}

		_, err := s.Sync(context.Background(), nil)

		require.Error(t, err)
		assert.Equal(t, kindlefeed.EREGISTRY, kindlefeed.ErrorCode(err))
		assert.Equal(t, "database not found", kindlefeed.ErrorMessage(err))
	})

	t.Run("marks nothing when delivery fails", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"})
		f.sendErr = errors.New("535 authentication failed")

		result, err := f.syncer().Sync(context.Background(), nil)

		require.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, kindlefeed.EDELIVERY, kindlefeed.ErrorCode(err))
		assert.Contains(t, err.Error(), "535 authentication failed")
		assert.Empty(t, f.marked)
	})

	t.Run("reports mark failures without failing the run", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(
			&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"},
			&kindlefeed.Entry{ID: "B", URL: "https://x.test/post2"},
		)
		f.markErr["A"] = errors.New("conflict")

		result, err := f.syncer().Sync(context.Background(), nil)

		require.NoError(t, err)
		assert.True(t, result.Sent)
		require.Len(t, result.MarkFailures, 1)
		assert.Equal(t, "A", result.MarkFailures[0].Entry.ID)
		assert.Equal(t, kindlefeed.EREGISTRY, kindlefeed.ErrorCode(result.MarkFailures[0].Err))
		require.Len(t, result.Marked, 1)
		assert.Equal(t, "B", result.Marked[0].ID)
	})

	t.Run("dry run assembles without sending or marking", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"})
		s := f.syncer()
		s.DryRun = true

		result, err := s.Sync(context.Background(), nil)

		require.NoError(t, err)
		require.NotNil(t, result.Document)
		assert.False(t, result.Sent)
		assert.Empty(t, f.sent)
		assert.Empty(t, f.marked)
	})

	t.Run("records delivery history after sending", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(
			&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"},
			&kindlefeed.Entry{ID: "B", URL: "https://x.test/post2"},
		)
		var recorded *kindlefeed.Delivery
		s := f.syncer()
		s.History = &mock.DeliveryService{
			CreateDeliveryFn: func(_ context.Context, d *kindlefeed.Delivery) error {
				recorded = d
				return nil
			},
		}

		result, err := s.Sync(context.Background(), nil)

		require.NoError(t, err)
		require.NotNil(t, recorded)
		assert.Equal(t, result.Document.Title, recorded.Title)
		assert.Equal(t, len(result.Document.HTML), recorded.Bytes)
		assert.Equal(t, syncNow, recorded.SentAt)
		require.Len(t, recorded.Articles, 2)
		assert.Equal(t, "A", recorded.Articles[0].EntryID)
		assert.Equal(t, 0, recorded.Articles[0].Position)
		assert.Equal(t, "B", recorded.Articles[1].EntryID)
		assert.Equal(t, 1, recorded.Articles[1].Position)
		assert.Len(t, recorded.Articles[0].ContentHash, 16)
	})

	t.Run("turns history and artifact errors into warnings", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"})
		s := f.syncer()
		s.History = &mock.DeliveryService{
			CreateDeliveryFn: func(_ context.Context, d *kindlefeed.Delivery) error {
				return errors.New("disk full")
			},
		}
		s.Artifacts = &mock.ArtifactWriter{
			WriteArticleFn: func(_ context.Context, a *kindlefeed.Article) error {
				return errors.New("permission denied")
			},
			WriteDocumentFn: func(_ context.Context, doc *kindlefeed.Document) error {
				return nil
			},
		}
		var warnings int
		progress := func(e feed.ProgressEvent) {
			if e.Type == feed.ProgressWarning {
				warnings++
			}
		}

		result, err := s.Sync(context.Background(), progress)

		require.NoError(t, err)
		assert.True(t, result.Sent)
		assert.Len(t, result.Warnings, 2)
		assert.Equal(t, 2, warnings)
		assert.Equal(t, []string{"A"}, f.marked)
	})

	t.Run("writes artifacts for each article and the document", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(
			&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"},
			&kindlefeed.Entry{ID: "B", URL: "https://x.test/post2"},
		)
		var articles []string
		var docs []string
		s := f.syncer()
		s.Artifacts = &mock.ArtifactWriter{
			WriteArticleFn: func(_ context.Context, a *kindlefeed.Article) error {
				articles = append(articles, a.EntryID)
				return nil
			},
			WriteDocumentFn: func(_ context.Context, doc *kindlefeed.Document) error {
				docs = append(docs, doc.Title)
				return nil
			},
		}

		_, err := s.Sync(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, articles)
		assert.Equal(t, []string{"Today's Feed October 06, 2026 042"}, docs)
	})

	t.Run("reports progress in order", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(
			&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"},
			&kindlefeed.Entry{ID: "B", URL: "https://x.test/file.pdf"},
		)
		var types []feed.ProgressType
		progress := func(e feed.ProgressEvent) {
			types = append(types, e.Type)
		}

		_, err := f.syncer().Sync(context.Background(), progress)

		require.NoError(t, err)
		assert.Equal(t, []feed.ProgressType{
			feed.ProgressStarted,
			feed.ProgressExtracted,
			feed.ProgressSkipped,
			feed.ProgressSent,
			feed.ProgressMarked,
		}, types)
	})

	t.Run("returns context error when canceled before extraction", func(t *testing.T) {
		t.Parallel()

		f := newSyncFixture(&kindlefeed.Entry{ID: "A", URL: "https://x.test/post1"})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.syncer().Sync(ctx, nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, f.fetched)
		assert.Empty(t, f.sent)
	})
}
