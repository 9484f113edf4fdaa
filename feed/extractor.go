// Package feed turns pending registry entries into one delivered document.
// It coordinates fetching, extraction, assembly, delivery and marking
// entries read.
package feed

import (
	"context"
	"net/url"
	"time"

	"github.com/fwojciec/kindlefeed"
)

// Ensure Extractor implements kindlefeed.ArticleExtractor at compile time.
var _ kindlefeed.ArticleExtractor = (*Extractor)(nil)

// Extractor fetches an entry URL and extracts its article.
type Extractor struct {
	Fetcher kindlefeed.Fetcher
	Content kindlefeed.Extractor
	Titles  kindlefeed.TitleResolver

	// RateLimiter, if set, paces requests per host.
	RateLimiter kindlefeed.DomainLimiter

	// RetryDelays lists the waits between fetch attempts. Empty means a
	// single attempt.
	RetryDelays []time.Duration

	// Logf, if set, is told about retries.
	Logf LogFunc
}

// ExtractArticle fetches rawURL, resolves its title and extracts the main
// content. Transport failures return EFETCH and extraction failures EPARSE;
// both messages name the URL.
func (e *Extractor) ExtractArticle(ctx context.Context, rawURL string) (*kindlefeed.Article, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, kindlefeed.Errorf(kindlefeed.EFETCH, "%s: invalid URL", rawURL)
	}

	if e.RateLimiter != nil {
		if err := e.RateLimiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	html, err := FetchWithRetryDelays(ctx, rawURL, e.Fetcher.Fetch, e.Logf, e.RetryDelays)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, kindlefeed.Errorf(kindlefeed.EFETCH, "%s: %s", rawURL, describe(err))
	}

	// Title resolution reads the raw page; extraction may rewrite the tree.
	title, err := e.Titles.ResolveTitle(html)
	if err != nil {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "%s: %s", rawURL, describe(err))
	}

	result, err := e.Content.Extract(html, rawURL)
	if err != nil {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "%s: %s", rawURL, describe(err))
	}

	return &kindlefeed.Article{
		URL:     rawURL,
		Title:   title,
		Content: result.ContentHTML,
	}, nil
}

// describe returns the message of an application error or the text of any
// other error.
func describe(err error) string {
	if kindlefeed.ErrorCode(err) == kindlefeed.EINTERNAL {
		return err.Error()
	}
	return kindlefeed.ErrorMessage(err)
}
