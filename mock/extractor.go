package mock

import (
	"context"

	"github.com/fwojciec/kindlefeed"
)

var _ kindlefeed.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of kindlefeed.Extractor.
type Extractor struct {
	ExtractFn func(html, pageURL string) (*kindlefeed.ExtractResult, error)
}

func (e *Extractor) Extract(html, pageURL string) (*kindlefeed.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}

var _ kindlefeed.TitleResolver = (*TitleResolver)(nil)

// TitleResolver is a mock implementation of kindlefeed.TitleResolver.
type TitleResolver struct {
	ResolveTitleFn func(html string) (string, error)
}

func (r *TitleResolver) ResolveTitle(html string) (string, error) {
	return r.ResolveTitleFn(html)
}

var _ kindlefeed.ArticleExtractor = (*ArticleExtractor)(nil)

// ArticleExtractor is a mock implementation of kindlefeed.ArticleExtractor.
type ArticleExtractor struct {
	ExtractArticleFn func(ctx context.Context, url string) (*kindlefeed.Article, error)
}

func (e *ArticleExtractor) ExtractArticle(ctx context.Context, url string) (*kindlefeed.Article, error) {
	return e.ExtractArticleFn(ctx, url)
}

var _ kindlefeed.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of kindlefeed.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
