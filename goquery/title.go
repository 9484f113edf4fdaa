// Package goquery resolves article titles from HTML with CSS selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/kindlefeed"
)

// DefaultTitleSelectors are tried in order before the document title.
// The first matches WordPress-style blog posts, the second the post header
// class used by Substack-like publishing platforms.
var DefaultTitleSelectors = []string{
	"h1.entry-title",
	`h1[class*="post__title__title"]`,
}

// Ensure TitleResolver implements kindlefeed.TitleResolver at compile time.
var _ kindlefeed.TitleResolver = (*TitleResolver)(nil)

// TitleResolver finds an article title through a fallback chain: each
// selector in order, then the document <title>, then "".
type TitleResolver struct {
	selectors []string
}

// NewTitleResolver creates a TitleResolver. With no selectors it uses
// DefaultTitleSelectors.
func NewTitleResolver(selectors ...string) *TitleResolver {
	if len(selectors) == 0 {
		selectors = DefaultTitleSelectors
	}
	return &TitleResolver{selectors: selectors}
}

// ResolveTitle parses html and returns the first non-blank title in the chain.
func (r *TitleResolver) ResolveTitle(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", kindlefeed.Errorf(kindlefeed.EPARSE, "failed to parse HTML: %v", err)
	}
	return r.ResolveDocumentTitle(doc), nil
}

// ResolveDocumentTitle runs the fallback chain over a parsed document.
func (r *TitleResolver) ResolveDocumentTitle(doc *goquery.Document) string {
	for _, selector := range r.selectors {
		if title := firstText(doc.Find(selector)); title != "" {
			return title
		}
	}

	// Icons embed <title> elements inside <svg>; those are not page titles.
	pageTitles := doc.Find("title").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered("svg").Length() == 0
	})
	return firstText(pageTitles)
}

// firstText returns the trimmed text of the first element in sel with
// non-blank text.
func firstText(sel *goquery.Selection) string {
	var text string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text = strings.TrimSpace(s.Text())
		return text == ""
	})
	return text
}
