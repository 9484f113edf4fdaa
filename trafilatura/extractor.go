// Package trafilatura provides an alternative content extractor backed by
// go-trafilatura, which falls back to readability and dom-distiller when its
// own heuristics find too little text.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/kindlefeed"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements kindlefeed.Extractor at compile time.
var _ kindlefeed.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*kindlefeed.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		IncludeImages:  true,
		IncludeLinks:   true,
	}
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, kindlefeed.Errorf(kindlefeed.EINVALID, "invalid page URL %q: %v", pageURL, err)
		}
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "trafilatura: %v", err)
	}
	if result.ContentNode == nil {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "no readable content")
	}

	// ContentNode is a wrapper element; only its children are content.
	contentHTML, err := renderChildren(result.ContentNode)
	if err != nil {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "render content: %v", err)
	}
	if strings.TrimSpace(contentHTML) == "" {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "no readable content")
	}

	return &kindlefeed.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

func renderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
