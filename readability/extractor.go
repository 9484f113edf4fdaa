// Package readability extracts the main content of article pages with
// go-readability's text and link density scoring.
package readability

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/kindlefeed"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Ensure Extractor implements kindlefeed.Extractor at compile time.
var _ kindlefeed.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses rawHTML and returns its main content.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*kindlefeed.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "empty HTML input")
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "parse HTML: %v", err)
	}

	var u *url.URL
	if pageURL != "" {
		if u, err = url.Parse(pageURL); err != nil {
			return nil, kindlefeed.Errorf(kindlefeed.EINVALID, "invalid page URL %q: %v", pageURL, err)
		}
	}

	return ExtractNode(doc, u)
}

// ExtractNode runs readability over a parsed document. The document is
// modified in place. pageURL may be nil.
func ExtractNode(doc *html.Node, pageURL *url.URL) (*kindlefeed.ExtractResult, error) {
	article, err := readability.FromDocument(doc, pageURL)
	if err != nil {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "readability: %v", err)
	}
	if article.Node == nil {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "no readable content")
	}

	content, err := renderChildren(unwrap(article.Node))
	if err != nil {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "render content: %v", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, kindlefeed.Errorf(kindlefeed.EPARSE, "no readable content")
	}

	return &kindlefeed.ExtractResult{
		Title:       article.Title,
		ContentHTML: content,
	}, nil
}

// unwrap descends into the page container readability puts around the
// content, when the container is the only element child.
func unwrap(n *html.Node) *html.Node {
	if child := soleElementChild(n); child != nil && child.DataAtom == atom.Div {
		return child
	}
	return n
}

// soleElementChild returns the only element child of n, or nil if n has
// none, several, or non-blank text next to it.
func soleElementChild(n *html.Node) *html.Node {
	var found *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			if found != nil {
				return nil
			}
			found = c
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil
			}
		}
	}
	return found
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
