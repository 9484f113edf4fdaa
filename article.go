package kindlefeed

import "context"

// Article is the readable part of one fetched entry.
type Article struct {
	EntryID string `json:"entryId"`
	URL     string `json:"url"`

	// Title may be empty when no title could be resolved.
	Title string `json:"title"`

	// Content is an HTML fragment without a wrapping container.
	// It is not sanitized.
	Content string `json:"content"`
}

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title as seen by the extractor. The article title
	// comes from a TitleResolver instead.
	Title string

	// ContentHTML is the main content as an HTML fragment with the
	// top-level wrapper removed. Boilerplate (nav, footer, sidebar, ads)
	// has been removed.
	ContentHTML string
}

// Extractor isolates the main content of an HTML page.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	// pageURL resolves relative links and may be empty.
	// Returns EPARSE if the input cannot be parsed or holds no content.
	Extract(html string, pageURL string) (*ExtractResult, error)
}

// TitleResolver finds the title of an article page.
type TitleResolver interface {
	// ResolveTitle returns the article title, or "" if none was found.
	ResolveTitle(html string) (string, error)
}

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch retrieves the page at url and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// ArticleExtractor turns an entry URL into an Article.
type ArticleExtractor interface {
	// ExtractArticle fetches url and extracts its article.
	// Returns EFETCH on transport failures and EPARSE when the page
	// cannot be parsed.
	ExtractArticle(ctx context.Context, url string) (*Article, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}

// DomainLimiter paces requests per host.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed or ctx is done.
	Wait(ctx context.Context, domain string) error
}
