// Package fs writes local copies of run output for inspection.
package fs

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/kindlefeed"
)

// URLToPath converts an article URL to a relative file path under its host.
// Example: https://example.com/blog/post → example.com/blog/post.md
// A query string adds a short hash to the name, so ?p=1 and ?p=2 differ.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", kindlefeed.Errorf(kindlefeed.EINVALID, "invalid URL %q", rawURL)
	}
	host := u.Hostname()
	if host == "" {
		return "", kindlefeed.Errorf(kindlefeed.EINVALID, "URL %q has no host", rawURL)
	}

	p := strings.TrimPrefix(u.Path, "/")
	switch {
	case p == "":
		p = "index"
	case strings.HasSuffix(p, "/"):
		p += "index"
	}

	// Keep the tree under the host directory.
	p = filepath.Clean("/" + p)
	if u.RawQuery != "" {
		p += fmt.Sprintf("-%08x", uint32(xxhash.Sum64String(u.RawQuery)))
	}
	return filepath.Join(host, filepath.FromSlash(p)) + ".md", nil
}

// FormatArticle formats Markdown content with YAML frontmatter.
func FormatArticle(article *kindlefeed.Article, markdown string, fetched time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(article.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(article.Title)
	if article.EntryID != "" {
		b.WriteString("\nentry: ")
		b.WriteString(article.EntryID)
	}
	b.WriteString("\nfetched: ")
	b.WriteString(fetched.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(markdown)
	return b.String()
}

// DocumentFileName returns the file name of doc with path separators
// replaced.
func DocumentFileName(doc *kindlefeed.Document) string {
	return strings.NewReplacer("/", "-", `\`, "-").Replace(doc.AttachmentName())
}

// Ensure Writer implements kindlefeed.ArtifactWriter at compile time.
var _ kindlefeed.ArtifactWriter = (*Writer)(nil)

// Writer writes articles as Markdown files and documents as HTML files
// under a base directory.
type Writer struct {
	baseDir   string
	converter kindlefeed.Converter

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewWriter creates a Writer that writes to baseDir and converts articles
// with conv.
func NewWriter(baseDir string, conv kindlefeed.Converter) *Writer {
	return &Writer{
		baseDir:   baseDir,
		converter: conv,
		Now:       time.Now,
	}
}

// WriteArticle writes article to <base>/articles/<host>/<path>.md.
func (w *Writer) WriteArticle(ctx context.Context, article *kindlefeed.Article) error {
	relPath, err := URLToPath(article.URL)
	if err != nil {
		return err
	}

	markdown := ""
	if strings.TrimSpace(article.Content) != "" {
		markdown, err = w.converter.Convert(article.Content)
		if err != nil {
			return err
		}
	}

	fullPath := filepath.Join(w.baseDir, "articles", relPath)
	return writeFileAtomic(fullPath, []byte(FormatArticle(article, markdown, w.Now())))
}

// WriteDocument writes the complete document to <base>/<title>.html.
func (w *Writer) WriteDocument(ctx context.Context, doc *kindlefeed.Document) error {
	if doc.Title == "" {
		return kindlefeed.Errorf(kindlefeed.EINVALID, "document title required")
	}
	return writeFileAtomic(filepath.Join(w.baseDir, DocumentFileName(doc)), []byte(doc.HTML))
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
