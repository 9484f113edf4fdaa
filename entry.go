package kindlefeed

import (
	"context"
	"net/url"
	"path"
	"strings"
)

// Entry is one saved link in the registry.
type Entry struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Read bool   `json:"read"`
}

// Validate returns an error if the entry contains invalid fields.
func (e *Entry) Validate() error {
	if e.ID == "" {
		return Errorf(EINVALID, "entry ID required")
	}
	if e.URL == "" {
		return Errorf(EINVALID, "entry %s: URL required", e.ID)
	}
	return nil
}

// Registry represents the external database of saved links.
type Registry interface {
	// FindPendingEntries returns the entries of the configured collection in
	// registry order. Entries already marked read are included with Read set;
	// callers decide whether to process them.
	FindPendingEntries(ctx context.Context) ([]*Entry, error)

	// MarkRead flips the read flag of the entry with the given ID.
	MarkRead(ctx context.Context, id string) error
}

// DefaultSkipExtensions lists URL extensions that are never fetched.
var DefaultSkipExtensions = []string{".pdf"}

// SkipRule decides which entry URLs point at non-HTML resources.
type SkipRule struct {
	// Extensions are matched case-insensitively against the URL path.
	// A leading dot is optional.
	Extensions []string
}

// Skip reports whether the URL ends in one of the rule's extensions.
// The query string and fragment are ignored.
func (r SkipRule) Skip(rawURL string) bool {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	for _, e := range r.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if ext == e {
			return true
		}
	}
	return false
}
