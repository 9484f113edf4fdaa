// Package notion implements kindlefeed.Registry on top of a Notion database.
package notion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/fwojciec/kindlefeed"
	"github.com/jomei/notionapi"
)

// Ensure RegistryService implements kindlefeed.Registry at compile time.
var _ kindlefeed.Registry = (*RegistryService)(nil)

// Default property names of the saved-links database.
const (
	DefaultURLProperty  = "URL"
	DefaultReadProperty = "read"
)

// DefaultPageSize is the number of pages requested per query call.
const DefaultPageSize = 100

// RegistryService reads entries from a Notion database and marks them read.
type RegistryService struct {
	client     *notionapi.Client
	httpClient *http.Client
	databaseID notionapi.DatabaseID

	urlProperty  string
	readProperty string
	filter       *notionapi.PropertyFilter
	pageSize     int
	dump         io.Writer
}

// Option configures a RegistryService.
type Option func(*RegistryService)

// WithURLProperty sets the name of the url property holding the entry link.
func WithURLProperty(name string) Option {
	return func(s *RegistryService) {
		s.urlProperty = name
	}
}

// WithReadProperty sets the name of the checkbox property flagging entries
// as read.
func WithReadProperty(name string) Option {
	return func(s *RegistryService) {
		s.readProperty = name
	}
}

// WithContainsFilter restricts the query to pages whose rich text property
// contains value.
func WithContainsFilter(property, value string) Option {
	return func(s *RegistryService) {
		s.filter = &notionapi.PropertyFilter{
			Property: property,
			RichText: &notionapi.TextFilterCondition{Contains: value},
		}
	}
}

// WithPageSize sets the number of results requested per query call.
func WithPageSize(n int) Option {
	return func(s *RegistryService) {
		s.pageSize = n
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *RegistryService) {
		s.httpClient = c
	}
}

// WithResponseDump writes every raw query response to w as indented JSON.
func WithResponseDump(w io.Writer) Option {
	return func(s *RegistryService) {
		s.dump = w
	}
}

// NewRegistryService creates a RegistryService for the database with the
// given ID, authenticated with an integration token.
func NewRegistryService(token, databaseID string, opts ...Option) *RegistryService {
	s := &RegistryService{
		databaseID:   notionapi.DatabaseID(databaseID),
		urlProperty:  DefaultURLProperty,
		readProperty: DefaultReadProperty,
		pageSize:     DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	var clientOpts []notionapi.ClientOption
	if s.httpClient != nil {
		clientOpts = append(clientOpts, notionapi.WithHTTPClient(s.httpClient))
	}
	s.client = notionapi.NewClient(notionapi.Token(token), clientOpts...)
	return s
}

// FindPendingEntries queries every page of the database in registry order.
// Pages without a URL are left out.
func (s *RegistryService) FindPendingEntries(ctx context.Context) ([]*kindlefeed.Entry, error) {
	var entries []*kindlefeed.Entry
	var cursor notionapi.Cursor
	for {
		req := &notionapi.DatabaseQueryRequest{
			StartCursor: cursor,
			PageSize:    s.pageSize,
		}
		if s.filter != nil {
			req.Filter = s.filter
		}

		resp, err := s.client.Database.Query(ctx, s.databaseID, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, kindlefeed.Errorf(kindlefeed.EREGISTRY, "query database %s: %v", s.databaseID, err)
		}
		if err := s.writeDump(resp); err != nil {
			return nil, err
		}

		for _, page := range resp.Results {
			if e := s.entryFromPage(page); e != nil {
				entries = append(entries, e)
			}
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return entries, nil
}

// MarkRead sets the read checkbox of the page with the given ID.
func (s *RegistryService) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return kindlefeed.Errorf(kindlefeed.EINVALID, "entry ID required")
	}
	_, err := s.client.Page.Update(ctx, notionapi.PageID(id), &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{
			s.readProperty: notionapi.CheckboxProperty{
				Type:     notionapi.PropertyTypeCheckbox,
				Checkbox: true,
			},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return kindlefeed.Errorf(kindlefeed.EREGISTRY, "update page %s: %v", id, err)
	}
	return nil
}

func (s *RegistryService) entryFromPage(page notionapi.Page) *kindlefeed.Entry {
	rawURL := urlValue(page.Properties[s.urlProperty])
	if rawURL == "" {
		return nil
	}
	return &kindlefeed.Entry{
		ID:   string(page.ID),
		URL:  rawURL,
		Read: checkboxValue(page.Properties[s.readProperty]),
	}
}

func (s *RegistryService) writeDump(resp *notionapi.DatabaseQueryResponse) error {
	if s.dump == nil {
		return nil
	}
	b, err := json.MarshalIndent(resp, "", "    ")
	if err != nil {
		return kindlefeed.Errorf(kindlefeed.EINTERNAL, "encode response: %v", err)
	}
	if _, err := s.dump.Write(append(b, '\n')); err != nil {
		return kindlefeed.Errorf(kindlefeed.EINTERNAL, "dump response: %v", err)
	}
	return nil
}

func urlValue(p notionapi.Property) string {
	switch v := p.(type) {
	case *notionapi.URLProperty:
		return v.URL
	case notionapi.URLProperty:
		return v.URL
	}
	return ""
}

func checkboxValue(p notionapi.Property) bool {
	switch v := p.(type) {
	case *notionapi.CheckboxProperty:
		return v.Checkbox
	case notionapi.CheckboxProperty:
		return v.Checkbox
	}
	return false
}
