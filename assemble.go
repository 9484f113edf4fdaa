package kindlefeed

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// DocumentLabel prefixes every assembled document title.
const DocumentLabel = "Today's Feed"

// DocumentTitle returns the title for a document assembled at now: the
// label, the date in long form and the zero-padded millisecond of now.
func DocumentTitle(now time.Time) string {
	return fmt.Sprintf("%s %s %03d", DocumentLabel, now.Format("January 02, 2006"), now.Nanosecond()/int(time.Millisecond))
}

// ArticleAnchor returns the anchor name of the article at position i.
func ArticleAnchor(i int) string {
	return fmt.Sprintf("article-%d", i)
}

// AssembleDocument merges articles into one HTML document with an index of
// anchored links followed by the article bodies, in input order.
// Titles are escaped; article content is inserted as is.
// The output depends only on articles and now.
func AssembleDocument(articles []*Article, now time.Time) *Document {
	title := DocumentTitle(now)
	escapedTitle := html.EscapeString(title)

	var b strings.Builder
	b.WriteString(`<html><head><meta charset="utf-8"><title>`)
	b.WriteString(escapedTitle)
	b.WriteString("</title></head><body>")
	b.WriteString("<h1>")
	b.WriteString(escapedTitle)
	b.WriteString("</h1><hr>")

	b.WriteString("<h2>Index</h2>")
	for i, a := range articles {
		fmt.Fprintf(&b, `<h3><a href="#%s">%s</a></h3>`, ArticleAnchor(i), html.EscapeString(a.Title))
	}
	b.WriteString("<hr>")

	for i, a := range articles {
		anchor := ArticleAnchor(i)
		fmt.Fprintf(&b, `<a id="%s" name="%s"></a><h2>%s</h2>`, anchor, anchor, html.EscapeString(a.Title))
		b.WriteString(a.Content)
		b.WriteString("<hr>")
	}

	b.WriteString("</body></html>")

	return &Document{
		Title:     title,
		HTML:      b.String(),
		CreatedAt: now,
		Articles:  articles,
	}
}
