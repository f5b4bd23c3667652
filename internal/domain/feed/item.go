// Package feed holds the records produced by the external news feed.
package feed

import "strings"

// Item is a single feed entry. URL is empty for text-only posts.
type Item struct {
	ID    int64
	Title string
	URL   string
}

// HasLink reports whether the item points at an external page.
func (i Item) HasLink() bool { return strings.TrimSpace(i.URL) != "" }

// Text composes the document text stored in the corpus: "title - url".
func (i Item) Text() string {
	return strings.TrimSpace(i.Title) + " - " + strings.TrimSpace(i.URL)
}
