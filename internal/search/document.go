// Package search provides a relevance-ranked full-text index over wiki
// pages using Bleve. It backs the quick-search endpoint; the filtered
// search with exact substring semantics stays in the store.
package search

import (
	"github.com/litewiki/litewiki-server/internal/domain"
)

// PageDocument is the shape of a page inside the Bleve index. Tag and
// author names are denormalized in so a single query covers them.
type PageDocument struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Author    string   `json:"author,omitempty"` // creating user's username
	Tags      []string `json:"tags,omitempty"`
	UpdatedAt int64    `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names so the
// indexed fields line up with the mapping. Bleve would otherwise use the
// capitalized Go struct field names.
func (d *PageDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"content":    d.Content,
		"updated_at": d.UpdatedAt,
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}

// PageToDocument converts a domain page to its index document. The page
// must carry its tag names; enrichment is the caller's job since the
// search package does not depend on the store.
func PageToDocument(page *domain.Page) *PageDocument {
	return &PageDocument{
		ID:        page.ID,
		Title:     page.Title,
		Content:   page.Content,
		Author:    page.AuthorUsername,
		Tags:      page.Tags,
		UpdatedAt: page.UpdatedAt.UnixMilli(),
	}
}
