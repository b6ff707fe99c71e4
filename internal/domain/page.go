// Package domain contains the core business entities and domain logic for the wiki.
package domain

import (
	"strings"
	"time"
)

// Page represents a title-addressed unit of wiki content.
// The title is the external lookup key and is unique across all pages.
// Content holds the current raw markup; historical states live in Revisions.
type Page struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CreatedBy    string    `json:"created_by,omitempty"` // owning user ID, empty for system pages
	Discoverable bool      `json:"discoverable"`         // include in public listings; direct lookup ignores this
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Enriched on read, not stored on the page row.
	AuthorUsername string   `json:"author,omitempty"` // creating user's username
	Tags           []string `json:"tags,omitempty"`
	Authors        []string `json:"authors,omitempty"` // display-name authors
}

// Validate checks page invariants before a write.
func (p *Page) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Touch updates the UpdatedAt timestamp to now.
func (p *Page) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// PageSummary is the listing/search projection of a page.
// Content is included because the reference search surfaces it for snippets.
type PageSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content,omitempty"`
	AuthorUsername string    `json:"author,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}
