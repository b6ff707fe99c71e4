package domain

import "time"

// Revision is an immutable full-content snapshot of a page.
//
// Revisions are append-only: they are never updated or reordered, and are
// deleted only as a cascade of deleting their page. The snapshot always
// reflects the page content as it stood *before* the write that captured it,
// so history never contains the just-applied state.
type Revision struct {
	ID        string    `json:"id"`
	PageID    string    `json:"page_id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id,omitempty"` // empty for system-authored snapshots
	Timestamp time.Time `json:"timestamp"`

	// Enriched on read.
	AuthorUsername string `json:"author,omitempty"`
	PageTitle      string `json:"page_title,omitempty"`
}
