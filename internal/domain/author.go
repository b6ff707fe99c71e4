package domain

import "time"

// Author is a display-name attribution label, many-to-many with pages.
// Distinct from User: an author is free text ("Jane Doe et al."), lazily
// created like a tag, and carries no credentials.
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PageAuthor is the page↔author association, unique per pair.
type PageAuthor struct {
	PageID    string    `json:"page_id"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
