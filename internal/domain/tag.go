package domain

import (
	"strings"
	"time"
)

// Tag is a free-form classification label, many-to-many with pages.
// Names are case-sensitive and unique; rows are created lazily on first
// reference and never garbage-collected when they become orphaned.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PageTag is the page↔tag association. The (page_id, tag_id) pair is unique;
// attachment order carries no meaning.
type PageTag struct {
	PageID    string    `json:"page_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CleanNames trims whitespace, discards empties, and removes duplicates while
// preserving first-seen order. Used by the replace-tags/replace-authors paths.
func CleanNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
