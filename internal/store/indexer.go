package store

import "github.com/litewiki/litewiki-server/internal/domain"

// SearchIndexer keeps an external full-text index in step with page writes.
// Indexing is best-effort: the store logs failures and never rolls back a
// committed write over them.
type SearchIndexer interface {
	IndexPage(page *domain.Page) error
	DeletePage(pageID string) error
}

// noopSearchIndexer discards all indexing requests.
type noopSearchIndexer struct{}

func (noopSearchIndexer) IndexPage(*domain.Page) error { return nil }
func (noopSearchIndexer) DeletePage(string) error      { return nil }

// NewNoopSearchIndexer returns an indexer that does nothing. Used until a
// real index is attached, and by tests that don't exercise search.
func NewNoopSearchIndexer() SearchIndexer {
	return noopSearchIndexer{}
}
