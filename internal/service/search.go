package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/errors"
	"github.com/litewiki/litewiki-server/internal/search"
	"github.com/litewiki/litewiki-server/internal/store"
)

// SearchService answers page queries. Filtered search runs against the
// store for exact substring and filter semantics; quick search goes
// through the Bleve index for ranked, typo-tolerant results.
type SearchService struct {
	store  store.Store
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store store.Store, index *search.Index, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// Search runs the filtered page search: query text matches title or
// content as a case-insensitive substring, tags OR within the set,
// author and date range exact, all categories AND-combined. At least one
// criterion must be present.
func (s *SearchService) Search(ctx context.Context, query string, filters store.SearchFilters) ([]*domain.PageSummary, error) {
	query = strings.TrimSpace(query)
	filters.Tags = domain.CleanNames(filters.Tags)
	filters.AuthorUsername = strings.TrimSpace(filters.AuthorUsername)

	if query == "" && filters.Empty() {
		return nil, errors.Validation("search requires a query or at least one filter")
	}

	pages, err := s.store.SearchPages(ctx, query, filters)
	if err != nil {
		return nil, errors.Internal("search pages", err)
	}
	return pages, nil
}

// QuickSearch runs a relevance-ranked lookup against the full-text index.
func (s *SearchService) QuickSearch(ctx context.Context, query string, limit int) (*search.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.Validation("search query must not be empty")
	}

	result, err := s.index.Search(ctx, search.Params{Query: query, Limit: limit})
	if err != nil {
		return nil, errors.Internal("quick search", err)
	}
	return result, nil
}

// Reindex rebuilds the full-text index from the store. Pages are loaded
// in chunks and indexed in batches; hidden pages are included so direct
// title lookups stay searchable for logged-in tooling.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, errors.Internal("rebuild search index", err)
	}

	titles, err := s.store.ListAllPageTitles(ctx)
	if err != nil {
		return 0, errors.Internal("reindex", err)
	}

	const chunk = 500
	pages := make([]*domain.Page, 0, chunk)
	indexed := 0

	flush := func() error {
		if len(pages) == 0 {
			return nil
		}
		if err := s.index.IndexPages(pages); err != nil {
			return errors.Internal("reindex", err)
		}
		indexed += len(pages)
		pages = pages[:0]
		return nil
	}

	for _, title := range titles {
		page, err := s.store.GetPageByTitle(ctx, title)
		if err != nil {
			s.logger.Warn("skipping page during reindex", "title", title, "error", err)
			continue
		}
		tags, err := s.store.ListTagsForPage(ctx, page.ID)
		if err != nil {
			s.logger.Warn("skipping page during reindex", "title", title, "error", err)
			continue
		}
		page.Tags = make([]string, len(tags))
		for i, t := range tags {
			page.Tags[i] = t.Name
		}

		pages = append(pages, page)
		if len(pages) == chunk {
			if err := flush(); err != nil {
				return indexed, err
			}
		}
	}
	if err := flush(); err != nil {
		return indexed, err
	}

	s.logger.Info("search index rebuilt", "pages", indexed)
	return indexed, nil
}
