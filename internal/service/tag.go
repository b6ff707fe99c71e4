package service

import (
	"context"
	"log/slog"

	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/errors"
	"github.com/litewiki/litewiki-server/internal/store"
)

// TagService exposes the global tag vocabulary. Tags are shared across
// pages and are never deleted when they fall out of use.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// ListTags returns every tag, ordered by name.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, errors.Internal("list tags", err)
	}
	return tags, nil
}

// ListTagsForPage returns a page's tags, ordered by name.
func (s *TagService) ListTagsForPage(ctx context.Context, pageID string) ([]*domain.Tag, error) {
	tags, err := s.store.ListTagsForPage(ctx, pageID)
	if err != nil {
		return nil, errors.Internal("list page tags", err)
	}
	return tags, nil
}

// ListPagesWithTag returns discoverable pages carrying the named tag,
// most recently updated first.
func (s *TagService) ListPagesWithTag(ctx context.Context, name string) ([]*domain.PageSummary, error) {
	pages, err := s.store.ListPagesWithTag(ctx, name)
	if err != nil {
		return nil, errors.Internal("list pages with tag", err)
	}
	return pages, nil
}
