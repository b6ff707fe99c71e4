package service

import (
	"context"
	"log/slog"

	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/errors"
	"github.com/litewiki/litewiki-server/internal/store"
)

// AuthorService exposes the display-name author vocabulary. Authors are
// free-form names attached to pages, distinct from the users who edit them.
type AuthorService struct {
	store  store.Store
	logger *slog.Logger
}

// NewAuthorService creates a new author service.
func NewAuthorService(store store.Store, logger *slog.Logger) *AuthorService {
	return &AuthorService{
		store:  store,
		logger: logger,
	}
}

// ListAuthors returns every author, ordered by name.
func (s *AuthorService) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return nil, errors.Internal("list authors", err)
	}
	return authors, nil
}

// ListAuthorsForPage returns a page's authors, ordered by name.
func (s *AuthorService) ListAuthorsForPage(ctx context.Context, pageID string) ([]*domain.Author, error) {
	authors, err := s.store.ListAuthorsForPage(ctx, pageID)
	if err != nil {
		return nil, errors.Internal("list page authors", err)
	}
	return authors, nil
}

// ListCreatorUsernames returns the usernames of users who have created at
// least one page. Backs the author filter options in search.
func (s *AuthorService) ListCreatorUsernames(ctx context.Context) ([]string, error) {
	names, err := s.store.ListCreatorUsernames(ctx)
	if err != nil {
		return nil, errors.Internal("list creator usernames", err)
	}
	return names, nil
}
