// Package service implements the wiki business logic on top of the store,
// enforcing authorization and translating storage errors into domain codes.
package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/litewiki/litewiki-server/internal/auth"
	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/errors"
	"github.com/litewiki/litewiki-server/internal/id"
	"github.com/litewiki/litewiki-server/internal/store"
)

// PageService orchestrates the page lifecycle. Reads are open; every
// mutation requires a logged-in session.
type PageService struct {
	store  store.Store
	logger *slog.Logger
}

// NewPageService creates a new page service.
func NewPageService(store store.Store, logger *slog.Logger) *PageService {
	return &PageService{
		store:  store,
		logger: logger,
	}
}

// CreatePage creates a page with an initial revision and optional tag and
// author display names. Names are trimmed, blanks dropped, duplicates
// collapsed. Fails with DUPLICATE_TITLE when the title is taken.
func (s *PageService) CreatePage(ctx context.Context, session auth.Session, title, content string, tagNames, authorNames []string) (*domain.Page, error) {
	if !session.IsLoggedIn() {
		return nil, errors.Unauthorized("login required to create pages")
	}

	title = strings.TrimSpace(title)
	now := time.Now().UTC()
	page := &domain.Page{
		ID:           id.MustGenerate("page"),
		Title:        title,
		Content:      content,
		CreatedBy:    session.CurrentUser().ID,
		Discoverable: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := page.Validate(); err != nil {
		return nil, errors.Validation(err.Error())
	}

	err := s.store.CreatePage(ctx, page, domain.CleanNames(tagNames), domain.CleanNames(authorNames))
	if stderrors.Is(err, store.ErrAlreadyExists) {
		return nil, errors.DuplicateTitle("a page with this title already exists")
	}
	if err != nil {
		return nil, errors.Internal("create page", err)
	}

	s.logger.Info("page created",
		"page_id", page.ID,
		"title", page.Title,
		"user_id", page.CreatedBy,
	)

	return s.getEnriched(ctx, page.ID)
}

// GetPage returns a page by exact title, with its tags and authors.
func (s *PageService) GetPage(ctx context.Context, title string) (*domain.Page, error) {
	page, err := s.store.GetPageByTitle(ctx, title)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFound("page not found")
	}
	if err != nil {
		return nil, errors.Internal("get page", err)
	}
	return s.enrich(ctx, page)
}

// GetPageByID returns a page by ID, with its tags and authors.
func (s *PageService) GetPageByID(ctx context.Context, pageID string) (*domain.Page, error) {
	return s.getEnriched(ctx, pageID)
}

// UpdatePage replaces a page's content. The pre-change content is captured
// as a revision attributed to the editing user.
func (s *PageService) UpdatePage(ctx context.Context, session auth.Session, pageID, content string) (*domain.Page, error) {
	if !session.IsLoggedIn() {
		return nil, errors.Unauthorized("login required to edit pages")
	}

	err := s.store.UpdatePageContent(ctx, pageID, content, session.CurrentUser().ID)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFound("page not found")
	}
	if err != nil {
		return nil, errors.Internal("update page", err)
	}

	s.logger.Info("page updated",
		"page_id", pageID,
		"user_id", session.CurrentUser().ID,
	)

	return s.getEnriched(ctx, pageID)
}

// RestoreRevision rolls a page back to an earlier revision. The current
// content is snapshotted first, so history only ever grows.
func (s *PageService) RestoreRevision(ctx context.Context, session auth.Session, revisionID string) (*domain.Page, error) {
	if !session.IsLoggedIn() {
		return nil, errors.Unauthorized("login required to restore revisions")
	}

	page, err := s.store.RestoreRevision(ctx, revisionID, session.CurrentUser().ID)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFound("revision not found")
	}
	if err != nil {
		return nil, errors.Internal("restore revision", err)
	}

	s.logger.Info("revision restored",
		"revision_id", revisionID,
		"page_id", page.ID,
		"user_id", session.CurrentUser().ID,
	)

	return s.enrich(ctx, page)
}

// DeletePage removes a page together with its revision history.
func (s *PageService) DeletePage(ctx context.Context, session auth.Session, pageID string) error {
	if !session.IsLoggedIn() {
		return errors.Unauthorized("login required to delete pages")
	}

	err := s.store.DeletePage(ctx, pageID)
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.NotFound("page not found")
	}
	if err != nil {
		return errors.Internal("delete page", err)
	}

	s.logger.Info("page deleted",
		"page_id", pageID,
		"user_id", session.CurrentUser().ID,
	)
	return nil
}

// ListPages returns discoverable pages, most recently updated first.
func (s *PageService) ListPages(ctx context.Context, limit, offset int) ([]*domain.PageSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	pages, err := s.store.ListPages(ctx, limit, offset)
	if err != nil {
		return nil, errors.Internal("list pages", err)
	}
	return pages, nil
}

// ListAllPageTitles returns every page title alphabetically, including
// pages excluded from the public listing.
func (s *PageService) ListAllPageTitles(ctx context.Context) ([]string, error) {
	titles, err := s.store.ListAllPageTitles(ctx)
	if err != nil {
		return nil, errors.Internal("list page titles", err)
	}
	return titles, nil
}

// UpdateTags replaces a page's tag set with the given names.
func (s *PageService) UpdateTags(ctx context.Context, session auth.Session, pageID string, names []string) ([]*domain.Tag, error) {
	if !session.IsLoggedIn() {
		return nil, errors.Unauthorized("login required to edit tags")
	}
	if _, err := s.store.GetPageByID(ctx, pageID); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("page not found")
		}
		return nil, errors.Internal("update tags", err)
	}

	if err := s.store.ReplaceTagsForPage(ctx, pageID, domain.CleanNames(names)); err != nil {
		return nil, errors.Internal("update tags", err)
	}
	tags, err := s.store.ListTagsForPage(ctx, pageID)
	if err != nil {
		return nil, errors.Internal("update tags", err)
	}
	return tags, nil
}

// UpdateAuthors replaces a page's author display names.
func (s *PageService) UpdateAuthors(ctx context.Context, session auth.Session, pageID string, names []string) ([]*domain.Author, error) {
	if !session.IsLoggedIn() {
		return nil, errors.Unauthorized("login required to edit authors")
	}
	if _, err := s.store.GetPageByID(ctx, pageID); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("page not found")
		}
		return nil, errors.Internal("update authors", err)
	}

	if err := s.store.ReplaceAuthorsForPage(ctx, pageID, domain.CleanNames(names)); err != nil {
		return nil, errors.Internal("update authors", err)
	}
	authors, err := s.store.ListAuthorsForPage(ctx, pageID)
	if err != nil {
		return nil, errors.Internal("update authors", err)
	}
	return authors, nil
}

// ListRevisions returns a page's history, newest first.
func (s *PageService) ListRevisions(ctx context.Context, pageID string) ([]*domain.Revision, error) {
	if _, err := s.store.GetPageByID(ctx, pageID); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("page not found")
		}
		return nil, errors.Internal("list revisions", err)
	}
	revs, err := s.store.ListRevisions(ctx, pageID)
	if err != nil {
		return nil, errors.Internal("list revisions", err)
	}
	return revs, nil
}

// GetRevision returns a single revision with its page title resolved.
func (s *PageService) GetRevision(ctx context.Context, revisionID string) (*domain.Revision, error) {
	rev, err := s.store.GetRevision(ctx, revisionID)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFound("revision not found")
	}
	if err != nil {
		return nil, errors.Internal("get revision", err)
	}
	return rev, nil
}

func (s *PageService) getEnriched(ctx context.Context, pageID string) (*domain.Page, error) {
	page, err := s.store.GetPageByID(ctx, pageID)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NotFound("page not found")
	}
	if err != nil {
		return nil, errors.Internal("get page", err)
	}
	return s.enrich(ctx, page)
}

func (s *PageService) enrich(ctx context.Context, page *domain.Page) (*domain.Page, error) {
	tags, err := s.store.ListTagsForPage(ctx, page.ID)
	if err != nil {
		return nil, errors.Internal("load page tags", err)
	}
	authors, err := s.store.ListAuthorsForPage(ctx, page.ID)
	if err != nil {
		return nil, errors.Internal("load page authors", err)
	}
	page.Tags = make([]string, len(tags))
	for i, t := range tags {
		page.Tags[i] = t.Name
	}
	page.Authors = make([]string, len(authors))
	for i, a := range authors {
		page.Authors[i] = a.Name
	}
	return page, nil
}
