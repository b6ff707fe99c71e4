// Package store defines the persistence interface for the wiki core and the
// storage-level error types shared by its implementations.
package store

import (
	"context"
	"time"

	"github.com/litewiki/litewiki-server/internal/domain"
)

// SearchFilters narrows a page search. All fields are independently optional
// and combine with AND across categories; the tag list uses OR semantics
// within itself.
type SearchFilters struct {
	Tags           []string   // match pages carrying ANY of these tags
	AuthorUsername string     // exact match on the creating user's username
	DateFrom       *time.Time // inclusive lower bound on updated_at
	DateTo         *time.Time // inclusive upper bound on updated_at
}

// Empty reports whether no filter is set.
func (f SearchFilters) Empty() bool {
	return len(f.Tags) == 0 && f.AuthorUsername == "" && f.DateFrom == nil && f.DateTo == nil
}

// Store is the persistence contract consumed by the service layer.
type Store interface {
	PageStore
	RevisionStore
	TagStore
	AuthorStore
	UserStore

	Close() error
}

// PageStore covers the page lifecycle. Multi-statement operations run inside
// a single transaction so a crash cannot leave a page without its initial
// revision or with a half-replaced association set.
type PageStore interface {
	// CreatePage inserts the page row, captures the initial revision, and
	// attaches the given tag and author names (get-or-create each) in one
	// transaction. Returns ErrAlreadyExists on a duplicate title.
	CreatePage(ctx context.Context, page *domain.Page, tagNames, authorNames []string) error

	// GetPageByTitle returns a page by exact title match, enriched with the
	// creating user's username. Returns ErrNotFound if absent.
	GetPageByTitle(ctx context.Context, title string) (*domain.Page, error)

	// GetPageByID returns a page by ID. Returns ErrNotFound if absent.
	GetPageByID(ctx context.Context, pageID string) (*domain.Page, error)

	// UpdatePageContent snapshots the current content as a revision authored
	// by editorID, then overwrites content and bumps updated_at, in one
	// transaction. Returns ErrNotFound if the page is absent.
	UpdatePageContent(ctx context.Context, pageID, content, editorID string) error

	// RestoreRevision snapshots the page's current content, then overwrites
	// it with the target revision's content and bumps updated_at, in one
	// transaction. No revision is ever removed. Returns ErrNotFound if the
	// revision is absent.
	RestoreRevision(ctx context.Context, revisionID, editorID string) (*domain.Page, error)

	// DeletePage removes the page's revisions and then the page row in one
	// transaction; tag/author associations cascade. Tag and author rows are
	// left behind even when orphaned.
	DeletePage(ctx context.Context, pageID string) error

	// ListPages returns discoverable pages, most recently updated first.
	ListPages(ctx context.Context, limit, offset int) ([]*domain.PageSummary, error)

	// ListAllPageTitles returns every title alphabetically, irrespective of
	// discoverability. Administrative enumeration, not the public listing.
	ListAllPageTitles(ctx context.Context) ([]string, error)

	// CountPages returns the total number of pages.
	CountPages(ctx context.Context) (int, error)

	// SearchPages performs the filtered substring search: query (if non-empty)
	// matches case-insensitively against title OR content; filters combine
	// with AND. Only discoverable pages are returned, newest updated first.
	SearchPages(ctx context.Context, query string, filters SearchFilters) ([]*domain.PageSummary, error)
}

// RevisionStore covers the append-only revision history.
type RevisionStore interface {
	// CaptureRevision inserts exactly one immutable snapshot row.
	CaptureRevision(ctx context.Context, pageID, content, authorID string) (string, error)

	// ListRevisions returns a page's revisions newest first, enriched with
	// author usernames.
	ListRevisions(ctx context.Context, pageID string) ([]*domain.Revision, error)

	// GetRevision returns a revision by ID with its page title resolved.
	// Returns ErrNotFound if absent.
	GetRevision(ctx context.Context, revisionID string) (*domain.Revision, error)
}

// TagStore covers lazily-created tags and their page associations.
type TagStore interface {
	// FindOrCreateTag resolves a name to a tag, creating it if absent.
	// Concurrent creation of the same name resolves to the winner's row.
	// Returns (tag, created, error).
	FindOrCreateTag(ctx context.Context, name string) (*domain.Tag, bool, error)

	// AttachTag associates a tag with a page; attaching an existing pair is
	// a no-op.
	AttachTag(ctx context.Context, pageID, tagID string) error

	// DetachTag removes a page↔tag association.
	DetachTag(ctx context.Context, pageID, tagID string) error

	// ListTagsForPage returns a page's tags ordered by name.
	ListTagsForPage(ctx context.Context, pageID string) ([]*domain.Tag, error)

	// ReplaceTagsForPage atomically swaps a page's tag set for the given
	// names (already cleaned by the caller), each via get-or-create.
	ReplaceTagsForPage(ctx context.Context, pageID string, names []string) error

	// ListTags returns all tags ordered by name.
	ListTags(ctx context.Context) ([]*domain.Tag, error)

	// ListPagesWithTag returns discoverable pages carrying the tag, newest
	// updated first.
	ListPagesWithTag(ctx context.Context, name string) ([]*domain.PageSummary, error)
}

// AuthorStore covers display-name authors and their page associations.
type AuthorStore interface {
	FindOrCreateAuthor(ctx context.Context, name string) (*domain.Author, bool, error)
	AttachAuthor(ctx context.Context, pageID, authorID string) error
	DetachAuthor(ctx context.Context, pageID, authorID string) error
	ListAuthorsForPage(ctx context.Context, pageID string) ([]*domain.Author, error)
	ReplaceAuthorsForPage(ctx context.Context, pageID string, names []string) error
	ListAuthors(ctx context.Context) ([]*domain.Author, error)
}

// UserStore covers the opaque user records owned by the external auth system.
type UserStore interface {
	// CreateUser inserts a user. Returns ErrAlreadyExists on duplicate username.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUser returns a user by ID. Returns ErrNotFound if absent.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByUsername returns a user by exact username.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// ListCreatorUsernames returns the distinct usernames of users who have
	// created at least one page, alphabetically.
	ListCreatorUsernames(ctx context.Context) ([]string, error)
}
