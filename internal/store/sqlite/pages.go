package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/store"
)

// pageColumns is the ordered list of columns selected in page queries.
// Must match the scan order in scanPage.
const pageColumns = `p.id, p.title, p.content, p.created_by, p.discoverable, p.created_at, p.updated_at, u.username`

// scanPage scans a page row joined with its creating user.
func scanPage(scanner interface{ Scan(dest ...any) error }) (*domain.Page, error) {
	var p domain.Page

	var (
		createdBy sql.NullString
		username  sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&createdBy,
		&p.Discoverable,
		&createdAt,
		&updatedAt,
		&username,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedBy = createdBy.String
	p.AuthorUsername = username.String

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreatePage inserts the page row, captures the initial revision, and attaches
// tag/author names in one transaction.
// Returns store.ErrAlreadyExists on a duplicate title.
func (s *Store) CreatePage(ctx context.Context, page *domain.Page, tagNames, authorNames []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO pages (id, title, content, created_by, discoverable, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		page.ID,
		page.Title,
		page.Content,
		nullString(page.CreatedBy),
		page.Discoverable,
		formatTime(page.CreatedAt),
		formatTime(page.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("page title already exists")
		}
		return fmt.Errorf("insert page: %w", err)
	}

	// Initial snapshot of the created content.
	if _, err := captureRevisionTx(ctx, tx, page.ID, page.Content, page.CreatedBy); err != nil {
		return err
	}

	for _, name := range authorNames {
		author, _, err := findOrCreateAuthorTx(ctx, tx, name)
		if err != nil {
			return err
		}
		if err := attachAuthorTx(ctx, tx, page.ID, author.ID); err != nil {
			return err
		}
	}

	for _, name := range tagNames {
		tag, _, err := findOrCreateTagTx(ctx, tx, name)
		if err != nil {
			return err
		}
		if err := attachTagTx(ctx, tx, page.ID, tag.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create page: %w", err)
	}

	s.indexPageByID(ctx, page.ID)
	return nil
}

// GetPageByTitle retrieves a page by exact title match.
// Returns store.ErrNotFound if the page does not exist.
func (s *Store) GetPageByTitle(ctx context.Context, title string) (*domain.Page, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pageColumns+`
		FROM pages p
		LEFT JOIN users u ON p.created_by = u.id
		WHERE p.title = ?`, title)

	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("page not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPageByID retrieves a page by its ID.
// Returns store.ErrNotFound if the page does not exist.
func (s *Store) GetPageByID(ctx context.Context, pageID string) (*domain.Page, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pageColumns+`
		FROM pages p
		LEFT JOIN users u ON p.created_by = u.id
		WHERE p.id = ?`, pageID)

	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("page not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePageContent snapshots the current content as a revision, then
// overwrites the page content and bumps updated_at, in one transaction.
func (s *Store) UpdatePageContent(ctx context.Context, pageID, content, editorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT content FROM pages WHERE id = ?`, pageID).Scan(&current)
	if err == sql.ErrNoRows {
		return store.ErrNotFound.WithMessage("page not found")
	}
	if err != nil {
		return fmt.Errorf("read current content: %w", err)
	}

	// History reflects the state before the incoming change.
	if _, err := captureRevisionTx(ctx, tx, pageID, current, editorID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `UPDATE pages SET content = ?, updated_at = ? WHERE id = ?`,
		content, formatTime(time.Now()), pageID)
	if err != nil {
		return fmt.Errorf("update page content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update page: %w", err)
	}

	s.indexPageByID(ctx, pageID)
	return nil
}

// RestoreRevision snapshots the page's current content, then overwrites it
// with the target revision's content, in one transaction. History is never
// truncated: the restored-from revision and everything after it survive.
func (s *Store) RestoreRevision(ctx context.Context, revisionID, editorID string) (*domain.Page, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var pageID, target string
	err = tx.QueryRowContext(ctx, `SELECT page_id, content FROM revisions WHERE id = ?`, revisionID).
		Scan(&pageID, &target)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("revision not found")
	}
	if err != nil {
		return nil, fmt.Errorf("read revision: %w", err)
	}

	var current string
	if err := tx.QueryRowContext(ctx, `SELECT content FROM pages WHERE id = ?`, pageID).Scan(&current); err != nil {
		return nil, fmt.Errorf("read current content: %w", err)
	}

	// Safety snapshot before the destructive overwrite.
	if _, err := captureRevisionTx(ctx, tx, pageID, current, editorID); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE pages SET content = ?, updated_at = ? WHERE id = ?`,
		target, formatTime(time.Now()), pageID)
	if err != nil {
		return nil, fmt.Errorf("restore page content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit restore: %w", err)
	}

	s.indexPageByID(ctx, pageID)
	return s.GetPageByID(ctx, pageID)
}

// DeletePage removes the page's revisions and then the page row in one
// transaction. Associations cascade; orphaned tag/author rows are kept.
func (s *Store) DeletePage(ctx context.Context, pageID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM revisions WHERE page_id = ?`, pageID); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, pageID)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound.WithMessage("page not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete page: %w", err)
	}

	if err := s.indexer.DeletePage(pageID); err != nil {
		s.logger.Warn("failed to remove page from search index", "page_id", pageID, "error", err)
	}
	return nil
}

// ListPages returns discoverable pages, most recently updated first.
func (s *Store) ListPages(ctx context.Context, limit, offset int) ([]*domain.PageSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, u.username, p.updated_at
		FROM pages p
		LEFT JOIN users u ON p.created_by = u.id
		WHERE p.discoverable = 1
		ORDER BY p.updated_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	return scanPageSummaries(rows, false)
}

// ListAllPageTitles returns every page title alphabetically, irrespective of
// discoverability.
func (s *Store) ListAllPageTitles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title FROM pages ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return titles, nil
}

// CountPages returns the total number of pages.
func (s *Store) CountPages(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return count, nil
}

// scanPageSummaries reads PageSummary rows in (id, title, username,
// updated_at) order, optionally preceded by content.
func scanPageSummaries(rows *sql.Rows, withContent bool) ([]*domain.PageSummary, error) {
	summaries := []*domain.PageSummary{}
	for rows.Next() {
		var (
			p         domain.PageSummary
			username  sql.NullString
			updatedAt string
			err       error
		)
		if withContent {
			err = rows.Scan(&p.ID, &p.Title, &p.Content, &username, &updatedAt)
		} else {
			err = rows.Scan(&p.ID, &p.Title, &username, &updatedAt)
		}
		if err != nil {
			return nil, fmt.Errorf("scan page summary: %w", err)
		}
		p.AuthorUsername = username.String
		p.UpdatedAt, err = parseTime(updatedAt)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return summaries, nil
}

// indexPageByID reloads a page with its tags and hands it to the search
// indexer. Best effort: failures are logged, never surfaced.
func (s *Store) indexPageByID(ctx context.Context, pageID string) {
	page, err := s.GetPageByID(ctx, pageID)
	if err != nil {
		s.logger.Warn("failed to load page for indexing", "page_id", pageID, "error", err)
		return
	}
	tags, err := s.ListTagsForPage(ctx, pageID)
	if err != nil {
		s.logger.Warn("failed to load tags for indexing", "page_id", pageID, "error", err)
		return
	}
	for _, t := range tags {
		page.Tags = append(page.Tags, t.Name)
	}
	if err := s.indexer.IndexPage(page); err != nil {
		s.logger.Warn("failed to index page", "page_id", pageID, "error", err)
	}
}
