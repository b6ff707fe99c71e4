package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/id"
)

// findOrCreateTagTx resolves a tag name to a row, creating it if absent.
// The unique name constraint is the authority for races: a losing insert
// falls back to fetching the winner's row.
func findOrCreateTagTx(ctx context.Context, q dbtx, name string) (*domain.Tag, bool, error) {
	var t domain.Tag
	var createdAt string
	err := q.QueryRowContext(ctx, `SELECT id, name, created_at FROM tags WHERE name = ?`, name).
		Scan(&t.ID, &t.Name, &createdAt)
	if err == nil {
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, false, err
		}
		return &t, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("lookup tag: %w", err)
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, false, fmt.Errorf("generate tag id: %w", err)
	}

	now := time.Now().UTC()
	_, err = q.ExecContext(ctx, `INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)`,
		tagID, name, formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race: another writer created it first.
			return findOrCreateTagTx(ctx, q, name)
		}
		return nil, false, fmt.Errorf("insert tag: %w", err)
	}

	return &domain.Tag{ID: tagID, Name: name, CreatedAt: now}, true, nil
}

// attachTagTx associates a tag with a page; an existing pair is a no-op.
func attachTagTx(ctx context.Context, q dbtx, pageID, tagID string) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO page_tags (page_id, tag_id, created_at)
		VALUES (?, ?, ?)`,
		pageID, tagID, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

// FindOrCreateTag finds an existing tag by name or creates a new one.
// Returns (tag, created, error) where created is true if a new tag was made.
func (s *Store) FindOrCreateTag(ctx context.Context, name string) (*domain.Tag, bool, error) {
	return findOrCreateTagTx(ctx, s.db, name)
}

// AttachTag associates a tag with a page. Idempotent.
func (s *Store) AttachTag(ctx context.Context, pageID, tagID string) error {
	return attachTagTx(ctx, s.db, pageID, tagID)
}

// DetachTag removes a page↔tag association.
func (s *Store) DetachTag(ctx context.Context, pageID, tagID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM page_tags WHERE page_id = ? AND tag_id = ?`,
		pageID, tagID)
	if err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}
	return nil
}

// ListTagsForPage returns a page's tags ordered by name.
func (s *Store) ListTagsForPage(ctx context.Context, pageID string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN page_tags pt ON t.id = pt.tag_id
		WHERE pt.page_id = ?
		ORDER BY t.name ASC`, pageID)
	if err != nil {
		return nil, fmt.Errorf("query page tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// ReplaceTagsForPage atomically swaps a page's tag set for the given names.
// The delete and reinserts share one transaction so readers never observe a
// half-empty set.
func (s *Store) ReplaceTagsForPage(ctx context.Context, pageID string, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM page_tags WHERE page_id = ?`, pageID); err != nil {
		return fmt.Errorf("clear page tags: %w", err)
	}

	for _, name := range names {
		tag, _, err := findOrCreateTagTx(ctx, tx, name)
		if err != nil {
			return err
		}
		if err := attachTagTx(ctx, tx, pageID, tag.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tags: %w", err)
	}

	s.indexPageByID(ctx, pageID)
	return nil
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// ListPagesWithTag returns discoverable pages carrying the tag, newest
// updated first.
func (s *Store) ListPagesWithTag(ctx context.Context, name string) ([]*domain.PageSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.content, u.username, p.updated_at
		FROM pages p
		LEFT JOIN users u ON p.created_by = u.id
		JOIN page_tags pt ON p.id = pt.page_id
		JOIN tags t ON pt.tag_id = t.id
		WHERE t.name = ? AND p.discoverable = 1
		ORDER BY p.updated_at DESC`, name)
	if err != nil {
		return nil, fmt.Errorf("query pages with tag: %w", err)
	}
	defer rows.Close()

	return scanPageSummaries(rows, true)
}

// scanTags reads tag rows in (id, name, created_at) order.
func scanTags(rows *sql.Rows) ([]*domain.Tag, error) {
	tags := []*domain.Tag{}
	for rows.Next() {
		var t domain.Tag
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		var err error
		t.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return tags, nil
}
