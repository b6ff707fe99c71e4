package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/id"
)

// findOrCreateAuthorTx resolves a display-author name to a row, creating it
// if absent. Same race resolution as tags: the unique constraint decides the
// winner and losers fetch its row.
func findOrCreateAuthorTx(ctx context.Context, q dbtx, name string) (*domain.Author, bool, error) {
	var a domain.Author
	var createdAt string
	err := q.QueryRowContext(ctx, `SELECT id, name, created_at FROM authors WHERE name = ?`, name).
		Scan(&a.ID, &a.Name, &createdAt)
	if err == nil {
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, false, err
		}
		return &a, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("lookup author: %w", err)
	}

	authorID, err := id.Generate("author")
	if err != nil {
		return nil, false, fmt.Errorf("generate author id: %w", err)
	}

	now := time.Now().UTC()
	_, err = q.ExecContext(ctx, `INSERT INTO authors (id, name, created_at) VALUES (?, ?, ?)`,
		authorID, name, formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return findOrCreateAuthorTx(ctx, q, name)
		}
		return nil, false, fmt.Errorf("insert author: %w", err)
	}

	return &domain.Author{ID: authorID, Name: name, CreatedAt: now}, true, nil
}

// attachAuthorTx associates an author with a page; an existing pair is a no-op.
func attachAuthorTx(ctx context.Context, q dbtx, pageID, authorID string) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO page_authors (page_id, author_id, created_at)
		VALUES (?, ?, ?)`,
		pageID, authorID, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("attach author: %w", err)
	}
	return nil
}

// FindOrCreateAuthor finds an existing author by name or creates a new one.
func (s *Store) FindOrCreateAuthor(ctx context.Context, name string) (*domain.Author, bool, error) {
	return findOrCreateAuthorTx(ctx, s.db, name)
}

// AttachAuthor associates an author with a page. Idempotent.
func (s *Store) AttachAuthor(ctx context.Context, pageID, authorID string) error {
	return attachAuthorTx(ctx, s.db, pageID, authorID)
}

// DetachAuthor removes a page↔author association.
func (s *Store) DetachAuthor(ctx context.Context, pageID, authorID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM page_authors WHERE page_id = ? AND author_id = ?`,
		pageID, authorID)
	if err != nil {
		return fmt.Errorf("detach author: %w", err)
	}
	return nil
}

// ListAuthorsForPage returns a page's display authors ordered by name.
func (s *Store) ListAuthorsForPage(ctx context.Context, pageID string) ([]*domain.Author, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.created_at
		FROM authors a
		JOIN page_authors pa ON a.id = pa.author_id
		WHERE pa.page_id = ?
		ORDER BY a.name ASC`, pageID)
	if err != nil {
		return nil, fmt.Errorf("query page authors: %w", err)
	}
	defer rows.Close()

	return scanAuthors(rows)
}

// ReplaceAuthorsForPage atomically swaps a page's author set for the given
// names, in one transaction.
func (s *Store) ReplaceAuthorsForPage(ctx context.Context, pageID string, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM page_authors WHERE page_id = ?`, pageID); err != nil {
		return fmt.Errorf("clear page authors: %w", err)
	}

	for _, name := range names {
		author, _, err := findOrCreateAuthorTx(ctx, tx, name)
		if err != nil {
			return err
		}
		if err := attachAuthorTx(ctx, tx, pageID, author.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace authors: %w", err)
	}

	return nil
}

// ListAuthors returns all display authors ordered by name.
func (s *Store) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM authors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	return scanAuthors(rows)
}

// scanAuthors reads author rows in (id, name, created_at) order.
func scanAuthors(rows *sql.Rows) ([]*domain.Author, error) {
	authors := []*domain.Author{}
	for rows.Next() {
		var a domain.Author
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		var err error
		a.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		authors = append(authors, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return authors, nil
}
