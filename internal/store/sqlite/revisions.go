package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/id"
	"github.com/litewiki/litewiki-server/internal/store"
)

// captureRevisionTx inserts exactly one snapshot row. Runs inside the
// caller's transaction so a revision can never outlive a failed write.
func captureRevisionTx(ctx context.Context, q dbtx, pageID, content, authorID string) (string, error) {
	revID, err := id.Generate("rev")
	if err != nil {
		return "", fmt.Errorf("generate revision id: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO revisions (id, page_id, content, author_id, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		revID,
		pageID,
		content,
		nullString(authorID),
		formatTime(time.Now()),
	)
	if err != nil {
		return "", fmt.Errorf("insert revision: %w", err)
	}

	return revID, nil
}

// CaptureRevision inserts one immutable snapshot of a page's content.
// pageID must reference an existing page; authorID may be empty for
// system-authored snapshots.
func (s *Store) CaptureRevision(ctx context.Context, pageID, content, authorID string) (string, error) {
	return captureRevisionTx(ctx, s.db, pageID, content, authorID)
}

// ListRevisions returns a page's revisions newest first, with author
// usernames resolved.
func (s *Store) ListRevisions(ctx context.Context, pageID string) ([]*domain.Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.page_id, r.content, r.author_id, r.timestamp, u.username
		FROM revisions r
		LEFT JOIN users u ON r.author_id = u.id
		WHERE r.page_id = ?
		ORDER BY r.timestamp DESC, r.rowid DESC`, pageID)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	revisions := []*domain.Revision{}
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return revisions, nil
}

// GetRevision retrieves a revision by ID with its page title resolved.
// Returns store.ErrNotFound if the revision does not exist.
func (s *Store) GetRevision(ctx context.Context, revisionID string) (*domain.Revision, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.page_id, r.content, r.author_id, r.timestamp, u.username, p.title
		FROM revisions r
		JOIN pages p ON r.page_id = p.id
		LEFT JOIN users u ON r.author_id = u.id
		WHERE r.id = ?`, revisionID)

	var (
		rev       domain.Revision
		authorID  sql.NullString
		username  sql.NullString
		timestamp string
	)
	err := row.Scan(&rev.ID, &rev.PageID, &rev.Content, &authorID, &timestamp, &username, &rev.PageTitle)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("revision not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scan revision: %w", err)
	}

	rev.AuthorID = authorID.String
	rev.AuthorUsername = username.String
	rev.Timestamp, err = parseTime(timestamp)
	if err != nil {
		return nil, err
	}

	return &rev, nil
}

// scanRevision scans a revision row without the page title column.
func scanRevision(scanner interface{ Scan(dest ...any) error }) (*domain.Revision, error) {
	var (
		rev       domain.Revision
		authorID  sql.NullString
		username  sql.NullString
		timestamp string
	)

	err := scanner.Scan(&rev.ID, &rev.PageID, &rev.Content, &authorID, &timestamp, &username)
	if err != nil {
		return nil, fmt.Errorf("scan revision: %w", err)
	}

	rev.AuthorID = authorID.String
	rev.AuthorUsername = username.String
	rev.Timestamp, err = parseTime(timestamp)
	if err != nil {
		return nil, err
	}

	return &rev, nil
}
