package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/id"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestUser inserts a user and returns it.
func createTestUser(t *testing.T, s *Store, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:        id.MustGenerate("user"),
		Username:  username,
		Role:      domain.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

// createTestPage inserts a page with optional tags and authors.
func createTestPage(t *testing.T, s *Store, title, content, createdBy string, tags, authors []string) *domain.Page {
	t.Helper()
	now := time.Now().UTC()
	p := &domain.Page{
		ID:           id.MustGenerate("page"),
		Title:        title,
		Content:      content,
		CreatedBy:    createdBy,
		Discoverable: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreatePage(context.Background(), p, tags, authors); err != nil {
		t.Fatalf("CreatePage(%s): %v", title, err)
	}
	return p
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	tables := []string{
		"users", "pages", "revisions", "tags", "page_tags", "authors", "page_authors",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_PragmasOnEveryConnection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Holding the first connection forces the pool to hand out a second
	// one. Per-connection pragmas must hold on both.
	first, err := s.db.Conn(ctx)
	if err != nil {
		t.Fatalf("first conn: %v", err)
	}
	defer first.Close()

	second, err := s.db.Conn(ctx)
	if err != nil {
		t.Fatalf("second conn: %v", err)
	}
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var fk int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("conn %d: query foreign_keys: %v", i, err)
		}
		if fk != 1 {
			t.Errorf("conn %d: foreign_keys = %d, want 1", i, fk)
		}
	}
}

func TestFormatTime_LexicographicOrder(t *testing.T) {
	// Stored timestamps are compared as text by ORDER BY and range
	// filters, so text order must equal time order even when the
	// fractional second would round-trip with trailing zeros trimmed.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := base.Add(120 * time.Millisecond)
	newer := base.Add(125 * time.Millisecond)

	if formatTime(older) >= formatTime(newer) {
		t.Errorf("formatTime order: %q >= %q", formatTime(older), formatTime(newer))
	}

	for _, ts := range []time.Time{older, newer} {
		got, err := parseTime(formatTime(ts))
		if err != nil {
			t.Fatalf("parseTime(%q): %v", formatTime(ts), err)
		}
		if !got.Equal(ts) {
			t.Errorf("round trip: got %v, want %v", got, ts)
		}
	}
}

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent).
	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	s2.Close()
}
