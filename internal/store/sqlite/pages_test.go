package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/id"
	"github.com/litewiki/litewiki-server/internal/store"
)

func TestCreateAndGetPage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, s, "alice")
	p := createTestPage(t, s, "Home", "# Welcome", u.ID, []string{"intro"}, []string{"Alice A."})

	got, err := s.GetPageByTitle(ctx, "Home")
	if err != nil {
		t.Fatalf("GetPageByTitle: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("ID: got %q, want %q", got.ID, p.ID)
	}
	if got.Content != "# Welcome" {
		t.Errorf("Content: got %q, want %q", got.Content, "# Welcome")
	}
	if got.AuthorUsername != "alice" {
		t.Errorf("AuthorUsername: got %q, want %q", got.AuthorUsername, "alice")
	}
	if !got.Discoverable {
		t.Error("expected page to be discoverable")
	}

	// Lookup by ID resolves the same row.
	byID, err := s.GetPageByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPageByID: %v", err)
	}
	if byID.Title != "Home" {
		t.Errorf("Title: got %q, want %q", byID.Title, "Home")
	}

	// Creation captured an initial revision of the created content.
	revs, err := s.ListRevisions(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revs) != 1 {
		t.Fatalf("expected 1 initial revision, got %d", len(revs))
	}
	if revs[0].Content != "# Welcome" {
		t.Errorf("initial revision content: got %q", revs[0].Content)
	}

	// Tags and authors were attached.
	tags, err := s.ListTagsForPage(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListTagsForPage: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "intro" {
		t.Errorf("tags: got %+v", tags)
	}
	authors, err := s.ListAuthorsForPage(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListAuthorsForPage: %v", err)
	}
	if len(authors) != 1 || authors[0].Name != "Alice A." {
		t.Errorf("authors: got %+v", authors)
	}
}

func TestCreatePage_DuplicateTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestPage(t, s, "Home", "first", "", nil, nil)

	now := time.Now().UTC()
	dup := &domain.Page{
		ID:           id.MustGenerate("page"),
		Title:        "Home",
		Content:      "second",
		Discoverable: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.CreatePage(ctx, dup, nil, nil)
	if err == nil {
		t.Fatal("expected error for duplicate title")
	}

	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected *store.Error, got %T: %v", err, err)
	}
	if storeErr.Code != store.ErrAlreadyExists.Code {
		t.Errorf("expected status %d, got %d", store.ErrAlreadyExists.Code, storeErr.Code)
	}

	// The failed create must not leave a page or a revision behind.
	count, err := s.CountPages(ctx)
	if err != nil {
		t.Fatalf("CountPages: %v", err)
	}
	if count != 1 {
		t.Errorf("expected page count 1, got %d", count)
	}
}

func TestGetPage_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetPageByTitle(ctx, "missing")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.ErrNotFound.Code {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdatePageContent_RevisionBeforeWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, s, "alice")
	p := createTestPage(t, s, "Doc", "A", u.ID, nil, nil)

	if err := s.UpdatePageContent(ctx, p.ID, "B", u.ID); err != nil {
		t.Fatalf("UpdatePageContent: %v", err)
	}
	if err := s.UpdatePageContent(ctx, p.ID, "C", u.ID); err != nil {
		t.Fatalf("UpdatePageContent: %v", err)
	}

	got, err := s.GetPageByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPageByID: %v", err)
	}
	if got.Content != "C" {
		t.Errorf("live content: got %q, want %q", got.Content, "C")
	}

	// Newest first: pre-C snapshot, pre-B snapshot, initial snapshot.
	revs, err := s.ListRevisions(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	want := []string{"B", "A", "A"}
	if len(revs) != len(want) {
		t.Fatalf("expected %d revisions, got %d", len(want), len(revs))
	}
	for i, content := range want {
		if revs[i].Content != content {
			t.Errorf("revision[%d]: got %q, want %q", i, revs[i].Content, content)
		}
	}
}

func TestUpdatePageContent_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdatePageContent(context.Background(), "page-missing", "x", "")
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.ErrNotFound.Code {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRestoreRevision_PreservesHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, s, "alice")
	p := createTestPage(t, s, "Doc", "A", u.ID, nil, nil)
	if err := s.UpdatePageContent(ctx, p.ID, "B", u.ID); err != nil {
		t.Fatalf("UpdatePageContent: %v", err)
	}
	if err := s.UpdatePageContent(ctx, p.ID, "C", u.ID); err != nil {
		t.Fatalf("UpdatePageContent: %v", err)
	}

	revs, err := s.ListRevisions(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	before := len(revs)

	// Restore the oldest snapshot ("A", the initial revision).
	target := revs[len(revs)-1]
	restored, err := s.RestoreRevision(ctx, target.ID, u.ID)
	if err != nil {
		t.Fatalf("RestoreRevision: %v", err)
	}
	if restored.Content != "A" {
		t.Errorf("restored content: got %q, want %q", restored.Content, "A")
	}

	// One pre-restore snapshot of "C" was added; nothing was removed.
	revs, err = s.ListRevisions(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revs) != before+1 {
		t.Fatalf("expected %d revisions, got %d", before+1, len(revs))
	}
	if revs[0].Content != "C" {
		t.Errorf("newest revision: got %q, want %q", revs[0].Content, "C")
	}
}

func TestRestoreRevision_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RestoreRevision(context.Background(), "rev-missing", "")
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.ErrNotFound.Code {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeletePage_Cascade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p1 := createTestPage(t, s, "One", "x", "", []string{"a"}, nil)
	p2 := createTestPage(t, s, "Two", "y", "", []string{"a"}, nil)

	if err := s.UpdatePageContent(ctx, p1.ID, "x2", ""); err != nil {
		t.Fatalf("UpdatePageContent: %v", err)
	}

	if err := s.DeletePage(ctx, p1.ID); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}

	if _, err := s.GetPageByID(ctx, p1.ID); err == nil {
		t.Error("expected deleted page lookup to fail")
	}

	// Revisions are gone with the page.
	revs, err := s.ListRevisions(ctx, p1.ID)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revs) != 0 {
		t.Errorf("expected no revisions after delete, got %d", len(revs))
	}

	// The shared tag row survives because another page references it.
	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "a" {
		t.Errorf("expected tag %q to survive, got %+v", "a", tags)
	}

	// And it is still attached to the surviving page.
	p2Tags, err := s.ListTagsForPage(ctx, p2.ID)
	if err != nil {
		t.Fatalf("ListTagsForPage: %v", err)
	}
	if len(p2Tags) != 1 {
		t.Errorf("expected surviving page to keep its tag, got %+v", p2Tags)
	}
}

func TestDeletePage_NoOrphanedAssociations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := createTestPage(t, s, "Doomed", "x", "", []string{"a", "b"}, []string{"Alice A."})

	// Pin one pooled connection so the delete runs on a different one;
	// the cascade must hold on every connection, not just the first.
	held, err := s.db.Conn(ctx)
	if err != nil {
		t.Fatalf("conn: %v", err)
	}
	defer held.Close()

	if err := s.DeletePage(ctx, p.ID); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}

	for _, table := range []string{"page_tags", "page_authors"} {
		var n int
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+table+" WHERE page_id = ?", p.ID).Scan(&n)
		if err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s: %d rows left for deleted page", table, n)
		}
	}
}

func TestListRevisions_SubSecondOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := createTestPage(t, s, "Doc", "initial", "", nil, nil)

	// Two snapshots 5ms apart within the same second. The fractional
	// parts would be trimmed to different widths by a Nano encoding,
	// breaking the text ordering the revision query relies on.
	base := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	insert := func(content string, ts time.Time) {
		t.Helper()
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO revisions (id, page_id, content, author_id, timestamp)
			VALUES (?, ?, ?, NULL, ?)`,
			id.MustGenerate("rev"), p.ID, content, formatTime(ts))
		if err != nil {
			t.Fatalf("insert revision: %v", err)
		}
	}
	insert("newer", base.Add(125*time.Millisecond))
	insert("older", base.Add(120*time.Millisecond))

	revs, err := s.ListRevisions(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revs) != 3 {
		t.Fatalf("expected 3 revisions, got %d", len(revs))
	}
	if revs[0].Content != "newer" || revs[1].Content != "older" {
		t.Errorf("order: got [%q, %q], want [%q, %q]",
			revs[0].Content, revs[1].Content, "newer", "older")
	}
}

func TestDeletePage_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.DeletePage(context.Background(), "page-missing")
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.ErrNotFound.Code {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListPages_DiscoverableOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestPage(t, s, "Public", "x", "", nil, nil)

	now := time.Now().UTC()
	hidden := &domain.Page{
		ID:           id.MustGenerate("page"),
		Title:        "Hidden",
		Content:      "y",
		Discoverable: false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreatePage(ctx, hidden, nil, nil); err != nil {
		t.Fatalf("CreatePage: %v", err)
	}

	pages, err := s.ListPages(ctx, 50, 0)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(pages) != 1 || pages[0].Title != "Public" {
		t.Errorf("expected only discoverable page, got %+v", pages)
	}

	// Direct lookup ignores discoverability.
	if _, err := s.GetPageByTitle(ctx, "Hidden"); err != nil {
		t.Errorf("direct lookup of hidden page: %v", err)
	}

	// Administrative enumeration includes hidden pages, alphabetically.
	titles, err := s.ListAllPageTitles(ctx)
	if err != nil {
		t.Fatalf("ListAllPageTitles: %v", err)
	}
	if len(titles) != 2 || titles[0] != "Hidden" || titles[1] != "Public" {
		t.Errorf("titles: got %v", titles)
	}
}

func TestListPages_RecencyOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := createTestPage(t, s, "Older", "x", "", nil, nil)
	createTestPage(t, s, "Newer", "y", "", nil, nil)

	// Touching the older page moves it to the front.
	if err := s.UpdatePageContent(ctx, older.ID, "x2", ""); err != nil {
		t.Fatalf("UpdatePageContent: %v", err)
	}

	pages, err := s.ListPages(ctx, 50, 0)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].Title != "Older" {
		t.Errorf("expected most recently updated first, got %q", pages[0].Title)
	}
}
