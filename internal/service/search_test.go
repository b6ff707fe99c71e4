package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litewiki/litewiki-server/internal/errors"
	"github.com/litewiki/litewiki-server/internal/search"
	"github.com/litewiki/litewiki-server/internal/store"
	"github.com/litewiki/litewiki-server/internal/store/sqlite"
)

// setupSearchTest wires a search service to a temporary store and index,
// with the index receiving writes through the store hook.
func setupSearchTest(t *testing.T) (*SearchService, *PageService, store.Store) {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	s, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	index, err := search.NewIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })
	s.SetSearchIndexer(index)

	return NewSearchService(s, index, logger), NewPageService(s, logger), s
}

func TestSearchService_Search_RequiresCriteria(t *testing.T) {
	svc, _, _ := setupSearchTest(t)

	_, err := svc.Search(context.Background(), "   ", store.SearchFilters{})
	assertCode(t, err, errors.CodeValidation)

	// Whitespace-only filter values count as absent.
	_, err = svc.Search(context.Background(), "", store.SearchFilters{
		Tags:           []string{"  ", ""},
		AuthorUsername: "  ",
	})
	assertCode(t, err, errors.CodeValidation)
}

func TestSearchService_Search_Filtered(t *testing.T) {
	svc, pages, s := setupSearchTest(t)
	ctx := context.Background()

	alice := loginTestUser(t, s, "alice")
	bob := loginTestUser(t, s, "bob")

	_, err := pages.CreatePage(ctx, alice, "P1", "one", []string{"a", "b"}, nil)
	require.NoError(t, err)
	_, err = pages.CreatePage(ctx, bob, "P2", "two", []string{"b", "c"}, nil)
	require.NoError(t, err)
	_, err = pages.CreatePage(ctx, bob, "P3", "three", []string{"c"}, nil)
	require.NoError(t, err)

	results, err := svc.Search(ctx, "", store.SearchFilters{Tags: []string{"a", "c"}})
	require.NoError(t, err)
	assert.Len(t, results, 3, "tags combine with OR")

	results, err = svc.Search(ctx, "", store.SearchFilters{
		Tags:           []string{"a", "c"},
		AuthorUsername: "bob",
	})
	require.NoError(t, err)
	assert.Len(t, results, 2, "author filter ANDs with the tag group")
}

func TestSearchService_QuickSearch(t *testing.T) {
	svc, pages, s := setupSearchTest(t)
	ctx := context.Background()

	session := loginTestUser(t, s, "alice")

	_, err := pages.CreatePage(ctx, session, "Raft Consensus", "leader election", []string{"systems"}, nil)
	require.NoError(t, err)

	// The store hook indexed the page on create.
	result, err := svc.QuickSearch(ctx, "consensus", 10)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "Raft Consensus", result.Hits[0].Title)

	_, err = svc.QuickSearch(ctx, "   ", 10)
	assertCode(t, err, errors.CodeValidation)
}

func TestSearchService_QuickSearch_DeletedPageDropsOut(t *testing.T) {
	svc, pages, s := setupSearchTest(t)
	ctx := context.Background()

	session := loginTestUser(t, s, "alice")

	page, err := pages.CreatePage(ctx, session, "Transient", "short lived", nil, nil)
	require.NoError(t, err)
	require.NoError(t, pages.DeletePage(ctx, session, page.ID))

	result, err := svc.QuickSearch(ctx, "transient", 10)
	require.NoError(t, err)
	assert.Empty(t, result.Hits)
}

func TestSearchService_Reindex(t *testing.T) {
	svc, pages, s := setupSearchTest(t)
	ctx := context.Background()

	session := loginTestUser(t, s, "alice")

	_, err := pages.CreatePage(ctx, session, "One", "first page", nil, nil)
	require.NoError(t, err)
	_, err = pages.CreatePage(ctx, session, "Two", "second page", nil, nil)
	require.NoError(t, err)

	indexed, err := svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)

	result, err := svc.QuickSearch(ctx, "second", 10)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "Two", result.Hits[0].Title)
}
