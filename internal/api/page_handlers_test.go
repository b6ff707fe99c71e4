package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litewiki/litewiki-server/internal/auth"
	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/id"
	"github.com/litewiki/litewiki-server/internal/search"
	"github.com/litewiki/litewiki-server/internal/service"
	"github.com/litewiki/litewiki-server/internal/store/sqlite"
	"github.com/litewiki/litewiki-server/internal/validation"
)

const testToken = "test-token-alice"

// testEnvelope mirrors the wire envelope for decoding responses in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// pageTestServer wraps the API server for page testing.
type pageTestServer struct {
	*Server
	api humatest.TestAPI
}

func setupPageTestServer(t *testing.T) *pageTestServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	index, err := search.NewIndex(search.Options{
		DataPath: tmpDir,
		Logger:   logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })
	st.SetSearchIndexer(index)

	// Provision the user the static verifier resolves tokens to.
	err = st.CreateUser(context.Background(), &domain.User{
		ID:        id.MustGenerate("user"),
		Username:  "alice",
		Role:      domain.RoleUser,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	services := &Services{
		Page:   service.NewPageService(st, logger),
		Tag:    service.NewTagService(st, logger),
		Author: service.NewAuthorService(st, logger),
		Search: service.NewSearchService(st, index, logger),
	}

	verifier := auth.NewStaticVerifier(map[string]string{testToken: "alice"}, st)

	router := chi.NewRouter()
	router.Use(sessionMiddleware(verifier))

	humaConfig := huma.DefaultConfig("LiteWiki API Test", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:   "http",
			Scheme: "bearer",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:       st,
		searchIndex: index,
		services:    services,
		validator:   validation.New(),
		router:      router,
		api:         api,
		logger:      logger,
	}

	s.registerHealthRoutes()
	s.registerPageRoutes()
	s.registerRevisionRoutes()
	s.registerTagRoutes()
	s.registerAuthorRoutes()
	s.registerSearchRoutes()

	return &pageTestServer{
		Server: s,
		api:    humatest.Wrap(t, api),
	}
}

// createPage creates a page through the API and returns its ID.
func (ts *pageTestServer) createPage(t *testing.T, title, content string, tags []string) string {
	t.Helper()

	body := map[string]any{"title": title, "content": content}
	if tags != nil {
		body["tags"] = tags
	}
	resp := ts.api.Post("/api/v1/pages", body, "Authorization: Bearer "+testToken)
	require.Equal(t, http.StatusOK, resp.Code, "create failed: %s", resp.Body.String())

	var envelope testEnvelope[PageResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.ID
}

// === Tests ===

func TestCreatePage_Success(t *testing.T) {
	ts := setupPageTestServer(t)

	resp := ts.api.Post("/api/v1/pages", map[string]any{
		"title":   "Getting Started",
		"content": "Welcome to the wiki.",
		"tags":    []string{"intro", "help"},
		"authors": []string{"Jane Doe"},
	}, "Authorization: Bearer "+testToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[PageResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, "Getting Started", envelope.Data.Title)
	assert.Equal(t, "alice", envelope.Data.Author)
	assert.ElementsMatch(t, []string{"intro", "help"}, envelope.Data.Tags)
	assert.Equal(t, []string{"Jane Doe"}, envelope.Data.Authors)
}

func TestCreatePage_RequiresAuth(t *testing.T) {
	ts := setupPageTestServer(t)

	resp := ts.api.Post("/api/v1/pages", map[string]any{
		"title":   "No Auth",
		"content": "body",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreatePage_DuplicateTitle(t *testing.T) {
	ts := setupPageTestServer(t)

	ts.createPage(t, "Unique", "first", nil)

	resp := ts.api.Post("/api/v1/pages", map[string]any{
		"title":   "Unique",
		"content": "second",
	}, "Authorization: Bearer "+testToken)
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "DUPLICATE_TITLE", envelope.Code)
}

func TestGetPageByTitle(t *testing.T) {
	ts := setupPageTestServer(t)

	ts.createPage(t, "Lookup Target", "findable content", nil)

	resp := ts.api.Get("/api/v1/pages/by-title/Lookup%20Target")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[PageResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Lookup Target", envelope.Data.Title)
	assert.Equal(t, "findable content", envelope.Data.Content)
}

func TestGetPage_NotFound(t *testing.T) {
	ts := setupPageTestServer(t)

	resp := ts.api.Get("/api/v1/pages/page-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestUpdatePage_CapturesRevision(t *testing.T) {
	ts := setupPageTestServer(t)

	pageID := ts.createPage(t, "Evolving", "v1", nil)

	resp := ts.api.Patch("/api/v1/pages/"+pageID, map[string]any{
		"content": "v2",
	}, "Authorization: Bearer "+testToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var pageEnvelope testEnvelope[PageResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &pageEnvelope))
	assert.Equal(t, "v2", pageEnvelope.Data.Content)

	resp = ts.api.Get("/api/v1/pages/" + pageID + "/revisions")
	require.Equal(t, http.StatusOK, resp.Code)

	var revEnvelope testEnvelope[ListRevisionsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &revEnvelope))
	// Initial snapshot plus the pre-update snapshot, newest first.
	require.Len(t, revEnvelope.Data.Revisions, 2)
	assert.Equal(t, "v1", revEnvelope.Data.Revisions[0].Content)
}

func TestRestoreRevision_RoundTrip(t *testing.T) {
	ts := setupPageTestServer(t)

	pageID := ts.createPage(t, "Restorable", "original", nil)

	resp := ts.api.Patch("/api/v1/pages/"+pageID, map[string]any{
		"content": "changed",
	}, "Authorization: Bearer "+testToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/pages/" + pageID + "/revisions")
	require.Equal(t, http.StatusOK, resp.Code)

	var revEnvelope testEnvelope[ListRevisionsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &revEnvelope))
	require.NotEmpty(t, revEnvelope.Data.Revisions)
	target := revEnvelope.Data.Revisions[0] // "original" snapshot

	resp = ts.api.Post("/api/v1/revisions/"+target.ID+"/restore",
		"Authorization: Bearer "+testToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var pageEnvelope testEnvelope[PageResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &pageEnvelope))
	assert.Equal(t, "original", pageEnvelope.Data.Content)
}

func TestDeletePage_ThenGone(t *testing.T) {
	ts := setupPageTestServer(t)

	pageID := ts.createPage(t, "Doomed", "content", nil)

	resp := ts.api.Delete("/api/v1/pages/"+pageID, "Authorization: Bearer "+testToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/pages/" + pageID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdatePageTags_ReplacesSet(t *testing.T) {
	ts := setupPageTestServer(t)

	pageID := ts.createPage(t, "Tagged", "content", []string{"old"})

	resp := ts.api.Put("/api/v1/pages/"+pageID+"/tags", map[string]any{
		"names": []string{"fresh", "  fresh  ", "clean"},
	}, "Authorization: Bearer "+testToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[NameListResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.ElementsMatch(t, []string{"fresh", "clean"}, envelope.Data.Names)
}

func TestListPages_OnlyDiscoverable(t *testing.T) {
	ts := setupPageTestServer(t)

	ts.createPage(t, "Visible One", "a", nil)
	ts.createPage(t, "Visible Two", "b", nil)

	resp := ts.api.Get("/api/v1/pages")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListPagesResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Pages, 2)
}

func TestListPageTitles_Alphabetical(t *testing.T) {
	ts := setupPageTestServer(t)

	ts.createPage(t, "Zebra", "z", nil)
	ts.createPage(t, "Aardvark", "a", nil)

	resp := ts.api.Get("/api/v1/pages/titles")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[PageTitlesResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, []string{"Aardvark", "Zebra"}, envelope.Data.Titles)
}

func TestHealthCheck(t *testing.T) {
	ts := setupPageTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "healthy", envelope.Data.Status)
	assert.Contains(t, envelope.Data.Components, "database")
	assert.Contains(t, envelope.Data.Components, "search")
}
