package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litewiki/litewiki-server/internal/store"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchPages",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search pages",
		Description: "Filtered substring search over title and content with tag, author, and date filters",
		Tags:        []string{"Search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "quickSearch",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/quick",
		Summary:     "Quick search",
		Description: "Relevance-ranked, typo-tolerant lookup against the full-text index",
		Tags:        []string{"Search"},
	}, s.handleQuickSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "reindexSearch",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/reindex",
		Summary:     "Rebuild search index",
		Description: "Rebuilds the full-text index from the page store",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReindex)
}

// === DTOs ===

// SearchInput contains parameters for the filtered page search.
type SearchInput struct {
	Query  string `query:"q" validate:"omitempty,max=200" doc:"Substring to match against title or content"`
	Tags   string `query:"tags" validate:"omitempty,max=500" doc:"Comma-separated tag names; pages matching ANY are returned"`
	Author string `query:"author" validate:"omitempty,max=100" doc:"Exact username of the creating user"`
	From   string `query:"from" validate:"omitempty" doc:"Inclusive lower bound on update time (RFC 3339 or YYYY-MM-DD)"`
	To     string `query:"to" validate:"omitempty" doc:"Inclusive upper bound on update time (RFC 3339 or YYYY-MM-DD)"`
}

// SearchOutput wraps the filtered search results for Huma.
type SearchOutput struct {
	Body ListPagesResponse
}

// QuickSearchInput contains parameters for the indexed quick search.
type QuickSearchInput struct {
	Query string `query:"q" required:"true" validate:"required,min=1,max=200" doc:"Search query"`
	Limit int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 10)"`
}

// QuickSearchHit contains a single ranked result.
type QuickSearchHit struct {
	ID         string            `json:"id" doc:"Page ID"`
	Score      float64           `json:"score" doc:"Relevance score"`
	Title      string            `json:"title" doc:"Page title"`
	Author     string            `json:"author,omitempty" doc:"Creating user's username"`
	Tags       []string          `json:"tags,omitempty" doc:"Tag names"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// QuickSearchResponse contains ranked search results.
type QuickSearchResponse struct {
	Query  string           `json:"query" doc:"Original search query"`
	Total  uint64           `json:"total" doc:"Total matches"`
	TookMs int64            `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []QuickSearchHit `json:"hits" doc:"Ranked results"`
}

// QuickSearchOutput wraps the quick search response for Huma.
type QuickSearchOutput struct {
	Body QuickSearchResponse
}

// ReindexInput contains parameters for rebuilding the search index.
type ReindexInput struct {
	Authorization string `header:"Authorization"`
}

// ReindexResponse reports the outcome of an index rebuild.
type ReindexResponse struct {
	Indexed int `json:"indexed" doc:"Number of pages indexed"`
}

// ReindexOutput wraps the reindex response for Huma.
type ReindexOutput struct {
	Body ReindexResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	filters := store.SearchFilters{
		AuthorUsername: input.Author,
	}

	if input.Tags != "" {
		for t := range strings.SplitSeq(input.Tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filters.Tags = append(filters.Tags, t)
			}
		}
	}

	from, err := parseTimeBound(input.From, false)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid 'from' date")
	}
	filters.DateFrom = from

	to, err := parseTimeBound(input.To, true)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid 'to' date")
	}
	filters.DateTo = to

	pages, err := s.services.Search.Search(ctx, input.Query, filters)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: ListPagesResponse{Pages: pageSummaryResponses(pages)}}, nil
}

func (s *Server) handleQuickSearch(ctx context.Context, input *QuickSearchInput) (*QuickSearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	result, err := s.services.Search.QuickSearch(ctx, input.Query, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]QuickSearchHit, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = QuickSearchHit{
			ID:         h.ID,
			Score:      h.Score,
			Title:      h.Title,
			Author:     h.Author,
			Tags:       h.Tags,
			Highlights: h.Highlights,
		}
	}

	return &QuickSearchOutput{
		Body: QuickSearchResponse{
			Query:  result.Query,
			Total:  result.Total,
			TookMs: result.TookMs,
			Hits:   hits,
		},
	}, nil
}

func (s *Server) handleReindex(ctx context.Context, _ *ReindexInput) (*ReindexOutput, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}

	indexed, err := s.services.Search.Reindex(ctx)
	if err != nil {
		return nil, err
	}
	return &ReindexOutput{Body: ReindexResponse{Indexed: indexed}}, nil
}

// parseTimeBound parses an RFC 3339 timestamp or a bare date. Bare dates
// used as an upper bound resolve to the end of that day so the range stays
// inclusive. Empty input yields a nil bound.
func parseTimeBound(value string, upper bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	t = t.UTC()
	return &t, nil
}
