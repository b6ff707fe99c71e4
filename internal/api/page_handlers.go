package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litewiki/litewiki-server/internal/domain"
)

func (s *Server) registerPageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPages",
		Method:      http.MethodGet,
		Path:        "/api/v1/pages",
		Summary:     "List pages",
		Description: "Returns discoverable pages, most recently updated first",
		Tags:        []string{"Pages"},
	}, s.handleListPages)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPageTitles",
		Method:      http.MethodGet,
		Path:        "/api/v1/pages/titles",
		Summary:     "List all page titles",
		Description: "Returns every page title alphabetically, including hidden pages",
		Tags:        []string{"Pages"},
	}, s.handleListPageTitles)

	huma.Register(s.api, huma.Operation{
		OperationID: "createPage",
		Method:      http.MethodPost,
		Path:        "/api/v1/pages",
		Summary:     "Create page",
		Description: "Creates a page with an initial revision and optional tags and authors",
		Tags:        []string{"Pages"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePage)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPageByTitle",
		Method:      http.MethodGet,
		Path:        "/api/v1/pages/by-title/{title}",
		Summary:     "Get page by title",
		Description: "Returns a page by exact title match",
		Tags:        []string{"Pages"},
	}, s.handleGetPageByTitle)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPage",
		Method:      http.MethodGet,
		Path:        "/api/v1/pages/{id}",
		Summary:     "Get page",
		Description: "Returns a page by ID",
		Tags:        []string{"Pages"},
	}, s.handleGetPage)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePage",
		Method:      http.MethodPatch,
		Path:        "/api/v1/pages/{id}",
		Summary:     "Update page content",
		Description: "Replaces page content, capturing the previous content as a revision",
		Tags:        []string{"Pages"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePage)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePage",
		Method:      http.MethodDelete,
		Path:        "/api/v1/pages/{id}",
		Summary:     "Delete page",
		Description: "Deletes a page and its revision history",
		Tags:        []string{"Pages"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePage)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePageTags",
		Method:      http.MethodPut,
		Path:        "/api/v1/pages/{id}/tags",
		Summary:     "Replace page tags",
		Description: "Replaces the page's tag set with the given names",
		Tags:        []string{"Pages"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePageTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePageAuthors",
		Method:      http.MethodPut,
		Path:        "/api/v1/pages/{id}/authors",
		Summary:     "Replace page authors",
		Description: "Replaces the page's author display names",
		Tags:        []string{"Pages"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePageAuthors)
}

// === DTOs ===

// PageResponse contains full page data in API responses.
type PageResponse struct {
	ID           string    `json:"id" doc:"Page ID"`
	Title        string    `json:"title" doc:"Page title"`
	Content      string    `json:"content" doc:"Current page content"`
	Author       string    `json:"author,omitempty" doc:"Creating user's username"`
	Tags         []string  `json:"tags,omitempty" doc:"Tag names"`
	Authors      []string  `json:"authors,omitempty" doc:"Display-name authors"`
	Discoverable bool      `json:"discoverable" doc:"Included in public listings"`
	CreatedAt    time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time `json:"updated_at" doc:"Last update time"`
}

// PageSummaryResponse is the listing projection of a page.
type PageSummaryResponse struct {
	ID        string    `json:"id" doc:"Page ID"`
	Title     string    `json:"title" doc:"Page title"`
	Author    string    `json:"author,omitempty" doc:"Creating user's username"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func pageResponse(p *domain.Page) PageResponse {
	return PageResponse{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Author:       p.AuthorUsername,
		Tags:         p.Tags,
		Authors:      p.Authors,
		Discoverable: p.Discoverable,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func pageSummaryResponses(pages []*domain.PageSummary) []PageSummaryResponse {
	resp := make([]PageSummaryResponse, len(pages))
	for i, p := range pages {
		resp[i] = PageSummaryResponse{
			ID:        p.ID,
			Title:     p.Title,
			Author:    p.AuthorUsername,
			UpdatedAt: p.UpdatedAt,
		}
	}
	return resp
}

// ListPagesInput contains paging parameters for listing pages.
type ListPagesInput struct {
	Limit  int `query:"limit" default:"50" minimum:"1" maximum:"200" doc:"Maximum pages to return"`
	Offset int `query:"offset" default:"0" minimum:"0" doc:"Pages to skip"`
}

// ListPagesResponse contains a page listing.
type ListPagesResponse struct {
	Pages []PageSummaryResponse `json:"pages" doc:"Page summaries"`
}

// ListPagesOutput wraps the page listing for Huma.
type ListPagesOutput struct {
	Body ListPagesResponse
}

// PageTitlesResponse contains all page titles.
type PageTitlesResponse struct {
	Titles []string `json:"titles" doc:"All page titles, alphabetical"`
}

// PageTitlesOutput wraps the title listing for Huma.
type PageTitlesOutput struct {
	Body PageTitlesResponse
}

// CreatePageRequest is the request body for creating a page.
type CreatePageRequest struct {
	Title   string   `json:"title" validate:"required,min=1,max=200" doc:"Unique page title"`
	Content string   `json:"content" doc:"Initial page content"`
	Tags    []string `json:"tags,omitempty" doc:"Tag names to attach"`
	Authors []string `json:"authors,omitempty" doc:"Author display names to attach"`
}

// CreatePageInput wraps the create page request for Huma.
type CreatePageInput struct {
	Authorization string `header:"Authorization"`
	Body          CreatePageRequest
}

// PageOutput wraps a page response for Huma.
type PageOutput struct {
	Body PageResponse
}

// GetPageByTitleInput contains parameters for a title lookup.
type GetPageByTitleInput struct {
	Title string `path:"title" doc:"Exact page title"`
}

// GetPageInput contains parameters for an ID lookup.
type GetPageInput struct {
	ID string `path:"id" doc:"Page ID"`
}

// UpdatePageRequest is the request body for updating page content.
type UpdatePageRequest struct {
	Content string `json:"content" doc:"New page content"`
}

// UpdatePageInput wraps the update page request for Huma.
type UpdatePageInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Page ID"`
	Body          UpdatePageRequest
}

// DeletePageInput contains parameters for deleting a page.
type DeletePageInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Page ID"`
}

// NameListRequest is the request body for replacing a name set.
type NameListRequest struct {
	Names []string `json:"names" doc:"Replacement names; blanks dropped, duplicates collapsed"`
}

// UpdatePageTagsInput wraps the tag replacement request for Huma.
type UpdatePageTagsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Page ID"`
	Body          NameListRequest
}

// UpdatePageAuthorsInput wraps the author replacement request for Huma.
type UpdatePageAuthorsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Page ID"`
	Body          NameListRequest
}

// NameListResponse contains the resulting name set after a replacement.
type NameListResponse struct {
	Names []string `json:"names" doc:"Current names, ordered"`
}

// NameListOutput wraps a name list response for Huma.
type NameListOutput struct {
	Body NameListResponse
}

// === Handlers ===

func (s *Server) handleListPages(ctx context.Context, input *ListPagesInput) (*ListPagesOutput, error) {
	pages, err := s.services.Page.ListPages(ctx, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}
	return &ListPagesOutput{Body: ListPagesResponse{Pages: pageSummaryResponses(pages)}}, nil
}

func (s *Server) handleListPageTitles(ctx context.Context, _ *struct{}) (*PageTitlesOutput, error) {
	titles, err := s.services.Page.ListAllPageTitles(ctx)
	if err != nil {
		return nil, err
	}
	return &PageTitlesOutput{Body: PageTitlesResponse{Titles: titles}}, nil
}

func (s *Server) handleCreatePage(ctx context.Context, input *CreatePageInput) (*PageOutput, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	page, err := s.services.Page.CreatePage(ctx, session,
		input.Body.Title, input.Body.Content, input.Body.Tags, input.Body.Authors)
	if err != nil {
		return nil, err
	}
	return &PageOutput{Body: pageResponse(page)}, nil
}

func (s *Server) handleGetPageByTitle(ctx context.Context, input *GetPageByTitleInput) (*PageOutput, error) {
	page, err := s.services.Page.GetPage(ctx, input.Title)
	if err != nil {
		return nil, err
	}
	return &PageOutput{Body: pageResponse(page)}, nil
}

func (s *Server) handleGetPage(ctx context.Context, input *GetPageInput) (*PageOutput, error) {
	page, err := s.services.Page.GetPageByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PageOutput{Body: pageResponse(page)}, nil
}

func (s *Server) handleUpdatePage(ctx context.Context, input *UpdatePageInput) (*PageOutput, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Page.UpdatePage(ctx, session, input.ID, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &PageOutput{Body: pageResponse(page)}, nil
}

func (s *Server) handleDeletePage(ctx context.Context, input *DeletePageInput) (*MessageOutput, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Page.DeletePage(ctx, session, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "page deleted"}}, nil
}

func (s *Server) handleUpdatePageTags(ctx context.Context, input *UpdatePageTagsInput) (*NameListOutput, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Page.UpdateTags(ctx, session, input.ID, input.Body.Names)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return &NameListOutput{Body: NameListResponse{Names: names}}, nil
}

func (s *Server) handleUpdatePageAuthors(ctx context.Context, input *UpdatePageAuthorsInput) (*NameListOutput, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	authors, err := s.services.Page.UpdateAuthors(ctx, session, input.ID, input.Body.Names)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Name
	}
	return &NameListOutput{Body: NameListResponse{Names: names}}, nil
}
