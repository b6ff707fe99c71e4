package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns every tag, ordered by name",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagPages",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{name}/pages",
		Summary:     "Get pages with tag",
		Description: "Returns discoverable pages carrying this tag",
		Tags:        []string{"Tags"},
	}, s.handleGetTagPages)
}

// === DTOs ===

// ListTagsResponse contains the tag vocabulary.
type ListTagsResponse struct {
	Tags []string `json:"tags" doc:"Tag names, ordered"`
}

// ListTagsOutput wraps the tag listing for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// GetTagPagesInput contains parameters for listing pages with a tag.
type GetTagPagesInput struct {
	Name string `path:"name" doc:"Tag name, exact match"`
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return &ListTagsOutput{Body: ListTagsResponse{Tags: names}}, nil
}

func (s *Server) handleGetTagPages(ctx context.Context, input *GetTagPagesInput) (*ListPagesOutput, error) {
	pages, err := s.services.Tag.ListPagesWithTag(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	return &ListPagesOutput{Body: ListPagesResponse{Pages: pageSummaryResponses(pages)}}, nil
}
