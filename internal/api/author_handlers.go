package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerAuthorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "List authors",
		Description: "Returns every author display name, ordered by name",
		Tags:        []string{"Authors"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCreators",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/creators",
		Summary:     "List page creators",
		Description: "Returns usernames of users who have created at least one page",
		Tags:        []string{"Authors"},
	}, s.handleListCreators)
}

// === DTOs ===

// ListAuthorsResponse contains the author vocabulary.
type ListAuthorsResponse struct {
	Authors []string `json:"authors" doc:"Author display names, ordered"`
}

// ListAuthorsOutput wraps the author listing for Huma.
type ListAuthorsOutput struct {
	Body ListAuthorsResponse
}

// ListCreatorsResponse contains usernames of page creators.
type ListCreatorsResponse struct {
	Usernames []string `json:"usernames" doc:"Creating users' usernames, ordered"`
}

// ListCreatorsOutput wraps the creator listing for Huma.
type ListCreatorsOutput struct {
	Body ListCreatorsResponse
}

// === Handlers ===

func (s *Server) handleListAuthors(ctx context.Context, _ *struct{}) (*ListAuthorsOutput, error) {
	authors, err := s.services.Author.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Name
	}
	return &ListAuthorsOutput{Body: ListAuthorsResponse{Authors: names}}, nil
}

func (s *Server) handleListCreators(ctx context.Context, _ *struct{}) (*ListCreatorsOutput, error) {
	usernames, err := s.services.Author.ListCreatorUsernames(ctx)
	if err != nil {
		return nil, err
	}
	return &ListCreatorsOutput{Body: ListCreatorsResponse{Usernames: usernames}}, nil
}
