package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litewiki/litewiki-server/internal/domain"
)

func (s *Server) registerRevisionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPageRevisions",
		Method:      http.MethodGet,
		Path:        "/api/v1/pages/{id}/revisions",
		Summary:     "List page revisions",
		Description: "Returns a page's revision history, newest first",
		Tags:        []string{"Revisions"},
	}, s.handleListPageRevisions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRevision",
		Method:      http.MethodGet,
		Path:        "/api/v1/revisions/{id}",
		Summary:     "Get revision",
		Description: "Returns a single revision snapshot",
		Tags:        []string{"Revisions"},
	}, s.handleGetRevision)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreRevision",
		Method:      http.MethodPost,
		Path:        "/api/v1/revisions/{id}/restore",
		Summary:     "Restore revision",
		Description: "Rolls the page back to this revision, snapshotting the current content first",
		Tags:        []string{"Revisions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRestoreRevision)
}

// === DTOs ===

// RevisionResponse contains revision data in API responses.
type RevisionResponse struct {
	ID        string    `json:"id" doc:"Revision ID"`
	PageID    string    `json:"page_id" doc:"Owning page ID"`
	PageTitle string    `json:"page_title,omitempty" doc:"Owning page title"`
	Content   string    `json:"content" doc:"Snapshotted content"`
	Author    string    `json:"author,omitempty" doc:"Username of the editor who triggered the snapshot"`
	Timestamp time.Time `json:"timestamp" doc:"Snapshot time"`
}

func revisionResponse(r *domain.Revision) RevisionResponse {
	return RevisionResponse{
		ID:        r.ID,
		PageID:    r.PageID,
		PageTitle: r.PageTitle,
		Content:   r.Content,
		Author:    r.AuthorUsername,
		Timestamp: r.Timestamp,
	}
}

// ListRevisionsInput contains parameters for listing a page's revisions.
type ListRevisionsInput struct {
	ID string `path:"id" doc:"Page ID"`
}

// ListRevisionsResponse contains a revision history.
type ListRevisionsResponse struct {
	Revisions []RevisionResponse `json:"revisions" doc:"Revisions, newest first"`
}

// ListRevisionsOutput wraps the revision history for Huma.
type ListRevisionsOutput struct {
	Body ListRevisionsResponse
}

// GetRevisionInput contains parameters for getting a revision.
type GetRevisionInput struct {
	ID string `path:"id" doc:"Revision ID"`
}

// RevisionOutput wraps a revision response for Huma.
type RevisionOutput struct {
	Body RevisionResponse
}

// RestoreRevisionInput contains parameters for restoring a revision.
type RestoreRevisionInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Revision ID"`
}

// === Handlers ===

func (s *Server) handleListPageRevisions(ctx context.Context, input *ListRevisionsInput) (*ListRevisionsOutput, error) {
	revs, err := s.services.Page.ListRevisions(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]RevisionResponse, len(revs))
	for i, r := range revs {
		resp[i] = revisionResponse(r)
	}
	return &ListRevisionsOutput{Body: ListRevisionsResponse{Revisions: resp}}, nil
}

func (s *Server) handleGetRevision(ctx context.Context, input *GetRevisionInput) (*RevisionOutput, error) {
	rev, err := s.services.Page.GetRevision(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &RevisionOutput{Body: revisionResponse(rev)}, nil
}

func (s *Server) handleRestoreRevision(ctx context.Context, input *RestoreRevisionInput) (*PageOutput, error) {
	session, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Page.RestoreRevision(ctx, session, input.ID)
	if err != nil {
		return nil, err
	}
	return &PageOutput{Body: pageResponse(page)}, nil
}
