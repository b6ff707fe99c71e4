package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/litewiki/litewiki-server/internal/auth"
)

// requireSession returns the caller's session, failing with 401 when the
// request is not authenticated.
func requireSession(ctx context.Context) (auth.Session, error) {
	session := sessionFrom(ctx)
	if !session.IsLoggedIn() {
		return nil, huma.Error401Unauthorized("authentication required")
	}
	return session, nil
}

// MessageResponse carries a human-readable confirmation message.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}
