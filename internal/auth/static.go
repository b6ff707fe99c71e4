package auth

import (
	"context"
	"crypto/subtle"

	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/errors"
)

// UserLookup fetches a user by username. Satisfied by the user store.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// StaticVerifier resolves bearer tokens from a fixed token→username map,
// loading the user row from the store. It stands in for the external auth
// system in deployments that provision API tokens through configuration.
type StaticVerifier struct {
	tokens map[string]string // token -> username
	users  UserLookup
}

// NewStaticVerifier creates a verifier over a token→username map.
func NewStaticVerifier(tokens map[string]string, users UserLookup) *StaticVerifier {
	return &StaticVerifier{tokens: tokens, users: users}
}

// Verify implements Verifier.
func (v *StaticVerifier) Verify(ctx context.Context, token string) (*domain.User, error) {
	for candidate, username := range v.tokens {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1 {
			return v.users.GetUserByUsername(ctx, username)
		}
	}
	return nil, errors.Unauthorized("unknown token")
}
