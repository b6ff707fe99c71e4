// Package auth defines the boundary to the external authentication system.
//
// The wiki core never manages credentials, cookies, or token lifetimes. It
// consumes two capabilities: a Session describing the current caller, and a
// Verifier that resolves bearer tokens to users for the HTTP layer.
package auth

import (
	"context"

	"github.com/litewiki/litewiki-server/internal/domain"
)

// Session is the caller's authentication context, passed into every service
// operation rather than read from ambient state.
type Session interface {
	// IsLoggedIn reports whether the caller is authenticated.
	IsLoggedIn() bool
	// CurrentUser returns the authenticated user, or nil when anonymous.
	CurrentUser() *domain.User
}

// Verifier resolves a bearer token to a user. Implemented outside the core;
// the API middleware is its only consumer.
type Verifier interface {
	Verify(ctx context.Context, token string) (*domain.User, error)
}

// userSession is a Session bound to a concrete user.
type userSession struct {
	user *domain.User
}

func (s *userSession) IsLoggedIn() bool          { return s.user != nil }
func (s *userSession) CurrentUser() *domain.User { return s.user }

// ForUser returns a Session authenticated as the given user.
// A nil user yields an anonymous session.
func ForUser(user *domain.User) Session {
	if user == nil {
		return Anonymous()
	}
	return &userSession{user: user}
}

// Anonymous returns an unauthenticated Session.
func Anonymous() Session {
	return &userSession{}
}
