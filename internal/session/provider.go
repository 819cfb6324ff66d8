// Package session tracks the authenticated identity. It wraps the external
// identity provider behind a narrow Provider interface with a concrete
// Supabase implementation, and a Holder that owns the current (nullable)
// session and fans change notifications out to the UI.
package session

import (
	"context"
	"fmt"

	"github.com/myfiredeal/firedeal/internal/domain"
)

// Provider is the subset of the identity provider the application uses.
// Implementations may ignore the context where the underlying client does
// not accept one.
type Provider interface {
	// SignIn exchanges credentials for a session.
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	// SignUp registers a new user. The returned session is non-nil only
	// when the provider auto-confirms accounts.
	SignUp(ctx context.Context, email, password string) (userID string, sess *domain.Session, err error)
	// Validate checks a stored access token and returns its identity.
	Validate(ctx context.Context, accessToken string) (userID, email string, err error)
	// Refresh exchanges a refresh token for a fresh session.
	Refresh(ctx context.Context, refreshToken string) (*domain.Session, error)
	// SignOut revokes the session at the provider.
	SignOut(ctx context.Context, accessToken string) error
	// BindSession points subsequent data-store calls at this session's
	// identity. A nil session unbinds.
	BindSession(s *domain.Session)

	// UpsertProfile writes the display name to the profile store, keyed by
	// user id, replacing any prior value.
	UpsertProfile(ctx context.Context, userID, fullName string) error
	// ProfileName reads the display name back, empty when unset.
	ProfileName(ctx context.Context, userID string) (string, error)
}

// AuthError wraps a failure of the identity provider or of the secondary
// profile write that a sign-up performs. It is shown verbatim on the
// sign-in form and never treated as fatal.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }
