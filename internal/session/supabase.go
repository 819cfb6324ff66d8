package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"

	"github.com/myfiredeal/firedeal/internal/domain"
)

const profilesTable = "profiles"

// SupabaseProvider implements Provider on the hosted identity service and
// its adjacent profile table. The auth client's methods carry the context
// implicitly in their underlying HTTP requests.
type SupabaseProvider struct {
	client *supabase.Client
}

// NewSupabaseProvider wraps an existing supabase client.
func NewSupabaseProvider(client *supabase.Client) *SupabaseProvider {
	return &SupabaseProvider{client: client}
}

func (p *SupabaseProvider) SignIn(_ context.Context, email, password string) (*domain.Session, error) {
	sess, err := p.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, &AuthError{Op: "sign in", Err: err}
	}
	return fromProviderSession(sess), nil
}

func (p *SupabaseProvider) SignUp(_ context.Context, email, password string) (string, *domain.Session, error) {
	resp, err := p.client.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return "", nil, &AuthError{Op: "sign up", Err: err}
	}

	userID := resp.User.ID.String()
	var sess *domain.Session
	if resp.Session.AccessToken != "" {
		s := resp.Session
		sess = &domain.Session{
			UserID:       s.User.ID.String(),
			Email:        s.User.Email,
			AccessToken:  s.AccessToken,
			RefreshToken: s.RefreshToken,
		}
	}
	return userID, sess, nil
}

func (p *SupabaseProvider) Validate(_ context.Context, accessToken string) (string, string, error) {
	user, err := p.client.Auth.WithToken(accessToken).GetUser()
	if err != nil {
		return "", "", &AuthError{Op: "validate session", Err: err}
	}
	return user.ID.String(), user.Email, nil
}

func (p *SupabaseProvider) Refresh(_ context.Context, refreshToken string) (*domain.Session, error) {
	sess, err := p.client.RefreshToken(refreshToken)
	if err != nil {
		return nil, &AuthError{Op: "refresh session", Err: err}
	}
	return fromProviderSession(sess), nil
}

func (p *SupabaseProvider) SignOut(_ context.Context, accessToken string) error {
	if err := p.client.Auth.WithToken(accessToken).Logout(); err != nil {
		return &AuthError{Op: "sign out", Err: err}
	}
	return nil
}

// BindSession routes subsequent PostgREST calls through this session's
// token so row-level security sees the right identity, and keeps the token
// refreshed in the background.
func (p *SupabaseProvider) BindSession(s *domain.Session) {
	if s == nil {
		p.client.UpdateAuthSession(types.Session{})
		return
	}
	token := types.Session{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken}
	p.client.UpdateAuthSession(token)
	p.client.EnableTokenAutoRefresh(token)
}

type profileRow struct {
	ID       string  `json:"id"`
	FullName *string `json:"full_name"`
}

func (p *SupabaseProvider) UpsertProfile(ctx context.Context, userID, fullName string) error {
	row := profileRow{ID: userID}
	if fullName != "" {
		row.FullName = &fullName
	}
	_, _, err := p.client.From(profilesTable).
		Insert([]profileRow{row}, true, "id", "", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return &AuthError{Op: "write profile", Err: err}
	}
	return nil
}

func (p *SupabaseProvider) ProfileName(ctx context.Context, userID string) (string, error) {
	data, _, err := p.client.From(profilesTable).
		Select("full_name", "", false).
		Eq("id", userID).
		ExecuteWithContext(ctx)
	if err != nil {
		return "", &AuthError{Op: "read profile", Err: err}
	}
	var rows []profileRow
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &rows); err != nil {
			return "", &AuthError{Op: "read profile", Err: fmt.Errorf("decode: %w", err)}
		}
	}
	if len(rows) == 0 || rows[0].FullName == nil {
		return "", nil
	}
	return *rows[0].FullName, nil
}

func fromProviderSession(s types.Session) *domain.Session {
	return &domain.Session{
		UserID:       s.User.ID.String(),
		Email:        s.User.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}
