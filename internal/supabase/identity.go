package supabase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/supabase-community/gotrue-go/types"

	"media-market/internal/backend"
)

// Identity is backed by GoTrue.
type Identity struct {
	c *Client
}

var _ backend.Identity = (*Identity)(nil)

func (c *Client) Identity() *Identity {
	return &Identity{c: c}
}

func (i *Identity) SignIn(ctx context.Context, email, password string) (*backend.AuthSession, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	resp, err := i.c.sdk.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		if isAuthRejection(err) {
			return nil, backend.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("gotrue sign in: %w", err)
	}
	return fromSession(resp.Session), nil
}

func (i *Identity) SignUp(ctx context.Context, email, password string, attrs map[string]any) (*backend.AuthSession, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	resp, err := i.c.sdk.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data:     attrs,
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already registered") {
			return nil, backend.ErrEmailTaken
		}
		return nil, fmt.Errorf("gotrue sign up: %w", err)
	}

	sess := fromSession(resp.Session)
	// Projects with email confirmation return no session yet.
	sess.UserID = resp.User.ID
	sess.Email = resp.User.Email
	return sess, nil
}

func (i *Identity) GetSession(ctx context.Context, accessToken string) (*backend.AuthSession, error) {
	if err := alive(ctx); err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, backend.ErrInvalidSession
	}
	resp, err := i.c.sdk.Auth.WithToken(accessToken).GetUser()
	if err != nil {
		if isAuthRejection(err) {
			return nil, backend.ErrInvalidSession
		}
		return nil, fmt.Errorf("gotrue get user: %w", err)
	}
	return &backend.AuthSession{
		AccessToken: accessToken,
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
	}, nil
}

func (i *Identity) SignOut(ctx context.Context, accessToken string) error {
	if err := alive(ctx); err != nil {
		return err
	}
	if err := i.c.sdk.Auth.WithToken(accessToken).Logout(); err != nil && !isAuthRejection(err) {
		return fmt.Errorf("gotrue logout: %w", err)
	}
	return nil
}

func fromSession(s types.Session) *backend.AuthSession {
	out := &backend.AuthSession{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		UserID:       s.User.ID,
		Email:        s.User.Email,
	}
	if s.ExpiresAt > 0 {
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	}
	return out
}

// GoTrue reports failures as plain errors carrying the HTTP status text.
func isAuthRejection(err error) bool {
	msg := err.Error()
	for _, code := range []string{"400", "401", "403", "422", "invalid_grant", "Invalid login credentials"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}
