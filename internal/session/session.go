// Package session resolves bearer tokens into users and carries the current
// user through request contexts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/logging"
	"media-market/internal/models"
)

var (
	ErrBanned        = errors.New("account is banned")
	ErrLoginRequired = errors.New("login required")
)

// Users is the slice of the store the resolver needs.
type Users interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User, passwordHash string) error
}

type EventType string

const (
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
)

type AuthEvent struct {
	Type   EventType
	UserID uuid.UUID
}

type Resolver struct {
	identity backend.Identity
	users    Users
	log      *slog.Logger

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(AuthEvent)
}

func NewResolver(identity backend.Identity, users Users, log *slog.Logger) *Resolver {
	return &Resolver{
		identity:  identity,
		users:     users,
		log:       log,
		listeners: make(map[int]func(AuthEvent)),
	}
}

// Resolve maps an access token to its user. An empty token is anonymous and
// yields (nil, nil).
func (r *Resolver) Resolve(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, nil
	}

	sess, err := r.identity.GetSession(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	user, err := r.ensureUser(ctx, sess.UserID, sess.Email, "", models.RoleUser)
	if err != nil {
		return nil, err
	}

	if user.Banned {
		r.forceSignOut(ctx, user.ID, accessToken)
		return nil, ErrBanned
	}
	return user, nil
}

// SignIn authenticates and returns the session with its user.
func (r *Resolver) SignIn(ctx context.Context, email, password string) (*backend.AuthSession, *models.User, error) {
	sess, err := r.identity.SignIn(ctx, normalizeEmail(email), password)
	if err != nil {
		return nil, nil, err
	}

	user, err := r.ensureUser(ctx, sess.UserID, sess.Email, "", models.RoleUser)
	if err != nil {
		return nil, nil, err
	}
	if user.Banned {
		r.forceSignOut(ctx, user.ID, sess.AccessToken)
		return nil, nil, ErrBanned
	}

	r.emit(AuthEvent{Type: SignedIn, UserID: user.ID})
	return sess, user, nil
}

// SignUp registers a user or artist account. Admin accounts are never
// created this way.
func (r *Resolver) SignUp(ctx context.Context, email, password, displayName string, role models.Role) (*backend.AuthSession, *models.User, error) {
	if role != models.RoleArtist {
		role = models.RoleUser
	}
	email = normalizeEmail(email)

	sess, err := r.identity.SignUp(ctx, email, password, map[string]any{
		"display_name": displayName,
		"role":         string(role),
	})
	if err != nil {
		return nil, nil, err
	}

	user, err := r.ensureUser(ctx, sess.UserID, email, displayName, role)
	if err != nil {
		return nil, nil, err
	}

	if sess.AccessToken != "" {
		r.emit(AuthEvent{Type: SignedIn, UserID: user.ID})
	}
	return sess, user, nil
}

func (r *Resolver) SignOut(ctx context.Context, userID uuid.UUID, accessToken string) error {
	if err := r.identity.SignOut(ctx, accessToken); err != nil {
		return err
	}
	r.emit(AuthEvent{Type: SignedOut, UserID: userID})
	return nil
}

// Evict announces that every live session of userID is over, e.g. after a
// ban. Tokens still held by the client fail at the next Resolve.
func (r *Resolver) Evict(userID uuid.UUID) {
	r.emit(AuthEvent{Type: SignedOut, UserID: userID})
}

// OnAuthStateChange registers fn for sign-in and sign-out events until the
// returned function is called.
func (r *Resolver) OnAuthStateChange(fn func(AuthEvent)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

func (r *Resolver) emit(ev AuthEvent) {
	r.mu.Lock()
	fns := make([]func(AuthEvent), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (r *Resolver) forceSignOut(ctx context.Context, userID uuid.UUID, accessToken string) {
	if err := r.identity.SignOut(ctx, accessToken); err != nil {
		r.log.Warn("failed to sign out banned user", "user_id", userID, logging.Err(err))
	}
	r.emit(AuthEvent{Type: SignedOut, UserID: userID})
}

// ensureUser loads the user row, creating it for identities that were
// registered directly with the identity service.
func (r *Resolver) ensureUser(ctx context.Context, id uuid.UUID, email, displayName string, role models.Role) (*models.User, error) {
	user, err := r.users.GetUser(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, backend.ErrNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}

	user = &models.User{ID: id, Email: email, DisplayName: displayName, Role: role}
	if err := r.users.CreateUser(ctx, user, ""); err != nil {
		// Lost a race with a concurrent request for the same identity.
		if errors.Is(err, backend.ErrEmailTaken) {
			return r.users.GetUser(ctx, id)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	r.log.Info("user row created", "user_id", id)
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
