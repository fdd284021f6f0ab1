// Package localauth is a self-hosted identity service: bcrypt password
// hashes in the users table and HS256 bearer tokens.
package localauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"media-market/internal/backend"
	"media-market/internal/models"
)

const tokenTTL = 7 * 24 * time.Hour

// Credentials is the slice of the store the identity service needs.
type Credentials interface {
	GetCredentials(ctx context.Context, email string) (uuid.UUID, string, error)
	CreateUser(ctx context.Context, u *models.User, passwordHash string) error
}

type Identity struct {
	creds  Credentials
	secret []byte
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // token id -> expiry
}

var _ backend.Identity = (*Identity)(nil)

func New(creds Credentials, secret string) *Identity {
	return &Identity{
		creds:   creds,
		secret:  []byte(secret),
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (i *Identity) SignIn(ctx context.Context, email, password string) (*backend.AuthSession, error) {
	id, hash, err := i.creds.GetCredentials(ctx, email)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, backend.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, backend.ErrInvalidCredentials
	}
	return i.issue(id, email)
}

// SignUp creates the account row itself, since the hash lives there. attrs
// may carry display_name and role.
func (i *Identity) SignUp(ctx context.Context, email, password string, attrs map[string]any) (*backend.AuthSession, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{ID: uuid.New(), Email: email, Role: models.RoleUser}
	if name, ok := attrs["display_name"].(string); ok {
		u.DisplayName = name
	}
	if role, ok := attrs["role"].(string); ok && models.Role(role) == models.RoleArtist {
		u.Role = models.RoleArtist
	}

	if err := i.creds.CreateUser(ctx, u, string(hash)); err != nil {
		return nil, err
	}
	return i.issue(u.ID, email)
}

func (i *Identity) GetSession(_ context.Context, accessToken string) (*backend.AuthSession, error) {
	claims, err := i.parse(accessToken)
	if err != nil {
		return nil, backend.ErrInvalidSession
	}

	i.mu.Lock()
	_, revoked := i.revoked[claims.ID]
	i.mu.Unlock()
	if revoked {
		return nil, backend.ErrInvalidSession
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, backend.ErrInvalidSession
	}
	return &backend.AuthSession{
		AccessToken: accessToken,
		ExpiresAt:   claims.ExpiresAt.Time,
		UserID:      userID,
		Email:       claims.Email,
	}, nil
}

// SignOut revokes the token until it would have expired anyway.
func (i *Identity) SignOut(_ context.Context, accessToken string) error {
	claims, err := i.parse(accessToken)
	if err != nil {
		// Already unusable.
		return nil
	}

	now := i.now()
	i.mu.Lock()
	defer i.mu.Unlock()
	for id, exp := range i.revoked {
		if now.After(exp) {
			delete(i.revoked, id)
		}
	}
	i.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (i *Identity) issue(userID uuid.UUID, email string) (*backend.AuthSession, error) {
	now := i.now()
	exp := now.Add(tokenTTL)
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &backend.AuthSession{AccessToken: signed, ExpiresAt: exp, UserID: userID, Email: email}, nil
}

func (i *Identity) parse(tokenString string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}
	return &c, nil
}
