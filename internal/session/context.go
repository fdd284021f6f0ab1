package session

import (
	"context"

	"media-market/internal/models"
)

type ctxKey struct{}

// WithUser returns a context carrying u. A nil u means anonymous.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// CurrentUser returns the signed-in user, or (nil, false) when anonymous.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	if !ok || u == nil {
		return nil, false
	}
	return u, true
}
