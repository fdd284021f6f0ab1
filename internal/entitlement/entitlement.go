// Package entitlement answers whether a user owns or may stream an item.
package entitlement

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"media-market/internal/logging"
	"media-market/internal/models"
)

type Purchases interface {
	HasPurchase(ctx context.Context, buyerID, contentID uuid.UUID) (bool, error)
	ListLibrary(ctx context.Context, buyerID uuid.UUID) ([]models.ContentItem, error)
}

type Checker struct {
	purchases Purchases
	log       *slog.Logger
}

func NewChecker(purchases Purchases, log *slog.Logger) *Checker {
	return &Checker{purchases: purchases, log: log}
}

// IsOwned reports whether a non-refunded purchase exists for the pair.
// Anonymous users own nothing. Lookup failures are logged and read as not
// owned.
func (c *Checker) IsOwned(ctx context.Context, userID, contentID uuid.UUID) bool {
	if userID == uuid.Nil {
		return false
	}
	owned, err := c.purchases.HasPurchase(ctx, userID, contentID)
	if err != nil {
		c.log.Error("failed to check ownership", "user_id", userID, "content_id", contentID, logging.Err(err))
		return false
	}
	return owned
}

// CanStream reports whether the media itself may be released to user.
func (c *Checker) CanStream(ctx context.Context, user *models.User, item *models.ContentItem) bool {
	if item.IsFree() && item.Status == models.StatusApproved {
		return true
	}
	if user == nil {
		return false
	}
	if user.ID == item.OwnerID || user.IsAdmin() {
		return true
	}
	return c.IsOwned(ctx, user.ID, item.ID)
}

func (c *Checker) Library(ctx context.Context, userID uuid.UUID) ([]models.ContentItem, error) {
	return c.purchases.ListLibrary(ctx, userID)
}
