package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/models"
)

// HasPurchase reports whether a non-refunded record exists for the pair.
func (s *Store) HasPurchase(ctx context.Context, buyerID, contentID uuid.UUID) (bool, error) {
	var owned bool
	query := `SELECT EXISTS (
	            SELECT 1 FROM purchases
	            WHERE buyer_id = $1 AND content_id = $2 AND NOT refunded)`
	if err := s.db.GetContext(ctx, &owned, query, buyerID, contentID); err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return owned, nil
}

// ListLibrary returns the items the buyer owns, most recently bought first.
func (s *Store) ListLibrary(ctx context.Context, buyerID uuid.UUID) ([]models.ContentItem, error) {
	query := `SELECT c.id, c.kind, c.title, c.description, c.price_cents, c.owner_id, c.media_path,
	                 COALESCE(c.cover_path, '') AS cover_path, c.status, c.created_at, c.updated_at
	          FROM purchases p
	          JOIN content_items c ON c.id = p.content_id
	          WHERE p.buyer_id = $1 AND NOT p.refunded
	          ORDER BY p.created_at DESC`
	items := []models.ContentItem{}
	if err := s.db.SelectContext(ctx, &items, query, buyerID); err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return items, nil
}

// ProcessPurchase records the purchase. A refunded record for the same pair
// is revived by a new order or a free claim, never by the order it was
// refunded from; an active one is left untouched and created is false.
func (s *Store) ProcessPurchase(ctx context.Context, in backend.PurchaseInput) (bool, error) {
	query := `INSERT INTO purchases (id, buyer_id, content_id, price_cents, order_id)
	          VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	          ON CONFLICT (buyer_id, content_id) DO UPDATE
	            SET refunded = false, price_cents = EXCLUDED.price_cents,
	                order_id = EXCLUDED.order_id, created_at = now()
	            WHERE purchases.refunded
	              AND (EXCLUDED.order_id IS NULL OR purchases.order_id IS DISTINCT FROM EXCLUDED.order_id)`
	res, err := s.db.ExecContext(ctx, query, uuid.New(), in.BuyerID, in.ContentID, in.PriceCents, in.OrderID)
	if err != nil {
		return false, fmt.Errorf("process purchase: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RefundPurchase flags the record; the entitlement disappears with it.
func (s *Store) RefundPurchase(ctx context.Context, id uuid.UUID) (*models.PurchaseRecord, error) {
	query := `UPDATE purchases SET refunded = true
	          WHERE id = $1
	          RETURNING id, buyer_id, content_id, price_cents, COALESCE(order_id, '') AS order_id, refunded, created_at`
	var p models.PurchaseRecord
	if err := s.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
