package repository

import (
	"context"
	"fmt"

	"media-market/internal/models"
)

const orderColumns = `id, buyer_id, kind, item_ref, amount_cents, status, transaction_id, created_at, settled_at`

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	query := `INSERT INTO orders (id, buyer_id, kind, item_ref, amount_cents, status)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`
	err := s.db.GetContext(ctx, &o.CreatedAt, query,
		o.ID, o.BuyerID, string(o.Kind), o.ItemRef, o.AmountCents, string(o.Status))
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if err := s.db.GetContext(ctx, &o, query, id); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// SettleOrder marks a pending order settled. It returns false when the order
// was already settled, so callers apply its effect once.
func (s *Store) SettleOrder(ctx context.Context, id, transactionID string) (bool, error) {
	query := `UPDATE orders
	          SET status = 'settled', transaction_id = NULLIF($2, ''), settled_at = now()
	          WHERE id = $1 AND status <> 'settled'`
	res, err := s.db.ExecContext(ctx, query, id, transactionID)
	if err != nil {
		return false, fmt.Errorf("settle order: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FailOrder marks a pending order failed. Settled orders are left alone.
func (s *Store) FailOrder(ctx context.Context, id string) error {
	query := `UPDATE orders SET status = 'failed' WHERE id = $1 AND status = 'pending'`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("fail order: %w", err)
	}
	return nil
}
