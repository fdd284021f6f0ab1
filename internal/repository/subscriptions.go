package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/models"
)

// ActiveSubscription returns the user's active, unexpired record or
// ErrNotFound.
func (s *Store) ActiveSubscription(ctx context.Context, userID uuid.UUID) (*models.SubscriptionRecord, error) {
	query := `SELECT id, user_id, plan, status, expires_at, created_at
	          FROM subscriptions
	          WHERE user_id = $1 AND status = 'active'
	            AND (expires_at IS NULL OR expires_at > now())`
	var sub models.SubscriptionRecord
	if err := s.db.GetContext(ctx, &sub, query, userID); err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}

// ActivateSubscription switches the user to plan in one transaction: the
// current active record is canceled, a new one is written for paid plans and
// the profile's plan tag follows. Free plans leave no record.
func (s *Store) ActivateSubscription(ctx context.Context, userID uuid.UUID, plan models.Plan, expiresAt *time.Time) (*models.SubscriptionRecord, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	cancel := `UPDATE subscriptions SET status = 'canceled' WHERE user_id = $1 AND status = 'active'`
	if _, err := tx.ExecContext(ctx, cancel, userID); err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}

	var sub *models.SubscriptionRecord
	if plan != models.PlanFree {
		sub = &models.SubscriptionRecord{}
		insert := `INSERT INTO subscriptions (id, user_id, plan, status, expires_at)
		           VALUES ($1, $2, $3, 'active', $4)
		           RETURNING id, user_id, plan, status, expires_at, created_at`
		if err := tx.GetContext(ctx, sub, insert, uuid.New(), userID, string(plan), expiresAt); err != nil {
			return nil, fmt.Errorf("insert subscription: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `UPDATE profiles SET plan = $2, updated_at = now() WHERE user_id = $1`, userID, string(plan))
	if err != nil {
		return nil, fmt.Errorf("update profile plan: %w", err)
	}
	if n, err := rowsAffected(res); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, backend.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return sub, nil
}
