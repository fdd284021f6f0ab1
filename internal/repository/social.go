package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/models"
)

// ToggleLike removes the like if present, otherwise adds it.
func (s *Store) ToggleLike(ctx context.Context, userID, contentID uuid.UUID) (bool, error) {
	return s.toggle(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND content_id = $2`,
		`INSERT INTO likes (user_id, content_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, contentID)
}

// ToggleChannelSubscription follows or unfollows an artist.
func (s *Store) ToggleChannelSubscription(ctx context.Context, userID, artistID uuid.UUID) (bool, error) {
	return s.toggle(ctx,
		`DELETE FROM channel_subscribers WHERE user_id = $1 AND artist_id = $2`,
		`INSERT INTO channel_subscribers (user_id, artist_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, artistID)
}

func (s *Store) toggle(ctx context.Context, del, ins string, a, b uuid.UUID) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, del, a, b)
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	on := n == 0
	if on {
		if _, err := tx.ExecContext(ctx, ins, a, b); err != nil {
			// The target row does not exist.
			if isForeignKeyViolation(err) {
				return false, backend.ErrNotFound
			}
			return false, fmt.Errorf("insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return on, nil
}

func (s *Store) SubscriberCount(ctx context.Context, artistID uuid.UUID) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM channel_subscribers WHERE artist_id = $1`, artistID); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}

// CheckUploadLimits reads the active item count and the active plan in one
// round trip. Users without an active subscription are on the free plan.
func (s *Store) CheckUploadLimits(ctx context.Context, userID uuid.UUID) (backend.UploadUsage, error) {
	query := `SELECT
	            (SELECT count(*) FROM content_items
	              WHERE owner_id = $1 AND status IN ('pending', 'approved')) AS active_items,
	            COALESCE((SELECT plan FROM subscriptions
	              WHERE user_id = $1 AND status = 'active'
	                AND (expires_at IS NULL OR expires_at > now())), 'free') AS plan`
	var row struct {
		ActiveItems int    `db:"active_items"`
		Plan        string `db:"plan"`
	}
	if err := s.db.GetContext(ctx, &row, query, userID); err != nil {
		return backend.UploadUsage{}, fmt.Errorf("check upload limits: %w", err)
	}
	return backend.UploadUsage{ActiveItems: row.ActiveItems, Plan: models.NormalizePlan(row.Plan)}, nil
}
