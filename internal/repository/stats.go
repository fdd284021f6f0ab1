package repository

import (
	"context"
	"fmt"

	"media-market/internal/models"
)

func (s *Store) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	query := `SELECT
	            (SELECT count(*) FROM users) AS users,
	            (SELECT count(*) FROM content_items WHERE status = 'pending') AS pending_items,
	            (SELECT count(*) FROM purchases WHERE NOT refunded) AS purchases,
	            (SELECT COALESCE(sum(price_cents), 0) FROM purchases WHERE NOT refunded) AS revenue_cents,
	            (SELECT count(*) FROM tickets) AS tickets_sold`
	var st models.DashboardStats
	if err := s.db.GetContext(ctx, &st, query); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &st, nil
}
