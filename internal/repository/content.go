package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/models"
)

var contentColumns = []string{
	"id", "kind", "title", "description", "price_cents", "owner_id",
	"media_path", "COALESCE(cover_path, '') AS cover_path", "status", "created_at", "updated_at",
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

const countActiveUploadsQuery = `SELECT count(*) FROM content_items
	WHERE owner_id = $1 AND status IN ('pending', 'approved')`

// ContentFilter narrows ListContent. Zero values mean "any".
type ContentFilter struct {
	Kind    models.ContentKind
	Status  models.ApprovalStatus
	OwnerID uuid.UUID
	Limit   int
	Offset  int
}

// CountActiveUploads counts the owner's pending and approved items.
func (s *Store) CountActiveUploads(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, countActiveUploadsQuery, ownerID); err != nil {
		return 0, fmt.Errorf("count uploads: %w", err)
	}
	return n, nil
}

// InsertContentItem writes a new item after re-checking the owner's active
// item count under a row lock on the owner's profile, so concurrent uploads by
// one owner cannot both pass the limit. A negative limit disables the check.
func (s *Store) InsertContentItem(ctx context.Context, item *models.ContentItem, limit int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var owner uuid.UUID
	if err := tx.GetContext(ctx, &owner, `SELECT user_id FROM profiles WHERE user_id = $1 FOR UPDATE`, item.OwnerID); err != nil {
		return fmt.Errorf("lock owner: %w", notFound(err))
	}

	if limit >= 0 {
		var count int
		if err := tx.GetContext(ctx, &count, countActiveUploadsQuery, item.OwnerID); err != nil {
			return fmt.Errorf("count uploads: %w", err)
		}
		if count >= limit {
			return backend.ErrQuotaExceeded
		}
	}

	query := `INSERT INTO content_items
	            (id, kind, title, description, price_cents, owner_id, media_path, cover_path, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
	          RETURNING created_at, updated_at`
	row := tx.QueryRowxContext(ctx, query,
		item.ID, string(item.Kind), item.Title, item.Description, item.PriceCents,
		item.OwnerID, item.MediaPath, item.CoverPath, string(item.Status),
	)
	if err := row.Scan(&item.CreatedAt, &item.UpdatedAt); err != nil {
		return fmt.Errorf("insert content item: %w", err)
	}

	return tx.Commit()
}

func (s *Store) GetContentItem(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	query, args, err := psql.Select(contentColumns...).From("content_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var item models.ContentItem
	if err := s.db.GetContext(ctx, &item, query, args...); err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// ListContent returns items newest first.
func (s *Store) ListContent(ctx context.Context, f ContentFilter) ([]models.ContentItem, error) {
	q := psql.Select(contentColumns...).From("content_items").OrderBy("created_at DESC")
	if f.Kind != "" {
		q = q.Where(sq.Eq{"kind": string(f.Kind)})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": string(f.Status)})
	}
	if f.OwnerID != uuid.Nil {
		q = q.Where(sq.Eq{"owner_id": f.OwnerID})
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	q = q.Limit(uint64(limit))
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	items := []models.ContentItem{}
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

// SetContentStatus moves a pending item to approved or rejected. Items that
// already left pending return ErrConflict.
func (s *Store) SetContentStatus(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) (*models.ContentItem, error) {
	query := `UPDATE content_items SET status = $2, updated_at = now()
	          WHERE id = $1 AND status = 'pending'
	          RETURNING id, kind, title, description, price_cents, owner_id, media_path,
	                    COALESCE(cover_path, '') AS cover_path, status, created_at, updated_at`
	var item models.ContentItem
	err := s.db.GetContext(ctx, &item, query, id, string(status))
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set content status: %w", err)
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM content_items WHERE id = $1)`, id); err != nil {
		return nil, fmt.Errorf("check content: %w", err)
	}
	if !exists {
		return nil, backend.ErrNotFound
	}
	return nil, backend.ErrConflict
}

func (s *Store) LikeCount(ctx context.Context, contentID uuid.UUID) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM likes WHERE content_id = $1`, contentID); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}
