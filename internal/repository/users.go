package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/models"
)

const userColumns = `id, email, display_name, role, banned, created_at`

// GetUser loads a user by identity id.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := s.db.GetContext(ctx, &u, query, id); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// CreateUser inserts the user and its profile. Both tables are written, or
// neither. passwordHash is empty when the identity service owns credentials.
func (s *Store) CreateUser(ctx context.Context, u *models.User, passwordHash string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	userQuery := `INSERT INTO users (id, email, password_hash, display_name, role)
	              VALUES ($1, $2, NULLIF($3, ''), $4, $5)
	              RETURNING created_at`
	err = tx.GetContext(ctx, &u.CreatedAt, userQuery, u.ID, u.Email, passwordHash, u.DisplayName, string(u.Role))
	if err != nil {
		if isUniqueViolation(err) {
			return backend.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	profileQuery := `INSERT INTO profiles (user_id, plan) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, profileQuery, u.ID, string(models.PlanFree)); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	return tx.Commit()
}

// GetCredentials returns the id and password hash for a locally managed
// account.
func (s *Store) GetCredentials(ctx context.Context, email string) (uuid.UUID, string, error) {
	var row struct {
		ID   uuid.UUID `db:"id"`
		Hash string    `db:"password_hash"`
	}
	query := `SELECT id, password_hash FROM users WHERE email = $1 AND password_hash IS NOT NULL`
	if err := s.db.GetContext(ctx, &row, query, email); err != nil {
		return uuid.Nil, "", notFound(err)
	}
	return row.ID, row.Hash, nil
}

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	query := `SELECT user_id, plan, COALESCE(avatar_path, '') AS avatar_path,
	                 COALESCE(banner_path, '') AS banner_path, COALESCE(bio, '') AS bio, updated_at
	          FROM profiles WHERE user_id = $1`
	if err := s.db.GetContext(ctx, &p, query, userID); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// UpdateProfile changes the user-editable fields.
func (s *Store) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName, bio string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE users SET display_name = $2 WHERE id = $1`, userID, displayName)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return backend.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `UPDATE profiles SET bio = $2, updated_at = now() WHERE user_id = $1`, userID, bio); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return tx.Commit()
}

func (s *Store) SetBanned(ctx context.Context, userID uuid.UUID, banned bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET banned = $2 WHERE id = $1`, userID, banned)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return backend.ErrNotFound
	}
	return nil
}
