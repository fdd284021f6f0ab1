package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/models"
)

const eventColumns = `id, title, venue, starts_at, price_cents, capacity, available_tickets, created_at`

// ListEvents returns upcoming events, soonest first.
func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	query := `SELECT ` + eventColumns + ` FROM events WHERE starts_at > now() ORDER BY starts_at`
	if err := s.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var e models.Event
	if err := s.db.GetContext(ctx, &e, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id); err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// CreateEvent inserts the event with every seat available.
func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	query := `INSERT INTO events (id, title, venue, starts_at, price_cents, capacity, available_tickets)
	          VALUES ($1, $2, $3, $4, $5, $6, $6)
	          RETURNING available_tickets, created_at`
	row := s.db.QueryRowxContext(ctx, query, e.ID, e.Title, e.Venue, e.StartsAt, e.PriceCents, e.Capacity)
	if err := row.Scan(&e.AvailableTickets, &e.CreatedAt); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) ListTickets(ctx context.Context, ownerID uuid.UUID) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	query := `SELECT id, event_id, owner_id, qr_payload, created_at
	          FROM tickets WHERE owner_id = $1 ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &tickets, query, ownerID); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

func (s *Store) GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var t models.Ticket
	query := `SELECT id, event_id, owner_id, qr_payload, created_at FROM tickets WHERE id = $1`
	if err := s.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// PurchaseTicket takes one seat and writes the ticket in one transaction.
// The decrement is conditional on a seat being left, so concurrent buyers of
// the last seat cannot both succeed.
func (s *Store) PurchaseTicket(ctx context.Context, t models.Ticket) (*models.Ticket, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var left int
	decrement := `UPDATE events SET available_tickets = available_tickets - 1
	              WHERE id = $1 AND available_tickets > 0 AND starts_at > now()
	              RETURNING available_tickets`
	err = tx.GetContext(ctx, &left, decrement, t.EventID)
	if errors.Is(err, sql.ErrNoRows) {
		var started bool
		err := tx.GetContext(ctx, &started, `SELECT starts_at <= now() FROM events WHERE id = $1`, t.EventID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, backend.ErrNotFound
		case err != nil:
			return nil, fmt.Errorf("check event: %w", err)
		case started:
			return nil, backend.ErrEventStarted
		}
		return nil, backend.ErrSoldOut
	}
	if err != nil {
		return nil, fmt.Errorf("decrement seats: %w", err)
	}

	insert := `INSERT INTO tickets (id, event_id, owner_id, qr_payload)
	           VALUES ($1, $2, $3, $4)
	           RETURNING created_at`
	if err := tx.GetContext(ctx, &t.CreatedAt, insert, t.ID, t.EventID, t.OwnerID, t.QRPayload); err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &t, nil
}
