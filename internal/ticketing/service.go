// Package ticketing sells event tickets and checks them at the gate.
package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/logging"
	"media-market/internal/metrics"
	"media-market/internal/models"
	"media-market/internal/realtime"
	"media-market/internal/session"
)

var ErrInvalidEvent = errors.New("invalid event")

type Store interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	CreateEvent(ctx context.Context, e *models.Event) error
	ListTickets(ctx context.Context, ownerID uuid.UUID) ([]models.Ticket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
}

// Seller takes a seat and writes the ticket atomically.
type Seller interface {
	PurchaseTicket(ctx context.Context, t models.Ticket) (*models.Ticket, error)
}

type Service struct {
	store     Store
	seller    Seller
	signer    *Signer
	publisher realtime.Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger
}

func NewService(store Store, seller Seller, signer *Signer, pub realtime.Publisher, m *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{store: store, seller: seller, signer: signer, publisher: pub, metrics: m, log: log}
}

func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.store.ListEvents(ctx)
}

func (s *Service) MyTickets(ctx context.Context, user *models.User) ([]models.Ticket, error) {
	if user == nil {
		return nil, session.ErrLoginRequired
	}
	return s.store.ListTickets(ctx, user.ID)
}

type EventInput struct {
	Title      string    `json:"title" binding:"required"`
	Venue      string    `json:"venue"`
	StartsAt   time.Time `json:"starts_at" binding:"required"`
	PriceCents int64     `json:"price_cents"`
	Capacity   int       `json:"capacity" binding:"required"`
}

// CreateEvent opens an event with every seat available.
func (s *Service) CreateEvent(ctx context.Context, in EventInput) (*models.Event, error) {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return nil, fmt.Errorf("%w: title is required", ErrInvalidEvent)
	case in.Capacity <= 0:
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidEvent)
	case in.PriceCents < 0:
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidEvent)
	}
	e := &models.Event{
		ID:               uuid.New(),
		Title:            title,
		Venue:            strings.TrimSpace(in.Venue),
		StartsAt:         in.StartsAt,
		PriceCents:       in.PriceCents,
		Capacity:         in.Capacity,
		AvailableTickets: in.Capacity,
	}
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.publish(ctx, "events", realtime.Insert, e)
	return e, nil
}

// Buy sells one ticket for eventID to user. backend.ErrSoldOut means no seat
// was left and backend.ErrEventStarted that sales have closed.
func (s *Service) Buy(ctx context.Context, user *models.User, eventID uuid.UUID) (*models.Ticket, error) {
	if user == nil {
		return nil, session.ErrLoginRequired
	}

	t := models.Ticket{ID: uuid.New(), EventID: eventID, OwnerID: user.ID}
	t.QRPayload = s.signer.Sign(t.ID, t.EventID, t.OwnerID)

	ticket, err := s.seller.PurchaseTicket(ctx, t)
	switch {
	case errors.Is(err, backend.ErrSoldOut):
		s.metrics.Ticket("sold_out")
		return nil, err
	case errors.Is(err, backend.ErrEventStarted):
		s.metrics.Ticket("closed")
		return nil, err
	case errors.Is(err, backend.ErrNotFound):
		return nil, err
	case err != nil:
		s.metrics.Ticket("error")
		s.log.Error("failed to purchase ticket", "event_id", eventID, "user_id", user.ID, logging.Err(err))
		return nil, fmt.Errorf("purchase ticket: %w", err)
	}
	s.metrics.Ticket("ok")

	s.publish(ctx, "tickets", realtime.Insert, ticket)
	if e, err := s.store.GetEvent(ctx, eventID); err == nil {
		s.publish(ctx, "events", realtime.Update, e)
	}
	return ticket, nil
}

// VerifyQR checks a gate code against the stored ticket.
func (s *Service) VerifyQR(ctx context.Context, payload string) (*models.Ticket, error) {
	id, sig, err := parse(payload)
	if err != nil {
		return nil, err
	}
	t, err := s.store.GetTicket(ctx, id)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrInvalidQR
	}
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	if !s.signer.valid(sig, t.ID, t.EventID, t.OwnerID) {
		return nil, ErrInvalidQR
	}
	return t, nil
}

func (s *Service) publish(ctx context.Context, table string, typ realtime.ChangeType, record any) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, realtime.Change{Table: table, Type: typ, Record: record})
	}
}
