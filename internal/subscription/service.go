// Package subscription switches users between plans, taking payment for the
// paid tiers.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/logging"
	"media-market/internal/metrics"
	"media-market/internal/models"
	"media-market/internal/session"
)

const orderPrefix = "ORD-"

var (
	ErrUnknownPlan  = errors.New("unknown plan")
	ErrInvalidOrder = errors.New("invalid subscription order")
)

type Outcome string

const (
	AlreadyOnPlan  Outcome = "already_on_plan"
	Switched       Outcome = "switched"
	Redirected     Outcome = "redirected"
	PaymentFailed  Outcome = "payment_failed"
	PaymentPending Outcome = "payment_pending"
	Activated      Outcome = "activated"
	// Superseded means the order was paid but a plan chosen after it is
	// already active, so the plan is left alone.
	Superseded Outcome = "superseded"
)

type Result struct {
	Outcome     Outcome                    `json:"outcome"`
	Plan        models.Plan                `json:"plan"`
	OrderID     string                     `json:"order_id,omitempty"`
	RedirectURL string                     `json:"redirect_url,omitempty"`
	Record      *models.SubscriptionRecord `json:"subscription,omitempty"`
	Message     string                     `json:"message,omitempty"`
}

type Store interface {
	ActiveSubscription(ctx context.Context, userID uuid.UUID) (*models.SubscriptionRecord, error)
	ActivateSubscription(ctx context.Context, userID uuid.UUID, plan models.Plan, expiresAt *time.Time) (*models.SubscriptionRecord, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	SettleOrder(ctx context.Context, id, transactionID string) (bool, error)
	FailOrder(ctx context.Context, id string) error
}

type Service struct {
	store    Store
	payments backend.PaymentSessions
	verifier backend.PaymentVerifier
	metrics  *metrics.Metrics
	log      *slog.Logger
	baseURL  string
	now      func() time.Time
}

// NewService builds the service. verifier may be nil.
func NewService(store Store, payments backend.PaymentSessions, verifier backend.PaymentVerifier, m *metrics.Metrics, log *slog.Logger, publicBaseURL string) *Service {
	return &Service{
		store:    store,
		payments: payments,
		verifier: verifier,
		metrics:  m,
		log:      log,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
		now:      time.Now,
	}
}

// Current returns the user's plan. Users without an active record are free.
func (s *Service) Current(ctx context.Context, userID uuid.UUID) (models.Plan, *models.SubscriptionRecord, error) {
	rec, err := s.store.ActiveSubscription(ctx, userID)
	if errors.Is(err, backend.ErrNotFound) {
		return models.PlanFree, nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("load subscription: %w", err)
	}
	if !rec.IsActiveAt(s.now()) {
		return models.PlanFree, nil, nil
	}
	return models.NormalizePlan(string(rec.Plan)), rec, nil
}

func (s *Service) Checkout(ctx context.Context, user *models.User, tag models.Plan) (*Result, error) {
	if user == nil {
		return nil, session.ErrLoginRequired
	}
	plan, ok := lookup(tag)
	if !ok {
		return nil, ErrUnknownPlan
	}

	current, _, err := s.Current(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if current == plan.Tag {
		return &Result{Outcome: AlreadyOnPlan, Plan: current}, nil
	}

	if plan.PriceCents == 0 {
		if _, err := s.store.ActivateSubscription(ctx, user.ID, plan.Tag, nil); err != nil {
			return nil, fmt.Errorf("switch to %s: %w", plan.Tag, err)
		}
		s.metrics.Subscription(string(plan.Tag), string(Switched))
		return &Result{Outcome: Switched, Plan: plan.Tag}, nil
	}

	order := &models.Order{
		ID:          orderPrefix + uuid.NewString(),
		BuyerID:     user.ID,
		Kind:        models.OrderSubscription,
		ItemRef:     string(plan.Tag),
		AmountCents: plan.PriceCents,
		Status:      models.OrderPending,
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	sess, err := s.payments.CreateSession(ctx, backend.PaymentSessionRequest{
		OrderID:     order.ID,
		ItemID:      "plan-" + string(plan.Tag),
		ItemName:    plan.Name + " plan",
		BuyerID:     user.ID,
		BuyerEmail:  user.Email,
		BuyerName:   user.DisplayName,
		AmountCents: plan.PriceCents,
		ReturnURL:   s.baseURL + "/subscription/return?order_id=" + url.QueryEscape(order.ID),
		CancelURL:   s.baseURL + "/subscription",
	})
	if err != nil {
		s.log.Error("failed to create payment session", "order_id", order.ID, logging.Err(err))
		if ferr := s.store.FailOrder(ctx, order.ID); ferr != nil {
			s.log.Error("failed to mark order failed", "order_id", order.ID, logging.Err(ferr))
		}
		s.metrics.Subscription(string(plan.Tag), string(PaymentFailed))
		return &Result{
			Outcome: PaymentFailed,
			Plan:    current,
			OrderID: order.ID,
			Message: "We could not start the payment. Please try again.",
		}, nil
	}

	s.metrics.Subscription(string(plan.Tag), string(Redirected))
	return &Result{Outcome: Redirected, Plan: current, OrderID: order.ID, RedirectURL: sess.RedirectURL}, nil
}

// Complete applies a paid subscription order. A settled order is not applied
// again.
func (s *Service) Complete(ctx context.Context, orderID string) (*Result, error) {
	if !strings.HasPrefix(orderID, orderPrefix) {
		return nil, ErrInvalidOrder
	}
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order.Kind != models.OrderSubscription {
		return nil, ErrInvalidOrder
	}
	plan, ok := lookup(models.Plan(order.ItemRef))
	if !ok {
		return nil, fmt.Errorf("%w: plan %q", ErrInvalidOrder, order.ItemRef)
	}

	if order.Status == models.OrderSettled {
		current, rec, err := s.Current(ctx, order.BuyerID)
		if err != nil {
			return nil, err
		}
		return &Result{Outcome: Activated, Plan: current, OrderID: order.ID, Record: rec}, nil
	}

	var transactionID string
	if s.verifier != nil {
		st, err := s.verifier.VerifyPayment(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("verify payment: %w", err)
		}
		if !st.Settled {
			return &Result{Outcome: PaymentPending, Plan: plan.Tag, OrderID: order.ID}, nil
		}
		transactionID = st.TransactionID
	}

	current, active, err := s.Current(ctx, order.BuyerID)
	if err != nil {
		return nil, err
	}
	if active != nil && current != plan.Tag && active.CreatedAt.After(order.CreatedAt) {
		s.log.Warn("stale subscription order paid after a newer plan",
			"order_id", order.ID, "user_id", order.BuyerID, "order_plan", plan.Tag, "active_plan", current)
		if _, err := s.store.SettleOrder(ctx, order.ID, transactionID); err != nil {
			s.log.Error("failed to settle order", "order_id", order.ID, logging.Err(err))
		}
		s.metrics.Subscription(string(plan.Tag), string(Superseded))
		return &Result{
			Outcome: Superseded,
			Plan:    current,
			OrderID: order.ID,
			Record:  active,
			Message: "A newer plan is already active, so this payment did not change it.",
		}, nil
	}

	expires := s.now().Add(period)
	rec, err := s.store.ActivateSubscription(ctx, order.BuyerID, plan.Tag, &expires)
	if err != nil {
		return nil, fmt.Errorf("activate %s: %w", plan.Tag, err)
	}
	if _, err := s.store.SettleOrder(ctx, order.ID, transactionID); err != nil {
		s.log.Error("failed to settle order", "order_id", order.ID, logging.Err(err))
	}

	s.metrics.Subscription(string(plan.Tag), string(Activated))
	s.log.Info("subscription activated", "user_id", order.BuyerID, "plan", plan.Tag)
	return &Result{Outcome: Activated, Plan: plan.Tag, OrderID: order.ID, Record: rec}, nil
}
