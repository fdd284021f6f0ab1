// Package purchase drives the content buy flow: entitlement check, payment
// session, and the finalize step when the buyer returns.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/logging"
	"media-market/internal/metrics"
	"media-market/internal/models"
	"media-market/internal/realtime"
)

const orderPrefix = "ORD-"

var (
	ErrNotPurchasable = errors.New("content is not available for purchase")
	ErrInvalidOrder   = errors.New("invalid order")
)

const paymentFailedMessage = "We could not start the payment. Please try again."

type Entitlements interface {
	IsOwned(ctx context.Context, userID, contentID uuid.UUID) bool
}

type Catalog interface {
	GetContentItem(ctx context.Context, id uuid.UUID) (*models.ContentItem, error)
}

type Orders interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	SettleOrder(ctx context.Context, id, transactionID string) (bool, error)
	FailOrder(ctx context.Context, id string) error
}

type Finalizer interface {
	ProcessPurchase(ctx context.Context, in backend.PurchaseInput) (bool, error)
}

// Result is what one request of the flow ends with.
type Result struct {
	State       State     `json:"state"`
	ContentID   uuid.UUID `json:"content_id"`
	OrderID     string    `json:"order_id,omitempty"`
	RedirectURL string    `json:"redirect_url,omitempty"`
	Duplicate   bool      `json:"duplicate,omitempty"`
	Message     string    `json:"message,omitempty"`
	History     []State   `json:"-"`
}

type Deps struct {
	Entitlements Entitlements
	Catalog      Catalog
	Orders       Orders
	Finalizer    Finalizer
	Payments     backend.PaymentSessions
	// Verifier is optional. Without it the return trip is trusted.
	Verifier  backend.PaymentVerifier
	Publisher realtime.Publisher
	Metrics   *metrics.Metrics
	Log       *slog.Logger
	// PublicBaseURL is where the client application is served.
	PublicBaseURL string
}

type Orchestrator struct {
	Deps
}

func NewOrchestrator(d Deps) *Orchestrator {
	d.PublicBaseURL = strings.TrimRight(d.PublicBaseURL, "/")
	return &Orchestrator{Deps: d}
}

// Begin starts a purchase of contentID for buyer. Benign outcomes (login
// required, already owned) and payment failures come back as states; errors
// are reserved for lookups and programming faults.
func (o *Orchestrator) Begin(ctx context.Context, buyer *models.User, contentID uuid.UUID) (*Result, error) {
	m := newMachine()
	res := &Result{ContentID: contentID}

	if buyer == nil {
		return o.finish(m, res, LoginRequired)
	}

	item, err := o.Catalog.GetContentItem(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	if item.Status != models.StatusApproved {
		return nil, ErrNotPurchasable
	}

	if err := m.to(EntitlementChecked); err != nil {
		return nil, err
	}
	if item.OwnerID == buyer.ID || o.Entitlements.IsOwned(ctx, buyer.ID, item.ID) {
		return o.finish(m, res, AlreadyOwned)
	}

	if item.IsFree() {
		created, err := o.Finalizer.ProcessPurchase(ctx, backend.PurchaseInput{
			BuyerID:   buyer.ID,
			ContentID: item.ID,
		})
		if err != nil {
			o.Log.Error("failed to record free purchase", "content_id", item.ID, logging.Err(err))
			o.finish(m, res, FinalizeFailed)
			return res, fmt.Errorf("finalize purchase: %w", err)
		}
		res.Duplicate = !created
		o.published(ctx, buyer.ID, item.ID, created)
		return o.finish(m, res, RecordPersisted)
	}

	order := &models.Order{
		ID:          orderPrefix + uuid.NewString(),
		BuyerID:     buyer.ID,
		Kind:        models.OrderContent,
		ItemRef:     item.ID.String(),
		AmountCents: item.PriceCents,
		Status:      models.OrderPending,
	}
	if err := o.Orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	res.OrderID = order.ID

	if err := m.to(PaymentSessionRequested); err != nil {
		return nil, err
	}
	sess, err := o.Payments.CreateSession(ctx, backend.PaymentSessionRequest{
		OrderID:     order.ID,
		ItemID:      item.ID.String(),
		ItemName:    item.Title,
		BuyerID:     buyer.ID,
		BuyerEmail:  buyer.Email,
		BuyerName:   buyer.DisplayName,
		AmountCents: item.PriceCents,
		ReturnURL:   o.returnURL(order.ID),
		CancelURL:   o.itemURL(item),
	})
	if err != nil {
		o.Log.Error("failed to create payment session", "order_id", order.ID, logging.Err(err))
		if ferr := o.Orders.FailOrder(ctx, order.ID); ferr != nil {
			o.Log.Error("failed to mark order failed", "order_id", order.ID, logging.Err(ferr))
		}
		res.Message = paymentFailedMessage
		return o.finish(m, res, PaymentFailed)
	}

	res.RedirectURL = sess.RedirectURL
	return o.finish(m, res, PaymentRedirected)
}

// Complete finalizes a paid order after the buyer returns from the payment
// page or the provider notifies us. It is safe to call any number of times
// for the same order; only the first successful call writes the record.
func (o *Orchestrator) Complete(ctx context.Context, orderID string) (*Result, error) {
	m := newMachine()
	if err := m.to(Returned); err != nil {
		return nil, err
	}

	orderID = strings.TrimSpace(orderID)
	if !strings.HasPrefix(orderID, orderPrefix) {
		return nil, ErrInvalidOrder
	}
	order, err := o.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order.Kind != models.OrderContent {
		return nil, ErrInvalidOrder
	}
	contentID, err := uuid.Parse(order.ItemRef)
	if err != nil {
		return nil, fmt.Errorf("%w: bad item ref", ErrInvalidOrder)
	}
	res := &Result{ContentID: contentID, OrderID: order.ID}

	// A settled order has produced its record already. Finalizing it again
	// would revive a purchase refunded since.
	if order.Status == models.OrderSettled {
		res.Duplicate = true
		return o.finish(m, res, RecordPersisted)
	}

	var transactionID string
	if o.Verifier != nil {
		st, err := o.Verifier.VerifyPayment(ctx, order.ID)
		if err != nil {
			o.Log.Error("failed to verify payment", "order_id", order.ID, logging.Err(err))
			o.finish(m, res, FinalizeFailed)
			return res, fmt.Errorf("verify payment: %w", err)
		}
		if !st.Settled {
			o.Log.Info("payment not settled yet", "order_id", order.ID, "status", st.Status)
			return o.finish(m, res, PaymentPending)
		}
		transactionID = st.TransactionID
	}

	created, err := o.Finalizer.ProcessPurchase(ctx, backend.PurchaseInput{
		BuyerID:    order.BuyerID,
		ContentID:  contentID,
		PriceCents: order.AmountCents,
		OrderID:    order.ID,
	})
	if err != nil {
		o.Log.Error("failed to finalize purchase", "order_id", order.ID, logging.Err(err))
		o.finish(m, res, FinalizeFailed)
		return res, fmt.Errorf("finalize purchase: %w", err)
	}

	if _, err := o.Orders.SettleOrder(ctx, order.ID, transactionID); err != nil {
		// The purchase record is what grants access; the order row is
		// bookkeeping.
		o.Log.Error("failed to settle order", "order_id", order.ID, logging.Err(err))
	}

	res.Duplicate = !created
	o.published(ctx, order.BuyerID, contentID, created)
	return o.finish(m, res, RecordPersisted)
}

func (o *Orchestrator) finish(m *machine, res *Result, final State) (*Result, error) {
	if err := m.to(final); err != nil {
		return nil, err
	}
	res.State = final
	res.History = m.history
	o.Metrics.Purchase(string(final))
	return res, nil
}

func (o *Orchestrator) published(ctx context.Context, buyerID, contentID uuid.UUID, created bool) {
	if !created || o.Publisher == nil {
		return
	}
	o.Publisher.Publish(ctx, realtime.Change{
		Table:  "purchases",
		Type:   realtime.Insert,
		Record: map[string]any{"buyer_id": buyerID, "content_id": contentID},
	})
}

func (o *Orchestrator) returnURL(orderID string) string {
	return o.PublicBaseURL + "/purchases/return?order_id=" + url.QueryEscape(orderID)
}

func (o *Orchestrator) itemURL(item *models.ContentItem) string {
	if item.Kind == models.KindVideo {
		return o.PublicBaseURL + "/video/" + item.ID.String()
	}
	return o.PublicBaseURL + "/music"
}
