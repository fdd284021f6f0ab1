package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"media-market/internal/backend"
	"media-market/internal/backend/mocks"
	"media-market/internal/logging"
	"media-market/internal/models"
	"media-market/internal/session"
)

type fakeStore struct {
	active    map[uuid.UUID]*models.SubscriptionRecord
	orders    map[string]*models.Order
	activated []models.Plan
}

func newFakeStore() *fakeStore {
	return &fakeStore{active: map[uuid.UUID]*models.SubscriptionRecord{}, orders: map[string]*models.Order{}}
}

func (f *fakeStore) ActiveSubscription(_ context.Context, id uuid.UUID) (*models.SubscriptionRecord, error) {
	rec, ok := f.active[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) ActivateSubscription(_ context.Context, id uuid.UUID, plan models.Plan, exp *time.Time) (*models.SubscriptionRecord, error) {
	f.activated = append(f.activated, plan)
	delete(f.active, id)
	if plan == models.PlanFree {
		return nil, nil
	}
	rec := &models.SubscriptionRecord{ID: uuid.New(), UserID: id, Plan: plan, Status: models.SubscriptionActive, ExpiresAt: exp, CreatedAt: time.Now()}
	f.active[id] = rec
	return rec, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, o *models.Order) error {
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, id string) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) SettleOrder(_ context.Context, id, _ string) (bool, error) {
	if f.orders[id].Status == models.OrderSettled {
		return false, nil
	}
	f.orders[id].Status = models.OrderSettled
	return true, nil
}

func (f *fakeStore) FailOrder(_ context.Context, id string) error {
	f.orders[id].Status = models.OrderFailed
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *mocks.MockPaymentSessions, *mocks.MockPaymentVerifier) {
	ctrl := gomock.NewController(t)
	store := newFakeStore()
	payments := mocks.NewMockPaymentSessions(ctrl)
	verifier := mocks.NewMockPaymentVerifier(ctrl)
	return NewService(store, payments, verifier, nil, logging.Discard(), "https://shop.example"), store, payments, verifier
}

func TestCurrent_DefaultsToFree(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	user := uuid.New()

	plan, rec, err := svc.Current(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, plan)
	assert.Nil(t, rec)

	past := time.Now().Add(-time.Hour)
	store.active[user] = &models.SubscriptionRecord{Plan: models.PlanPremium, Status: models.SubscriptionActive, ExpiresAt: &past}
	plan, _, err = svc.Current(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, plan)
}

func TestCheckout_Guards(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Checkout(context.Background(), nil, models.PlanPremium)
	assert.ErrorIs(t, err, session.ErrLoginRequired)

	_, err = svc.Checkout(context.Background(), &models.User{ID: uuid.New()}, "gold")
	assert.ErrorIs(t, err, ErrUnknownPlan)

	res, err := svc.Checkout(context.Background(), &models.User{ID: uuid.New()}, models.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, AlreadyOnPlan, res.Outcome)
}

func TestCheckout_DowngradeToFree(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	user := &models.User{ID: uuid.New()}
	store.active[user.ID] = &models.SubscriptionRecord{Plan: models.PlanStandard, Status: models.SubscriptionActive}

	res, err := svc.Checkout(context.Background(), user, models.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, Switched, res.Outcome)
	assert.Equal(t, []models.Plan{models.PlanFree}, store.activated)
}

func TestCheckout_PaidThenComplete(t *testing.T) {
	svc, store, payments, verifier := newTestService(t)
	user := &models.User{ID: uuid.New()}

	payments.EXPECT().CreateSession(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req backend.PaymentSessionRequest) (*backend.PaymentSession, error) {
			assert.Equal(t, int64(999), req.AmountCents)
			return &backend.PaymentSession{RedirectURL: "https://pay.example/p"}, nil
		})

	res, err := svc.Checkout(context.Background(), user, models.PlanPremium)
	require.NoError(t, err)
	assert.Equal(t, Redirected, res.Outcome)
	assert.Empty(t, store.activated)

	verifier.EXPECT().VerifyPayment(gomock.Any(), res.OrderID).Return(&backend.PaymentStatus{Settled: true}, nil)
	done, err := svc.Complete(context.Background(), res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, Activated, done.Outcome)
	assert.Equal(t, models.PlanPremium, done.Plan)
	require.NotNil(t, done.Record.ExpiresAt)

	// Replaying the return does not apply the plan twice.
	again, err := svc.Complete(context.Background(), res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, Activated, again.Outcome)
	assert.Len(t, store.activated, 1)
}

func TestCheckout_PaymentFailure(t *testing.T) {
	svc, store, payments, _ := newTestService(t)
	payments.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(nil, errors.New("down"))

	res, err := svc.Checkout(context.Background(), &models.User{ID: uuid.New()}, models.PlanStandard)
	require.NoError(t, err)
	assert.Equal(t, PaymentFailed, res.Outcome)
	assert.Equal(t, models.OrderFailed, store.orders[res.OrderID].Status)
}

func TestComplete_Pending(t *testing.T) {
	svc, store, _, verifier := newTestService(t)
	store.orders["ORD-1"] = &models.Order{ID: "ORD-1", BuyerID: uuid.New(), Kind: models.OrderSubscription, ItemRef: "standard", Status: models.OrderPending}

	verifier.EXPECT().VerifyPayment(gomock.Any(), "ORD-1").Return(&backend.PaymentStatus{Status: "pending"}, nil)
	res, err := svc.Complete(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, res.Outcome)
	assert.Empty(t, store.activated)
}

func TestComplete_RejectsContentOrders(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	store.orders["ORD-2"] = &models.Order{ID: "ORD-2", Kind: models.OrderContent}

	_, err := svc.Complete(context.Background(), "ORD-2")
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestComplete_StaleOrderKeepsNewerPlan(t *testing.T) {
	svc, store, _, verifier := newTestService(t)
	user := uuid.New()
	created := time.Now().Add(-time.Hour)
	store.orders["ORD-old"] = &models.Order{
		ID: "ORD-old", BuyerID: user, Kind: models.OrderSubscription,
		ItemRef: string(models.PlanStandard), Status: models.OrderPending, CreatedAt: created,
	}
	exp := time.Now().Add(24 * time.Hour)
	store.active[user] = &models.SubscriptionRecord{
		Plan: models.PlanPremium, Status: models.SubscriptionActive, ExpiresAt: &exp, CreatedAt: created.Add(time.Minute),
	}
	verifier.EXPECT().VerifyPayment(gomock.Any(), "ORD-old").
		Return(&backend.PaymentStatus{Settled: true, TransactionID: "pi_old"}, nil)

	res, err := svc.Complete(context.Background(), "ORD-old")
	require.NoError(t, err)
	assert.Equal(t, Superseded, res.Outcome)
	assert.Equal(t, models.PlanPremium, res.Plan)
	assert.Empty(t, store.activated)
	assert.Equal(t, models.PlanPremium, store.active[user].Plan)
	assert.Equal(t, models.OrderSettled, store.orders["ORD-old"].Status)
}

func TestComplete_RenewsOlderPlan(t *testing.T) {
	svc, store, _, verifier := newTestService(t)
	user := uuid.New()
	exp := time.Now().Add(24 * time.Hour)
	store.active[user] = &models.SubscriptionRecord{
		Plan: models.PlanStandard, Status: models.SubscriptionActive, ExpiresAt: &exp, CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	store.orders["ORD-up"] = &models.Order{
		ID: "ORD-up", BuyerID: user, Kind: models.OrderSubscription,
		ItemRef: string(models.PlanPremium), Status: models.OrderPending, CreatedAt: time.Now().Add(-time.Minute),
	}
	verifier.EXPECT().VerifyPayment(gomock.Any(), "ORD-up").
		Return(&backend.PaymentStatus{Settled: true}, nil)

	res, err := svc.Complete(context.Background(), "ORD-up")
	require.NoError(t, err)
	assert.Equal(t, Activated, res.Outcome)
	assert.Equal(t, []models.Plan{models.PlanPremium}, store.activated)
}
