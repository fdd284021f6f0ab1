package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-market/internal/backend"
	"media-market/internal/models"
)

func TestProcedures_ProcessPurchase(t *testing.T) {
	var gotName string
	var gotBody map[string]any
	p := &Procedures{call: func(name string, body any) (string, error) {
		gotName = name
		gotBody = body.(map[string]any)
		return "false", nil
	}}

	created, err := p.ProcessPurchase(context.Background(), backend.PurchaseInput{
		BuyerID: uuid.New(), ContentID: uuid.New(), PriceCents: 300, OrderID: "ORD-1",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "process_purchase", gotName)
	assert.Equal(t, "ORD-1", gotBody["p_order_id"])
}

func TestProcedures_PurchaseTicketSoldOut(t *testing.T) {
	p := &Procedures{call: func(string, any) (string, error) {
		return `{"code":"P0001","message":"sold_out"}`, nil
	}}

	_, err := p.PurchaseTicket(context.Background(), models.Ticket{ID: uuid.New(), EventID: uuid.New()})
	assert.ErrorIs(t, err, backend.ErrSoldOut)
}

func TestProcedures_ErrorMapping(t *testing.T) {
	for msg, want := range map[string]error{
		"event_started":     backend.ErrEventStarted,
		"event_not_found":   backend.ErrNotFound,
		"content_not_found": backend.ErrNotFound,
	} {
		t.Run(msg, func(t *testing.T) {
			assert.ErrorIs(t, rpcError(`{"code":"P0001","message":"`+msg+`"}`), want)
		})
	}
}

func TestProcedures_PurchaseTicket(t *testing.T) {
	want := models.Ticket{ID: uuid.New(), EventID: uuid.New(), OwnerID: uuid.New(), QRPayload: "mmt1.a.b"}
	p := &Procedures{call: func(string, any) (string, error) {
		b, _ := json.Marshal([]models.Ticket{want})
		return string(b), nil
	}}

	got, err := p.PurchaseTicket(context.Background(), want)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.QRPayload, got.QRPayload)
}

func TestProcedures_CheckUploadLimits(t *testing.T) {
	p := &Procedures{call: func(string, any) (string, error) {
		return `[{"active_items":2,"plan":"standard"}]`, nil
	}}

	usage, err := p.CheckUploadLimits(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, backend.UploadUsage{ActiveItems: 2, Plan: models.PlanStandard}, usage)
}

func TestProcedures_SubscriberCountQuoted(t *testing.T) {
	p := &Procedures{call: func(string, any) (string, error) { return `"42"`, nil }}

	n, err := p.SubscriberCount(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestProcedures_TransportError(t *testing.T) {
	p := &Procedures{call: func(string, any) (string, error) { return "", errors.New("boom") }}

	_, err := p.ToggleLike(context.Background(), uuid.New(), uuid.New())
	assert.ErrorContains(t, err, "rpc toggle_like: boom")
}

func TestPayments_CreateSession(t *testing.T) {
	var got checkoutPayload
	p := &Payments{invoke: func(_ context.Context, name string, payload any) ([]byte, error) {
		assert.Equal(t, checkoutFunction, name)
		got = payload.(checkoutPayload)
		return []byte(`{"url":"https://pay.example/s/1","session_id":"cs_1"}`), nil
	}}

	sess, err := p.CreateSession(context.Background(), backend.PaymentSessionRequest{
		OrderID: "ORD-1", ItemID: "item", AmountCents: 999, ReturnURL: "https://app/return",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/s/1", sess.RedirectURL)
	assert.Equal(t, int64(999), got.Amount)
	assert.Equal(t, "https://app/return", got.SuccessURL)
}

func TestPayments_CreateSessionError(t *testing.T) {
	p := &Payments{invoke: func(context.Context, string, any) ([]byte, error) {
		return []byte(`{"error":"card declined"}`), nil
	}}

	_, err := p.CreateSession(context.Background(), backend.PaymentSessionRequest{OrderID: "ORD-1"})
	assert.ErrorContains(t, err, "card declined")
}

func TestPayments_VerifyPayment(t *testing.T) {
	p := &Payments{invoke: func(context.Context, string, any) ([]byte, error) {
		return []byte(`{"status":"paid","transaction_id":"pi_1"}`), nil
	}}

	st, err := p.VerifyPayment(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.True(t, st.Settled)
	assert.Equal(t, "pi_1", st.TransactionID)
}

func TestPayments_EdgeRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/functions/v1/"+verifyFunction, r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"order_id":"ORD-1"}`, string(body))
		w.Write([]byte(`{"status":"complete","transaction_id":"pi_9"}`))
	}))
	defer srv.Close()

	c := &Client{url: srv.URL, key: "anon-key"}
	p := &Payments{invoke: c.edge(srv.Client())}

	st, err := p.VerifyPayment(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.True(t, st.Settled)
	assert.Equal(t, "pi_9", st.TransactionID)
}

func TestPayments_EdgeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "function crashed", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := &Client{url: srv.URL, key: "k"}
	p := &Payments{invoke: c.edge(srv.Client())}

	_, err := p.VerifyPayment(context.Background(), "ORD-1")
	assert.ErrorContains(t, err, "status 502")
}
