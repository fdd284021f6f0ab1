package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"media-market/internal/backend"
)

const (
	checkoutFunction = "create-checkout-session"
	verifyFunction   = "verify-payment"
)

type invokeFunc func(ctx context.Context, name string, payload any) ([]byte, error)

// Payments creates and verifies payment sessions through edge functions.
type Payments struct {
	invoke invokeFunc
}

var (
	_ backend.PaymentSessions = (*Payments)(nil)
	_ backend.PaymentVerifier = (*Payments)(nil)
)

func (c *Client) Payments() *Payments {
	return &Payments{invoke: c.edge(&http.Client{Timeout: 15 * time.Second})}
}

// edge posts a JSON payload to <project>/functions/v1/<name> with the
// project key headers and returns the response body.
func (c *Client) edge(hc *http.Client) invokeFunc {
	return func(ctx context.Context, name string, payload any) ([]byte, error) {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/functions/v1/"+name, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		for k, v := range c.headers() {
			req.Header.Set(k, v)
		}

		resp, err := hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		out, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.Header.Get("x-relay-error") == "true" || resp.StatusCode >= 500 {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(out))
		}
		return out, nil
	}
}

type checkoutPayload struct {
	OrderID    string `json:"order_id"`
	ItemID     string `json:"item_id"`
	ItemName   string `json:"item_name"`
	BuyerID    string `json:"buyer_id"`
	BuyerEmail string `json:"buyer_email,omitempty"`
	Amount     int64  `json:"amount_cents"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

func (p *Payments) CreateSession(ctx context.Context, req backend.PaymentSessionRequest) (*backend.PaymentSession, error) {
	out, err := p.invoke(ctx, checkoutFunction, checkoutPayload{
		OrderID:    req.OrderID,
		ItemID:     req.ItemID,
		ItemName:   req.ItemName,
		BuyerID:    req.BuyerID.String(),
		BuyerEmail: req.BuyerEmail,
		Amount:     req.AmountCents,
		SuccessURL: req.ReturnURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", checkoutFunction, err)
	}

	var resp struct {
		URL       string `json:"url"`
		SessionID string `json:"session_id"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", checkoutFunction, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s: %s", checkoutFunction, resp.Error)
	}
	if resp.URL == "" {
		return nil, fmt.Errorf("%s: no redirect url", checkoutFunction)
	}
	return &backend.PaymentSession{RedirectURL: resp.URL, Token: resp.SessionID}, nil
}

func (p *Payments) VerifyPayment(ctx context.Context, orderID string) (*backend.PaymentStatus, error) {
	out, err := p.invoke(ctx, verifyFunction, map[string]string{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", verifyFunction, err)
	}

	var resp struct {
		Status        string `json:"status"`
		TransactionID string `json:"transaction_id"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", verifyFunction, err)
	}
	return &backend.PaymentStatus{
		OrderID:       orderID,
		TransactionID: resp.TransactionID,
		Status:        resp.Status,
		Settled:       resp.Status == "paid" || resp.Status == "complete",
	}, nil
}
