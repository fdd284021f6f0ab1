package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"

	"media-market/internal/backend"
	"media-market/internal/models"
)

type rpcFunc func(name string, body any) (string, error)

// Procedures calls the database functions through PostgREST.
type Procedures struct {
	call rpcFunc
}

var _ backend.Procedures = (*Procedures)(nil)

func (c *Client) Procedures() *Procedures {
	rest := postgrest.NewClient(c.url+"/rest/v1", "public", c.headers())

	// The client reports errors through a shared field, so calls are
	// serialized.
	var mu sync.Mutex
	return &Procedures{call: func(name string, body any) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		rest.ClientError = nil
		out := rest.Rpc(name, "", body)
		if rest.ClientError != nil {
			return "", rest.ClientError
		}
		return out, nil
	}}
}

func (p *Procedures) rpc(ctx context.Context, name string, body any, dest any) error {
	if err := alive(ctx); err != nil {
		return err
	}
	out, err := p.call(name, body)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", name, err)
	}
	if err := rpcError(out); err != nil {
		return fmt.Errorf("rpc %s: %w", name, err)
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(out), dest); err != nil {
		return fmt.Errorf("rpc %s: decode: %w", name, err)
	}
	return nil
}

// PostgREST answers failed calls with a JSON error object in the body.
func rpcError(body string) error {
	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "{") || json.Unmarshal([]byte(trimmed), &e) != nil || e.Message == "" {
		return nil
	}
	switch {
	case strings.Contains(e.Message, "sold_out"):
		return backend.ErrSoldOut
	case strings.Contains(e.Message, "event_started"):
		return backend.ErrEventStarted
	case strings.Contains(e.Message, "event_not_found"), strings.Contains(e.Message, "content_not_found"):
		return backend.ErrNotFound
	}
	return fmt.Errorf("%s: %s", e.Code, e.Message)
}

func (p *Procedures) ProcessPurchase(ctx context.Context, in backend.PurchaseInput) (bool, error) {
	var created bool
	err := p.rpc(ctx, "process_purchase", map[string]any{
		"p_buyer_id":    in.BuyerID,
		"p_content_id":  in.ContentID,
		"p_price_cents": in.PriceCents,
		"p_order_id":    in.OrderID,
	}, &created)
	return created, err
}

func (p *Procedures) PurchaseTicket(ctx context.Context, t models.Ticket) (*models.Ticket, error) {
	var rows []models.Ticket
	err := p.rpc(ctx, "purchase_ticket", map[string]any{
		"p_ticket_id":  t.ID,
		"p_event_id":   t.EventID,
		"p_owner_id":   t.OwnerID,
		"p_qr_payload": t.QRPayload,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("rpc purchase_ticket: empty result")
	}
	return &rows[0], nil
}

func (p *Procedures) ToggleLike(ctx context.Context, userID, contentID uuid.UUID) (bool, error) {
	var liked bool
	err := p.rpc(ctx, "toggle_like", map[string]any{
		"p_user_id":    userID,
		"p_content_id": contentID,
	}, &liked)
	return liked, err
}

func (p *Procedures) SubscriberCount(ctx context.Context, artistID uuid.UUID) (int64, error) {
	var raw json.Number
	if err := p.rpc(ctx, "get_subscriber_count", map[string]any{"p_artist_id": artistID}, &raw); err != nil {
		return 0, err
	}
	// bigint may come back as a JSON string; json.Number takes both.
	return strconv.ParseInt(raw.String(), 10, 64)
}

func (p *Procedures) CheckUploadLimits(ctx context.Context, userID uuid.UUID) (backend.UploadUsage, error) {
	var rows []struct {
		ActiveItems int    `json:"active_items"`
		Plan        string `json:"plan"`
	}
	if err := p.rpc(ctx, "check_upload_limits", map[string]any{"p_user_id": userID}, &rows); err != nil {
		return backend.UploadUsage{}, err
	}
	if len(rows) == 0 {
		return backend.UploadUsage{Plan: models.PlanFree}, nil
	}
	return backend.UploadUsage{ActiveItems: rows[0].ActiveItems, Plan: models.NormalizePlan(rows[0].Plan)}, nil
}
