// Package midtrans creates Snap payment pages and checks transaction status
// through the Core API.
package midtrans

import (
	"context"
	"errors"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"media-market/internal/backend"
)

type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

type coreAPI interface {
	CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

type Gateway struct {
	snap snapAPI
	core coreAPI
}

var (
	_ backend.PaymentSessions = (*Gateway)(nil)
	_ backend.PaymentVerifier = (*Gateway)(nil)
)

func New(serverKey string, production bool) *Gateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(serverKey, env)

	var c coreapi.Client
	c.New(serverKey, env)

	return &Gateway{snap: &s, core: &c}
}

func (g *Gateway) CreateSession(ctx context.Context, req backend.PaymentSessionRequest) (*backend.PaymentSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.AmountCents,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.ItemID,
				Name:  req.ItemName,
				Price: req.AmountCents,
				Qty:   1,
			},
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.BuyerName,
			Email: req.BuyerEmail,
		},
		Callbacks: &snap.Callbacks{
			Finish: req.ReturnURL,
		},
	}

	resp, mErr := g.snap.CreateTransaction(snapReq)
	// Midtrans can hand back a usable response alongside an error.
	if resp == nil || resp.RedirectURL == "" {
		return nil, fmt.Errorf("create snap transaction: %w", asError(mErr))
	}
	return &backend.PaymentSession{RedirectURL: resp.RedirectURL, Token: resp.Token}, nil
}

// VerifyPayment asks the Core API for the order's status. settlement and
// capture count as paid.
func (g *Gateway) VerifyPayment(ctx context.Context, orderID string) (*backend.PaymentStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, mErr := g.core.CheckTransaction(orderID)
	if resp == nil {
		return nil, fmt.Errorf("check transaction %s: %w", orderID, asError(mErr))
	}
	return &backend.PaymentStatus{
		OrderID:       resp.OrderID,
		TransactionID: resp.TransactionID,
		Status:        resp.TransactionStatus,
		Settled:       resp.TransactionStatus == "settlement" || resp.TransactionStatus == "capture",
	}, nil
}

var errNoResponse = errors.New("no response from midtrans")

// asError keeps a nil *midtrans.Error from turning into a non-nil error.
func asError(e *midtrans.Error) error {
	if e == nil {
		return errNoResponse
	}
	return e
}
