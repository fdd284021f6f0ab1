package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/midtrans/midtrans-go/coreapi"

	"media-market/internal/backend"
	"media-market/internal/logging"
	"media-market/internal/models"
	"media-market/internal/purchase"
	"media-market/internal/subscription"
)

type OrderLookup interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
}

type SubscriptionCompleter interface {
	Complete(ctx context.Context, orderID string) (*subscription.Result, error)
}

type PurchaseCompleter interface {
	Complete(ctx context.Context, orderID string) (*purchase.Result, error)
}

// WebhookHandler receives payment notifications. The body is only trusted for
// the order id; the order is always re-verified with the provider.
type WebhookHandler struct {
	orders        OrderLookup
	purchases     PurchaseCompleter
	subscriptions SubscriptionCompleter
	log           *slog.Logger
}

func NewWebhookHandler(orders OrderLookup, p PurchaseCompleter, s SubscriptionCompleter, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{orders: orders, purchases: p, subscriptions: s, log: log}
}

func (h *WebhookHandler) HandlePaymentNotification(c *gin.Context) {
	// Edge function payloads carry the same order_id field.
	var notification coreapi.TransactionStatusResponse
	if err := c.ShouldBindJSON(&notification); err != nil {
		h.log.Warn("failed to bind payment notification", logging.Err(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification format"})
		return
	}
	orderID := strings.TrimSpace(notification.OrderID)
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	ctx := c.Request.Context()
	order, err := h.orders.GetOrder(ctx, orderID)
	if errors.Is(err, backend.ErrNotFound) {
		h.log.Warn("notification for unknown order", "order_id", orderID)
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		h.log.Error("failed to find order", "order_id", orderID, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if order.Status == models.OrderSettled {
		c.JSON(http.StatusOK, gin.H{"status": "ok (duplicate)"})
		return
	}

	var status string
	switch order.Kind {
	case models.OrderContent:
		var res *purchase.Result
		if res, err = h.purchases.Complete(ctx, orderID); err == nil {
			status = string(res.State)
		}
	case models.OrderSubscription:
		var res *subscription.Result
		if res, err = h.subscriptions.Complete(ctx, orderID); err == nil {
			status = string(res.Outcome)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order kind"})
		return
	}
	if err != nil {
		h.log.Error("failed to complete order", "order_id", orderID, "kind", order.Kind, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not complete order"})
		return
	}

	h.log.Info("payment notification handled", "order_id", orderID, "provider_status", notification.TransactionStatus, "result", status)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "result": status})
}
