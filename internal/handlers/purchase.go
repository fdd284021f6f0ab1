package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"media-market/internal/backend"
	"media-market/internal/logging"
	"media-market/internal/models"
	"media-market/internal/purchase"
)

type Purchaser interface {
	Begin(ctx context.Context, buyer *models.User, contentID uuid.UUID) (*purchase.Result, error)
	Complete(ctx context.Context, orderID string) (*purchase.Result, error)
}

type Library interface {
	Library(ctx context.Context, userID uuid.UUID) ([]models.ContentItem, error)
}

type PurchaseHandler struct {
	flow    Purchaser
	library Library
	log     *slog.Logger
}

func NewPurchaseHandler(flow Purchaser, library Library, log *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{flow: flow, library: library, log: log}
}

func (h *PurchaseHandler) Buy(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	res, err := h.flow.Begin(c.Request.Context(), currentUser(c), id)
	switch {
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	case errors.Is(err, purchase.ErrNotPurchasable):
		c.JSON(http.StatusConflict, gin.H{"error": "Content is not available for purchase"})
		return
	case err != nil:
		h.log.Error("failed to start purchase", "content_id", id, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}
	c.JSON(purchaseStatus(res.State), res)
}

// Return is where the buyer lands after the payment page.
func (h *PurchaseHandler) Return(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	res, err := h.flow.Complete(c.Request.Context(), orderID)
	switch {
	case errors.Is(err, purchase.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order"})
		return
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	case err != nil:
		h.log.Error("failed to complete purchase", "order_id", orderID, logging.Err(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not confirm the payment", "order_id": orderID})
		return
	}
	c.JSON(purchaseStatus(res.State), res)
}

func (h *PurchaseHandler) Library(c *gin.Context) {
	user := currentUser(c)
	items, err := h.library.Library(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to list library", "user_id", user.ID, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch library"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func purchaseStatus(s purchase.State) int {
	switch s {
	case purchase.LoginRequired:
		return http.StatusUnauthorized
	case purchase.PaymentFailed:
		return http.StatusBadGateway
	case purchase.PaymentPending:
		return http.StatusAccepted
	default:
		return http.StatusOK
	}
}
