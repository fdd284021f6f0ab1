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
	"media-market/internal/subscription"
)

type Subscriptions interface {
	Current(ctx context.Context, userID uuid.UUID) (models.Plan, *models.SubscriptionRecord, error)
	Checkout(ctx context.Context, user *models.User, plan models.Plan) (*subscription.Result, error)
	Complete(ctx context.Context, orderID string) (*subscription.Result, error)
}

type SubscriptionHandler struct {
	subs Subscriptions
	log  *slog.Logger
}

func NewSubscriptionHandler(subs Subscriptions, log *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, log: log}
}

func (h *SubscriptionHandler) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, subscription.Plans)
}

func (h *SubscriptionHandler) Current(c *gin.Context) {
	user := currentUser(c)
	plan, rec, err := h.subs.Current(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to load subscription", "user_id", user.ID, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan, "subscription": rec})
}

type CheckoutRequest struct {
	Plan models.Plan `json:"plan" binding:"required"`
}

func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	res, err := h.subs.Checkout(c.Request.Context(), currentUser(c), req.Plan)
	switch {
	case errors.Is(err, subscription.ErrUnknownPlan):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan"})
		return
	case err != nil:
		h.log.Error("failed to start checkout", "plan", req.Plan, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}
	c.JSON(subscriptionStatus(res.Outcome), res)
}

func (h *SubscriptionHandler) Return(c *gin.Context) {
	orderID := c.Query("order_id")
	res, err := h.subs.Complete(c.Request.Context(), orderID)
	switch {
	case errors.Is(err, subscription.ErrInvalidOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order"})
		return
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	case err != nil:
		h.log.Error("failed to complete subscription", "order_id", orderID, logging.Err(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not confirm the payment", "order_id": orderID})
		return
	}
	c.JSON(subscriptionStatus(res.Outcome), res)
}

func subscriptionStatus(o subscription.Outcome) int {
	switch o {
	case subscription.PaymentFailed:
		return http.StatusBadGateway
	case subscription.PaymentPending:
		return http.StatusAccepted
	case subscription.Superseded:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}
