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
	"media-market/internal/realtime"
	"media-market/internal/repository"
)

type AdminStore interface {
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	ListContent(ctx context.Context, f repository.ContentFilter) ([]models.ContentItem, error)
	SetContentStatus(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) (*models.ContentItem, error)
	SetBanned(ctx context.Context, userID uuid.UUID, banned bool) error
	RefundPurchase(ctx context.Context, id uuid.UUID) (*models.PurchaseRecord, error)
}

// Evicter ends the live sessions of a user.
type Evicter interface {
	Evict(userID uuid.UUID)
}

// AdminHandler serves the moderation surface. Routes are mounted behind
// middleware.RequireAdmin.
type AdminHandler struct {
	store     AdminStore
	evicter   Evicter
	publisher realtime.Publisher
	log       *slog.Logger
}

func NewAdminHandler(store AdminStore, evicter Evicter, pub realtime.Publisher, log *slog.Logger) *AdminHandler {
	return &AdminHandler{store: store, evicter: evicter, publisher: pub, log: log}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.store.DashboardStats(c.Request.Context())
	if err != nil {
		h.log.Error("failed to load dashboard", logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListContent defaults to the pending queue.
func (h *AdminHandler) ListContent(c *gin.Context) {
	status := models.ApprovalStatus(c.DefaultQuery("status", string(models.StatusPending)))
	limit, offset := page(c)
	items, err := h.store.ListContent(c.Request.Context(), repository.ContentFilter{
		Kind:   models.ContentKind(c.Query("kind")),
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.log.Error("failed to list content", "status", status, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch content"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *AdminHandler) Approve(c *gin.Context) { h.moderate(c, models.StatusApproved) }
func (h *AdminHandler) Reject(c *gin.Context)  { h.moderate(c, models.StatusRejected) }

func (h *AdminHandler) moderate(c *gin.Context, status models.ApprovalStatus) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	item, err := h.store.SetContentStatus(c.Request.Context(), id, status)
	switch {
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	case errors.Is(err, backend.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Content was already moderated"})
		return
	case err != nil:
		h.log.Error("failed to moderate content", "content_id", id, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	h.log.Info("content moderated", "content_id", id, "status", status, "admin_id", currentUser(c).ID)
	h.publish(c, realtime.Change{Table: "moderation_queue", Type: realtime.Update, Record: item})
	if status == models.StatusApproved {
		// First time the item is visible to the public feed.
		h.publish(c, realtime.Change{Table: "content_items", Type: realtime.Insert, Record: item})
	}
	c.JSON(http.StatusOK, item)
}

func (h *AdminHandler) Ban(c *gin.Context)   { h.setBanned(c, true) }
func (h *AdminHandler) Unban(c *gin.Context) { h.setBanned(c, false) }

func (h *AdminHandler) setBanned(c *gin.Context, banned bool) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if id == currentUser(c).ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot ban yourself"})
		return
	}

	err := h.store.SetBanned(c.Request.Context(), id, banned)
	switch {
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	case err != nil:
		h.log.Error("failed to update ban", "user_id", id, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	if banned {
		h.evicter.Evict(id)
	}
	h.log.Info("ban updated", "user_id", id, "banned", banned)
	c.JSON(http.StatusOK, gin.H{"user_id": id, "banned": banned})
}

func (h *AdminHandler) Refund(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	p, err := h.store.RefundPurchase(c.Request.Context(), id)
	switch {
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase not found"})
		return
	case err != nil:
		h.log.Error("failed to refund purchase", "purchase_id", id, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	h.publish(c, realtime.Change{Table: "purchases", Type: realtime.Update, Record: p})
	c.JSON(http.StatusOK, p)
}

func (h *AdminHandler) publish(c *gin.Context, ch realtime.Change) {
	if h.publisher != nil {
		h.publisher.Publish(c.Request.Context(), ch)
	}
}
