package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"media-market/internal/logging"
	"media-market/internal/models"
)

type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, displayName, bio string) error
}

type ProfileHandler struct {
	store ProfileStore
	log   *slog.Logger
}

func NewProfileHandler(store ProfileStore, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{store: store, log: log}
}

func (h *ProfileHandler) GetMe(c *gin.Context) {
	h.respond(c, currentUser(c))
}

func (h *ProfileHandler) respond(c *gin.Context, user *models.User) {
	profile, err := h.store.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to get profile", "user_id", user.ID, logging.Err(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "profile": profile})
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=80"`
	Bio         string `json:"bio" binding:"max=2000"`
}

func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user := currentUser(c)
	if err := h.store.UpdateProfile(c.Request.Context(), user.ID, req.DisplayName, req.Bio); err != nil {
		h.log.Error("failed to update profile", "user_id", user.ID, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update profile"})
		return
	}
	updated := *user
	updated.DisplayName = req.DisplayName
	h.respond(c, &updated)
}
