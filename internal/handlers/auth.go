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
	"media-market/internal/middleware"
	"media-market/internal/models"
	"media-market/internal/session"
)

type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*backend.AuthSession, *models.User, error)
	SignUp(ctx context.Context, email, password, displayName string, role models.Role) (*backend.AuthSession, *models.User, error)
	SignOut(ctx context.Context, userID uuid.UUID, accessToken string) error
}

type AuthHandler struct {
	auth Authenticator
	log  *slog.Logger
}

func NewAuthHandler(auth Authenticator, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// RegisterRequest defines the JSON struct we expect from the client
type RegisterRequest struct {
	Email       string      `json:"email" binding:"required,email"`
	Password    string      `json:"password" binding:"required,min=8"`
	DisplayName string      `json:"display_name" binding:"required"`
	Role        models.Role `json:"role" binding:"omitempty,oneof=user artist"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}

	sess, user, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName, req.Role)
	switch {
	case errors.Is(err, backend.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email may already be in use."})
		return
	case err != nil:
		h.log.Error("failed to sign up", logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error, please try again."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully.",
		"session": sess,
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sess, user, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	case errors.Is(err, session.ErrBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is banned"})
		return
	case err != nil:
		h.log.Error("failed to sign in", logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful.", "token": sess.AccessToken, "session": sess, "user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	user := currentUser(c)
	if err := h.auth.SignOut(c.Request.Context(), user.ID, c.GetString(middleware.TokenKey)); err != nil {
		h.log.Error("failed to sign out", "user_id", user.ID, logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}
