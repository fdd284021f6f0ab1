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
	"media-market/internal/session"
	"media-market/internal/ticketing"
)

type Ticketing interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	MyTickets(ctx context.Context, user *models.User) ([]models.Ticket, error)
	CreateEvent(ctx context.Context, in ticketing.EventInput) (*models.Event, error)
	Buy(ctx context.Context, user *models.User, eventID uuid.UUID) (*models.Ticket, error)
	VerifyQR(ctx context.Context, payload string) (*models.Ticket, error)
}

type EventHandler struct {
	tickets Ticketing
	log     *slog.Logger
}

func NewEventHandler(t Ticketing, log *slog.Logger) *EventHandler {
	return &EventHandler{tickets: t, log: log}
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.tickets.ListEvents(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list events", logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch events"})
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Buy(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	ticket, err := h.tickets.Buy(c.Request.Context(), currentUser(c), id)
	switch {
	case errors.Is(err, session.ErrLoginRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
		return
	case errors.Is(err, backend.ErrSoldOut):
		c.JSON(http.StatusConflict, gin.H{"error": "Sold out"})
		return
	case errors.Is(err, backend.ErrEventStarted):
		c.JSON(http.StatusConflict, gin.H{"error": "Ticket sales for this event have closed"})
		return
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not buy ticket"})
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *EventHandler) MyTickets(c *gin.Context) {
	tickets, err := h.tickets.MyTickets(c.Request.Context(), currentUser(c))
	if err != nil {
		h.log.Error("failed to list tickets", logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch tickets"})
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *EventHandler) Create(c *gin.Context) {
	var in ticketing.EventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	e, err := h.tickets.CreateEvent(c.Request.Context(), in)
	switch {
	case errors.Is(err, ticketing.ErrInvalidEvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.log.Error("failed to create event", logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create event"})
		return
	}
	c.JSON(http.StatusCreated, e)
}

type VerifyTicketRequest struct {
	Payload string `json:"payload" binding:"required"`
}

func (h *EventHandler) Verify(c *gin.Context) {
	var req VerifyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ticket, err := h.tickets.VerifyQR(c.Request.Context(), req.Payload)
	switch {
	case errors.Is(err, ticketing.ErrInvalidQR):
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	case err != nil:
		h.log.Error("failed to verify ticket", logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not verify ticket"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "ticket": ticket})
}
