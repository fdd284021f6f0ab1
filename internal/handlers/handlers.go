// Package handlers exposes the marketplace over HTTP with gin.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"media-market/internal/models"
	"media-market/internal/session"
)

// currentUser returns the signed-in user or nil for anonymous requests.
func currentUser(c *gin.Context) *models.User {
	u, _ := session.CurrentUser(c.Request.Context())
	return u
}

// paramID parses the :id path parameter, writing a 400 when it is malformed.
func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func page(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}
