package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"media-market/internal/logging"
	"media-market/internal/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Tables anyone may follow. Purchase and ticket changes name their buyers
// and the moderation queue holds unapproved uploads, so only admins get those.
var (
	publicTables = map[string]bool{"content_items": true, "events": true, "likes": true}
	adminTables  = map[string]bool{"purchases": true, "tickets": true, "moderation_queue": true}
)

type WebSocketHandler struct {
	hub *realtime.Hub
	log *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, log *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, log: log}
}

// ServeWs upgrades to a change feed for ?tables=a,b. Without tables the
// client gets every table it is allowed to see.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	user := currentUser(c)
	admin := user.IsAdmin()

	var tables []string
	for _, t := range strings.Split(c.Query("tables"), ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !publicTables[t] && !(admin && adminTables[t]) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Table not available: " + t})
			return
		}
		tables = append(tables, t)
	}
	if len(tables) == 0 {
		for t := range publicTables {
			tables = append(tables, t)
		}
		if admin {
			for t := range adminTables {
				tables = append(tables, t)
			}
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("failed to upgrade to connection", logging.Err(err))
		return
	}

	userID := uuid.Nil
	if user != nil {
		userID = user.ID
	}
	h.hub.ServeConn(conn, userID, tables)
}
