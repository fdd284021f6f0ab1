package realtime

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"media-market/internal/logging"
)

const (
	sendBuffer = 256
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// client is one websocket connection subscribed to a set of tables.
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uuid.UUID
	log    *slog.Logger
}

// ServeConn attaches conn to the hub and pumps changes on tables to it until
// either side goes away. userID may be uuid.Nil for anonymous feeds.
func (h *Hub) ServeConn(conn *websocket.Conn, userID uuid.UUID, tables []string) {
	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		log:    h.log.With("user_id", userID),
	}

	unsubscribe := h.add(&subscriber{
		tables:  tableSet(tables),
		userID:  userID,
		deliver: c.enqueue,
		closed:  func() { close(c.send) },
	})

	go c.writePump()
	go c.readPump(unsubscribe)
}

func (c *client) enqueue(ch Change) bool {
	data, err := json.Marshal(ch)
	if err != nil {
		c.log.Error("failed to marshal change", "table", ch.Table, logging.Err(err))
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump(unsubscribe func()) {
	defer func() {
		unsubscribe()
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read error", logging.Err(err))
			}
			return
		}
	}
}
