// Package realtime fans table change events out to live subscribers.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

type ChangeType string

const (
	Insert ChangeType = "INSERT"
	Update ChangeType = "UPDATE"
	Delete ChangeType = "DELETE"
)

// Change is one row-level event on a table.
type Change struct {
	Table  string     `json:"table"`
	Type   ChangeType `json:"type"`
	Record any        `json:"record"`
}

// Publisher accepts change events. Publishing never blocks on slow
// subscribers.
type Publisher interface {
	Publish(ctx context.Context, c Change)
}

type subscriber struct {
	tables map[string]struct{}
	userID uuid.UUID
	// deliver returns false when the subscriber can take no more.
	deliver func(Change) bool
	closed  func()
}

func (s *subscriber) wants(table string) bool {
	if len(s.tables) == 0 {
		return true
	}
	_, ok := s.tables[table]
	return ok
}

// Hub owns the subscriber set from a single goroutine.
type Hub struct {
	log         *slog.Logger
	subscribers map[*subscriber]struct{}
	register    chan *subscriber
	unregister  chan *subscriber
	broadcast   chan Change
	kick        chan uuid.UUID
	done        chan struct{}
}

var _ Publisher = (*Hub)(nil)

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:         log,
		subscribers: make(map[*subscriber]struct{}),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		broadcast:   make(chan Change, 64),
		kick:        make(chan uuid.UUID),
		done:        make(chan struct{}),
	}
}

// Run serves the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for s := range h.subscribers {
				h.drop(s)
			}
			return

		case s := <-h.register:
			h.subscribers[s] = struct{}{}
			h.log.Debug("subscriber registered", "user_id", s.userID)

		case s := <-h.unregister:
			if _, ok := h.subscribers[s]; ok {
				h.drop(s)
				h.log.Debug("subscriber unregistered", "user_id", s.userID)
			}

		case c := <-h.broadcast:
			for s := range h.subscribers {
				if !s.wants(c.Table) {
					continue
				}
				if !s.deliver(c) {
					h.log.Warn("dropping slow subscriber", "user_id", s.userID)
					h.drop(s)
				}
			}

		case userID := <-h.kick:
			for s := range h.subscribers {
				if s.userID == userID {
					h.drop(s)
				}
			}
		}
	}
}

func (h *Hub) drop(s *subscriber) {
	delete(h.subscribers, s)
	if s.closed != nil {
		s.closed()
	}
}

// Publish queues c for delivery. Events published after the hub stopped are
// discarded.
func (h *Hub) Publish(ctx context.Context, c Change) {
	select {
	case h.broadcast <- c:
	case <-h.done:
	case <-ctx.Done():
	}
}

// Subscribe calls fn for every change on one of tables (all tables when
// none are given) until the returned function is called. fn runs on the hub
// goroutine and must not block.
func (h *Hub) Subscribe(fn func(Change), tables ...string) (unsubscribe func()) {
	s := &subscriber{
		tables:  tableSet(tables),
		deliver: func(c Change) bool { fn(c); return true },
	}
	return h.add(s)
}

// Disconnect drops every subscriber attached to userID.
func (h *Hub) Disconnect(userID uuid.UUID) {
	select {
	case h.kick <- userID:
	case <-h.done:
	}
}

func (h *Hub) add(s *subscriber) func() {
	select {
	case h.register <- s:
	case <-h.done:
		if s.closed != nil {
			s.closed()
		}
		return func() {}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			select {
			case h.unregister <- s:
			case <-h.done:
			}
		})
	}
}

func tableSet(tables []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}
