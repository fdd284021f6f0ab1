package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-market/internal/logging"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(logging.Discard())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	return h
}

func recv(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
		return Change{}
	}
}

func TestSubscribe_FiltersByTable(t *testing.T) {
	h := startHub(t)
	got := make(chan Change, 4)

	unsubscribe := h.Subscribe(func(c Change) { got <- c }, "tickets")
	defer unsubscribe()

	h.Publish(context.Background(), Change{Table: "content_items", Type: Insert})
	h.Publish(context.Background(), Change{Table: "tickets", Type: Insert, Record: "t1"})

	c := recv(t, got)
	assert.Equal(t, "tickets", c.Table)
	assert.Equal(t, "t1", c.Record)
}

func TestSubscribe_AllTables(t *testing.T) {
	h := startHub(t)
	got := make(chan Change, 4)
	defer h.Subscribe(func(c Change) { got <- c })()

	h.Publish(context.Background(), Change{Table: "events", Type: Update})
	assert.Equal(t, "events", recv(t, got).Table)
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	h := startHub(t)
	got := make(chan Change, 4)

	unsubscribe := h.Subscribe(func(c Change) { got <- c })
	unsubscribe()
	unsubscribe()

	// A second subscriber proves the first event went through the loop.
	marker := make(chan Change, 1)
	defer h.Subscribe(func(c Change) { marker <- c })()

	h.Publish(context.Background(), Change{Table: "likes", Type: Insert})
	recv(t, marker)
	assert.Empty(t, got)
}

func TestDisconnect_DropsUserSubscribers(t *testing.T) {
	h := startHub(t)
	user := uuid.New()
	closed := make(chan struct{})

	h.add(&subscriber{
		userID:  user,
		deliver: func(Change) bool { return true },
		closed:  func() { close(closed) },
	})
	h.Disconnect(user)

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("subscriber not closed")
	}
}

func TestSlowSubscriberDropped(t *testing.T) {
	h := startHub(t)
	closed := make(chan struct{})

	h.add(&subscriber{
		deliver: func(Change) bool { return false },
		closed:  func() { close(closed) },
	})
	h.Publish(context.Background(), Change{Table: "tickets"})

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("slow subscriber kept")
	}
}

func TestPublish_AfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(logging.Discard())
	go h.Run(ctx)
	cancel()
	<-h.done

	require.NotPanics(t, func() {
		for i := 0; i < 100; i++ {
			h.Publish(context.Background(), Change{Table: "x"})
		}
	})
	unsubscribe := h.Subscribe(func(Change) {})
	unsubscribe()
}
