package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"media-market/internal/logging"
)

const changesChannel = "media-market:changes"

// RedisBridge publishes changes to a Redis channel and replays everything
// received on it into the local hub, so every instance sees every change.
type RedisBridge struct {
	rdb *redis.Client
	hub *Hub
	log *slog.Logger
}

var _ Publisher = (*RedisBridge)(nil)

// NewRedisBridge connects to the Redis server at url (redis://...).
func NewRedisBridge(ctx context.Context, url string, hub *Hub, log *slog.Logger) (*RedisBridge, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisBridge{rdb: rdb, hub: hub, log: log}, nil
}

func (b *RedisBridge) Publish(ctx context.Context, c Change) {
	data, err := json.Marshal(c)
	if err != nil {
		b.log.Error("failed to marshal change", "table", c.Table, logging.Err(err))
		return
	}
	if err := b.rdb.Publish(ctx, changesChannel, data).Err(); err != nil {
		b.log.Error("failed to publish change", "table", c.Table, logging.Err(err))
	}
}

// Run forwards channel messages into the hub until ctx is done. ready, if
// non-nil, is closed once the subscription is confirmed.
func (b *RedisBridge) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := b.rdb.Subscribe(ctx, changesChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", changesChannel, err)
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var c Change
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				b.log.Warn("dropping malformed change", logging.Err(err))
				continue
			}
			b.hub.Publish(ctx, c)
		}
	}
}

func (b *RedisBridge) Close() error {
	return b.rdb.Close()
}
