package redis

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Jackster042/live-score/internal/domain"
	"github.com/Jackster042/live-score/internal/metrics"
)

// Bus implements domain.Bus over Redis Pub/Sub. Publishes are
// fire-and-forget: a process that is down or not yet subscribed when a
// message is published never receives it.
type Bus struct {
	rdb *goredis.Client
}

// NewBus creates a bus on top of an established Redis client.
func NewBus(client *Client) *Bus {
	return &Bus{rdb: client.rdb}
}

// Publish sends payload on channel to all currently subscribed processes.
func (b *Bus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		metrics.BusPublishesTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.BusPublishesTotal.WithLabelValues("ok").Inc()
	return nil
}

// Subscribe registers handler for a single channel. The handler runs on
// a background goroutine until ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, channel string, handler domain.BusHandler) error {
	sub := b.rdb.Subscribe(ctx, channel)
	// Wait for the subscription to be confirmed so callers can rely on
	// delivery of messages published after Subscribe returns.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	go b.consume(ctx, sub, "channel", handler)
	return nil
}

// SubscribePattern registers handler for all channels matching pattern.
func (b *Bus) SubscribePattern(ctx context.Context, pattern string, handler domain.BusHandler) error {
	sub := b.rdb.PSubscribe(ctx, pattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	go b.consume(ctx, sub, "pattern", handler)
	return nil
}

func (b *Bus) consume(ctx context.Context, sub *goredis.PubSub, kind string, handler domain.BusHandler) {
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.BusMessagesReceived.WithLabelValues(kind).Inc()
			handler(msg.Channel, []byte(msg.Payload))
		case <-ctx.Done():
			slog.Debug("Bus subscription closed", "kind", kind)
			return
		}
	}
}
