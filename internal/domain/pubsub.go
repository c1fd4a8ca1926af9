package domain

import (
	"context"
)

// BusHandler receives one message per delivery, with the concrete
// channel the message arrived on (relevant for pattern subscriptions).
type BusHandler func(channel string, payload []byte)

// Bus is the cross-instance broadcast transport. Publish is
// fire-and-forget pub/sub: no acknowledgement, no backlog, processes
// not subscribed at publish time never see the message.
type Bus interface {
	// Publish sends payload on channel to all current subscribers.
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe registers handler for a single channel. The handler is
	// invoked from a background goroutine until ctx is cancelled.
	Subscribe(ctx context.Context, channel string, handler BusHandler) error

	// SubscribePattern registers handler for all channels matching a
	// glob pattern (e.g. "ws:match:*").
	SubscribePattern(ctx context.Context, pattern string, handler BusHandler) error
}
