package scheduler

import (
	"context"
	"log/slog"

	"github.com/Jackster042/live-score/internal/domain"
)

// BusPublisher announces status changes on the broadcast bus without
// any local fan-out. It is the Publisher used by the standalone worker
// binary, which holds no WebSocket clients of its own; gateway
// instances pick the event up through their relays.
type BusPublisher struct {
	bus    domain.Bus
	origin string
}

func NewBusPublisher(bus domain.Bus, origin string) *BusPublisher {
	return &BusPublisher{bus: bus, origin: origin}
}

func (p *BusPublisher) PublishStatusChange(ctx context.Context, change domain.StatusChange) {
	data, err := domain.WrapEvent(p.origin, domain.EventMatchStatusChanged, change)
	if err != nil {
		slog.Error("Failed to marshal status change", "matchId", change.MatchID, "error", err)
		return
	}
	channel := domain.ChannelStatus(change.MatchID)
	if err := p.bus.Publish(ctx, channel, data); err != nil {
		slog.Error("Failed to publish status change", "channel", channel, "error", err)
	}
}
