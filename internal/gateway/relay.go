package gateway

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Jackster042/live-score/internal/domain"
)

// StartRelay subscribes the hub to the broadcast bus so events published
// by peer instances reach this process's clients. Messages that carry
// this hub's own origin are dropped: their local fan-out already ran
// before the publish.
func (h *Hub) StartRelay(ctx context.Context) error {
	if err := h.bus.Subscribe(ctx, domain.ChannelMatchCreated, h.relayGlobal); err != nil {
		return err
	}
	return h.bus.SubscribePattern(ctx, domain.ChannelMatchScopePattern, h.relayMatchScoped)
}

// relayGlobal fans a match announcement out to every local client.
func (h *Hub) relayGlobal(channel string, payload []byte) {
	frame, eventType, ok := h.unwrap(channel, payload)
	if !ok {
		return
	}
	h.broadcastAllLocal(eventType, frame)
}

// relayMatchScoped delivers a match-scoped event to that match's local
// subscribers. The global announcement channel shares the ws:match:
// prefix, so the pattern subscription receives a second copy of every
// announcement; it carries no match ID and is dropped here, keeping
// delivery through the dedicated subscription the only one.
func (h *Hub) relayMatchScoped(channel string, payload []byte) {
	matchID, ok := domain.MatchIDFromChannel(channel)
	if !ok {
		if channel != domain.ChannelMatchCreated {
			slog.Warn("Bus message on unroutable channel", "channel", channel)
		}
		return
	}

	frame, eventType, ok := h.unwrap(channel, payload)
	if !ok {
		return
	}
	h.broadcastMatchLocal(matchID, eventType, frame)
}

// unwrap parses a bus envelope into the client-facing frame and its
// type. ok is false for messages this instance published itself.
func (h *Hub) unwrap(channel string, payload []byte) ([]byte, string, bool) {
	var env domain.Envelope
	if err := json.Unmarshal(payload, &env); err != nil || len(env.Event) == 0 {
		// Not an envelope. Deliver the raw payload so a peer running
		// an older wire format still reaches local clients.
		slog.Warn("Bus message without envelope, delivering raw", "channel", channel)
		return payload, "unknown", true
	}

	if env.Origin == h.instanceID {
		return nil, "", false
	}

	var frame struct {
		Type string `json:"type"`
	}
	eventType := "unknown"
	if err := json.Unmarshal(env.Event, &frame); err == nil && frame.Type != "" {
		eventType = frame.Type
	}
	return env.Event, eventType, true
}
