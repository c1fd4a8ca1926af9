package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Jackster042/live-score/internal/domain"
	"github.com/Jackster042/live-score/internal/metrics"
)

const heartbeatInterval = 30 * time.Second

// --- Command types ---

type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type registerCmd struct {
	baseHubCmd
	conn  *websocket.Conn
	reply chan *client
}

type unregisterCmd struct {
	baseHubCmd
	conn *websocket.Conn
}

type subscribeCmd struct {
	baseHubCmd
	conn    *websocket.Conn
	matchID int64
}

type unsubscribeCmd struct {
	baseHubCmd
	conn    *websocket.Conn
	matchID int64
}

type pongCmd struct {
	baseHubCmd
	conn *websocket.Conn
}

type broadcastAllCmd struct {
	baseHubCmd
	event string
	data  []byte
	done  chan struct{}
}

type broadcastMatchCmd struct {
	baseHubCmd
	matchID int64
	event   string
	data    []byte
	done    chan struct{}
}

type clientCountCmd struct {
	baseHubCmd
	reply chan int
}

type subscriberCountCmd struct {
	baseHubCmd
	matchID int64
	reply   chan int
}

type stopCmd struct {
	baseHubCmd
}

// Hub owns all WebSocket connection state for one process. A single
// goroutine consumes the command channel, so the registry and the
// per-connection records are never accessed concurrently.
type Hub struct {
	cmdCh      chan hubCmd
	clock      clockwork.Clock
	registry   *Registry
	clients    map[*websocket.Conn]*client
	bus        domain.Bus
	instanceID string
}

// NewHub creates a hub and starts its dispatch loop. instanceID is
// stamped into welcome frames and bus envelopes.
func NewHub(bus domain.Bus, instanceID string, clock clockwork.Clock) *Hub {
	h := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		clock:      clock,
		registry:   NewRegistry(),
		clients:    make(map[*websocket.Conn]*client),
		bus:        bus,
		instanceID: instanceID,
	}
	go h.run()
	return h
}

// InstanceID returns the identity this hub stamps into welcome frames.
func (h *Hub) InstanceID() string {
	return h.instanceID
}

func (h *Hub) run() {
	ticker := h.clock.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-h.cmdCh:
			switch c := cmd.(type) {
			case registerCmd:
				c.reply <- h.handleRegister(c.conn)
			case unregisterCmd:
				h.handleUnregister(c.conn)
			case subscribeCmd:
				h.handleSubscribe(c.conn, c.matchID)
			case unsubscribeCmd:
				h.handleUnsubscribe(c.conn, c.matchID)
			case pongCmd:
				if cl, ok := h.clients[c.conn]; ok {
					cl.isAlive = true
				}
			case broadcastAllCmd:
				h.fanOutAll(c.event, c.data)
				close(c.done)
			case broadcastMatchCmd:
				h.fanOutMatch(c.matchID, c.event, c.data)
				close(c.done)
			case clientCountCmd:
				c.reply <- len(h.clients)
			case subscriberCountCmd:
				c.reply <- h.registry.SubscriberCount(c.matchID)
			case stopCmd:
				h.handleStop()
				return
			default:
				slog.Warn("Hub: unknown command", "type", cmd)
			}
		case <-ticker.Chan():
			h.handleHeartbeat()
		}
	}
}

func (h *Hub) handleRegister(conn *websocket.Conn) *client {
	c := newClient(conn)
	h.clients[conn] = c
	metrics.ConnectedClients.Inc()

	welcome, err := json.Marshal(map[string]any{
		"type":     domain.EventWelcome,
		"message":  "Connected to Live Score API",
		"instance": h.instanceID,
	})
	if err == nil {
		c.trySend(welcome)
	}

	slog.Debug("Client connected", "instance", h.instanceID, "clients", len(h.clients))
	return c
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}

	metrics.ActiveSubscriptions.Sub(float64(len(c.subscriptions)))
	h.registry.Cleanup(c)
	c.terminate()
	delete(h.clients, conn)
	metrics.ConnectedClients.Dec()

	slog.Debug("Client disconnected", "clients", len(h.clients))
}

func (h *Hub) handleSubscribe(conn *websocket.Conn, matchID int64) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	if _, already := c.subscriptions[matchID]; !already {
		h.registry.Subscribe(matchID, c)
		metrics.ActiveSubscriptions.Inc()
	}
	h.sendAck(c, domain.EventSubscribed, matchID)
}

func (h *Hub) handleUnsubscribe(conn *websocket.Conn, matchID int64) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	if _, subscribed := c.subscriptions[matchID]; subscribed {
		h.registry.Unsubscribe(matchID, c)
		metrics.ActiveSubscriptions.Dec()
	}
	h.sendAck(c, domain.EventUnsubscribed, matchID)
}

func (h *Hub) sendAck(c *client, ackType string, matchID int64) {
	data, err := json.Marshal(map[string]any{"type": ackType, "matchId": matchID})
	if err != nil {
		return
	}
	c.trySend(data)
}

// handleHeartbeat terminates connections that missed a pong since the
// last tick, then clears the flag and pings the rest. A dead peer is
// gone within two intervals.
func (h *Hub) handleHeartbeat() {
	var dead []*websocket.Conn
	for conn, c := range h.clients {
		if !c.isAlive {
			dead = append(dead, conn)
			continue
		}
		c.isAlive = false
		c.ping()
	}

	for _, conn := range dead {
		slog.Info("Terminating unresponsive client")
		metrics.HeartbeatTerminations.Inc()
		h.handleUnregister(conn)
	}
}

func (h *Hub) fanOutAll(event string, data []byte) {
	var slow []*websocket.Conn
	for conn, c := range h.clients {
		if !c.trySend(data) {
			slow = append(slow, conn)
		}
	}
	metrics.BroadcastsTotal.WithLabelValues(event).Inc()
	h.evictSlow(slow)
}

func (h *Hub) fanOutMatch(matchID int64, event string, data []byte) {
	subscribers := h.registry.Subscribers(matchID)
	if len(subscribers) == 0 {
		return
	}

	var slow []*websocket.Conn
	for c := range subscribers {
		if !c.trySend(data) {
			slow = append(slow, c.conn)
		}
	}
	metrics.BroadcastsTotal.WithLabelValues(event).Inc()
	h.evictSlow(slow)
}

func (h *Hub) evictSlow(conns []*websocket.Conn) {
	for _, conn := range conns {
		slog.Warn("Disconnecting slow client")
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleStop() {
	for conn, c := range h.clients {
		c.terminate()
		delete(h.clients, conn)
	}
	metrics.ConnectedClients.Set(0)
}

// --- Public API ---

// ClientCount returns the number of connected clients on this instance.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	h.cmdCh <- clientCountCmd{reply: reply}
	return <-reply
}

// SubscriberCount returns the number of local subscribers for a match.
func (h *Hub) SubscriberCount(matchID int64) int {
	reply := make(chan int, 1)
	h.cmdCh <- subscriberCountCmd{matchID: matchID, reply: reply}
	return <-reply
}

// Stop shuts down the hub, closing all client connections.
func (h *Hub) Stop() {
	h.cmdCh <- stopCmd{}
}

// broadcastAllLocal fans an already-marshaled frame out to every local
// client and returns once delivery is enqueued.
func (h *Hub) broadcastAllLocal(event string, data []byte) {
	done := make(chan struct{})
	h.cmdCh <- broadcastAllCmd{event: event, data: data, done: done}
	<-done
}

// broadcastMatchLocal fans a frame out to local subscribers of a match.
func (h *Hub) broadcastMatchLocal(matchID int64, event string, data []byte) {
	done := make(chan struct{})
	h.cmdCh <- broadcastMatchCmd{matchID: matchID, event: event, data: data, done: done}
	<-done
}

// publish wraps a frame in an origin envelope and publishes it on the
// bus. Failures are logged and swallowed: local delivery has already
// happened and must not be undone by a peer-fanout problem.
func (h *Hub) publish(ctx context.Context, channel, eventType string, payload any) {
	data, err := domain.WrapEvent(h.instanceID, eventType, payload)
	if err != nil {
		slog.Error("Failed to marshal bus event", "channel", channel, "error", err)
		return
	}
	if err := h.bus.Publish(ctx, channel, data); err != nil {
		slog.Error("Failed to publish to bus, peers will miss this event",
			"channel", channel, "error", err)
	}
}

// BroadcastMatchCreated delivers a match_created event to every local
// client, then announces it on the global channel for peer instances.
func (h *Hub) BroadcastMatchCreated(ctx context.Context, match *domain.Match) {
	frame, err := json.Marshal(domain.EventFrame{Type: domain.EventMatchCreated, Data: match})
	if err != nil {
		slog.Error("Failed to marshal match_created frame", "error", err)
		return
	}
	h.broadcastAllLocal(domain.EventMatchCreated, frame)
	h.publish(ctx, domain.ChannelMatchCreated, domain.EventMatchCreated, match)
}

// BroadcastCommentary delivers a commentary event to local subscribers
// of the match, then publishes it for peer instances.
func (h *Hub) BroadcastCommentary(ctx context.Context, comment *domain.Commentary) {
	frame, err := json.Marshal(domain.EventFrame{Type: domain.EventCommentary, Data: comment})
	if err != nil {
		slog.Error("Failed to marshal commentary frame", "error", err)
		return
	}
	h.broadcastMatchLocal(comment.MatchID, domain.EventCommentary, frame)
	h.publish(ctx, domain.ChannelCommentary(comment.MatchID), domain.EventCommentary, comment)
}

// BroadcastScoreUpdated delivers a score_updated event to local
// subscribers of the match, then publishes it for peer instances.
func (h *Hub) BroadcastScoreUpdated(ctx context.Context, match *domain.Match) {
	frame, err := json.Marshal(domain.EventFrame{Type: domain.EventScoreUpdated, Data: match})
	if err != nil {
		slog.Error("Failed to marshal score_updated frame", "error", err)
		return
	}
	h.broadcastMatchLocal(match.ID, domain.EventScoreUpdated, frame)
	h.publish(ctx, domain.ChannelScore(match.ID), domain.EventScoreUpdated, match)
}

// PublishStatusChange delivers a match_status_changed event to local
// subscribers of the match, then publishes it for peer instances.
func (h *Hub) PublishStatusChange(ctx context.Context, change domain.StatusChange) {
	frame, err := json.Marshal(domain.EventFrame{Type: domain.EventMatchStatusChanged, Data: change})
	if err != nil {
		slog.Error("Failed to marshal match_status_changed frame", "error", err)
		return
	}
	h.broadcastMatchLocal(change.MatchID, domain.EventMatchStatusChanged, frame)
	h.publish(ctx, domain.ChannelStatus(change.MatchID), domain.EventMatchStatusChanged, change)
}
