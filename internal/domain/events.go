package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Event type strings sent to WebSocket clients.
const (
	EventWelcome            = "welcome"
	EventSubscribed         = "subscribed"
	EventUnsubscribed       = "unsubscribed"
	EventError              = "error"
	EventMatchCreated       = "match_created"
	EventCommentary         = "commentary"
	EventScoreUpdated       = "score_updated"
	EventMatchStatusChanged = "match_status_changed"
)

// StatusChange is the payload of a match_status_changed event.
type StatusChange struct {
	MatchID   int64       `json:"matchId"`
	OldStatus MatchStatus `json:"oldStatus"`
	NewStatus MatchStatus `json:"newStatus"`
	Timestamp time.Time   `json:"timestamp"`
}

// Bus channel naming. A single global channel announces new matches;
// match-scoped channels share the "ws:match:" prefix so one pattern
// subscription multiplexes all of them.
const (
	ChannelMatchCreated      = "ws:match:created"
	ChannelMatchScopePattern = "ws:match:*"
)

func ChannelCommentary(matchID int64) string {
	return fmt.Sprintf("ws:match:%d:commentary", matchID)
}

func ChannelScore(matchID int64) string {
	return fmt.Sprintf("ws:match:%d:score", matchID)
}

func ChannelStatus(matchID int64) string {
	return fmt.Sprintf("ws:match:%d:status", matchID)
}

// EventFrame is the JSON frame delivered to WebSocket clients for
// broadcast events.
type EventFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Envelope is the bus wire format. Origin carries the publishing
// instance's ID so a process can drop messages it published itself
// (local delivery already happened before the publish).
type Envelope struct {
	Origin string          `json:"origin"`
	Event  json.RawMessage `json:"event"`
}

// WrapEvent marshals an event frame into a bus envelope.
func WrapEvent(origin string, eventType string, data any) ([]byte, error) {
	event, err := json.Marshal(EventFrame{Type: eventType, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return json.Marshal(Envelope{Origin: origin, Event: event})
}

var matchChannelRe = regexp.MustCompile(`^ws:match:(\d+):`)

// MatchIDFromChannel extracts the match ID from a match-scoped channel
// name. Returns 0, false for the global channel or anything unparsable.
func MatchIDFromChannel(channel string) (int64, bool) {
	m := matchChannelRe.FindStringSubmatch(channel)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
