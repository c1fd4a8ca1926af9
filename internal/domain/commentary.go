package domain

import (
	"encoding/json"
	"time"
)

// Commentary is a single timeline entry belonging to exactly one match.
// The ordering fields (minute, period, sequence) are caller-supplied and
// not validated for global monotonicity; ordering across reconnects is
// the client's responsibility.
type Commentary struct {
	ID        int64           `json:"id"`
	MatchID   int64           `json:"matchId"`
	Minute    int             `json:"minute"`
	Sequence  int             `json:"sequence"`
	Period    int             `json:"period"`
	EventType string          `json:"eventType"`
	Actor     string          `json:"actor,omitempty"`
	Team      string          `json:"team,omitempty"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Tags      []string        `json:"tags,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
