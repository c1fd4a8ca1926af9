package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchIDFromChannel(t *testing.T) {
	tests := []struct {
		channel string
		wantID  int64
		wantOK  bool
	}{
		{"ws:match:7:commentary", 7, true},
		{"ws:match:42:score", 42, true},
		{"ws:match:123:status", 123, true},
		{"ws:match:created", 0, false},
		{"ws:match:abc:score", 0, false},
		{"ws:match:0:score", 0, false},
		{"other:channel", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			id, ok := MatchIDFromChannel(tt.channel)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestWrapEvent(t *testing.T) {
	payload := StatusChange{MatchID: 7, OldStatus: StatusScheduled, NewStatus: StatusLive}
	data, err := WrapEvent("instance-a", EventMatchStatusChanged, payload)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "instance-a", env.Origin)

	var frame struct {
		Type string       `json:"type"`
		Data StatusChange `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Event, &frame))
	assert.Equal(t, EventMatchStatusChanged, frame.Type)
	assert.Equal(t, int64(7), frame.Data.MatchID)
	assert.Equal(t, StatusLive, frame.Data.NewStatus)
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "ws:match:7:commentary", ChannelCommentary(7))
	assert.Equal(t, "ws:match:7:score", ChannelScore(7))
	assert.Equal(t, "ws:match:7:status", ChannelStatus(7))
}
