package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want MatchStatus
	}{
		{"before start", start.Add(-time.Minute), StatusScheduled},
		{"exactly at start", start, StatusLive},
		{"mid window", start.Add(time.Hour), StatusLive},
		{"exactly at end", end, StatusFinished},
		{"after end", end.Add(time.Minute), StatusFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(start, end, tt.now))
		})
	}
}

func TestValidTransition(t *testing.T) {
	assert.True(t, ValidTransition(StatusScheduled, StatusLive))
	assert.True(t, ValidTransition(StatusLive, StatusFinished))

	// No skipping, regressing or self-loops
	assert.False(t, ValidTransition(StatusScheduled, StatusFinished))
	assert.False(t, ValidTransition(StatusFinished, StatusLive))
	assert.False(t, ValidTransition(StatusLive, StatusScheduled))
	assert.False(t, ValidTransition(StatusLive, StatusLive))
	assert.False(t, ValidTransition(StatusFinished, StatusScheduled))
}

func TestTransitionJobID(t *testing.T) {
	assert.Equal(t, "match:7:start", TransitionJobID(7, EdgeStart))
	assert.Equal(t, "match:7:end", TransitionJobID(7, EdgeEnd))
}
