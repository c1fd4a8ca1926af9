package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ChannelSubscription(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var got []string
	require.NoError(t, m.Subscribe(ctx, "ws:match:created", func(channel string, payload []byte) {
		got = append(got, string(payload))
	}))

	require.NoError(t, m.Publish(ctx, "ws:match:created", []byte("a")))
	require.NoError(t, m.Publish(ctx, "other", []byte("b")))

	assert.Equal(t, []string{"a"}, got)
}

func TestMemory_PatternSubscription(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var channels []string
	require.NoError(t, m.SubscribePattern(ctx, "ws:match:*", func(channel string, payload []byte) {
		channels = append(channels, channel)
	}))

	require.NoError(t, m.Publish(ctx, "ws:match:7:commentary", nil))
	require.NoError(t, m.Publish(ctx, "ws:match:7:score", nil))
	require.NoError(t, m.Publish(ctx, "jobs:transitions", nil))

	assert.Equal(t, []string{"ws:match:7:commentary", "ws:match:7:score"}, channels)
}

func TestMemory_BothKindsReceive(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	count := 0
	handler := func(string, []byte) { count++ }
	require.NoError(t, m.Subscribe(ctx, "ws:match:7:score", handler))
	require.NoError(t, m.SubscribePattern(ctx, "ws:match:*", handler))

	require.NoError(t, m.Publish(ctx, "ws:match:7:score", nil))
	assert.Equal(t, 2, count)
}
