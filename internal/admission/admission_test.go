package admission

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jackster042/live-score/internal/domain"
)

func TestDecide_AllowsWithinLimit(t *testing.T) {
	c := New(5, 2*time.Second, nil)

	r := httptest.NewRequest("GET", "/ws", nil)
	r.RemoteAddr = "10.0.0.1:1234"

	for i := 0; i < 5; i++ {
		decision, err := c.Decide(r)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "request %d should be admitted", i)
	}
}

func TestDecide_RateLimitsPerIP(t *testing.T) {
	c := New(2, time.Minute, nil)

	r := httptest.NewRequest("GET", "/ws", nil)
	r.RemoteAddr = "10.0.0.1:1234"

	for i := 0; i < 2; i++ {
		decision, err := c.Decide(r)
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	decision, err := c.Decide(r)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.DenyRateLimit, decision.Reason)

	// A different IP has its own budget
	other := httptest.NewRequest("GET", "/ws", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	decision, err = c.Decide(other)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestDecide_XForwardedForWins(t *testing.T) {
	c := New(1, time.Minute, nil)

	r := httptest.NewRequest("GET", "/ws", nil)
	r.RemoteAddr = "127.0.0.1:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	decision, err := c.Decide(r)
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	// Same forwarded IP through a different proxy connection shares the budget
	r2 := httptest.NewRequest("GET", "/ws", nil)
	r2.RemoteAddr = "127.0.0.2:5678"
	r2.Header.Set("X-Forwarded-For", "203.0.113.9")

	decision, err = c.Decide(r2)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestDecide_BlockedUserAgent(t *testing.T) {
	c := New(100, time.Second, []string{"BadBot", "scraper"})

	r := httptest.NewRequest("GET", "/ws", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("User-Agent", "Mozilla/5.0 BadBot/1.0")

	decision, err := c.Decide(r)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.DenyForbidden, decision.Reason)

	r.Header.Set("User-Agent", "Mozilla/5.0")
	decision, err = c.Decide(r)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}
