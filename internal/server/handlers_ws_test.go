package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jackster042/live-score/internal/admission"
	"github.com/Jackster042/live-score/internal/bus"
	"github.com/Jackster042/live-score/internal/config"
	"github.com/Jackster042/live-score/internal/gateway"
)

// testWSServer builds a server with only the pieces the /ws path needs.
func testWSServer(t *testing.T, rateLimit int, blockedUserAgents []string) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		AppEnv:     "test",
		Port:       "0",
		InstanceID: "test-instance",
	}
	hub := gateway.NewHub(bus.NewMemory(), cfg.InstanceID, clockwork.NewRealClock())
	t.Cleanup(hub.Stop)

	admissionCtrl := admission.New(rateLimit, time.Minute, blockedUserAgents)
	srv := NewServer(cfg, hub, nil, nil, nil, nil, admissionCtrl, nil, nil, nil)

	server := httptest.NewServer(srv.echo)
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func TestWebSocket_AdmittedClientGetsWelcome(t *testing.T) {
	server := testWSServer(t, 5, nil)

	conn, _, err := ws.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"welcome"`)
}

func TestWebSocket_RateLimitedBeforeHandshake(t *testing.T) {
	server := testWSServer(t, 2, nil)

	for i := 0; i < 2; i++ {
		conn, _, err := ws.DefaultDialer.Dial(wsURL(server), nil)
		require.NoError(t, err)
		_ = conn.Close()
	}

	// The third dial never completes a handshake
	_, resp, err := ws.DefaultDialer.Dial(wsURL(server), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 429, resp.StatusCode)
}

func TestWebSocket_BlockedUserAgentGets403(t *testing.T) {
	server := testWSServer(t, 100, []string{"BadBot"})

	header := http.Header{"User-Agent": []string{"BadBot/2.0"}}
	_, resp, err := ws.DefaultDialer.Dial(wsURL(server), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestWebSocket_RejectionClosesConnection(t *testing.T) {
	server := testWSServer(t, 100, []string{"BadBot"})

	req, err := http.NewRequest("GET", server.URL+"/ws", nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "BadBot/2.0")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 403, resp.StatusCode)
	assert.True(t, resp.Close)
}

func TestWebSocket_OtherRoutesUnaffectedByBlocklist(t *testing.T) {
	server := testWSServer(t, 100, []string{"BadBot"})

	req, err := http.NewRequest("GET", server.URL+"/health/live", nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "BadBot/2.0")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}
