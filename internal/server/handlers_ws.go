package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Jackster042/live-score/internal/domain"
	"github.com/Jackster042/live-score/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebSocket runs admission control before the handshake. Denied
// clients get a plain HTTP status written straight to the socket and
// never see a 101, so rejected bots cannot hold an upgraded connection.
func (s *Server) handleWebSocket(c echo.Context) error {
	decision, err := s.admission.Decide(c.Request())
	if err != nil {
		slog.Error("Admission check failed", "error", err)
		metrics.UpgradesDenied.WithLabelValues("error").Inc()
		return s.rejectUpgrade(c, 503, "Service Unavailable")
	}
	if !decision.Allowed {
		metrics.UpgradesDenied.WithLabelValues(string(decision.Reason)).Inc()
		switch decision.Reason {
		case domain.DenyRateLimit:
			return s.rejectUpgrade(c, 429, "Too Many Requests")
		default:
			return s.rejectUpgrade(c, 403, "Forbidden")
		}
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "error", err)
		return nil
	}

	// Blocks until the client disconnects.
	s.hub.HandleConnection(conn)
	return nil
}

// rejectUpgrade writes a minimal HTTP response on the hijacked
// connection and closes it. Falling back to a normal echo response when
// hijacking is unavailable keeps tests on plain recorders working.
func (s *Server) rejectUpgrade(c echo.Context, status int, text string) error {
	hijacker, ok := c.Response().Writer.(http.Hijacker)
	if !ok {
		return c.String(status, text)
	}

	conn, buf, err := hijacker.Hijack()
	if err != nil {
		return c.String(status, text)
	}
	defer func() { _ = conn.Close() }()

	fmt.Fprintf(buf, "HTTP/1.1 %d %s\r\nConnection: close\r\nContent-Length: 0\r\n\r\n", status, text)
	_ = buf.Flush()
	return nil
}
