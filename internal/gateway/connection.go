package gateway

import (
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
)

const maxMessageSize = 1 << 20

// clientMessage is the inbound protocol frame. MatchID is decoded as a
// float64 so non-numeric values surface as unmarshal errors while
// fractional values can be detected and ignored.
type clientMessage struct {
	Type    string  `json:"type"`
	MatchID float64 `json:"matchId"`
}

// HandleConnection registers the upgraded connection with the hub and
// runs its read pump until the peer disconnects. Blocks for the life of
// the connection; call from the HTTP handler goroutine.
func (h *Hub) HandleConnection(conn *websocket.Conn) {
	reply := make(chan *client, 1)
	h.cmdCh <- registerCmd{conn: conn, reply: reply}
	c := <-reply

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		h.cmdCh <- pongCmd{conn: conn}
		return nil
	})

	defer func() {
		h.cmdCh <- unregisterCmd{conn: conn}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("WebSocket read error", "error", err)
			}
			return
		}
		h.handleClientMessage(conn, c, data)
	}
}

// handleClientMessage parses one inbound frame. Frames that are not
// valid JSON get an error reply; well-formed JSON with an unknown type,
// a missing match ID, or a non-integer match ID is silently ignored.
func (h *Hub) handleClientMessage(conn *websocket.Conn, c *client, data []byte) {
	if !json.Valid(data) {
		h.sendError(c, "Invalid JSON")
		return
	}

	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}

	matchID := int64(msg.MatchID)
	if float64(matchID) != msg.MatchID || matchID <= 0 {
		return
	}

	switch msg.Type {
	case "subscribe":
		h.cmdCh <- subscribeCmd{conn: conn, matchID: matchID}
	case "unsubscribe":
		h.cmdCh <- unsubscribeCmd{conn: conn, matchID: matchID}
	}
}

func (h *Hub) sendError(c *client, message string) {
	data, err := json.Marshal(map[string]string{"type": "error", "message": message})
	if err != nil {
		return
	}
	c.trySend(data)
}
