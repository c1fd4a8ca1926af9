package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeDeadline     = 5 * time.Second
	messageBufferSize = 16
)

// client is the per-connection state record. It lives in a side table
// keyed by the connection; isAlive and subscriptions are owned by the
// hub goroutine and must only be touched there.
type client struct {
	conn          *websocket.Conn
	isAlive       bool
	subscriptions map[int64]struct{}

	sendCh   chan []byte
	pingCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn:          conn,
		isAlive:       true,
		subscriptions: make(map[int64]struct{}),
		sendCh:        make(chan []byte, messageBufferSize),
		pingCh:        make(chan struct{}, 1),
		doneCh:        make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *client) writeLoop() {
	for {
		select {
		case msg, ok := <-c.sendCh:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.pingCh:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.doneCh:
			return
		}
	}
}

// trySend enqueues a frame without blocking. A false return means the
// client's buffer is full (slow consumer) and the hub should evict it.
func (c *client) trySend(data []byte) bool {
	select {
	case c.sendCh <- data:
		return true
	default:
		return false
	}
}

// ping requests a ping control frame from the write loop.
func (c *client) ping() {
	select {
	case c.pingCh <- struct{}{}:
	default:
	}
}

// terminate closes the connection and stops the write loop. Safe to call
// more than once.
func (c *client) terminate() {
	c.stopOnce.Do(func() {
		close(c.doneCh)
		_ = c.conn.Close()
	})
}
