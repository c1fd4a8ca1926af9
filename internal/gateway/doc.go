// Package gateway implements the WebSocket fan-out core using the actor
// pattern: a single hub goroutine owns the subscription registry and all
// connection state, fed by a command channel (no mutexes). Per-connection
// write goroutines with bounded buffers isolate slow clients.
//
// Events are delivered local-first: the hub fans out to this process's
// subscribers synchronously, then publishes on the broadcast bus so peer
// instances relay to their own clients. Bus messages carry the origin
// instance ID and the relay drops its own, so every client sees each
// event exactly once.
package gateway
