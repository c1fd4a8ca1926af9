// Package server exposes the HTTP surface: match and commentary CRUD,
// the WebSocket upgrade endpoint, health checks, and Prometheus
// metrics. Admission control runs before the WebSocket handshake, so
// denied clients are refused with a plain HTTP status over the raw
// connection and never complete an upgrade.
package server
