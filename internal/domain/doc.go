// Package domain holds the core types and interfaces of the live-score
// service: matches, commentary, broadcast events, and the contracts for
// the broadcast bus, delayed job queue, persistence, and admission control.
//
// The package depends on no transport or storage so the gateway and
// scheduler never touch a concrete Redis or Postgres API.
package domain
