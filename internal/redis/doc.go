// Package redis provides the Redis-backed infrastructure: the pub/sub
// broadcast bus and the delayed job queue for status transitions.
package redis
