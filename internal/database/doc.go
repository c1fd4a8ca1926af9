// Package database provides the Postgres persistence layer: connection
// pooling, idempotent migrations, and the match/commentary repositories.
package database
