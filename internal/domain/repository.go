package domain

import (
	"context"
	"errors"
	"time"
)

// ErrMatchNotFound is returned when a match id does not exist.
var ErrMatchNotFound = errors.New("match not found")

// ErrStatusConflict is returned by UpdateStatusFrom when the persisted
// status no longer equals the expected one. For the job processor this
// is a valid skip, never a hard failure.
var ErrStatusConflict = errors.New("match status conflict")

// NewMatch carries the fields of a match to create. Status is derived
// from the timing window at creation, so a match created after its
// start time begins live instead of waiting for a start edge that
// already passed.
type NewMatch struct {
	Sport     string
	HomeTeam  string
	AwayTeam  string
	Status    MatchStatus
	StartTime time.Time
	EndTime   time.Time
}

// NewCommentary carries the caller-supplied fields of a commentary entry.
type NewCommentary struct {
	MatchID   int64
	Minute    int
	Sequence  int
	Period    int
	EventType string
	Actor     string
	Team      string
	Message   string
	Metadata  []byte
	Tags      []string
}

// MatchRepository is the persistence contract for matches. The relational
// store behind it is the single source of truth for match state.
type MatchRepository interface {
	Create(ctx context.Context, m NewMatch) (*Match, error)
	GetByID(ctx context.Context, id int64) (*Match, error)

	// UpdateStatusFrom performs the guarded, conditional status update:
	// the row changes only if its status still equals from. Returns the
	// updated match, ErrStatusConflict if the guard failed, or
	// ErrMatchNotFound if the id is unknown.
	UpdateStatusFrom(ctx context.Context, id int64, from, to MatchStatus) (*Match, error)

	UpdateScore(ctx context.Context, id int64, homeScore, awayScore int) (*Match, error)
	UpdateTimes(ctx context.Context, id int64, startTime, endTime time.Time) (*Match, error)
	Delete(ctx context.Context, id int64) error
}

// CommentaryRepository is the persistence contract for commentary.
// Entries are cascade-deleted with their match.
type CommentaryRepository interface {
	Create(ctx context.Context, c NewCommentary) (*Commentary, error)
	ListByMatch(ctx context.Context, matchID int64, limit int) ([]Commentary, error)
}
