package domain

import (
	"time"
)

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusLive      MatchStatus = "live"
	StatusFinished  MatchStatus = "finished"
)

// Match is a sporting event. Postgres is the single source of truth for
// its state; the gateway and scheduler only read and receive it.
type Match struct {
	ID        int64       `json:"id"`
	Sport     string      `json:"sport"`
	HomeTeam  string      `json:"homeTeam"`
	AwayTeam  string      `json:"awayTeam"`
	Status    MatchStatus `json:"status"`
	StartTime time.Time   `json:"startTime"`
	EndTime   time.Time   `json:"endTime"`
	HomeScore int         `json:"homeScore"`
	AwayScore int         `json:"awayScore"`
	CreatedAt time.Time   `json:"createdAt"`
}

// DeriveStatus computes the status a match should have at the given
// instant, ignoring manual overrides: before startTime it is scheduled,
// from endTime on it is finished, in between it is live.
func DeriveStatus(startTime, endTime, now time.Time) MatchStatus {
	if now.Before(startTime) {
		return StatusScheduled
	}
	if !now.Before(endTime) {
		return StatusFinished
	}
	return StatusLive
}

// ValidTransition reports whether moving from one status to another
// follows the scheduled → live → finished state machine. Finished is
// terminal and no transition may regress.
func ValidTransition(from, to MatchStatus) bool {
	switch {
	case from == StatusScheduled && to == StatusLive:
		return true
	case from == StatusLive && to == StatusFinished:
		return true
	default:
		return false
	}
}
