package domain

import (
	"context"
	"fmt"
	"time"
)

// Edge is one of the two lifecycle boundaries of a match.
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// TransitionJobID builds the deterministic identity of a transition job.
// Scheduling the same identity twice replaces the earlier job, and the
// same key cancels it.
func TransitionJobID(matchID int64, edge Edge) string {
	return fmt.Sprintf("match:%d:%s", matchID, edge)
}

// TransitionJob flips a match from one status to the next at a
// lifecycle edge. FromStatus is the guard: the processor only applies
// the update when the persisted status still equals it.
type TransitionJob struct {
	MatchID    int64       `json:"matchId"`
	FromStatus MatchStatus `json:"fromStatus"`
	ToStatus   MatchStatus `json:"toStatus"`
	Attempt    int         `json:"attempt"`
}

// ScheduledJob is a transition job together with its queue identity and
// fire time.
type ScheduledJob struct {
	ID     string
	FireAt time.Time
	Job    TransitionJob
}

// FailedJob is a job parked after exhausting its retry budget, retained
// for operator inspection.
type FailedJob struct {
	ScheduledJob
	Error    string
	FailedAt time.Time
}

// JobQueue is the delayed-job store shared by the scheduler (producer)
// and the worker (consumer). Delivery is at-least-once; the processor's
// fromStatus guard makes duplicate firings safe.
type JobQueue interface {
	// Schedule enqueues a job to fire at fireAt. An existing job with
	// the same id is replaced, not duplicated.
	Schedule(ctx context.Context, id string, fireAt time.Time, job TransitionJob) error

	// Cancel removes a pending job by identity. Cancelling an unknown
	// id is a no-op.
	Cancel(ctx context.Context, id string) error

	// Due atomically claims up to limit jobs whose fire time is at or
	// before now. Claimed jobs are removed from the queue; the caller
	// re-schedules on retryable failure.
	Due(ctx context.Context, now time.Time, limit int) ([]ScheduledJob, error)

	// Fail parks a job in the bounded failed-job record.
	Fail(ctx context.Context, job ScheduledJob, cause error) error

	// Failed lists parked jobs, most recent first.
	Failed(ctx context.Context) ([]FailedJob, error)
}
