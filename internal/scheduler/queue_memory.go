package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Jackster042/live-score/internal/domain"
)

// MemoryQueue is an in-process JobQueue for tests and single-node
// development runs. The Redis-backed queue is the production store.
type MemoryQueue struct {
	mu      sync.Mutex
	pending map[string]domain.ScheduledJob
	failed  []domain.FailedJob
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{pending: make(map[string]domain.ScheduledJob)}
}

func (q *MemoryQueue) Schedule(_ context.Context, id string, fireAt time.Time, job domain.TransitionJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[id] = domain.ScheduledJob{ID: id, FireAt: fireAt, Job: job}
	return nil
}

func (q *MemoryQueue) Cancel(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, id)
	return nil
}

func (q *MemoryQueue) Due(_ context.Context, now time.Time, limit int) ([]domain.ScheduledJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []domain.ScheduledJob
	for _, job := range q.pending {
		if !job.FireAt.After(now) {
			due = append(due, job)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].FireAt.Before(due[j].FireAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	for _, job := range due {
		delete(q.pending, job.ID)
	}
	return due, nil
}

func (q *MemoryQueue) Fail(_ context.Context, job domain.ScheduledJob, cause error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed = append([]domain.FailedJob{{
		ScheduledJob: job,
		Error:        cause.Error(),
		FailedAt:     time.Now().UTC(),
	}}, q.failed...)
	return nil
}

func (q *MemoryQueue) Failed(_ context.Context) ([]domain.FailedJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]domain.FailedJob, len(q.failed))
	copy(out, q.failed)
	return out, nil
}

// PendingCount reports how many jobs await their fire time.
func (q *MemoryQueue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
