package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jackster042/live-score/internal/domain"
)

func TestPlanner_PlanMatchSchedulesBothEdges(t *testing.T) {
	clock := clockwork.NewFakeClock()
	queue := NewMemoryQueue()
	planner := NewPlanner(queue, clock)

	now := clock.Now()
	match := &domain.Match{
		ID:        7,
		Status:    domain.StatusScheduled,
		StartTime: now.Add(time.Minute),
		EndTime:   now.Add(3 * time.Minute),
	}

	require.NoError(t, planner.PlanMatch(context.Background(), match))
	assert.Equal(t, 2, queue.PendingCount())

	// Nothing fires before the start time
	due, err := queue.Due(context.Background(), now.Add(30*time.Second), 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = queue.Due(context.Background(), now.Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "match:7:start", due[0].ID)
	assert.Equal(t, domain.StatusScheduled, due[0].Job.FromStatus)
	assert.Equal(t, domain.StatusLive, due[0].Job.ToStatus)

	due, err = queue.Due(context.Background(), now.Add(3*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "match:7:end", due[0].ID)
	assert.Equal(t, domain.StatusLive, due[0].Job.FromStatus)
	assert.Equal(t, domain.StatusFinished, due[0].Job.ToStatus)
}

func TestPlanner_PastEdgesGetNoJob(t *testing.T) {
	clock := clockwork.NewFakeClock()
	queue := NewMemoryQueue()
	planner := NewPlanner(queue, clock)

	now := clock.Now()

	// Started already, only the end edge remains
	match := &domain.Match{ID: 7, StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Minute)}
	require.NoError(t, planner.PlanMatch(context.Background(), match))
	assert.Equal(t, 1, queue.PendingCount())

	// Entirely in the past, nothing to do
	queue = NewMemoryQueue()
	planner = NewPlanner(queue, clock)
	match = &domain.Match{ID: 8, StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour)}
	require.NoError(t, planner.PlanMatch(context.Background(), match))
	assert.Equal(t, 0, queue.PendingCount())
}

func TestPlanner_ReplanReplacesJobs(t *testing.T) {
	clock := clockwork.NewFakeClock()
	queue := NewMemoryQueue()
	planner := NewPlanner(queue, clock)

	now := clock.Now()
	match := &domain.Match{ID: 7, StartTime: now.Add(time.Minute), EndTime: now.Add(2 * time.Minute)}
	require.NoError(t, planner.PlanMatch(context.Background(), match))

	// Push the match out by an hour
	match.StartTime = now.Add(time.Hour)
	match.EndTime = now.Add(2 * time.Hour)
	require.NoError(t, planner.ReplanMatch(context.Background(), match))
	assert.Equal(t, 2, queue.PendingCount())

	// The old fire times are gone
	due, err := queue.Due(context.Background(), now.Add(10*time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = queue.Due(context.Background(), now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestPlanner_CancelMatch(t *testing.T) {
	clock := clockwork.NewFakeClock()
	queue := NewMemoryQueue()
	planner := NewPlanner(queue, clock)

	now := clock.Now()
	match := &domain.Match{ID: 7, StartTime: now.Add(time.Minute), EndTime: now.Add(2 * time.Minute)}
	require.NoError(t, planner.PlanMatch(context.Background(), match))
	require.Equal(t, 2, queue.PendingCount())

	require.NoError(t, planner.CancelMatch(context.Background(), 7))
	assert.Equal(t, 0, queue.PendingCount())

	// Cancelling again is a no-op
	require.NoError(t, planner.CancelMatch(context.Background(), 7))
}

func TestPlanner_DeriveInitialStatus(t *testing.T) {
	clock := clockwork.NewFakeClock()
	planner := NewPlanner(NewMemoryQueue(), clock)

	now := clock.Now()
	assert.Equal(t, domain.StatusScheduled, planner.DeriveInitialStatus(now.Add(time.Hour), now.Add(2*time.Hour)))
	assert.Equal(t, domain.StatusLive, planner.DeriveInitialStatus(now.Add(-time.Minute), now.Add(time.Hour)))
	assert.Equal(t, domain.StatusFinished, planner.DeriveInitialStatus(now.Add(-2*time.Hour), now.Add(-time.Hour)))
}
