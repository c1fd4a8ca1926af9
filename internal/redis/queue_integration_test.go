package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jackster042/live-score/internal/domain"
)

func setupTestQueue(t *testing.T) (*JobQueue, *clockwork.FakeClock) {
	t.Helper()
	client := setupTestClient(t)
	clock := clockwork.NewFakeClock()
	return NewJobQueue(client, clock), clock
}

func startJob(matchID int64) domain.TransitionJob {
	return domain.TransitionJob{
		MatchID:    matchID,
		FromStatus: domain.StatusScheduled,
		ToStatus:   domain.StatusLive,
	}
}

func TestJobQueue_ScheduleAndClaim(t *testing.T) {
	queue, clock := setupTestQueue(t)
	ctx := context.Background()

	fireAt := clock.Now().Add(time.Minute)
	require.NoError(t, queue.Schedule(ctx, "match:7:start", fireAt, startJob(7)))

	// Not due yet
	jobs, err := queue.Due(ctx, clock.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	jobs, err = queue.Due(ctx, fireAt, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "match:7:start", jobs[0].ID)
	assert.Equal(t, int64(7), jobs[0].Job.MatchID)
	assert.Equal(t, domain.StatusLive, jobs[0].Job.ToStatus)
	assert.Equal(t, fireAt.UnixMilli(), jobs[0].FireAt.UnixMilli())

	// Claim removed the job
	jobs, err = queue.Due(ctx, fireAt, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestJobQueue_SameIDReplaces(t *testing.T) {
	queue, clock := setupTestQueue(t)
	ctx := context.Background()

	first := clock.Now().Add(time.Minute)
	later := clock.Now().Add(time.Hour)

	require.NoError(t, queue.Schedule(ctx, "match:7:start", first, startJob(7)))
	require.NoError(t, queue.Schedule(ctx, "match:7:start", later, startJob(7)))

	// Nothing fires at the original time
	jobs, err := queue.Due(ctx, first, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	jobs, err = queue.Due(ctx, later, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
}

func TestJobQueue_Cancel(t *testing.T) {
	queue, clock := setupTestQueue(t)
	ctx := context.Background()

	fireAt := clock.Now().Add(time.Minute)
	require.NoError(t, queue.Schedule(ctx, "match:7:start", fireAt, startJob(7)))
	require.NoError(t, queue.Cancel(ctx, "match:7:start"))

	jobs, err := queue.Due(ctx, fireAt, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	// Unknown id is a no-op
	require.NoError(t, queue.Cancel(ctx, "match:404:end"))
}

func TestJobQueue_ClaimRespectsLimitAndOrder(t *testing.T) {
	queue, clock := setupTestQueue(t)
	ctx := context.Background()

	now := clock.Now()
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, queue.Schedule(ctx, domain.TransitionJobID(i, domain.EdgeStart),
			now.Add(time.Duration(i)*time.Second), startJob(i)))
	}

	jobs, err := queue.Due(ctx, now.Add(5*time.Second), 3)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "match:1:start", jobs[0].ID)
	assert.Equal(t, "match:3:start", jobs[2].ID)

	jobs, err = queue.Due(ctx, now.Add(5*time.Second), 10)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestJobQueue_FailedJobRecord(t *testing.T) {
	queue, clock := setupTestQueue(t)
	ctx := context.Background()

	job := domain.ScheduledJob{
		ID:     "match:7:start",
		FireAt: clock.Now(),
		Job:    startJob(7),
	}
	require.NoError(t, queue.Fail(ctx, job, errors.New("connection reset")))

	failed, err := queue.Failed(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "match:7:start", failed[0].ID)
	assert.Equal(t, "connection reset", failed[0].Error)
	assert.Equal(t, int64(7), failed[0].Job.MatchID)
}
