package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Jackster042/live-score/internal/domain"
)

const (
	queueKey      = "jobs:transitions"
	queueDataKey  = "jobs:transitions:data"
	failedJobsKey = "jobs:transitions:failed"

	// maxFailedJobs bounds the failed-job record; older entries are
	// trimmed so the list cannot grow without limit.
	maxFailedJobs = 1000
)

// claimDueScript atomically claims due jobs: reads members with a score
// at or before the cutoff, then removes them from both the schedule and
// the payload hash. Returns (id, score, payload) triples.
var claimDueScript = goredis.NewScript(`
local due = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1], "LIMIT", 0, tonumber(ARGV[2]))
local out = {}
for _, id in ipairs(due) do
	local score = redis.call("ZSCORE", KEYS[1], id)
	local data = redis.call("HGET", KEYS[2], id)
	redis.call("ZREM", KEYS[1], id)
	redis.call("HDEL", KEYS[2], id)
	out[#out+1] = id
	out[#out+1] = score
	out[#out+1] = data
end
return out
`)

// JobQueue implements domain.JobQueue on a Redis sorted set (fire times)
// plus a hash (payloads). Job identity is the sorted-set member, so
// re-scheduling the same id replaces the earlier entry.
type JobQueue struct {
	rdb   *goredis.Client
	clock clockwork.Clock
}

// NewJobQueue creates a Redis-backed delayed job queue.
func NewJobQueue(client *Client, clock clockwork.Clock) *JobQueue {
	return &JobQueue{rdb: client.rdb, clock: clock}
}

// Schedule enqueues a job to fire at fireAt, replacing any job with the
// same id.
func (q *JobQueue) Schedule(ctx context.Context, id string, fireAt time.Time, job domain.TransitionJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", id, err)
	}

	pipe := q.rdb.TxPipeline()
	pipe.ZAdd(ctx, queueKey, goredis.Z{Score: float64(fireAt.UnixMilli()), Member: id})
	pipe.HSet(ctx, queueDataKey, id, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", id, err)
	}
	return nil
}

// Cancel removes a pending job by identity. Unknown ids are a no-op.
func (q *JobQueue) Cancel(ctx context.Context, id string) error {
	pipe := q.rdb.TxPipeline()
	pipe.ZRem(ctx, queueKey, id)
	pipe.HDel(ctx, queueDataKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cancel job %s: %w", id, err)
	}
	return nil
}

// Due atomically claims up to limit jobs due at or before now.
func (q *JobQueue) Due(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledJob, error) {
	raw, err := claimDueScript.Run(ctx, q.rdb,
		[]string{queueKey, queueDataKey},
		now.UnixMilli(), limit,
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to claim due jobs: %w", err)
	}

	jobs := make([]domain.ScheduledJob, 0, len(raw)/3)
	for i := 0; i+2 < len(raw); i += 3 {
		id, _ := raw[i].(string)
		scoreStr, _ := raw[i+1].(string)
		data, _ := raw[i+2].(string)

		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid score for job %s: %w", id, err)
		}

		var job domain.TransitionJob
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			return nil, fmt.Errorf("invalid payload for job %s: %w", id, err)
		}

		jobs = append(jobs, domain.ScheduledJob{
			ID:     id,
			FireAt: time.UnixMilli(int64(score)),
			Job:    job,
		})
	}
	return jobs, nil
}

// Fail parks a job in the bounded failed-job record.
func (q *JobQueue) Fail(ctx context.Context, job domain.ScheduledJob, cause error) error {
	failed := domain.FailedJob{
		ScheduledJob: job,
		Error:        cause.Error(),
		FailedAt:     q.clock.Now(),
	}
	data, err := json.Marshal(failedJobRecord(failed))
	if err != nil {
		return fmt.Errorf("failed to marshal failed job %s: %w", job.ID, err)
	}

	pipe := q.rdb.TxPipeline()
	pipe.LPush(ctx, failedJobsKey, data)
	pipe.LTrim(ctx, failedJobsKey, 0, maxFailedJobs-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record failed job %s: %w", job.ID, err)
	}
	return nil
}

// Failed lists parked jobs, most recent first.
func (q *JobQueue) Failed(ctx context.Context) ([]domain.FailedJob, error) {
	entries, err := q.rdb.LRange(ctx, failedJobsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list failed jobs: %w", err)
	}

	jobs := make([]domain.FailedJob, 0, len(entries))
	for _, entry := range entries {
		var rec jobRecord
		if err := json.Unmarshal([]byte(entry), &rec); err != nil {
			return nil, fmt.Errorf("invalid failed job record: %w", err)
		}
		jobs = append(jobs, rec.toFailedJob())
	}
	return jobs, nil
}

// jobRecord is the wire form of a failed job; ScheduledJob has no JSON
// tags of its own, so the record flattens it explicitly.
type jobRecord struct {
	ID       string               `json:"id"`
	FireAt   time.Time            `json:"fireAt"`
	Job      domain.TransitionJob `json:"job"`
	Error    string               `json:"error"`
	FailedAt time.Time            `json:"failedAt"`
}

func failedJobRecord(f domain.FailedJob) jobRecord {
	return jobRecord{
		ID:       f.ID,
		FireAt:   f.FireAt,
		Job:      f.Job,
		Error:    f.Error,
		FailedAt: f.FailedAt,
	}
}

func (r jobRecord) toFailedJob() domain.FailedJob {
	return domain.FailedJob{
		ScheduledJob: domain.ScheduledJob{ID: r.ID, FireAt: r.FireAt, Job: r.Job},
		Error:        r.Error,
		FailedAt:     r.FailedAt,
	}
}
