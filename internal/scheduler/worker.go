package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Jackster042/live-score/internal/domain"
	"github.com/Jackster042/live-score/internal/metrics"
)

const (
	pollInterval     = time.Second
	claimBatchSize   = 32
	maxConcurrency   = 4
	maxAttempts      = 3
	baseRetryBackoff = time.Second
	maxRetryBackoff  = 30 * time.Second
)

// Worker polls the job queue and runs due transition jobs through the
// processor with bounded concurrency. Failed jobs are re-scheduled with
// exponential backoff until the attempt budget runs out, then parked in
// the failed-job record.
type Worker struct {
	queue     domain.JobQueue
	processor *Processor
	clock     clockwork.Clock

	wg sync.WaitGroup
}

func NewWorker(queue domain.JobQueue, processor *Processor, clock clockwork.Clock) *Worker {
	return &Worker{queue: queue, processor: processor, clock: clock}
}

// Run polls until ctx is cancelled, then waits for in-flight jobs.
func (w *Worker) Run(ctx context.Context) {
	ticker := w.clock.NewTicker(pollInterval)
	defer ticker.Stop()

	slog.Info("Transition worker started")
	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			slog.Info("Transition worker stopped")
			return
		case <-ticker.Chan():
			w.poll(ctx)
		}
	}
}

func (w *Worker) poll(ctx context.Context) {
	jobs, err := w.queue.Due(ctx, w.clock.Now(), claimBatchSize)
	if err != nil {
		slog.Error("Failed to claim due jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	sem := make(chan struct{}, maxConcurrency)
	for _, job := range jobs {
		sem <- struct{}{}
		w.wg.Add(1)
		go func(job domain.ScheduledJob) {
			defer w.wg.Done()
			defer func() { <-sem }()
			w.execute(ctx, job)
		}(job)
	}
}

func (w *Worker) execute(ctx context.Context, job domain.ScheduledJob) {
	outcome, err := w.processor.Process(ctx, job.Job)
	if err == nil {
		metrics.JobsProcessed.WithLabelValues(string(outcome)).Inc()
		return
	}

	job.Job.Attempt++
	if job.Job.Attempt >= maxAttempts {
		slog.Error("Job exhausted retries, parking",
			"jobId", job.ID, "attempts", job.Job.Attempt, "error", err)
		metrics.JobsProcessed.WithLabelValues("failed").Inc()
		if failErr := w.queue.Fail(ctx, job, err); failErr != nil {
			slog.Error("Failed to park job", "jobId", job.ID, "error", failErr)
		}
		return
	}

	backoff := retryBackoff(job.Job.Attempt)
	fireAt := w.clock.Now().Add(backoff)
	slog.Warn("Job failed, retrying",
		"jobId", job.ID, "attempt", job.Job.Attempt, "backoff", backoff, "error", err)
	metrics.JobRetries.Inc()
	if schedErr := w.queue.Schedule(ctx, job.ID, fireAt, job.Job); schedErr != nil {
		slog.Error("Failed to re-schedule job", "jobId", job.ID, "error", schedErr)
	}
}

// retryBackoff doubles per attempt starting at one second, capped at
// thirty seconds.
func retryBackoff(attempt int) time.Duration {
	backoff := baseRetryBackoff << (attempt - 1)
	if backoff > maxRetryBackoff {
		return maxRetryBackoff
	}
	return backoff
}
