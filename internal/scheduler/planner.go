package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Jackster042/live-score/internal/domain"
	"github.com/Jackster042/live-score/internal/metrics"
)

// Planner translates match timing into delayed transition jobs.
type Planner struct {
	queue domain.JobQueue
	clock clockwork.Clock
}

func NewPlanner(queue domain.JobQueue, clock clockwork.Clock) *Planner {
	return &Planner{queue: queue, clock: clock}
}

// PlanMatch schedules the lifecycle edges of a match that lie in the
// future. Edges already in the past get no job: the persisted status is
// expected to reflect them, and a derived status at write time covers
// matches created mid-window. Calling PlanMatch again for the same match
// replaces the earlier jobs because identities are deterministic.
func (p *Planner) PlanMatch(ctx context.Context, m *domain.Match) error {
	now := p.clock.Now()

	if m.StartTime.After(now) {
		job := domain.TransitionJob{
			MatchID:    m.ID,
			FromStatus: domain.StatusScheduled,
			ToStatus:   domain.StatusLive,
		}
		id := domain.TransitionJobID(m.ID, domain.EdgeStart)
		if err := p.queue.Schedule(ctx, id, m.StartTime, job); err != nil {
			return fmt.Errorf("failed to schedule start transition for match %d: %w", m.ID, err)
		}
		metrics.JobsScheduled.WithLabelValues(string(domain.EdgeStart)).Inc()
		slog.Info("Scheduled start transition", "matchId", m.ID, "fireAt", m.StartTime)
	}

	if m.EndTime.After(now) {
		job := domain.TransitionJob{
			MatchID:    m.ID,
			FromStatus: domain.StatusLive,
			ToStatus:   domain.StatusFinished,
		}
		id := domain.TransitionJobID(m.ID, domain.EdgeEnd)
		if err := p.queue.Schedule(ctx, id, m.EndTime, job); err != nil {
			return fmt.Errorf("failed to schedule end transition for match %d: %w", m.ID, err)
		}
		metrics.JobsScheduled.WithLabelValues(string(domain.EdgeEnd)).Inc()
		slog.Info("Scheduled end transition", "matchId", m.ID, "fireAt", m.EndTime)
	}

	return nil
}

// ReplanMatch cancels both pending edges and schedules fresh ones from
// the match's current times. Used after a timing edit.
func (p *Planner) ReplanMatch(ctx context.Context, m *domain.Match) error {
	if err := p.CancelMatch(ctx, m.ID); err != nil {
		return err
	}
	return p.PlanMatch(ctx, m)
}

// CancelMatch removes any pending transition jobs for a match. Unknown
// identities cancel as no-ops, so this is safe regardless of which edges
// were actually scheduled.
func (p *Planner) CancelMatch(ctx context.Context, matchID int64) error {
	for _, edge := range []domain.Edge{domain.EdgeStart, domain.EdgeEnd} {
		id := domain.TransitionJobID(matchID, edge)
		if err := p.queue.Cancel(ctx, id); err != nil {
			return fmt.Errorf("failed to cancel %s transition for match %d: %w", edge, matchID, err)
		}
	}
	return nil
}

// DeriveInitialStatus computes the status a freshly created match should
// be persisted with, so a match created mid-window starts live instead
// of waiting for an edge that already passed.
func (p *Planner) DeriveInitialStatus(startTime, endTime time.Time) domain.MatchStatus {
	return domain.DeriveStatus(startTime, endTime, p.clock.Now())
}
