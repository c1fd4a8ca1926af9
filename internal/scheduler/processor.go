package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/Jackster042/live-score/internal/domain"
)

// Outcome classifies what a transition job execution did.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
)

// Publisher announces an applied status change to connected clients.
// The gateway hub satisfies this in-process; the worker binary uses a
// bus-only implementation.
type Publisher interface {
	PublishStatusChange(ctx context.Context, change domain.StatusChange)
}

// Processor applies a single transition job against the match store.
type Processor struct {
	matches   domain.MatchRepository
	publisher Publisher
	clock     clockwork.Clock
}

func NewProcessor(matches domain.MatchRepository, publisher Publisher, clock clockwork.Clock) *Processor {
	return &Processor{matches: matches, publisher: publisher, clock: clock}
}

// Process executes one transition job. The update is conditional on the
// persisted status still matching the job's FromStatus; a mismatch
// means the transition already happened, a skip rather than an error so
// duplicate firings never corrupt state or trigger retries. A missing
// match is a hard failure: the job retries and eventually parks in the
// failed-job record where an operator can see it.
func (p *Processor) Process(ctx context.Context, job domain.TransitionJob) (Outcome, error) {
	if !domain.ValidTransition(job.FromStatus, job.ToStatus) {
		slog.Warn("Dropping job with invalid transition",
			"matchId", job.MatchID, "from", job.FromStatus, "to", job.ToStatus)
		return OutcomeSkipped, nil
	}

	match, err := p.matches.UpdateStatusFrom(ctx, job.MatchID, job.FromStatus, job.ToStatus)
	switch {
	case errors.Is(err, domain.ErrStatusConflict):
		slog.Info("Skipping transition, status moved on",
			"matchId", job.MatchID, "expected", job.FromStatus)
		return OutcomeSkipped, nil
	case err != nil:
		return OutcomeSkipped, fmt.Errorf("failed to apply transition for match %d: %w", job.MatchID, err)
	}

	slog.Info("Match status changed",
		"matchId", match.ID, "from", job.FromStatus, "to", match.Status)

	p.publisher.PublishStatusChange(ctx, domain.StatusChange{
		MatchID:   match.ID,
		OldStatus: job.FromStatus,
		NewStatus: match.Status,
		Timestamp: p.clock.Now().UTC(),
	})
	return OutcomeApplied, nil
}
