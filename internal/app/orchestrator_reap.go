package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sight/internal/domain"
	"github.com/dkeye/Sight/internal/metrics"
)

// Run drives the periodic sweep of stale pending sessions until ctx ends.
func (o *Orchestrator) Run(ctx context.Context) {
	t := time.NewTicker(o.reapEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := o.ReapStale(); n > 0 {
				log.Info().Str("module", "app").Int("reaped", n).Msg("stale pending sessions removed")
			}
		}
	}
}

// ReapStale removes pending sessions that sat unanswered past the TTL and
// returns their professionals to the pool. Nobody is notified; by the time a
// session has been pending this long both sides have moved on.
func (o *Orchestrator) ReapStale() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	cutoff := o.clock.Now().Add(-o.pendingTTL)
	var stale []*domain.CallSession
	for _, s := range o.sessions {
		if s.Status == domain.SessionPending && !s.CreatedAt.After(cutoff) {
			stale = append(stale, s)
		}
	}
	for _, s := range stale {
		o.deleteSessionLocked(s)
		o.setAvailableLocked(s.ProfessionalID)
		o.metrics.Inc(metrics.SessionsReaped)
	}
	if len(stale) > 0 {
		o.drainLocked()
	}
	return len(stale)
}
