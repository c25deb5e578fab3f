package signal

import (
	"sync"
	"time"

	"github.com/dkeye/Sight/internal/core"
	"github.com/dkeye/Sight/internal/domain"
)

// CallRateLimiter caps how often one identity may start a matching attempt,
// over a sliding window of recent attempts. A limit of zero disables it.
type CallRateLimiter struct {
	mu       sync.Mutex
	history  map[domain.ParticipantID][]time.Time
	limit    int
	interval time.Duration
	clock    core.Clock
}

func NewCallRateLimiter(limit int, interval time.Duration, clock core.Clock) *CallRateLimiter {
	if clock == nil {
		clock = core.RealClock{}
	}
	return &CallRateLimiter{
		history:  make(map[domain.ParticipantID][]time.Time),
		limit:    limit,
		interval: interval,
		clock:    clock,
	}
}

func (rl *CallRateLimiter) Allow(id domain.ParticipantID) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[id]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[id] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[id] = fresh
	return true
}

// Forget drops the identity's attempt history once its connection is gone.
func (rl *CallRateLimiter) Forget(id domain.ParticipantID) {
	rl.mu.Lock()
	delete(rl.history, id)
	rl.mu.Unlock()
}
