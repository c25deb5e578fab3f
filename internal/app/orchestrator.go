// Package app implements the orchestration core: who is connected, who is
// free to take a call, who waits, and which sessions are live. Matching
// reads and writes across all four tables, so a single mutex guards the
// whole thing and only the operation methods are exported.
package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sight/internal/core"
	"github.com/dkeye/Sight/internal/domain"
	"github.com/dkeye/Sight/internal/metrics"
	"github.com/dkeye/Sight/internal/protocol"
)

const (
	DefaultPendingTTL   = 5 * time.Minute
	DefaultReapInterval = time.Minute
)

type entry struct {
	participant *domain.Participant
	conn        core.SignalConnection
}

type Orchestrator struct {
	clock      core.Clock
	match      Matcher
	metrics    *metrics.Metrics
	pendingTTL time.Duration
	reapEvery  time.Duration

	mu        sync.Mutex
	conns     map[domain.ParticipantID]*entry
	byCode    map[string]domain.ParticipantID
	available map[domain.ParticipantID]struct{}
	waiting   []domain.ParticipantID
	queued    map[domain.ParticipantID]struct{}
	sessions  map[domain.SessionID]*domain.CallSession
	bySide    map[domain.ParticipantID]domain.SessionID
}

type Options struct {
	Clock        core.Clock
	Matcher      Matcher
	Metrics      *metrics.Metrics
	PendingTTL   time.Duration
	ReapInterval time.Duration
}

func New(opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = core.RealClock{}
	}
	if opts.Matcher == nil {
		opts.Matcher = Dispatch{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = DefaultPendingTTL
	}
	if opts.ReapInterval <= 0 {
		opts.ReapInterval = DefaultReapInterval
	}
	return &Orchestrator{
		clock:      opts.Clock,
		match:      opts.Matcher,
		metrics:    opts.Metrics,
		pendingTTL: opts.PendingTTL,
		reapEvery:  opts.ReapInterval,
		conns:      make(map[domain.ParticipantID]*entry),
		byCode:     make(map[string]domain.ParticipantID),
		available:  make(map[domain.ParticipantID]struct{}),
		queued:     make(map[domain.ParticipantID]struct{}),
		sessions:   make(map[domain.SessionID]*domain.CallSession),
		bySide:     make(map[domain.ParticipantID]domain.SessionID),
	}
}

func (o *Orchestrator) Metrics() *metrics.Metrics { return o.metrics }

// Register binds an identity to a live transport handle and queues the
// registered confirmation. Re-registering the same identity replaces (and
// closes) the stale handle. A professional sheds any waiting slot kept from
// an earlier user registration and enters the availability pool, which may
// drain the queue; the confirmation always precedes a drained call-request.
func (o *Orchestrator) Register(id domain.ParticipantID, role domain.Role, conn core.SignalConnection) (*domain.Participant, error) {
	p, err := domain.NewParticipant(id, role)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if prev, ok := o.conns[id]; ok {
		if prev.conn != conn {
			prev.conn.Close()
		}
		delete(o.byCode, prev.participant.Code)
		delete(o.available, id)
	}

	p.Code = o.assignCodeLocked(id)
	o.conns[id] = &entry{participant: p, conn: conn}
	o.byCode[p.Code] = id

	o.metrics.Inc(metrics.Registrations)
	log.Info().Str("module", "app").Str("id", string(id)).Str("role", string(role)).Str("code", p.Code).Msg("registered")

	o.emitLocked(id, "", protocol.KindRegistered, protocol.RegisteredPayload{
		ID:   string(p.ID),
		Role: string(p.Role),
		Code: p.Code,
	})

	if role == domain.RoleProfessional {
		o.removeWaitingLocked(id)
		o.setAvailableLocked(id)
		o.drainLocked()
	}
	return p, nil
}

// Unregister removes the identity's handle, availability flag and queue slot
// and ends any session it participates in. This is the single disconnect
// cleanup path. conn, when non-nil, must match the registered handle so that
// a late disconnect callback from an already-replaced transport is a no-op.
// Idempotent.
func (o *Orchestrator) Unregister(id domain.ParticipantID, conn core.SignalConnection) {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.conns[id]
	if !ok {
		return
	}
	if conn != nil && e.conn != conn {
		return
	}

	delete(o.conns, id)
	delete(o.byCode, e.participant.Code)
	delete(o.available, id)
	o.removeWaitingLocked(id)
	o.endSessionLocked(id, true)

	o.metrics.Inc(metrics.Disconnects)
	log.Info().Str("module", "app").Str("id", string(id)).Msg("unregistered")
}

// Participant returns the registered participant for id.
func (o *Orchestrator) Participant(id domain.ParticipantID) (*domain.Participant, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.conns[id]
	if !ok {
		return nil, false
	}
	return e.participant, true
}

// assignCodeLocked derives the display code for id, perturbing the
// derivation until it stops colliding with codes held by other identities.
func (o *Orchestrator) assignCodeLocked(id domain.ParticipantID) string {
	for attempt := 0; ; attempt++ {
		code := domain.DisplayCode(id, attempt)
		owner, taken := o.byCode[code]
		if !taken || owner == id {
			return code
		}
	}
}

// setAvailableLocked marks a professional eligible for matching. Identities
// that are not registered professionals, or that hold a live session, never
// enter the pool.
func (o *Orchestrator) setAvailableLocked(id domain.ParticipantID) {
	e, ok := o.conns[id]
	if !ok || e.participant.Role != domain.RoleProfessional {
		return
	}
	if _, busy := o.bySide[id]; busy {
		return
	}
	o.available[id] = struct{}{}
}

func (o *Orchestrator) firstAvailableLocked(exclude domain.ParticipantID) (domain.ParticipantID, bool) {
	for id := range o.available {
		if id != exclude {
			return id, true
		}
	}
	return "", false
}

// emitLocked marshals and queues one server event for a participant. Dead or
// saturated recipients drop the event; signaling has no delivery guarantee.
func (o *Orchestrator) emitLocked(to, from domain.ParticipantID, kind protocol.Kind, payload any) {
	e, ok := o.conns[to]
	if !ok {
		return
	}
	raw, err := protocol.Encode(kind, string(from), payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Str("kind", string(kind)).Msg("encode event")
		return
	}
	if err := e.conn.TrySend(raw); err != nil {
		o.metrics.Inc(metrics.RelayDropBackpressure)
		log.Warn().Str("module", "app").Str("to", string(to)).Str("kind", string(kind)).Msg("event dropped: backpressure")
	}
}

// Stats is the read-only view served by the status endpoint.
type Stats struct {
	Users                  int `json:"users"`
	Professionals          int `json:"professionals"`
	AvailableProfessionals int `json:"available_professionals"`
	Waiting                int `json:"waiting"`
	PendingSessions        int `json:"pending_sessions"`
	ActiveSessions         int `json:"active_sessions"`
}

func (o *Orchestrator) Snapshot() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := Stats{AvailableProfessionals: len(o.available)}
	for _, e := range o.conns {
		if e.participant.Role == domain.RoleProfessional {
			st.Professionals++
		} else {
			st.Users++
		}
	}
	for _, id := range o.waiting {
		if _, ok := o.conns[id]; ok {
			st.Waiting++
		}
	}
	for _, s := range o.sessions {
		if s.Status == domain.SessionPending {
			st.PendingSessions++
		} else {
			st.ActiveSessions++
		}
	}
	return st
}
