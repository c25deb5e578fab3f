package app

import (
	"strings"

	"github.com/dkeye/Sight/internal/domain"
)

// Matcher decides which professional takes a call. Implementations run
// inside the orchestrator's lock through the read-only RosterView, so they
// must not block or call back into the orchestrator.
type Matcher interface {
	Match(roster RosterView, targetCode string, exclude domain.ParticipantID) (domain.ParticipantID, bool)
	// Queues reports whether unmatched callers wait for the next free
	// professional.
	Queues() bool
}

// RosterView is the matcher-facing read view of orchestrator state.
type RosterView interface {
	ProfessionalByCode(code string) (domain.ParticipantID, bool)
	FirstAvailable(exclude domain.ParticipantID) (domain.ParticipantID, bool)
	InSession(id domain.ParticipantID) bool
}

// MatcherFor maps the configured matching mode to its backend. Unknown modes
// fall back to Dispatch.
func MatcherFor(mode string) Matcher {
	if strings.EqualFold(mode, "direct") {
		return Direct{}
	}
	return Dispatch{}
}

// Dispatch is the standard policy: explicit target code first, otherwise any
// free professional. A target code never reroutes to somebody else; when its
// owner is gone or busy the caller queues.
type Dispatch struct{}

func (Dispatch) Match(roster RosterView, targetCode string, exclude domain.ParticipantID) (domain.ParticipantID, bool) {
	if targetCode != "" {
		id, ok := roster.ProfessionalByCode(targetCode)
		if ok && id != exclude && !roster.InSession(id) {
			return id, true
		}
		return "", false
	}
	return roster.FirstAvailable(exclude)
}

func (Dispatch) Queues() bool { return true }

// Direct is the local pairing mode: exact code rendezvous only, no
// availability scan and no waiting queue.
type Direct struct{}

func (Direct) Match(roster RosterView, targetCode string, exclude domain.ParticipantID) (domain.ParticipantID, bool) {
	if targetCode == "" {
		return "", false
	}
	id, ok := roster.ProfessionalByCode(targetCode)
	if !ok || id == exclude || roster.InSession(id) {
		return "", false
	}
	return id, true
}

func (Direct) Queues() bool { return false }

// rosterView adapts the orchestrator to RosterView. Only valid while the
// orchestrator's lock is held.
type rosterView struct{ o *Orchestrator }

func (v rosterView) ProfessionalByCode(code string) (domain.ParticipantID, bool) {
	id, ok := v.o.byCode[code]
	if !ok {
		return "", false
	}
	e := v.o.conns[id]
	if e == nil || e.participant.Role != domain.RoleProfessional {
		return "", false
	}
	return id, true
}

func (v rosterView) FirstAvailable(exclude domain.ParticipantID) (domain.ParticipantID, bool) {
	return v.o.firstAvailableLocked(exclude)
}

func (v rosterView) InSession(id domain.ParticipantID) bool {
	_, ok := v.o.bySide[id]
	return ok
}
