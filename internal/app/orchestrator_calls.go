package app

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sight/internal/domain"
	"github.com/dkeye/Sight/internal/metrics"
	"github.com/dkeye/Sight/internal/protocol"
)

// InitiateCall runs the matching policy for a user. With a target code the
// named professional is rung if free; without one any free professional is
// picked. Unmatched callers queue (or are told nobody is available when the
// policy does not queue).
func (o *Orchestrator) InitiateCall(userID domain.ParticipantID, targetCode string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.conns[userID]
	if !ok {
		return ErrNotRegistered
	}
	if e.participant.Role != domain.RoleUser {
		return ErrInvalidRole
	}
	if _, busy := o.bySide[userID]; busy {
		return ErrInvalidTransition
	}
	o.initiateLocked(userID, strings.ToUpper(targetCode), "")
	return nil
}

// AcceptCall flips the pending session between the two identities to active.
func (o *Orchestrator) AcceptCall(proID, userID domain.ParticipantID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.conns[proID]
	if !ok {
		return ErrNotRegistered
	}
	if e.participant.Role != domain.RoleProfessional {
		return ErrInvalidRole
	}
	s := o.pendingBetweenLocked(proID, userID)
	if s == nil {
		return ErrInvalidTransition
	}

	s.Status = domain.SessionActive
	o.emitLocked(userID, proID, protocol.KindCallAccepted, protocol.CallAcceptedPayload{
		SessionID:      string(s.ID),
		ProfessionalID: string(proID),
	})
	o.metrics.Inc(metrics.CallsAccepted)
	log.Info().Str("module", "app").Str("session", string(s.ID)).Msg("call active")
	return nil
}

// RejectCall discards the pending session, returns the professional to the
// pool and immediately retries the caller against anyone else who is free.
func (o *Orchestrator) RejectCall(proID, userID domain.ParticipantID, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	e, ok := o.conns[proID]
	if !ok {
		return ErrNotRegistered
	}
	if e.participant.Role != domain.RoleProfessional {
		return ErrInvalidRole
	}
	s := o.pendingBetweenLocked(proID, userID)
	if s == nil {
		return ErrInvalidTransition
	}

	o.deleteSessionLocked(s)
	o.setAvailableLocked(proID)
	o.emitLocked(userID, proID, protocol.KindCallRejected, protocol.CallRejectedPayload{Reason: reason})
	o.metrics.Inc(metrics.CallsRejected)
	log.Info().Str("module", "app").Str("session", string(s.ID)).Str("professional", string(proID)).Msg("call rejected")

	// Earlier waiters get first claim on the freed professional; only then
	// does the rejected caller retry, and never against the professional
	// that just said no.
	o.drainLocked()
	o.initiateLocked(userID, "", proID)
	return nil
}

// EndCall tears down whatever session the identity is in. Ending when no
// session exists is a silent no-op, so both sides may send it.
func (o *Orchestrator) EndCall(id domain.ParticipantID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.endSessionLocked(id, true)
}

// initiateLocked is the shared matching step. exclude keeps the professional
// that just rejected this caller out of the immediate retry.
func (o *Orchestrator) initiateLocked(userID domain.ParticipantID, targetCode string, exclude domain.ParticipantID) {
	pro, ok := o.match.Match(rosterView{o}, targetCode, exclude)
	if ok {
		o.ringLocked(userID, pro)
		return
	}
	if o.match.Queues() {
		if o.enqueueLocked(userID) {
			o.metrics.Inc(metrics.CallsQueued)
		}
	}
	o.emitLocked(userID, "", protocol.KindNoProfessionalAvailable, nil)
}

// ringLocked creates the pending session and notifies both sides.
func (o *Orchestrator) ringLocked(userID, proID domain.ParticipantID) {
	s := domain.NewCallSession(domain.SessionID(uuid.NewString()), userID, proID, o.clock.Now())
	o.sessions[s.ID] = s
	o.bySide[userID] = s.ID
	o.bySide[proID] = s.ID
	delete(o.available, proID)
	o.removeWaitingLocked(userID)

	userCode := ""
	if ue, ok := o.conns[userID]; ok {
		userCode = ue.participant.Code
	}
	o.emitLocked(proID, userID, protocol.KindCallRequest, protocol.CallRequestPayload{
		From: string(userID),
		Code: userCode,
	})
	o.emitLocked(userID, "", protocol.KindProfessionalAvailable, protocol.ProfessionalAvailablePayload{
		SessionID: string(s.ID),
	})
	o.metrics.Inc(metrics.CallsMatched)
	log.Info().Str("module", "app").Str("session", string(s.ID)).Str("user", string(userID)).Str("professional", string(proID)).Msg("call pending")
}

// pendingBetweenLocked finds the pending session held by exactly this
// professional/user pair.
func (o *Orchestrator) pendingBetweenLocked(proID, userID domain.ParticipantID) *domain.CallSession {
	sid, ok := o.bySide[proID]
	if !ok {
		return nil
	}
	s := o.sessions[sid]
	if s == nil || s.Status != domain.SessionPending || s.UserID != userID || s.ProfessionalID != proID {
		return nil
	}
	return s
}

// endSessionLocked deletes the session id participates in, notifies the
// peer once and restores professional availability on whichever side still
// qualifies. Reports whether a session existed.
func (o *Orchestrator) endSessionLocked(id domain.ParticipantID, notifyPeer bool) bool {
	sid, ok := o.bySide[id]
	if !ok {
		return false
	}
	s := o.sessions[sid]
	o.deleteSessionLocked(s)

	peer, _ := s.Peer(id)
	if notifyPeer {
		o.emitLocked(peer, id, protocol.KindCallEnded, protocol.CallEndedPayload{SessionID: string(s.ID)})
	}
	o.setAvailableLocked(peer)
	o.setAvailableLocked(id)
	o.metrics.Inc(metrics.CallsEnded)
	log.Info().Str("module", "app").Str("session", string(s.ID)).Msg("call ended")
	o.drainLocked()
	return true
}

// deleteSessionLocked marks the session ended and unlinks it from both
// participants.
func (o *Orchestrator) deleteSessionLocked(s *domain.CallSession) {
	s.Status = domain.SessionEnded
	s.EndedAt = o.clock.Now()
	delete(o.sessions, s.ID)
	delete(o.bySide, s.UserID)
	delete(o.bySide, s.ProfessionalID)
}

// drainLocked matches waiting callers in FIFO order while professionals
// remain free. Heads that no longer qualify as waiting users are dropped
// without re-enqueueing.
func (o *Orchestrator) drainLocked() {
	for {
		pro, ok := o.firstAvailableLocked("")
		if !ok {
			return
		}
		uid, ok := o.popWaitingLocked()
		if !ok {
			return
		}
		o.ringLocked(uid, pro)
	}
}

func (o *Orchestrator) enqueueLocked(id domain.ParticipantID) bool {
	if _, ok := o.queued[id]; ok {
		return false
	}
	o.queued[id] = struct{}{}
	o.waiting = append(o.waiting, id)
	return true
}

// popWaitingLocked pops the next matchable waiter. Heads that are no longer
// registered users, or that found a session some other way, are skipped.
func (o *Orchestrator) popWaitingLocked() (domain.ParticipantID, bool) {
	for len(o.waiting) > 0 {
		head := o.waiting[0]
		o.waiting = o.waiting[1:]
		delete(o.queued, head)
		e, ok := o.conns[head]
		if !ok || e.participant.Role != domain.RoleUser {
			continue
		}
		if _, busy := o.bySide[head]; busy {
			continue
		}
		return head, true
	}
	return "", false
}

func (o *Orchestrator) removeWaitingLocked(id domain.ParticipantID) {
	if _, ok := o.queued[id]; !ok {
		return
	}
	delete(o.queued, id)
	for i, w := range o.waiting {
		if w == id {
			o.waiting = append(o.waiting[:i], o.waiting[i+1:]...)
			break
		}
	}
}
