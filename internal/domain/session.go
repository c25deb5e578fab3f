package domain

import "time"

type SessionID string

type SessionStatus string

const (
	SessionPending SessionStatus = "pending"
	SessionActive  SessionStatus = "active"
	SessionEnded   SessionStatus = "ended"
)

// CallSession pairs exactly one user with one professional for the duration
// of a call. Pending until the professional accepts, deleted once ended.
type CallSession struct {
	ID             SessionID     `json:"session_id"`
	UserID         ParticipantID `json:"user_id"`
	ProfessionalID ParticipantID `json:"professional_id"`
	Status         SessionStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	EndedAt        time.Time     `json:"ended_at,omitzero"`
}

func NewCallSession(id SessionID, user, professional ParticipantID, now time.Time) *CallSession {
	return &CallSession{
		ID:             id,
		UserID:         user,
		ProfessionalID: professional,
		Status:         SessionPending,
		CreatedAt:      now,
	}
}

// Has reports whether id participates in the session.
func (s *CallSession) Has(id ParticipantID) bool {
	return s.UserID == id || s.ProfessionalID == id
}

// Peer returns the other participant of the session.
func (s *CallSession) Peer(id ParticipantID) (ParticipantID, bool) {
	switch id {
	case s.UserID:
		return s.ProfessionalID, true
	case s.ProfessionalID:
		return s.UserID, true
	}
	return "", false
}
