// Package domain contains entity without logic, just meta-data
package domain

import (
	"crypto/sha256"
	"errors"
	"strconv"
)

const (
	MaxParticipantIDLen = 36
	CodeLen             = 6
)

var (
	ErrInvalidRole = errors.New("invalid role")
	ErrIDEmpty     = errors.New("participant id empty")
	ErrIDTooLong   = errors.New("participant id too long")
)

type ParticipantID string

// Role separates the two sides of a call: the one asking for help and the
// one giving it.
type Role string

const (
	RoleUser         Role = "user"
	RoleProfessional Role = "professional"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleProfessional
}

// Participant is a registered endpoint: an opaque id plus its role and the
// short code shown to humans.
type Participant struct {
	ID   ParticipantID `json:"id"`
	Role Role          `json:"role"`
	Code string        `json:"code"`
}

func NewParticipant(id ParticipantID, role Role) (*Participant, error) {
	if len(id) == 0 {
		return nil, ErrIDEmpty
	}
	if len(id) > MaxParticipantIDLen {
		return nil, ErrIDTooLong
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return &Participant{ID: id, Role: role, Code: DisplayCode(id, 0)}, nil
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DisplayCode derives the short human-shareable code for an identity.
// The derivation is deterministic so the same identity always shows the same
// code. attempt perturbs the input when the caller detects a collision with
// a different live identity.
func DisplayCode(id ParticipantID, attempt int) string {
	sum := sha256.Sum256([]byte(string(id) + ":" + strconv.Itoa(attempt)))
	code := make([]byte, CodeLen)
	for i := range code {
		code[i] = codeAlphabet[int(sum[i])%len(codeAlphabet)]
	}
	return string(code)
}
