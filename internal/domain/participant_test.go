package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewParticipant(t *testing.T) {
	p, err := NewParticipant("u-1", RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "u-1" || p.Role != RoleUser {
		t.Fatalf("participant %+v", p)
	}
	if p.Code != DisplayCode("u-1", 0) {
		t.Fatalf("code %q not the zero-attempt derivation", p.Code)
	}

	if _, err := NewParticipant("", RoleUser); err != ErrIDEmpty {
		t.Fatalf("empty id: %v", err)
	}
	long := ParticipantID(strings.Repeat("x", MaxParticipantIDLen+1))
	if _, err := NewParticipant(long, RoleUser); err != ErrIDTooLong {
		t.Fatalf("long id: %v", err)
	}
	if _, err := NewParticipant("u-1", Role("admin")); err != ErrInvalidRole {
		t.Fatalf("bad role: %v", err)
	}
}

func TestDisplayCodeDeterministic(t *testing.T) {
	a := DisplayCode("u-1", 0)
	b := DisplayCode("u-1", 0)
	if a != b {
		t.Fatalf("same input, different codes: %q %q", a, b)
	}
	if DisplayCode("u-2", 0) == a {
		t.Fatal("different identities share a code")
	}
	if DisplayCode("u-1", 1) == a {
		t.Fatal("attempt did not perturb the code")
	}
}

func TestDisplayCodeShape(t *testing.T) {
	for _, id := range []ParticipantID{"u-1", "a", "0f2c8e9a-1b7d-4c3e-9f1a-5d6b7c8d9e0f"} {
		code := DisplayCode(id, 0)
		if len(code) != CodeLen {
			t.Fatalf("%s: code %q has length %d", id, code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("%s: code %q contains %q", id, code, r)
			}
		}
	}
}

func TestCallSessionPeer(t *testing.T) {
	s := NewCallSession("s-1", "u-1", "p-1", time.Now())
	if s.Status != SessionPending {
		t.Fatalf("status %s", s.Status)
	}
	if !s.Has("u-1") || !s.Has("p-1") || s.Has("x") {
		t.Fatal("membership wrong")
	}

	peer, ok := s.Peer("u-1")
	if !ok || peer != "p-1" {
		t.Fatalf("peer of user: %q %v", peer, ok)
	}
	peer, ok = s.Peer("p-1")
	if !ok || peer != "u-1" {
		t.Fatalf("peer of professional: %q %v", peer, ok)
	}
	if _, ok := s.Peer("x"); ok {
		t.Fatal("stranger has a peer")
	}
}
