// Package protocol defines the wire format of the signaling socket: one JSON
// envelope per frame, tagged by kind. Negotiation and annotation payloads are
// opaque here; the server routes them without parsing.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind tags every envelope on the wire.
type Kind string

// Client commands.
const (
	KindRegister     Kind = "register"
	KindInitiateCall Kind = "initiate-call"
	KindAcceptCall   Kind = "accept-call"
	KindRejectCall   Kind = "reject-call"
	KindEndCall      Kind = "end-call"
	KindPing         Kind = "ping"
)

// Peer-to-peer traffic, relayed verbatim.
const (
	KindOffer           Kind = "offer"
	KindAnswer          Kind = "answer"
	KindICECandidate    Kind = "ice-candidate"
	KindAnnotationAdd   Kind = "annotation-add"
	KindAnnotationClear Kind = "annotation-clear"
	KindFreezeVideo     Kind = "freeze-video"
	KindResumeVideo     Kind = "resume-video"
)

// Server events.
const (
	KindRegistered              Kind = "registered"
	KindCallRequest             Kind = "call-request"
	KindProfessionalAvailable   Kind = "professional-available"
	KindNoProfessionalAvailable Kind = "no-professional-available"
	KindCallAccepted            Kind = "call-accepted"
	KindCallRejected            Kind = "call-rejected"
	KindCallEnded               Kind = "call-ended"
	KindError                   Kind = "error"
	KindPong                    Kind = "pong"
)

// Relayed reports whether envelopes of this kind are forwarded between peers
// without the server looking inside the payload.
func (k Kind) Relayed() bool {
	switch k {
	case KindOffer, KindAnswer, KindICECandidate,
		KindAnnotationAdd, KindAnnotationClear,
		KindFreezeVideo, KindResumeVideo:
		return true
	}
	return false
}

// Envelope is the uniform wrapper for everything on the signaling socket.
// To is only set on directed peer traffic; timestamps are epoch milliseconds.
type Envelope struct {
	Type      Kind            `json:"type"`
	From      string          `json:"from,omitempty"`
	To        string          `json:"to,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NowMillis() int64 { return time.Now().UnixMilli() }

// Encode marshals a server-originated envelope around the given payload.
func Encode(kind Kind, from string, payload any) ([]byte, error) {
	env := Envelope{Type: kind, From: from, Timestamp: NowMillis()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", kind, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
