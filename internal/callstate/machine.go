// Package callstate models the per-endpoint call lifecycle. Both endpoints
// of a session run the machine independently; the service never enforces
// that the two sides agree. Anything the media engine reports is folded in
// through the webrtc mapping, everything else arrives as signaling events.
package callstate

import (
	"errors"
	"sync"
)

type State string

const (
	StateIdle         State = "idle"
	StateCalling      State = "calling"
	StateReceiving    State = "receiving"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
	StateFailed       State = "failed"
)

type Event string

const (
	EventInitiate          Event = "initiate-call"
	EventCallRequest       Event = "call-request"
	EventCallAccepted      Event = "call-accepted"
	EventCallRejected      Event = "call-rejected"
	EventLocalAccept       Event = "accept"
	EventLocalReject       Event = "reject"
	EventNegotiated        Event = "negotiated"
	EventNegotiationFailed Event = "negotiation-failed"
	EventCallEnded         Event = "call-ended"
	EventMediaError        Event = "media-error"
	EventAcknowledge       Event = "acknowledge"
)

var ErrInvalidTransition = errors.New("invalid call state transition")

// transitions is the complete table. Pairs not listed here are invalid and
// leave the machine untouched.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventInitiate:    StateCalling,
		EventCallRequest: StateReceiving,
	},
	StateCalling: {
		EventCallAccepted: StateConnecting,
		EventCallRejected: StateIdle,
	},
	StateReceiving: {
		EventLocalAccept: StateConnecting,
		EventLocalReject: StateIdle,
	},
	StateConnecting: {
		EventNegotiated:        StateConnected,
		EventNegotiationFailed: StateFailed,
	},
	StateConnected: {
		EventCallEnded:  StateDisconnected,
		EventMediaError: StateFailed,
	},
	StateDisconnected: {
		EventAcknowledge: StateIdle,
	},
	StateFailed: {
		EventAcknowledge: StateIdle,
	},
}

// Machine is safe for use from the signaling reader and media callbacks at
// the same time.
type Machine struct {
	mu    sync.Mutex
	state State
}

func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Fire applies one event. On an invalid pair the current state is returned
// together with ErrInvalidTransition.
func (m *Machine) Fire(ev Event) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := transitions[m.state][ev]
	if !ok {
		return m.state, ErrInvalidTransition
	}
	m.state = next
	return next, nil
}
