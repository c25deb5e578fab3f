package callstate

import "github.com/dkeye/Sight/internal/protocol"

// EventFor maps a server-sent signaling kind onto a machine event. Kinds
// that do not drive the machine (relayed negotiation traffic, errors, pong)
// report false.
func EventFor(kind protocol.Kind) (Event, bool) {
	switch kind {
	case protocol.KindCallRequest:
		return EventCallRequest, true
	case protocol.KindCallAccepted:
		return EventCallAccepted, true
	case protocol.KindCallRejected, protocol.KindNoProfessionalAvailable:
		return EventCallRejected, true
	case protocol.KindCallEnded:
		return EventCallEnded, true
	default:
		return "", false
	}
}
