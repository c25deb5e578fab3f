package callstate

import "github.com/pion/webrtc/v4"

// OnPeerConnectionState folds the media engine's connection callback into
// the machine. A failure during negotiation and a failure mid-call land in
// different events, so the mapping depends on where the machine stands.
// Callback states that carry no lifecycle meaning here (new, connecting)
// leave the machine alone.
func (m *Machine) OnPeerConnectionState(s webrtc.PeerConnectionState) (State, error) {
	switch s {
	case webrtc.PeerConnectionStateConnected:
		return m.Fire(EventNegotiated)
	case webrtc.PeerConnectionStateFailed:
		if m.State() == StateConnected {
			return m.Fire(EventMediaError)
		}
		return m.Fire(EventNegotiationFailed)
	case webrtc.PeerConnectionStateDisconnected, webrtc.PeerConnectionStateClosed:
		return m.Fire(EventCallEnded)
	default:
		return m.State(), nil
	}
}
