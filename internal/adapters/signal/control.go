package signal

import "github.com/dkeye/Sight/internal/protocol"

func (ctl *SignalWSController) handlePing(
	conn *wsConn,
) {
	ctl.sendEvent(conn, protocol.KindPong, nil)
}
