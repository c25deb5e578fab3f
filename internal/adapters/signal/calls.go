package signal

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sight/internal/domain"
	"github.com/dkeye/Sight/internal/metrics"
	"github.com/dkeye/Sight/internal/protocol"
)

// handleRegister hands the role to the orchestrator, which queues the
// registered confirmation itself ahead of anything a queue drain sends.
func (ctl *SignalWSController) handleRegister(
	st *connState,
	conn *wsConn,
	m protocol.Register,
) {
	if _, err := ctl.Orch.Register(st.id, domain.Role(m.Role), conn); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("id", string(st.id)).Msg("register refused")
		ctl.sendAppError(conn, err)
		return
	}
	st.registered = true
}

func (ctl *SignalWSController) handleInitiate(
	st *connState,
	conn *wsConn,
	m protocol.InitiateCall,
) {
	if !ctl.Limiter.Allow(st.id) {
		ctl.Orch.Metrics().Inc(metrics.RateLimited)
		log.Warn().Str("module", "signal").Str("id", string(st.id)).Msg("initiate-call rate limited")
		ctl.sendError(conn, protocol.ErrCodeRateLimited, "too many call attempts")
		return
	}
	ctl.sendAppError(conn, ctl.Orch.InitiateCall(st.id, m.TargetCode))
}

func (ctl *SignalWSController) handleAccept(
	st *connState,
	conn *wsConn,
	m protocol.AcceptCall,
) {
	ctl.sendAppError(conn, ctl.Orch.AcceptCall(st.id, domain.ParticipantID(m.UserID)))
}

func (ctl *SignalWSController) handleReject(
	st *connState,
	conn *wsConn,
	m protocol.RejectCall,
) {
	ctl.sendAppError(conn, ctl.Orch.RejectCall(st.id, domain.ParticipantID(m.UserID), m.Reason))
}
