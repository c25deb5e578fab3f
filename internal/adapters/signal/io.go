package signal

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sight/internal/app"
	"github.com/dkeye/Sight/internal/domain"
	"github.com/dkeye/Sight/internal/metrics"
	"github.com/dkeye/Sight/internal/protocol"
)

const writeWait = 5 * time.Second

// connState is what the read loop knows about its connection. registered
// flips once the register frame has been accepted; until then every other
// frame is refused.
type connState struct {
	id         domain.ParticipantID
	registered bool
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *wsConn) {
	ping := time.NewTicker(ctl.PingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, id domain.ParticipantID, c *wsConn) {
	st := &connState{id: id}
	defer func() {
		log.Info().Str("module", "signal").Str("id", string(id)).Msg("readPump closing")
		ctl.Orch.Unregister(id, c)
		ctl.Limiter.Forget(id)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("id", string(id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("id", string(id)).Msg("readPump read error")
				return
			}
			ctl.handleFrame(st, c, data)
		}
	}
}

// handleFrame decodes and dispatches one inbound frame. A panic in a handler
// kills at most this frame, never the connection loop or the process.
func (ctl *SignalWSController) handleFrame(st *connState, c *wsConn, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "signal").Str("id", string(st.id)).Interface("panic", r).Msg("handler panic")
		}
	}()

	env, msg, err := protocol.Decode(data)
	if err != nil {
		ctl.Orch.Metrics().Inc(metrics.BadFrames)
		if errors.Is(err, protocol.ErrUnknownKind) {
			log.Warn().Str("module", "signal").Str("kind", string(env.Type)).Msg("unknown signal")
			return
		}
		log.Warn().Err(err).Str("module", "signal").Str("id", string(st.id)).Msg("bad frame")
		ctl.sendError(c, protocol.ErrCodeBadPayload, "malformed envelope")
		return
	}

	if !st.registered {
		if reg, ok := msg.(protocol.Register); ok {
			ctl.handleRegister(st, c, reg)
		} else {
			ctl.sendError(c, protocol.ErrCodeNotRegistered, "register first")
		}
		return
	}

	switch m := msg.(type) {
	case protocol.Register:
		ctl.handleRegister(st, c, m)
	case protocol.InitiateCall:
		ctl.handleInitiate(st, c, m)
	case protocol.AcceptCall:
		ctl.handleAccept(st, c, m)
	case protocol.RejectCall:
		ctl.handleReject(st, c, m)
	case protocol.EndCall:
		ctl.Orch.EndCall(st.id)
	case protocol.Ping:
		ctl.handlePing(c)
	case protocol.Passthrough:
		ctl.sendAppError(c, ctl.Orch.Relay(st.id, m.Env, data))
	default:
		log.Warn().Str("module", "signal").Str("kind", string(env.Type)).Msg("unhandled signal")
	}
}

func (ctl *SignalWSController) sendEvent(c *wsConn, kind protocol.Kind, payload any) {
	raw, err := protocol.Encode(kind, "", payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("kind", string(kind)).Msg("encode event")
		return
	}
	_ = c.TrySend(raw)
}

func (ctl *SignalWSController) sendError(c *wsConn, code, msg string) {
	ctl.sendEvent(c, protocol.KindError, protocol.ErrorPayload{Code: code, Message: msg})
}

// sendAppError translates an orchestrator error into an error event. nil is
// a no-op so call sites can pass results straight through.
func (ctl *SignalWSController) sendAppError(c *wsConn, err error) {
	if err == nil {
		return
	}
	code := protocol.ErrCodeBadPayload
	switch {
	case errors.Is(err, app.ErrNotRegistered):
		code = protocol.ErrCodeNotRegistered
	case errors.Is(err, app.ErrInvalidRole), errors.Is(err, domain.ErrInvalidRole):
		code = protocol.ErrCodeInvalidRole
	case errors.Is(err, app.ErrInvalidTransition):
		code = protocol.ErrCodeInvalidTransition
	}
	ctl.sendError(c, code, err.Error())
}
