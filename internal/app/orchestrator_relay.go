package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sight/internal/core"
	"github.com/dkeye/Sight/internal/domain"
	"github.com/dkeye/Sight/internal/metrics"
	"github.com/dkeye/Sight/internal/protocol"
)

// Relay forwards one peer-to-peer envelope without touching its payload.
// Directed kinds go to env.To. Sender-scoped kinds (annotations, freeze and
// resume) go to the counterpart of the sender's active session; the
// counterpart is resolved from the authenticated sender id, never from the
// envelope's from field. Missing or saturated recipients drop the frame
// silently: signaling is best-effort.
func (o *Orchestrator) Relay(senderID domain.ParticipantID, env protocol.Envelope, raw []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.conns[senderID]; !ok {
		return ErrNotRegistered
	}

	var to domain.ParticipantID
	if env.To != "" {
		to = domain.ParticipantID(env.To)
	} else {
		sid, ok := o.bySide[senderID]
		if !ok {
			o.metrics.Inc(metrics.RelayDropNoRecipient)
			return nil
		}
		s := o.sessions[sid]
		if s.Status != domain.SessionActive {
			o.metrics.Inc(metrics.RelayDropNoRecipient)
			return nil
		}
		to, _ = s.Peer(senderID)
	}

	e, ok := o.conns[to]
	if !ok {
		o.metrics.Inc(metrics.RelayDropNoRecipient)
		log.Debug().Str("module", "app").Str("to", string(to)).Str("kind", string(env.Type)).Msg("relay dropped: no recipient")
		return nil
	}
	if err := e.conn.TrySend(raw); err != nil {
		if errors.Is(err, core.ErrBackpressure) {
			o.metrics.Inc(metrics.RelayDropBackpressure)
		} else {
			o.metrics.Inc(metrics.RelayDropNoRecipient)
		}
		log.Warn().Err(err).Str("module", "app").Str("to", string(to)).Str("kind", string(env.Type)).Msg("relay dropped")
		return nil
	}
	o.metrics.Inc(metrics.EnvelopesRelayed)
	return nil
}
