package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sight/internal/app"
	"github.com/dkeye/Sight/internal/config"
	"github.com/dkeye/Sight/internal/core"
	"github.com/dkeye/Sight/internal/domain"
)

const sendQueueSize = 32

type SignalWSController struct {
	Orch    *app.Orchestrator
	Limiter *CallRateLimiter

	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
}

func NewSignalWSController(orch *app.Orchestrator, limiter *CallRateLimiter, cfg *config.Config) *SignalWSController {
	ctl := &SignalWSController{
		Orch:       orch,
		Limiter:    limiter,
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		PongWait:   cfg.PongWait,
	}
	if ctl.ReadLimit <= 0 {
		ctl.ReadLimit = 65536
	}
	if ctl.PingPeriod <= 0 {
		ctl.PingPeriod = 54 * time.Second
	}
	if ctl.PongWait <= 0 {
		ctl.PongWait = 60 * time.Second
	}
	return ctl
}

// wsConn adapts one websocket to core.SignalConnection. Writes go through a
// bounded queue drained by writePump; a full queue fails the send instead of
// blocking the caller.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the connection's pumps. The
// participant identity is the client token minted by the session middleware;
// the role arrives in the register frame.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	id := domain.ParticipantID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("id", string(id)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, sendQueueSize),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, id, conn)
	}()
}
