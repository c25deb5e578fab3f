package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sight/internal/adapters/signal"
	"github.com/dkeye/Sight/internal/app"
	"github.com/dkeye/Sight/internal/config"
	"github.com/dkeye/Sight/internal/metrics"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware pins a durable opaque token to every client. The
// token doubles as the participant identity on the signaling socket; no
// credential verification happens beyond possession of the cookie.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator, ice []webrtc.ICEServer) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("SightSessions", store))
	r.Use(ClientTokenMiddleware())

	if ice == nil {
		ice = []webrtc.ICEServer{}
	}

	log.Info().Str("module", "adapters.http").Int("ice_servers", len(ice)).Msg("router setup")

	limiter := signal.NewCallRateLimiter(cfg.CallAttempts, cfg.CallAttemptWindow, nil)
	ctrl := signal.NewSignalWSController(orch, limiter, cfg)

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler(orch.Metrics())))

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("id", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	api.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.Snapshot())
	})

	api.GET("/ice", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": ice})
	})

	return r
}
