package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/signalworks/claimcheck/src/data"
	"github.com/signalworks/claimcheck/src/investigator/config"
	"github.com/signalworks/claimcheck/src/investigator/engine"
	"github.com/signalworks/claimcheck/src/quota"
	"github.com/signalworks/claimcheck/src/ratelimit"
)

// Deps carries the wired components the HTTP layer exposes.
type Deps struct {
	Engine  *engine.Engine
	Limiter *ratelimit.Limiter
	Tracker *quota.Tracker
	History *data.History
}

func New(cfg config.Config, deps Deps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://claimcheck.signalworks.dev"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Session-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	attachRoutes(r, cfg, deps)
	return r
}

func attachRoutes(r *gin.Engine, cfg config.Config, deps Deps) {
	r.GET("/healthz", Health)

	invH := NewInvestigate(deps.Engine)
	histH := NewHistoryHandler(deps.History)

	v1 := r.Group("/v1")
	{
		v1.POST("/investigate",
			IdentityMiddleware([]byte(cfg.JWTSecret), cfg.EnforceIdentity),
			AdmissionMiddleware(deps.Limiter, deps.Tracker, cfg.AllowCeilingOverride),
			invH.Investigate,
		)
		v1.GET("/history", histH.Recent)
	}
}
