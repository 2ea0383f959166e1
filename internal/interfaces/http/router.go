// Package http wires the gin route tree and the HTTP server lifecycle.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/prometheus"
	"github.com/herbwise/fangmatch/internal/interfaces/http/handlers"
	"github.com/herbwise/fangmatch/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure the route tree
// needs.  Nil handlers simply leave their routes unregistered, which keeps
// partial wiring (tests, degraded deployments) working.
type RouterConfig struct {
	MatchHandler   *handlers.MatchHandler
	FormulaHandler *handlers.FormulaHandler
	HealthHandler  *handlers.HealthHandler

	Metrics *prometheus.Collector
	Logger  logging.Logger
	CORS    *middleware.CORSConfig
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogging(log))

	cors := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		cors = *cfg.CORS
	}
	r.Use(middleware.CORS(cors))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	if cfg.MatchHandler != nil {
		api.POST("/match", cfg.MatchHandler.Match)
		api.POST("/parse", cfg.MatchHandler.Parse)
	}
	if cfg.FormulaHandler != nil {
		api.GET("/formulas", cfg.FormulaHandler.List)
		api.POST("/formulas", cfg.FormulaHandler.Create)
		api.POST("/formulas/reload", cfg.FormulaHandler.Reload)
		api.GET("/formulas/:id", cfg.FormulaHandler.Get)
		api.PUT("/formulas/:id", cfg.FormulaHandler.Update)
		api.DELETE("/formulas/:id", cfg.FormulaHandler.Delete)
	}

	return r
}
