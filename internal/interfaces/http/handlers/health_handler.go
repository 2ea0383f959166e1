package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/herbwise/fangmatch/pkg/types/common"
)

// ReadinessChecker probes one backing component.
type ReadinessChecker struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	version  string
	checkers []ReadinessChecker
}

// NewHealthHandler builds the handler; checkers may be empty when the
// service runs without external backends.
func NewHealthHandler(version string, checkers ...ReadinessChecker) *HealthHandler {
	return &HealthHandler{version: version, checkers: checkers}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": common.HealthUp, "version": h.version})
}

// Readiness handles GET /readyz.  Any failing component makes the whole
// probe fail with 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	overall := common.HealthUp
	components := make([]common.ComponentHealth, 0, len(h.checkers))
	for _, checker := range h.checkers {
		start := time.Now()
		err := checker.Check(ctx)
		component := common.ComponentHealth{
			Name:    checker.Name,
			Status:  common.HealthUp,
			Latency: time.Since(start),
		}
		if err != nil {
			component.Status = common.HealthDown
			component.Message = err.Error()
			overall = common.HealthDown
		}
		components = append(components, component)
	}

	status := http.StatusOK
	if overall != common.HealthUp {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":     overall,
		"version":    h.version,
		"components": components,
	})
}
