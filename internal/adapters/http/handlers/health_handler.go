package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerbridge/walletplatform/internal/adapters/http/middleware"
)

// HealthHandler serves the liveness/readiness probes a container
// orchestrator polls, trimmed to the two checks this platform's two
// services actually need.
type HealthHandler struct {
	pool      *pgxpool.Pool
	startedAt time.Time
}

func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{pool: pool, startedAt: time.Now()}
}

// Live is a liveness probe — the process is scheduling work.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ready is a readiness probe — the process's own database is reachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false, "database": err.Error()})
		return
	}

	stat := h.pool.Stat()
	middleware.UpdateDBConnections(stat.IdleConns(), stat.AcquiredConns(), stat.MaxConns())

	c.JSON(http.StatusOK, gin.H{"ready": true, "uptime": time.Since(h.startedAt).String()})
}

// RegisterRoutes wires the probe endpoints.
func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/live", h.Live)
	router.GET("/ready", h.Ready)
}
