package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OliverWithClaude/Finsite/internal/domain/ticker"
	"github.com/OliverWithClaude/Finsite/internal/infra/database/postgres"
)

// healthProbeSymbol is a liquid listing the quote provider always answers
// for, used to verify reachability.
const healthProbeSymbol = "AAPL"

// databaseChecker reports connection pool health.
type databaseChecker interface {
	Health(ctx context.Context) *postgres.HealthStatus
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db        databaseChecker
	quotes    ticker.SnapshotSource
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db databaseChecker, quotes ticker.SnapshotSource, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		quotes:    quotes,
		startTime: time.Now(),
		version:   version,
	}
}

// SimpleHealthResponse represents a simple health check response
type SimpleHealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents a readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Message   string            `json:"message,omitempty"`
}

// DetailedHealthResponse carries version, uptime and component states.
type DetailedHealthResponse struct {
	Status        string                 `json:"status"`
	Version       string                 `json:"version"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Timestamp     time.Time              `json:"timestamp"`
	Database      *postgres.HealthStatus `json:"database"`
	QuoteSource   string                 `json:"quote_source"`
}

// Health returns simple liveness check
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, SimpleHealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// Ready returns readiness check with dependency checks
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := make(map[string]string)
	status := "ready"
	message := ""
	code := http.StatusOK

	dbHealth := h.db.Health(c.Request.Context())
	if dbHealth.Status == "healthy" {
		checks["database"] = "ok"
	} else {
		checks["database"] = dbHealth.Error
		status = "not_ready"
		message = "database is not reachable"
		code = http.StatusServiceUnavailable
	}

	if err := h.probeQuoteSource(c.Request.Context()); err != nil {
		checks["quote_source"] = err.Error()
		status = "not_ready"
		message = "quote source is not reachable"
		code = http.StatusServiceUnavailable
	} else {
		checks["quote_source"] = "ok"
	}

	c.JSON(code, ReadyResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
		Message:   message,
	})
}

// Detailed returns component-level health information
// GET /api/health/detailed
func (h *HealthHandler) Detailed(c *gin.Context) {
	dbHealth := h.db.Health(c.Request.Context())

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = dbHealth.Status
	}

	quoteStatus := "healthy"
	if err := h.probeQuoteSource(c.Request.Context()); err != nil {
		quoteStatus = "unhealthy: " + err.Error()
		if status == "healthy" {
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, DetailedHealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now(),
		Database:      dbHealth,
		QuoteSource:   quoteStatus,
	})
}

// probeQuoteSource fetches one well-known snapshot with a bounded timeout.
func (h *HealthHandler) probeQuoteSource(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := h.quotes.FetchSnapshot(probeCtx, healthProbeSymbol)
	return err
}
