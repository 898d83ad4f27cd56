package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OliverWithClaude/Finsite/internal/domain/ticker"
	"github.com/OliverWithClaude/Finsite/internal/infra/database/postgres"
)

type stubDB struct {
	status *postgres.HealthStatus
}

func (s stubDB) Health(ctx context.Context) *postgres.HealthStatus {
	return s.status
}

type stubQuotes struct {
	err    error
	symbol string
}

func (s *stubQuotes) FetchSnapshot(ctx context.Context, symbol string) (*ticker.QuoteSnapshot, error) {
	s.symbol = symbol
	if s.err != nil {
		return nil, s.err
	}
	return &ticker.QuoteSnapshot{Symbol: symbol, FieldCount: 42}, nil
}

func healthRouter(db databaseChecker, quotes ticker.SnapshotSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler(db, quotes, "test")

	engine := gin.New()
	engine.GET("/health/ready", handler.Ready)
	engine.GET("/api/health/detailed", handler.Detailed)
	return engine
}

func TestReadyChecksDatabaseAndQuoteSource(t *testing.T) {
	quotes := &stubQuotes{}
	engine := healthRouter(stubDB{&postgres.HealthStatus{Status: "healthy"}}, quotes)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
	assert.Equal(t, "ok", body.Checks["quote_source"])
	assert.Equal(t, healthProbeSymbol, quotes.symbol)
}

func TestReadyNotReadyWhenQuoteSourceDown(t *testing.T) {
	quotes := &stubQuotes{err: errors.New("connection refused")}
	engine := healthRouter(stubDB{&postgres.HealthStatus{Status: "healthy"}}, quotes)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
	assert.Equal(t, "connection refused", body.Checks["quote_source"])
}

func TestReadyNotReadyWhenDatabaseDown(t *testing.T) {
	engine := healthRouter(
		stubDB{&postgres.HealthStatus{Status: "unhealthy", Error: "ping failed"}},
		&stubQuotes{},
	)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ping failed", body.Checks["database"])
}

func TestDetailedDegradedOnQuoteSourceFailure(t *testing.T) {
	quotes := &stubQuotes{err: errors.New("timeout")}
	engine := healthRouter(stubDB{&postgres.HealthStatus{Status: "healthy"}}, quotes)

	req := httptest.NewRequest(http.MethodGet, "/api/health/detailed", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body DetailedHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy: timeout", body.QuoteSource)
	assert.Equal(t, "test", body.Version)
}
