package api

import (
	"github.com/gin-gonic/gin"

	"github.com/OliverWithClaude/Finsite/internal/api/handlers"
	"github.com/OliverWithClaude/Finsite/internal/api/middleware"
	"github.com/OliverWithClaude/Finsite/internal/infra/database/postgres"
	"github.com/OliverWithClaude/Finsite/internal/infra/yahoo"
	"github.com/OliverWithClaude/Finsite/internal/pkg/config"
	"github.com/OliverWithClaude/Finsite/internal/pkg/logger"
	positionsvc "github.com/OliverWithClaude/Finsite/internal/service/position"
	pricesvc "github.com/OliverWithClaude/Finsite/internal/service/pricehistory"
	"github.com/OliverWithClaude/Finsite/internal/service/tickerinfo"
)

// Router holds all dependencies for API routing
type Router struct {
	engine          *gin.Engine
	config          *config.Config
	dbPool          *postgres.Pool
	healthHandler   *handlers.HealthHandler
	tickerHandler   *handlers.TickerHandler
	positionHandler *handlers.PositionHandler
	chartHandler    *handlers.ChartHandler
}

// NewRouter creates a new API router with all dependencies
func NewRouter(cfg *config.Config, dbPool *postgres.Pool, version string) *Router {
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	// Repositories and outbound clients
	tickerRepo := postgres.NewTickerRepository(dbPool.Pool)
	positionRepo := postgres.NewPositionRepository(dbPool.Pool)
	priceRepo := postgres.NewPriceRepository(dbPool.Pool)
	quotes := yahoo.NewClient(cfg.Yahoo.BaseURL, cfg.Yahoo.Timeout)

	// Services
	priceService := pricesvc.NewService(priceRepo, quotes)
	positionService := positionsvc.NewService(positionRepo, priceService)
	tickerService := tickerinfo.NewService(tickerRepo, quotes)

	router := &Router{
		engine:          engine,
		config:          cfg,
		dbPool:          dbPool,
		healthHandler:   handlers.NewHealthHandler(dbPool, quotes, version),
		tickerHandler:   handlers.NewTickerHandler(tickerService),
		positionHandler: handlers.NewPositionHandler(positionService),
		chartHandler:    handlers.NewChartHandler(priceService, positionService),
	}

	router.setupMiddlewares()
	router.setupRoutes()

	return router
}

// setupMiddlewares configures all global middlewares
func (r *Router) setupMiddlewares() {
	// Recovery first so it wraps everything else
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	accessLogger := logger.NewAccessLogger(
		r.config.Logging.FilePath,
		r.config.Logging.RotationSize,
		r.config.Logging.RetentionDays,
	)
	r.engine.Use(middleware.Logging(middleware.LoggingConfig{
		AccessLogger: &accessLogger,
		SkipPaths:    []string{"/health", "/health/ready"},
	}))

	if r.config.Server.Mode == "debug" {
		r.engine.Use(middleware.CORS(middleware.DevelopmentCORSConfig()))
	} else {
		r.engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Health checks (no /api prefix)
	r.engine.GET("/health", r.healthHandler.Health)
	r.engine.GET("/health/ready", r.healthHandler.Ready)

	api := r.engine.Group("/api")
	{
		api.GET("/health/detailed", r.healthHandler.Detailed)

		// Watchlist
		tickers := api.Group("/tickers")
		{
			tickers.GET("", r.tickerHandler.List)
			tickers.POST("", r.tickerHandler.Create)
			tickers.DELETE("/:symbol", r.tickerHandler.Delete)
		}
		api.POST("/validate-ticker", r.tickerHandler.Validate)
		api.GET("/ticker-info/:symbol", r.tickerHandler.Info)

		// Positions
		positions := api.Group("/positions")
		{
			positions.POST("", r.positionHandler.Create)
			positions.GET("/open", r.positionHandler.ListOpen)
			positions.GET("/closed", r.positionHandler.ListClosed)
			positions.GET("/:id", r.positionHandler.Get)
			positions.POST("/:id/close", r.positionHandler.Close)
			positions.GET("/:id/trades", r.positionHandler.Trades)
			positions.GET("/:id/chart", r.chartHandler.PositionChart)
		}

		// Price history
		api.GET("/price-history/:symbol", r.chartHandler.History)
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
