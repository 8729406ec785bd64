// Package http also assembles the routers for both services — a
// composition root following a RouterBuilder shape but trimmed: no
// auth, no CORS, no rate limiting, since both services sit behind a
// gateway that owns those concerns.
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ledgerbridge/walletplatform/internal/adapters/http/handlers"
	"github.com/ledgerbridge/walletplatform/internal/adapters/http/middleware"
)

func baseRouter(logger *slog.Logger, environment string, pool *pgxpool.Pool) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           logger,
		EnableStackTrace: environment != "production",
	}))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger:    logger,
		SkipPaths: []string{"/live", "/ready", "/metrics"},
	}))
	router.Use(middleware.Metrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.NewHealthHandler(pool).RegisterRoutes(router)

	return router
}

// NewWalletRouter builds the Wallet Service's HTTP surface: the
// create/fund/transfer/read endpoints plus health and metrics routes.
func NewWalletRouter(engine handlers.WalletEngine, pool *pgxpool.Pool, logger *slog.Logger, environment string) *gin.Engine {
	router := baseRouter(logger, environment, pool)
	handlers.NewWalletHandler(engine).RegisterRoutes(router)
	return router
}

// NewHistoryRouter builds the History Service's HTTP surface: the two
// paginated read endpoints plus health and metrics routes.
func NewHistoryRouter(query handlers.HistoryQuery, pool *pgxpool.Pool, logger *slog.Logger, environment string) *gin.Engine {
	router := baseRouter(logger, environment, pool)
	handlers.NewHistoryHandler(query).RegisterRoutes(router)
	return router
}
