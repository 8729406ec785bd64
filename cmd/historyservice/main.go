// Command historyservice runs the History Service: the eventually
// consistent read projection built by consuming the event log,
// exposed through a paginated per-wallet and per-user read API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	adapterhttp "github.com/ledgerbridge/walletplatform/internal/adapters/http"
	"github.com/ledgerbridge/walletplatform/internal/config"
	"github.com/ledgerbridge/walletplatform/internal/eventlog"
	"github.com/ledgerbridge/walletplatform/internal/historyprojector"
	"github.com/ledgerbridge/walletplatform/internal/pkg/logger"
	"github.com/ledgerbridge/walletplatform/internal/storage/historypg"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("HISTORY")
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stdout})
	slog.SetDefault(log)

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := historypg.NewPool(poolCtx, cfg.Database)
	poolCancel()
	if err != nil {
		log.Error("failed to connect to history store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	store := historypg.NewStore(pool)
	uow := historypg.NewUnitOfWork(pool)
	projector := historyprojector.New(uow)
	consumer := eventlog.NewConsumer(cfg.EventLog.BrokerAddress, cfg.EventLog.Topic, cfg.EventLog.ConsumerGroup, cfg.EventLog.BatchSize, projector, log)

	router := adapterhttp.NewHistoryRouter(store, pool, log, cfg.App.Environment)
	server := adapterhttp.NewServer(&adapterhttp.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            strconv.Itoa(cfg.Server.Port),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          log,
	}, router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("event consumer starting",
			slog.String("broker_address", cfg.EventLog.BrokerAddress),
			slog.String("topic", cfg.EventLog.Topic),
			slog.String("consumer_group", cfg.EventLog.ConsumerGroup),
		)
		if err := consumer.Run(ctx); err != nil {
			log.Error("event consumer exited with error", slog.String("error", err.Error()))
		}
	}()

	log.Info("history service starting",
		slog.String("address", cfg.Server.Address()),
		slog.String("environment", cfg.App.Environment),
	)

	serverErr := server.RunWithContext(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	if err := consumer.Shutdown(shutdownCtx); err != nil {
		log.Error("event consumer shutdown error", slog.String("error", err.Error()))
	}
	shutdownCancel()
	wg.Wait()

	if serverErr != nil {
		log.Error("history service exited with error", slog.String("error", serverErr.Error()))
		os.Exit(1)
	}
}
