// Command walletservice runs the Wallet Service: the authoritative
// wallet ledger behind the create/fund/transfer/read API, publishing
// domain events onto the event log after every committed mutation.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	adapterhttp "github.com/ledgerbridge/walletplatform/internal/adapters/http"
	"github.com/ledgerbridge/walletplatform/internal/config"
	"github.com/ledgerbridge/walletplatform/internal/eventlog"
	"github.com/ledgerbridge/walletplatform/internal/pkg/logger"
	"github.com/ledgerbridge/walletplatform/internal/storage/walletpg"
	"github.com/ledgerbridge/walletplatform/internal/walletengine"
)

func main() {
	_ = godotenv.Load() // local development convenience; absent in production is fine

	cfg, err := config.Load("WALLET")
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stdout})
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	pool, err := walletpg.NewPool(ctx, cfg.Database)
	cancel()
	if err != nil {
		log.Error("failed to connect to wallet store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 60*time.Second)
	publisher, err := eventlog.NewPublisher(dialCtx, cfg.EventLog.BrokerAddress, cfg.EventLog.Topic, log)
	dialCancel()
	if err != nil {
		log.Error("failed to reach event log", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer publisher.Close()

	store := walletpg.NewStore(pool)
	uow := walletpg.NewUnitOfWork(pool)
	engine := walletengine.New(uow, store, publisher, log)

	router := adapterhttp.NewWalletRouter(engine, pool, log, cfg.App.Environment)

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

	log.Info("wallet service starting",
		slog.String("address", cfg.Server.Address()),
		slog.String("environment", cfg.App.Environment),
	)

	if err := server.RunWithContext(ctx); err != nil {
		log.Error("wallet service exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
