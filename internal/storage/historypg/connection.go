// Package historypg is the History Store: a pgxpool-backed
// implementation of historyprojector's Store/UnitOfWork ports plus the
// paginated read queries the History Service serves. Built on the same
// postgres package pattern as walletpg, duplicated rather than shared
// because the two stores are independent databases owned by
// independent services; no cross-service database access is permitted.
package historypg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerbridge/walletplatform/internal/config"
)

// NewPool opens a pgxpool.Pool sized per cfg and verifies connectivity
// with one Ping before returning.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	poolConfig.MinConns = cfg.MinConnections
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
