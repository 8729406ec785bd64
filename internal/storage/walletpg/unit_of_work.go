package walletpg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerbridge/walletplatform/internal/walletengine"
)

// Compile-time check that UnitOfWork satisfies the port the Engine
// depends on.
var _ walletengine.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs a Wallet Engine operation inside one pgx transaction,
// handing the caller a repo scoped to that transaction — the explicit
// scoped-acquisition replacement for a context-injected transaction
// style (internal/infrastructure/persistence/postgres/unit_of_work.go).
type UnitOfWork struct {
	pool *pgxpool.Pool
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, q walletengine.Querier) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(ctx, repo{db: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
