package historypg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerbridge/walletplatform/internal/historyprojector"
)

// Compile-time check that UnitOfWork satisfies the port the Projector
// depends on.
var _ historyprojector.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs one Projector.Apply call inside a single pgx
// transaction. The consumer's manual offset commit is not part of it:
// the offset is committed only after this transaction has committed, so
// a failure between the two leads to redelivery, which the Projector's
// idempotency check absorbs.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, s historyprojector.Store) error) error {
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
