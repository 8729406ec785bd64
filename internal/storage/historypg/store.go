package historypg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerbridge/walletplatform/internal/domain"
)

// Store is the History Service's read side: plain pool-backed
// paginated reads, no transaction or lock — distinct from the
// transaction-scoped Store the Projector uses (UnitOfWork.WithinTx).
type Store struct {
	repo repo
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{repo: repo{db: pool}}
}

func (s *Store) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]domain.HistoryRecord, int, error) {
	return s.repo.ListByWallet(ctx, walletID, limit, offset)
}

func (s *Store) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.HistoryRecord, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
