package walletpg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerbridge/walletplatform/internal/domain"
)

// Store is the Wallet Service's ReadStore: plain pool-backed reads,
// no transaction or lock.
type Store struct {
	repo repo
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{repo: repo{db: pool}}
}

func (s *Store) GetWallet(ctx context.Context, id string) (domain.Wallet, error) {
	return s.repo.GetWallet(ctx, id)
}

func (s *Store) ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	return s.repo.ListWalletsByUser(ctx, userID)
}
