package walletpg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ledgerbridge/walletplatform/internal/domain"
	"github.com/ledgerbridge/walletplatform/internal/money"
)

// dbtx is the subset of *pgxpool.Pool and pgx.Tx that repo needs. A
// single repo implementation therefore serves both the transactional
// Querier (wrapping a pgx.Tx) and the plain-read ReadStore (wrapping
// the pool directly) — one querier interface, generalized for both uses.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type repo struct {
	db dbtx
}

func (r repo) InsertWallet(ctx context.Context, w domain.Wallet) error {
	const query = `
		INSERT INTO wallets (id, user_id, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, w.ID, w.UserID, w.Balance.String(), w.Version, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("wallet %s already exists: %w", w.ID, err)
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

func (r repo) GetWallet(ctx context.Context, id string) (domain.Wallet, error) {
	const query = `
		SELECT id, user_id, balance, version, created_at, updated_at
		FROM wallets WHERE id = $1
	`
	return r.scanWallet(r.db.QueryRow(ctx, query, id))
}

// LockWallet is GetWallet under SELECT ... FOR UPDATE — used only from
// within a transaction, in the caller-enforced lexicographic id order
// that makes concurrent transfers deadlock-free.
func (r repo) LockWallet(ctx context.Context, id string) (domain.Wallet, error) {
	const query = `
		SELECT id, user_id, balance, version, created_at, updated_at
		FROM wallets WHERE id = $1 FOR UPDATE
	`
	return r.scanWallet(r.db.QueryRow(ctx, query, id))
}

func (r repo) scanWallet(row pgx.Row) (domain.Wallet, error) {
	var w domain.Wallet
	var balanceStr string
	if err := row.Scan(&w.ID, &w.UserID, &balanceStr, &w.Version, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Wallet{}, err
		}
		return domain.Wallet{}, fmt.Errorf("scan wallet: %w", err)
	}
	balance, err := money.Parse(balanceStr)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("parse stored balance: %w", err)
	}
	w.Balance = balance
	return w, nil
}

func (r repo) ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	const query = `
		SELECT id, user_id, balance, version, created_at, updated_at
		FROM wallets WHERE user_id = $1 ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wallets by user: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w, err := r.scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return wallets, nil
}

// CompareAndSwapBalance is the optimistic-concurrency primitive:
// the UPDATE only matches if version still equals
// expectedVersion, so ok=false unambiguously means another writer won
// the race since the caller's read.
func (r repo) CompareAndSwapBalance(ctx context.Context, walletID string, expectedVersion int64, newBalance money.Amount) (bool, error) {
	const query = `
		UPDATE wallets SET balance = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3
	`
	tag, err := r.db.Exec(ctx, query, newBalance.String(), walletID, expectedVersion)
	if err != nil {
		return false, fmt.Errorf("compare-and-swap balance: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetBalance overwrites unconditionally; callers only reach it having
// already taken a row lock via LockWallet within the same transaction.
func (r repo) SetBalance(ctx context.Context, walletID string, newBalance money.Amount, newVersion int64) error {
	const query = `
		UPDATE wallets SET balance = $1, version = $2, updated_at = now()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, newBalance.String(), newVersion, walletID)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

func (r repo) InsertLedgerTransaction(ctx context.Context, tx domain.LedgerTransaction) error {
	const query = `
		INSERT INTO ledger_transactions (id, wallet_id, amount, kind, status, counterpart_wallet, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`
	_, err := r.db.Exec(ctx, query, tx.ID, tx.WalletID, tx.Amount, tx.Kind, tx.Status, tx.CounterpartWallet, tx.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ledger transaction %s already exists: %w", tx.ID, err)
		}
		return fmt.Errorf("insert ledger transaction: %w", err)
	}
	return nil
}
