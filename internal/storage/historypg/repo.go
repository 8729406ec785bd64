package historypg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ledgerbridge/walletplatform/internal/domain"
	"github.com/ledgerbridge/walletplatform/internal/money"
)

// dbtx is the subset of *pgxpool.Pool and pgx.Tx the repo needs —
// mirrors walletpg's dbtx so the same repo type serves both the
// transactional Store (wrapping a pgx.Tx, used by the Projector) and
// plain paginated reads (wrapping the pool directly, used by the
// query handlers).
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type repo struct {
	db dbtx
}

// InsertRecord appends one history row. The
// caller has already checked ExistsByTransactionID inside the same
// transaction; the column's UNIQUE constraint is the backstop if two
// consumer instances ever race on the same partition (they shouldn't,
// but the constraint makes that impossible to observe as a duplicate).
func (r repo) InsertRecord(ctx context.Context, rec domain.HistoryRecord) error {
	const query = `
		INSERT INTO history_records (id, wallet_id, user_id, amount, event_type, transaction_id, raw_event, arrived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
	`
	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.WalletID, rec.UserID, rec.Amount.String(), string(rec.EventType),
		rec.TransactionID, rec.RawEvent, rec.ArrivedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("history record for transaction %s already exists: %w", rec.TransactionID, err)
		}
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// ExistsByTransactionID is the idempotency check the Projector issues
// before every insert: at most one record per transaction_id.
func (r repo) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM history_records WHERE transaction_id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, transactionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check transaction id existence: %w", err)
	}
	return exists, nil
}

func (r repo) scanRecord(row pgx.Row) (domain.HistoryRecord, error) {
	var rec domain.HistoryRecord
	var amountStr, eventType string
	if err := row.Scan(&rec.ID, &rec.WalletID, &rec.UserID, &amountStr, &eventType,
		&rec.TransactionID, &rec.RawEvent, &rec.ArrivedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HistoryRecord{}, err
		}
		return domain.HistoryRecord{}, fmt.Errorf("scan history record: %w", err)
	}
	amount, err := money.Parse(amountStr)
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("parse stored amount: %w", err)
	}
	rec.Amount = amount
	rec.EventType = domain.EventType(eventType)
	return rec, nil
}

// ListByWallet returns one page of wallet_id's history, ordered by
// arrival timestamp descending, plus the total matching count for the
// response envelope.
func (r repo) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]domain.HistoryRecord, int, error) {
	return r.list(ctx, "wallet_id", walletID, limit, offset)
}

// ListByUser is ListByWallet's user-scoped counterpart.
func (r repo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.HistoryRecord, int, error) {
	return r.list(ctx, "user_id", userID, limit, offset)
}

func (r repo) list(ctx context.Context, column, value string, limit, offset int) ([]domain.HistoryRecord, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM history_records WHERE %s = $1`, column)
	if err := r.db.QueryRow(ctx, countQuery, value).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history records: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, wallet_id, user_id, amount, event_type, transaction_id, raw_event, arrived_at
		FROM history_records
		WHERE %s = $1
		ORDER BY arrived_at DESC
		LIMIT $2 OFFSET $3
	`, column)
	rows, err := r.db.Query(ctx, query, value, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list history records: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate history records: %w", err)
	}
	return records, total, nil
}
