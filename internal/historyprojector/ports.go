// Package historyprojector turns one typed event into 0, 1, or 2
// History Store rows, idempotently, in a single transaction; the
// consumer commits the message's offset only after that transaction
// has committed.
package historyprojector

import (
	"context"

	"github.com/ledgerbridge/walletplatform/internal/domain"
)

// Store is the set of History Store operations available inside one
// projection transaction.
type Store interface {
	// ExistsByTransactionID reports whether a row with this
	// idempotency key has already been written.
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)

	// InsertRecord appends one history row.
	InsertRecord(ctx context.Context, record domain.HistoryRecord) error
}

// UnitOfWork runs fn inside a single History Store transaction,
// committing on a nil return and rolling back otherwise. The consumer's
// offset commit is a separate step that follows a successful commit.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
