// Package walletengine implements the wallet engine: the three write
// operations the Wallet Service exposes, their concurrency control,
// and the publish-after-commit event emission contract. Collaborators
// are expressed as narrow interfaces (ports) rather than concrete
// types, so the engine itself imports no driver or framework.
package walletengine

import (
	"context"

	"github.com/ledgerbridge/walletplatform/internal/domain"
	"github.com/ledgerbridge/walletplatform/internal/money"
)

// Querier is the set of Wallet Store operations available inside one
// unit of work: UnitOfWork.WithinTx hands a Querier bound to the
// active transaction into the caller's function and guarantees
// rollback on any non-nil return or panic.
type Querier interface {
	// InsertWallet persists a newly created, zero-balance wallet.
	InsertWallet(ctx context.Context, w domain.Wallet) error

	// GetWallet reads a wallet without locking it.
	GetWallet(ctx context.Context, id string) (domain.Wallet, error)

	// LockWallet reads one wallet under SELECT ... FOR UPDATE.
	LockWallet(ctx context.Context, id string) (domain.Wallet, error)

	// CompareAndSwapBalance performs the optimistic-concurrency
	// conditional update: it succeeds (ok=true) only if the row's
	// current version still equals expectedVersion.
	CompareAndSwapBalance(ctx context.Context, walletID string, expectedVersion int64, newBalance money.Amount) (ok bool, err error)

	// SetBalance overwrites balance and version unconditionally. Used
	// only under a pessimistic lock already held by this transaction
	// (the Transfer path), where no CAS is needed because no other
	// transaction can have touched the row since LockWallet.
	SetBalance(ctx context.Context, walletID string, newBalance money.Amount, newVersion int64) error

	// InsertLedgerTransaction appends one internal ledger row.
	InsertLedgerTransaction(ctx context.Context, tx domain.LedgerTransaction) error
}

// UnitOfWork runs fn inside a single database transaction, committing
// on a nil return and rolling back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error
}

// ReadStore serves the Wallet Service's read endpoints — plain reads
// with no transaction or lock.
type ReadStore interface {
	GetWallet(ctx context.Context, id string) (domain.Wallet, error)
	ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error)
}

// Publisher is the Engine's view of the event publisher: publish one
// event, keyed for the partition the caller chooses. The Engine never
// blocks its transaction boundary on this — it is only ever called
// after commit.
type Publisher interface {
	Publish(ctx context.Context, key string, event domain.Event) error
}
