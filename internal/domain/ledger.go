package domain

import (
	"time"

	"github.com/ledgerbridge/walletplatform/internal/money"
)

// TransactionKind discriminates the three internal ledger entry shapes
// a Wallet can accumulate.
type TransactionKind string

const (
	TransactionKindFund        TransactionKind = "FUND"
	TransactionKindTransferOut TransactionKind = "TRANSFER_OUT"
	TransactionKindTransferIn  TransactionKind = "TRANSFER_IN"
)

// TransactionStatus is always COMPLETED for the happy paths this ledger
// records; FAILED exists in the schema even though the engine never
// persists a failed ledger row today (a failed transfer rolls back
// before any ledger insert).
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// LedgerTransaction is the Wallet Store's append-only internal record.
// Its ID is what propagates onto the wire as an event's transaction_id
// — the idempotency key the History Service dedupes on.
type LedgerTransaction struct {
	ID                string
	WalletID          string
	Amount            string // decimal string; zero for the synthetic creation entry
	Kind              TransactionKind
	Status            TransactionStatus
	CounterpartWallet string // set for TRANSFER_OUT/TRANSFER_IN, empty otherwise
	CreatedAt         time.Time
}

// TransferReceipt is TransferFunds's success return value — just enough
// for the HTTP handler to render a 200 without a second read.
type TransferReceipt struct {
	FromWalletID string
	ToWalletID   string
	Amount       money.Amount
}
