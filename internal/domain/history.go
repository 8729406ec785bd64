package domain

import (
	"time"

	"github.com/ledgerbridge/walletplatform/internal/money"
)

// HistoryRecord is the History Store's flattened projection of one
// event. TransactionID is unique at the storage layer — the
// linearization point the consumer's idempotent apply relies on.
// RawEvent carries the original event payload verbatim for the query
// API's event_data field.
type HistoryRecord struct {
	ID            string
	WalletID      string
	UserID        string
	Amount        money.Amount
	EventType     EventType
	TransactionID string
	RawEvent      []byte
	ArrivedAt     time.Time
}
