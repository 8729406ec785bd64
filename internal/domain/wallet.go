// Package domain holds the entities shared by both services: the
// Wallet and its internal ledger transactions, the wire-format Event
// union carried on the event log, and the History Record the History
// Service projects from it. Value types with constructor functions;
// nothing here imports a driver, framework, or codec.
package domain

import (
	"time"

	"github.com/ledgerbridge/walletplatform/internal/money"
)

// Wallet is the authoritative balance-bearing entity. ID and
// UserID are opaque strings rather than a parsed uuid.UUID — this
// domain's ids are produced by the caller-facing layer as UUID
// strings, so a plain string keeps the entity free of a parsing
// dependency.
type Wallet struct {
	ID        string
	UserID    string
	Balance   money.Amount
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWallet constructs a zero-balance, version-0 wallet for CreateWallet.
func NewWallet(id, userID string, now time.Time) Wallet {
	return Wallet{
		ID:        id,
		UserID:    userID,
		Balance:   money.Zero(),
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
