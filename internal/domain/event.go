package domain

import (
	"time"

	"github.com/ledgerbridge/walletplatform/internal/money"
)

// EventType is the wire discriminator: the event_type field present on
// every payload. Branching on it happens through an exhaustive type
// switch over the concrete event structs, never by string comparison
// outside the codec.
type EventType string

const (
	EventTypeWalletCreated     EventType = "WALLET_CREATED"
	EventTypeWalletFunded      EventType = "WALLET_FUNDED"
	EventTypeTransferCompleted EventType = "TRANSFER_COMPLETED"
	EventTypeTransferFailed    EventType = "TRANSFER_FAILED"
)

// Event is the common interface every wire event satisfies. Concrete
// types are plain structs with `json` tags — encoding/json already
// renders money.Amount as a quoted decimal string (internal/money) and
// time.Time as RFC3339 with an explicit offset, so no custom
// MarshalJSON is needed on the events themselves.
type Event interface {
	Kind() EventType
}

// WalletCreatedEvent is emitted once per CreateWallet call.
type WalletCreatedEvent struct {
	EventTypeField string       `json:"event_type"`
	Timestamp      time.Time    `json:"timestamp"`
	TransactionID  string       `json:"transaction_id"`
	WalletID       string       `json:"wallet_id"`
	UserID         string       `json:"user_id"`
	InitialBalance money.Amount `json:"initial_balance"`
}

func (e WalletCreatedEvent) Kind() EventType { return EventTypeWalletCreated }

func NewWalletCreatedEvent(txID, walletID, userID string, initialBalance money.Amount, now time.Time) WalletCreatedEvent {
	return WalletCreatedEvent{
		EventTypeField: string(EventTypeWalletCreated),
		Timestamp:      now,
		TransactionID:  txID,
		WalletID:       walletID,
		UserID:         userID,
		InitialBalance: initialBalance,
	}
}

// WalletFundedEvent is emitted once per successful FundWallet call.
type WalletFundedEvent struct {
	EventTypeField string       `json:"event_type"`
	Timestamp      time.Time    `json:"timestamp"`
	TransactionID  string       `json:"transaction_id"`
	WalletID       string       `json:"wallet_id"`
	UserID         string       `json:"user_id"`
	Amount         money.Amount `json:"amount"`
	NewBalance     money.Amount `json:"new_balance"`
}

func (e WalletFundedEvent) Kind() EventType { return EventTypeWalletFunded }

func NewWalletFundedEvent(txID, walletID, userID string, amount, newBalance money.Amount, now time.Time) WalletFundedEvent {
	return WalletFundedEvent{
		EventTypeField: string(EventTypeWalletFunded),
		Timestamp:      now,
		TransactionID:  txID,
		WalletID:       walletID,
		UserID:         userID,
		Amount:         amount,
		NewBalance:     newBalance,
	}
}

// TransferCompletedEvent carries both sides' ledger ids so the
// projector can write two history rows from one payload. The same
// payload is published twice by the Publisher, once per side's
// partition key — it is identical both times.
type TransferCompletedEvent struct {
	EventTypeField    string       `json:"event_type"`
	Timestamp         time.Time    `json:"timestamp"`
	FromWalletID      string       `json:"from_wallet_id"`
	ToWalletID        string       `json:"to_wallet_id"`
	FromUserID        string       `json:"from_user_id"`
	ToUserID          string       `json:"to_user_id"`
	Amount            money.Amount `json:"amount"`
	FromTransactionID string       `json:"from_transaction_id"`
	ToTransactionID   string       `json:"to_transaction_id"`
}

func (e TransferCompletedEvent) Kind() EventType { return EventTypeTransferCompleted }

func NewTransferCompletedEvent(fromWalletID, toWalletID, fromUserID, toUserID string, amount money.Amount, fromTxID, toTxID string, now time.Time) TransferCompletedEvent {
	return TransferCompletedEvent{
		EventTypeField:    string(EventTypeTransferCompleted),
		Timestamp:         now,
		FromWalletID:      fromWalletID,
		ToWalletID:        toWalletID,
		FromUserID:        fromUserID,
		ToUserID:          toUserID,
		Amount:            amount,
		FromTransactionID: fromTxID,
		ToTransactionID:   toTxID,
	}
}

// TransferFailedEvent records an aborted transfer for auditability; it
// is published before the caller sees InsufficientBalanceError.
// TransactionID is optional on the wire — when the failure happens
// before a ledger row could exist, the Projector falls back to a
// synthetic idempotency key.
type TransferFailedEvent struct {
	EventTypeField string       `json:"event_type"`
	Timestamp      time.Time    `json:"timestamp"`
	FromWalletID   string       `json:"from_wallet_id"`
	ToWalletID     string       `json:"to_wallet_id"`
	FromUserID     string       `json:"from_user_id,omitempty"`
	Amount         money.Amount `json:"amount"`
	Reason         string       `json:"reason"`
	TransactionID  string       `json:"transaction_id,omitempty"`
}

func (e TransferFailedEvent) Kind() EventType { return EventTypeTransferFailed }

func NewTransferFailedEvent(fromWalletID, toWalletID, fromUserID string, amount money.Amount, reason string, now time.Time) TransferFailedEvent {
	return TransferFailedEvent{
		EventTypeField: string(EventTypeTransferFailed),
		Timestamp:      now,
		FromWalletID:   fromWalletID,
		ToWalletID:     toWalletID,
		FromUserID:     fromUserID,
		Amount:         amount,
		Reason:         reason,
	}
}

// IdempotencyKey returns the deduplication key for a TRANSFER_FAILED
// event, synthesizing one when no transaction_id is present.
func (e TransferFailedEvent) IdempotencyKey() string {
	if e.TransactionID != "" {
		return e.TransactionID
	}
	return "failed-" + e.Timestamp.Format(time.RFC3339Nano) + "-" + e.FromWalletID
}
