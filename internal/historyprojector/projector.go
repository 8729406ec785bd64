package historyprojector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerbridge/walletplatform/internal/adapters/http/middleware"
	"github.com/ledgerbridge/walletplatform/internal/apperrors"
	"github.com/ledgerbridge/walletplatform/internal/domain"
	"github.com/ledgerbridge/walletplatform/internal/eventlog"
)

// Projector is the consumer's sole entry point for turning a decoded
// event into History Store rows.
type Projector struct {
	uow UnitOfWork
	now func() time.Time
}

func New(uow UnitOfWork) *Projector {
	return &Projector{uow: uow, now: time.Now}
}

// Apply dispatches event to its row-writing rule inside one
// transaction. A key collision is treated as already-applied and
// returns nil so the consumer commits its offset — it is not an error.
func (p *Projector) Apply(ctx context.Context, event domain.Event) error {
	raw, err := eventlog.Encode(event)
	if err != nil {
		return apperrors.NewDeserializationError(fmt.Sprintf("re-encode %s: %v", event.Kind(), err))
	}

	switch e := event.(type) {
	case domain.WalletCreatedEvent:
		return p.applySingle(ctx, e.TransactionID, domain.HistoryRecord{
			WalletID: e.WalletID, UserID: e.UserID, Amount: e.InitialBalance,
			EventType: domain.EventTypeWalletCreated, TransactionID: e.TransactionID,
			RawEvent: raw, ArrivedAt: p.now(),
		})

	case domain.WalletFundedEvent:
		return p.applySingle(ctx, e.TransactionID, domain.HistoryRecord{
			WalletID: e.WalletID, UserID: e.UserID, Amount: e.Amount,
			EventType: domain.EventTypeWalletFunded, TransactionID: e.TransactionID,
			RawEvent: raw, ArrivedAt: p.now(),
		})

	case domain.TransferCompletedEvent:
		return p.applyTransferCompleted(ctx, e, raw)

	case domain.TransferFailedEvent:
		key := e.IdempotencyKey()
		return p.applySingle(ctx, key, domain.HistoryRecord{
			WalletID: e.FromWalletID, UserID: e.FromUserID, Amount: e.Amount,
			EventType: domain.EventTypeTransferFailed, TransactionID: key,
			RawEvent: raw, ArrivedAt: p.now(),
		})

	default:
		return apperrors.NewDeserializationError(fmt.Sprintf("unhandled event kind %q", event.Kind()))
	}
}

// applySingle covers the one-row dispatch rules (WALLET_CREATED,
// WALLET_FUNDED, TRANSFER_FAILED): skip if the idempotency key already
// exists, otherwise insert.
func (p *Projector) applySingle(ctx context.Context, idempotencyKey string, record domain.HistoryRecord) error {
	return p.uow.WithinTx(ctx, func(ctx context.Context, s Store) error {
		exists, err := s.ExistsByTransactionID(ctx, idempotencyKey)
		if err != nil {
			middleware.ProjectionOutcomesTotal.WithLabelValues(string(record.EventType), "error").Inc()
			return apperrors.NewIntegrityError("exists_by_transaction_id", err)
		}
		if exists {
			middleware.ProjectionOutcomesTotal.WithLabelValues(string(record.EventType), "already_applied").Inc()
			return nil
		}

		record.ID = uuid.NewString()
		if err := s.InsertRecord(ctx, record); err != nil {
			middleware.ProjectionOutcomesTotal.WithLabelValues(string(record.EventType), "error").Inc()
			return apperrors.NewIntegrityError("insert_record", err)
		}
		middleware.ProjectionOutcomesTotal.WithLabelValues(string(record.EventType), "applied").Inc()
		return nil
	})
}

// applyTransferCompleted writes the debit and credit rows atomically;
// if either transaction id already has a row, the whole event is
// treated as already applied and nothing is written.
func (p *Projector) applyTransferCompleted(ctx context.Context, e domain.TransferCompletedEvent, raw []byte) error {
	return p.uow.WithinTx(ctx, func(ctx context.Context, s Store) error {
		fromExists, err := s.ExistsByTransactionID(ctx, e.FromTransactionID)
		if err != nil {
			middleware.ProjectionOutcomesTotal.WithLabelValues(string(domain.EventTypeTransferCompleted), "error").Inc()
			return apperrors.NewIntegrityError("exists_by_transaction_id", err)
		}
		toExists, err := s.ExistsByTransactionID(ctx, e.ToTransactionID)
		if err != nil {
			middleware.ProjectionOutcomesTotal.WithLabelValues(string(domain.EventTypeTransferCompleted), "error").Inc()
			return apperrors.NewIntegrityError("exists_by_transaction_id", err)
		}
		if fromExists || toExists {
			middleware.ProjectionOutcomesTotal.WithLabelValues(string(domain.EventTypeTransferCompleted), "already_applied").Inc()
			return nil
		}

		now := p.now()
		debit := domain.HistoryRecord{
			ID: uuid.NewString(), WalletID: e.FromWalletID, UserID: e.FromUserID, Amount: e.Amount,
			EventType: domain.EventTypeTransferCompleted, TransactionID: e.FromTransactionID,
			RawEvent: raw, ArrivedAt: now,
		}
		credit := domain.HistoryRecord{
			ID: uuid.NewString(), WalletID: e.ToWalletID, UserID: e.ToUserID, Amount: e.Amount,
			EventType: domain.EventTypeTransferCompleted, TransactionID: e.ToTransactionID,
			RawEvent: raw, ArrivedAt: now,
		}

		if err := s.InsertRecord(ctx, debit); err != nil {
			middleware.ProjectionOutcomesTotal.WithLabelValues(string(domain.EventTypeTransferCompleted), "error").Inc()
			return apperrors.NewIntegrityError("insert_record", err)
		}
		if err := s.InsertRecord(ctx, credit); err != nil {
			middleware.ProjectionOutcomesTotal.WithLabelValues(string(domain.EventTypeTransferCompleted), "error").Inc()
			return apperrors.NewIntegrityError("insert_record", err)
		}
		middleware.ProjectionOutcomesTotal.WithLabelValues(string(domain.EventTypeTransferCompleted), "applied").Inc()
		return nil
	})
}
