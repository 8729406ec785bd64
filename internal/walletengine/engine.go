package walletengine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbridge/walletplatform/internal/adapters/http/middleware"
	"github.com/ledgerbridge/walletplatform/internal/apperrors"
	"github.com/ledgerbridge/walletplatform/internal/domain"
	"github.com/ledgerbridge/walletplatform/internal/money"
	"github.com/ledgerbridge/walletplatform/internal/pkg/logger"
)

// maxFundRetries caps the optimistic-lock retry loop. Contention on a
// single wallet beyond this indicates hot-spot traffic the caller
// should back off from, so the budget is deliberately small and not
// configurable.
const maxFundRetries = 3

// Engine is the sole writer of Wallet and LedgerTransaction rows,
// through three operations: CreateWallet, FundWallet, TransferFunds.
type Engine struct {
	uow       UnitOfWork
	reads     ReadStore
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// New constructs an Engine. now defaults to time.Now; tests override it
// for deterministic timestamps.
func New(uow UnitOfWork, reads ReadStore, publisher Publisher, logger *slog.Logger) *Engine {
	return &Engine{uow: uow, reads: reads, publisher: publisher, logger: logger, now: time.Now}
}

// validateAmount enforces the strictly-positive, at-most-four-
// fractional-digits rule shared by FundWallet and TransferFunds.
func validateAmount(field string, amount money.Amount) error {
	if !amount.IsPositive() {
		return apperrors.NewValidationError(field, "amount must be strictly positive")
	}
	if amount.DecimalPlaces() > money.Scale {
		return apperrors.NewValidationError(field, "amount must have at most four fractional digits")
	}
	return nil
}

// publishAfterCommit fires an event once the caller's transaction has
// already committed. A failure is logged and swallowed: there is no
// outbox and no automatic republication, so a broker outage here costs
// the history projection an event but never fails the user-visible
// operation.
func (e *Engine) publishAfterCommit(ctx context.Context, key string, event domain.Event) {
	if err := e.publisher.Publish(ctx, key, event); err != nil {
		pubErr := apperrors.NewPublicationError(string(event.Kind()), err)
		middleware.PublicationFailuresTotal.WithLabelValues(string(event.Kind())).Inc()
		e.logger.ErrorContext(ctx, "failed to publish event after commit",
			slog.String("event_type", string(event.Kind())),
			slog.String("partition_key", key),
			slog.String("error", pubErr.Error()),
		)
	}
}

// CreateWallet inserts a zero-balance, version-0 wallet plus a
// zero-amount FUND ledger row whose id becomes WALLET_CREATED's
// transaction_id.
func (e *Engine) CreateWallet(ctx context.Context, userID string) (domain.Wallet, error) {
	if userID == "" {
		return domain.Wallet{}, apperrors.NewValidationError("user_id", "user_id must not be empty")
	}

	walletID := uuid.NewString()
	ledgerTxID := uuid.NewString()
	now := e.now()
	wallet := domain.NewWallet(walletID, userID, now)
	ctx = logger.WithWalletID(logger.WithUserID(ctx, userID), walletID)

	err := e.uow.WithinTx(ctx, func(ctx context.Context, q Querier) error {
		if err := q.InsertWallet(ctx, wallet); err != nil {
			return apperrors.NewIntegrityError("insert_wallet", err)
		}
		ledgerTx := domain.LedgerTransaction{
			ID:        ledgerTxID,
			WalletID:  walletID,
			Amount:    money.Zero().String(),
			Kind:      domain.TransactionKindFund,
			Status:    domain.TransactionStatusCompleted,
			CreatedAt: now,
		}
		if err := q.InsertLedgerTransaction(ctx, ledgerTx); err != nil {
			return apperrors.NewIntegrityError("insert_ledger_transaction", err)
		}
		return nil
	})
	if err != nil {
		return domain.Wallet{}, err
	}

	event := domain.NewWalletCreatedEvent(ledgerTxID, walletID, userID, money.Zero(), now)
	e.publishAfterCommit(ctx, walletID, event)

	return wallet, nil
}

// FundWallet implements optimistic-concurrency funding: read, CAS,
// retry-on-conflict up to maxFundRetries. Only a zero-affected-rows
// CAS result consumes a retry; any other error aborts immediately,
// since retrying a non-concurrency failure cannot resolve it.
func (e *Engine) FundWallet(ctx context.Context, walletID string, amount money.Amount) (domain.Wallet, error) {
	if err := validateAmount("amount", amount); err != nil {
		middleware.FundingsTotal.WithLabelValues("validation_error").Inc()
		return domain.Wallet{}, err
	}

	ctx = logger.WithWalletID(ctx, walletID)

	var result domain.Wallet
	var ledgerTxID string
	now := e.now()

	for attempt := 0; attempt < maxFundRetries; attempt++ {
		if attempt > 0 {
			middleware.OptimisticRetriesTotal.Inc()
		}

		var retry bool
		err := e.uow.WithinTx(ctx, func(ctx context.Context, q Querier) error {
			wallet, err := q.GetWallet(ctx, walletID)
			if err != nil {
				return apperrors.NewWalletNotFoundError(walletID)
			}
			newBalance := wallet.Balance.Add(amount)

			ok, err := q.CompareAndSwapBalance(ctx, walletID, wallet.Version, newBalance)
			if err != nil {
				return apperrors.NewIntegrityError("compare_and_swap_balance", err)
			}
			if !ok {
				retry = true
				return nil
			}

			ledgerTxID = uuid.NewString()
			ledgerTx := domain.LedgerTransaction{
				ID:        ledgerTxID,
				WalletID:  walletID,
				Amount:    amount.String(),
				Kind:      domain.TransactionKindFund,
				Status:    domain.TransactionStatusCompleted,
				CreatedAt: now,
			}
			if err := q.InsertLedgerTransaction(ctx, ledgerTx); err != nil {
				return apperrors.NewIntegrityError("insert_ledger_transaction", err)
			}

			result = domain.Wallet{
				ID:        wallet.ID,
				UserID:    wallet.UserID,
				Balance:   newBalance,
				Version:   wallet.Version + 1,
				CreatedAt: wallet.CreatedAt,
				UpdatedAt: now,
			}
			return nil
		})
		if err != nil {
			middleware.FundingsTotal.WithLabelValues(outcomeLabel(err)).Inc()
			return domain.Wallet{}, err
		}
		if !retry {
			middleware.FundingsTotal.WithLabelValues("ok").Inc()
			event := domain.NewWalletFundedEvent(ledgerTxID, walletID, result.UserID, amount, result.Balance, now)
			e.publishAfterCommit(ctx, walletID, event)
			return result, nil
		}
	}

	middleware.FundingsTotal.WithLabelValues("optimistic_lock_exhausted").Inc()
	return domain.Wallet{}, apperrors.NewOptimisticLockError(walletID, maxFundRetries)
}

// TransferFunds implements the pessimistic, deadlock-free transfer
// algorithm. Row locks on both wallets are acquired in lexicographic
// id order within a single transaction, eliminating the classic
// A-to-B vs B-to-A deadlock.
func (e *Engine) TransferFunds(ctx context.Context, fromID, toID string, amount money.Amount) (domain.TransferReceipt, error) {
	if fromID == toID {
		middleware.TransfersTotal.WithLabelValues("validation_error").Inc()
		return domain.TransferReceipt{}, apperrors.NewValidationError("to_wallet_id", "cannot transfer a wallet to itself")
	}
	if err := validateAmount("amount", amount); err != nil {
		middleware.TransfersTotal.WithLabelValues("validation_error").Inc()
		return domain.TransferReceipt{}, err
	}

	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}

	now := e.now()
	var (
		failedEvent *domain.TransferFailedEvent
		completed   *domain.TransferCompletedEvent
		receipt     domain.TransferReceipt
	)

	err := e.uow.WithinTx(ctx, func(ctx context.Context, q Querier) error {
		if _, err := q.LockWallet(ctx, first); err != nil {
			return apperrors.NewWalletNotFoundError(first)
		}
		if _, err := q.LockWallet(ctx, second); err != nil {
			return apperrors.NewWalletNotFoundError(second)
		}

		from, err := q.GetWallet(ctx, fromID)
		if err != nil {
			return apperrors.NewWalletNotFoundError(fromID)
		}
		to, err := q.GetWallet(ctx, toID)
		if err != nil {
			return apperrors.NewWalletNotFoundError(toID)
		}

		if from.Balance.LessThan(amount) {
			reason := "insufficient balance"
			ev := domain.NewTransferFailedEvent(fromID, toID, from.UserID, amount, reason, now)
			failedEvent = &ev
			return apperrors.NewInsufficientBalanceError(fromID, from.Balance.String(), amount.String())
		}

		newFromBalance := from.Balance.Sub(amount)
		newToBalance := to.Balance.Add(amount)

		if err := q.SetBalance(ctx, fromID, newFromBalance, from.Version+1); err != nil {
			return apperrors.NewIntegrityError("set_balance", err)
		}
		if err := q.SetBalance(ctx, toID, newToBalance, to.Version+1); err != nil {
			return apperrors.NewIntegrityError("set_balance", err)
		}

		outTxID := uuid.NewString()
		inTxID := uuid.NewString()
		if err := q.InsertLedgerTransaction(ctx, domain.LedgerTransaction{
			ID: outTxID, WalletID: fromID, Amount: amount.String(),
			Kind: domain.TransactionKindTransferOut, Status: domain.TransactionStatusCompleted,
			CounterpartWallet: toID, CreatedAt: now,
		}); err != nil {
			return apperrors.NewIntegrityError("insert_ledger_transaction", err)
		}
		if err := q.InsertLedgerTransaction(ctx, domain.LedgerTransaction{
			ID: inTxID, WalletID: toID, Amount: amount.String(),
			Kind: domain.TransactionKindTransferIn, Status: domain.TransactionStatusCompleted,
			CounterpartWallet: fromID, CreatedAt: now,
		}); err != nil {
			return apperrors.NewIntegrityError("insert_ledger_transaction", err)
		}

		ev := domain.NewTransferCompletedEvent(fromID, toID, from.UserID, to.UserID, amount, outTxID, inTxID, now)
		completed = &ev
		receipt = domain.TransferReceipt{FromWalletID: fromID, ToWalletID: toID, Amount: amount}
		return nil
	})

	switch {
	case failedEvent != nil:
		// Publish before returning the error so the failure is
		// auditable even though the overall operation fails.
		e.publishAfterCommit(ctx, fromID, *failedEvent)
		e.publishAfterCommit(ctx, toID, *failedEvent)
		middleware.TransfersTotal.WithLabelValues("insufficient_balance").Inc()
		return domain.TransferReceipt{}, err
	case err != nil:
		middleware.TransfersTotal.WithLabelValues(outcomeLabel(err)).Inc()
		return domain.TransferReceipt{}, err
	}

	e.publishAfterCommit(ctx, fromID, *completed)
	e.publishAfterCommit(ctx, toID, *completed)
	middleware.TransfersTotal.WithLabelValues("completed").Inc()
	return receipt, nil
}

// GetWallet and ListWalletsByUser serve the Wallet Service's read
// endpoints; they perform no locking.
func (e *Engine) GetWallet(ctx context.Context, id string) (domain.Wallet, error) {
	w, err := e.reads.GetWallet(ctx, id)
	if err != nil {
		return domain.Wallet{}, apperrors.NewWalletNotFoundError(id)
	}
	return w, nil
}

func (e *Engine) ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	return e.reads.ListWalletsByUser(ctx, userID)
}

func outcomeLabel(err error) string {
	switch {
	case apperrors.IsWalletNotFound(err):
		return "not_found"
	case apperrors.IsValidationError(err):
		return "validation_error"
	case apperrors.IsOptimisticLock(err):
		return "optimistic_lock_exhausted"
	default:
		return "error"
	}
}
