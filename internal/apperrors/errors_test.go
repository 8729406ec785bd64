package apperrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsufficientBalanceError_MessageContainsInsufficient(t *testing.T) {
	err := NewInsufficientBalanceError("w-1", "10.0000", "15.0000")
	assert.Contains(t, err.Error(), "insufficient")
}

func TestPredicates_MatchOnlyTheirOwnKind(t *testing.T) {
	val := NewValidationError("amount", "must be positive")
	notFound := NewWalletNotFoundError("w-1")
	insufficient := NewInsufficientBalanceError("w-1", "0", "5")
	lock := NewOptimisticLockError("w-1", 3)

	assert.True(t, IsValidationError(val))
	assert.False(t, IsValidationError(notFound))

	assert.True(t, IsWalletNotFound(notFound))
	assert.False(t, IsWalletNotFound(val))

	assert.True(t, IsInsufficientBalance(insufficient))
	assert.False(t, IsInsufficientBalance(lock))

	assert.True(t, IsOptimisticLock(lock))
	assert.False(t, IsOptimisticLock(insufficient))
}

func TestIntegrityError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("unique violation")
	wrapped := NewIntegrityError("insert wallet", inner)

	assert.ErrorIs(t, wrapped, inner)
	assert.True(t, IsIntegrity(wrapped))
	assert.False(t, IsIntegrity(inner))
}

func TestPublicationError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("broker unreachable")
	wrapped := NewPublicationError("WALLET_FUNDED", inner)

	assert.ErrorIs(t, wrapped, inner)
	assert.Contains(t, wrapped.Error(), "WALLET_FUNDED")
}
