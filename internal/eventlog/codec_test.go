package eventlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbridge/walletplatform/internal/domain"
	"github.com/ledgerbridge/walletplatform/internal/money"
)

func TestEncodeDecode_WalletCreated(t *testing.T) {
	amount, err := money.Parse("0.0000")
	require.NoError(t, err)
	event := domain.NewWalletCreatedEvent("tx-1", "w-1", "u-1", amount, time.Now().UTC())

	payload, err := Encode(event)
	require.NoError(t, err)

	decoded, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, domain.EventTypeWalletCreated, decoded.Kind())

	got, ok := decoded.(domain.WalletCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, event.WalletID, got.WalletID)
	assert.Equal(t, event.TransactionID, got.TransactionID)
}

func TestEncodeDecode_AllEventTypes(t *testing.T) {
	now := time.Now().UTC()
	amount, _ := money.Parse("10.5000")

	events := []domain.Event{
		domain.NewWalletCreatedEvent("tx-1", "w-1", "u-1", money.Zero(), now),
		domain.NewWalletFundedEvent("tx-2", "w-1", "u-1", amount, amount, now),
		domain.NewTransferCompletedEvent("w-1", "w-2", "u-1", "u-2", amount, "tx-3", "tx-4", now),
		domain.NewTransferFailedEvent("w-1", "w-2", "u-1", amount, "insufficient balance", now),
	}

	for _, event := range events {
		payload, err := Encode(event)
		require.NoError(t, err)

		decoded, err := Decode(payload)
		require.NoError(t, err)
		assert.Equal(t, event.Kind(), decoded.Kind())
	}
}

func TestDecode_UnknownEventType(t *testing.T) {
	_, err := Decode([]byte(`{"event_type":"SOMETHING_ELSE"}`))
	require.Error(t, err)
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	require.Error(t, err)
}
