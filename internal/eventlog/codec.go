// Package eventlog is the event-log boundary: encoding events onto
// the wire, publishing them, and consuming them. Publish is the
// narrow contract the application layer depends on; the wire format
// is a JSON envelope discriminated by event_type.
package eventlog

import (
	"encoding/json"
	"fmt"

	"github.com/ledgerbridge/walletplatform/internal/apperrors"
	"github.com/ledgerbridge/walletplatform/internal/domain"
)

// envelope carries only the discriminator field so Decode can peek it
// before committing to a concrete event type; event_type is present on
// every payload.
type envelope struct {
	EventType string `json:"event_type"`
}

// Encode renders an event to its wire JSON form. Money fields already
// marshal as quoted decimal strings via money.Amount.MarshalJSON.
func Encode(event domain.Event) ([]byte, error) {
	return json.Marshal(event)
}

// Decode peeks event_type and unmarshals into the matching concrete
// struct, returning it as the domain.Event interface. An unrecognized
// or malformed payload yields apperrors.DeserializationError, which the
// Consumer treats as poison: commit the offset, log, move on.
func Decode(payload []byte) (domain.Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, apperrors.NewDeserializationError(fmt.Sprintf("malformed envelope: %v", err))
	}

	switch domain.EventType(env.EventType) {
	case domain.EventTypeWalletCreated:
		var e domain.WalletCreatedEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, apperrors.NewDeserializationError(fmt.Sprintf("WALLET_CREATED: %v", err))
		}
		return e, nil
	case domain.EventTypeWalletFunded:
		var e domain.WalletFundedEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, apperrors.NewDeserializationError(fmt.Sprintf("WALLET_FUNDED: %v", err))
		}
		return e, nil
	case domain.EventTypeTransferCompleted:
		var e domain.TransferCompletedEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, apperrors.NewDeserializationError(fmt.Sprintf("TRANSFER_COMPLETED: %v", err))
		}
		return e, nil
	case domain.EventTypeTransferFailed:
		var e domain.TransferFailedEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, apperrors.NewDeserializationError(fmt.Sprintf("TRANSFER_FAILED: %v", err))
		}
		return e, nil
	default:
		return nil, apperrors.NewDeserializationError(fmt.Sprintf("unrecognized event_type %q", env.EventType))
	}
}
