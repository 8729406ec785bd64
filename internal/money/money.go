// Package money provides the fixed-point decimal type shared by both
// services. Balances and amounts carry 19 integer and 4 fractional
// digits and must never drift under repeated addition the way a
// floating-point representation would; shopspring/decimal's arbitrary
// precision arithmetic is exact for this range.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits a wallet balance or amount
// is rounded to. The wire format and the storage column agree on this.
const Scale = 4

// Amount is a non-negative-by-convention fixed-point value. Validation
// of sign/scale is the caller's responsibility (apperrors.ValidationError
// is raised by the engine, not by this type).
type Amount struct {
	d decimal.Decimal
}

// Zero is the additive identity.
func Zero() Amount {
	return Amount{d: decimal.Zero}
}

// Parse reads a decimal string such as "10.00" or "100". Returns an
// error if the string is not valid decimal syntax; it does not enforce
// sign or scale — callers validate those separately against the
// platform's rules (positive, at most four fractional digits).
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid decimal amount %q: %w", s, err)
	}
	// Deliberately not rounded here: DecimalPlaces() must reflect the
	// caller's original precision so the engine can reject >4-digit
	// inputs instead of silently truncating them.
	return Amount{d: d}, nil
}

func (a Amount) Add(other Amount) Amount {
	return Amount{d: a.d.Add(other.d).Round(Scale)}
}

func (a Amount) Sub(other Amount) Amount {
	return Amount{d: a.d.Sub(other.d).Round(Scale)}
}

func (a Amount) IsPositive() bool {
	return a.d.IsPositive()
}

func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// LessThan reports whether a < other.
func (a Amount) LessThan(other Amount) bool {
	return a.d.LessThan(other.d)
}

// DecimalPlaces returns the number of fractional digits actually
// present in the value as parsed (before Scale truncation would hide
// excess precision) — used by validation to reject >4-digit inputs.
func (a Amount) DecimalPlaces() int32 {
	return a.d.Exponent() * -1
}

// String renders the canonical decimal-string wire form, e.g. "100.0000".
func (a Amount) String() string {
	return a.d.StringFixed(Scale)
}

func (a Amount) Equal(other Amount) bool {
	return a.d.Equal(other.d)
}

// MarshalJSON renders the amount as a quoted decimal string, never as
// a JSON number, so clients never see binary-float rounding.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts only a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount must be a JSON string: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
