// internal/domain/amount.go
package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are decimal.Decimal end to end. Historical variants of this
// gateway drifted between string and float amounts on the wire; the
// provider wire format is produced only inside the gateway adapter.

// AmountBounds holds the configured creation-time limits.
type AmountBounds struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// ParseAmount parses a caller-supplied amount (JSON number or numeric
// string) and validates it against the configured bounds.
func ParseAmount(raw json.RawMessage, bounds AmountBounds) (decimal.Decimal, error) {
	if len(raw) == 0 {
		return decimal.Zero, NewValidationError("amount", "amount is required")
	}

	s := strings.TrimSpace(string(raw))
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" || s == "null" {
		return decimal.Zero, NewValidationError("amount", "amount is required")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("amount", "amount must be a number")
	}

	return CheckAmount(amount, bounds)
}

// CheckAmount validates an already-parsed amount against the bounds.
func CheckAmount(amount decimal.Decimal, bounds AmountBounds) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, NewValidationError("amount", "amount must be greater than 0")
	}
	if amount.LessThan(bounds.Min) {
		return decimal.Zero, NewValidationError("amount", "amount is below the minimum of "+bounds.Min.String())
	}
	if bounds.Max.IsPositive() && amount.GreaterThan(bounds.Max) {
		return decimal.Zero, NewValidationError("amount", "amount exceeds the maximum of "+bounds.Max.String())
	}
	return amount, nil
}
