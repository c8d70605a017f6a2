// Package validation holds the input rules shared by the HTTP layer and the
// wallet engine.
package validation

import (
	"fmt"
	"strings"

	"walletledger/internal/errors"

	"github.com/shopspring/decimal"
)

// ValidateAmount checks 0 < amount <= max with at most two decimal places.
func ValidateAmount(amount, max decimal.Decimal) error {
	if max.IsZero() {
		max = DefaultMaxAmount
	}
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount.WithMessage("amount must be greater than 0")
	}
	if amount.GreaterThan(max) {
		return errors.ErrInvalidAmount.WithMessage(fmt.Sprintf("amount must not exceed %s", max.StringFixed(AmountScale)))
	}
	if !amount.Equal(amount.Round(AmountScale)) {
		return errors.ErrInvalidAmount.WithMessage("amount must have at most 2 decimal places")
	}
	return nil
}

// ParseAmount parses a user-supplied amount string and validates it.
func ParseAmount(raw string, max decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, errors.ErrInvalidAmount.WithMessage("amount is required")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.ErrInvalidAmount.WithMessage(fmt.Sprintf("invalid amount %q", raw))
	}
	if err := ValidateAmount(amount, max); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// TruncateText cuts s to at most max runes.
func TruncateText(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
