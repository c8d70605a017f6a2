package validation

import "github.com/shopspring/decimal"

const (
	// String lengths
	MaxDescriptionLength = 500
	MaxEmailLength       = 254

	// AmountScale is the number of minor-unit digits an amount may carry.
	AmountScale = 2
)

// DefaultMaxAmount is the per-operation ceiling used when none is configured.
var DefaultMaxAmount = decimal.NewFromInt(100000)
