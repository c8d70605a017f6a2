package slip

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultTimeout = 15 * time.Second

	// maxResponseBytes bounds how much of an oracle reply is read.
	maxResponseBytes = 1 << 20

	// namePrefixLength is how many leading characters of a receiver name
	// take part in the fuzzy comparison.
	namePrefixLength = 5

	// maskedDigits is how many trailing digits of a masked account must
	// match the merchant id.
	maskedDigits = 4
)

// AmountTolerance is the largest accepted difference between the claimed
// and the reported amount.
var AmountTolerance = decimal.RequireFromString("0.01")
