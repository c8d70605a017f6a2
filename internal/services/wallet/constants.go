package wallet

import "time"

// Default configuration values
const (
	DefaultUploadDir  = "uploads/slips"
	DefaultNoteLength = 500
	// DefaultWriteTimeout bounds terminal ledger writes, which run detached
	// from the caller's context.
	DefaultWriteTimeout = 30 * time.Second
)

// Operation names used for metrics and logs.
const (
	OperationTopUp    = "topup"
	OperationTransfer = "transfer"
	OperationPurchase = "purchase"
	OperationBalance  = "balance"
)

const (
	resultSuccess = "success"
	resultFailed  = "failed"
)
