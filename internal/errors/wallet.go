package errors

const (
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeInsufficientFunds    = "INSUFFICIENT_FUNDS"
	CodeReceiverNotFound     = "RECEIVER_NOT_FOUND"
	CodeSelfTransfer         = "SELF_TRANSFER"
	CodeWalletNotFound       = "WALLET_NOT_FOUND"
	CodeInternal             = "INTERNAL_ERROR"
	CodeOracle               = "ORACLE_ERROR"
	CodeVerificationMismatch = "VERIFICATION_MISMATCH"
	CodeDuplicateReference   = "DUPLICATE_REFERENCE"
)

var (
	ErrInsufficientFunds = &DomainError{
		Code:    CodeInsufficientFunds,
		Message: "insufficient wallet balance",
	}
	ErrInvalidAmount = &DomainError{
		Code:    CodeInvalidAmount,
		Message: "invalid amount",
	}
	ErrWalletNotFound = &DomainError{
		Code:    CodeWalletNotFound,
		Message: "wallet not found",
	}
	ErrReceiverNotFound = &DomainError{
		Code:    CodeReceiverNotFound,
		Message: "receiver not found",
	}
	ErrSelfTransfer = &DomainError{
		Code:    CodeSelfTransfer,
		Message: "cannot transfer to yourself",
	}
	ErrInternal = &DomainError{
		Code:    CodeInternal,
		Message: "internal error",
	}
)
