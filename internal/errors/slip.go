package errors

var (
	ErrOracle = &DomainError{
		Code:    CodeOracle,
		Message: "slip verification service unavailable",
	}
	ErrVerificationMismatch = &DomainError{
		Code:    CodeVerificationMismatch,
		Message: "slip does not match the top-up request",
	}
	ErrDuplicateReference = &DomainError{
		Code:    CodeDuplicateReference,
		Message: "slip already used",
	}
)
