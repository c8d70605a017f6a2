// Package errors defines the domain failure taxonomy shared by the ledger
// engine, the slip client and the HTTP layer.
package errors

import stderrors "errors"

// DomainError is a failure with a stable machine-readable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so a DomainError built
// with WithMessage still matches its sentinel under errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of e with a more specific message.
func (e *DomainError) WithMessage(msg string) *DomainError {
	return &DomainError{Code: e.Code, Message: msg}
}

// As extracts the DomainError from err. Errors outside the taxonomy are
// wrapped as ErrInternal carrying their message.
func As(err error) *DomainError {
	if err == nil {
		return nil
	}
	var de *DomainError
	if stderrors.As(err, &de) {
		return de
	}
	return ErrInternal.WithMessage("internal error: " + err.Error())
}

// CodeOf returns the code carried by err, or CodeInternal.
func CodeOf(err error) string {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
