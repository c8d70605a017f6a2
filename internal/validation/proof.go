package validation

import (
	stderrors "errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyProof    = stderrors.New("slip image is required")
	ErrProofNotImage = stderrors.New("slip must be an image file")
	ErrProofTooLarge = stderrors.New("slip image is too large")
	ErrInvalidEmail  = stderrors.New("a valid email is required")
)

// ValidateProof checks an uploaded slip before it reaches the engine.
func ValidateProof(contentType string, size, maxBytes int64) error {
	if size <= 0 {
		return ErrEmptyProof
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return ErrProofNotImage
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrProofTooLarge, size, maxBytes)
	}
	return nil
}

// ValidateEmail performs the shape check used for receiver lookups.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > MaxEmailLength {
		return ErrInvalidEmail
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	return nil
}
