package validation

import (
	"testing"

	"walletledger/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateAmount(t *testing.T) {
	max := decimal.NewFromInt(100000)
	tests := []struct {
		amount  string
		wantErr bool
	}{
		{"0.01", false},
		{"500", false},
		{"100000", false},
		{"100000.00", false},
		{"100000.01", true},
		{"0", true},
		{"-5", true},
		{"10.005", true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount), max)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidAmount)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAmount_DefaultMax(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.NewFromInt(100000), decimal.Zero))
	assert.Error(t, ValidateAmount(decimal.RequireFromString("100000.01"), decimal.Zero))
}

func TestParseAmount(t *testing.T) {
	amt, err := ParseAmount(" 250.50 ", DefaultMaxAmount)
	assert.NoError(t, err)
	assert.Equal(t, "250.5", amt.String())

	for _, raw := range []string{"", "abc", "0", "1e9"} {
		_, err := ParseAmount(raw, DefaultMaxAmount)
		assert.ErrorIs(t, err, errors.ErrInvalidAmount, raw)
	}
}

func TestValidateProof(t *testing.T) {
	assert.NoError(t, ValidateProof("image/png", 10, 100))
	assert.NoError(t, ValidateProof("IMAGE/JPEG", 10, 0))
	assert.ErrorIs(t, ValidateProof("image/png", 0, 100), ErrEmptyProof)
	assert.ErrorIs(t, ValidateProof("application/pdf", 10, 100), ErrProofNotImage)
	assert.ErrorIs(t, ValidateProof("image/png", 101, 100), ErrProofTooLarge)
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("bob@example.com"))
	for _, bad := range []string{"", "bob", "@example.com", "bob@"} {
		assert.ErrorIs(t, ValidateEmail(bad), ErrInvalidEmail, bad)
	}
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "abc", TruncateText("  abc ", 10))
	assert.Equal(t, "กขค", TruncateText("กขคง", 3))
}
