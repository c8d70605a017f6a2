// Package promptpay builds PromptPay QR locators for top-up payment
// requests. The QR itself is rendered by the configured promptpay.io style
// host; this package only produces its URLs.
package promptpay

import (
	"fmt"
	"strings"

	"walletledger/internal/validation"

	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://promptpay.io"

// PaymentRequest is what a client needs to pay a top-up.
type PaymentRequest struct {
	PromptPayID string          `json:"promptpay_id"`
	Amount      decimal.Decimal `json:"amount"`
	QRImageURL  string          `json:"qr_image_url"`
	PageURL     string          `json:"page_url"`
}

type Service struct {
	baseURL   string
	id        string
	maxAmount decimal.Decimal
}

// NewService creates a locator for the merchant PromptPay id.
func NewService(baseURL, promptPayID string, maxAmount decimal.Decimal) *Service {
	if strings.TrimSpace(promptPayID) == "" {
		panic("promptpay id is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxAmount.IsZero() {
		maxAmount = validation.DefaultMaxAmount
	}
	return &Service{
		baseURL:   strings.TrimRight(baseURL, "/"),
		id:        strings.TrimSpace(promptPayID),
		maxAmount: maxAmount,
	}
}

// ID returns the merchant PromptPay id.
func (s *Service) ID() string {
	return s.id
}

// ImageURL returns the QR image locator for a fixed amount.
func (s *Service) ImageURL(amount decimal.Decimal) (string, error) {
	page, err := s.PageURL(amount)
	if err != nil {
		return "", err
	}
	return page + ".png", nil
}

// PageURL returns the payment page locator for a fixed amount.
func (s *Service) PageURL(amount decimal.Decimal) (string, error) {
	if err := validation.ValidateAmount(amount, s.maxAmount); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.id, amount.StringFixed(2)), nil
}

// StaticImageURL returns the amount-less QR locator.
func (s *Service) StaticImageURL() string {
	return fmt.Sprintf("%s/%s.png", s.baseURL, s.id)
}

// PaymentRequest bundles every locator for amount.
func (s *Service) PaymentRequest(amount decimal.Decimal) (*PaymentRequest, error) {
	page, err := s.PageURL(amount)
	if err != nil {
		return nil, err
	}
	return &PaymentRequest{
		PromptPayID: s.id,
		Amount:      amount,
		QRImageURL:  page + ".png",
		PageURL:     page,
	}, nil
}
