package slip

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Proof is an uploaded transfer-slip image.
type Proof struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SlipData is the normalised view of an oracle response. Fields the oracle
// did not report are left empty.
type SlipData struct {
	Reference             string
	Amount                decimal.Decimal
	HasAmount             bool
	SenderName            string
	ReceiverName          string
	ReceiverBankID        string
	ReceiverBankName      string
	ReceiverMaskedAccount string
	Raw                   map[string]interface{}
}

// Config configures the oracle endpoint and the receiver the slips must name.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration

	// ExpectedAccount is the merchant PromptPay id masked accounts are
	// compared against.
	ExpectedAccount      string
	ExpectedReceiverName string
	// RequireReceiver rejects slips that carry no receiver signal at all
	// instead of trusting amount and reference alone.
	RequireReceiver bool

	HTTPClient *http.Client
}
