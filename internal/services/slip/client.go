// Package slip talks to the EasySlip verification API. It uploads a slip
// image, normalises the many response shapes the oracle produces and checks
// the slip against the amount and receiver a top-up expects.
package slip

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"

	derrors "walletledger/internal/errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Client verifies slips against the oracle.
type Client struct {
	config Config
	http   *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.URL == "" {
		panic("slip oracle URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(cfg.ExpectedReceiverName) == "" {
		zap.L().Warn("no expected receiver name configured; slips identified only by name will be rejected")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{config: cfg, http: httpClient}
}

type oracleResponse struct {
	Status  json.Number            `json:"status"`
	Message interface{}            `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

// Verify uploads the proof and returns the normalised slip. Every failure,
// including timeouts, is an ErrOracle DomainError.
func (c *Client) Verify(ctx context.Context, proof Proof) (*SlipData, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	body, contentType, err := encodeProof(proof)
	if err != nil {
		return nil, derrors.ErrOracle.WithMessage("failed to encode slip upload: " + err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, body)
	if err != nil {
		return nil, derrors.ErrOracle.WithMessage("failed to build oracle request: " + err.Error())
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, derrors.ErrOracle.WithMessage(fmt.Sprintf("slip verification timed out after %s", c.config.Timeout))
		}
		return nil, derrors.ErrOracle.WithMessage("slip verification request failed: " + err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, derrors.ErrOracle.WithMessage("failed to read oracle response: " + err.Error())
	}

	zap.L().Debug("oracle response", zap.Int("http_status", resp.StatusCode), zap.ByteString("body", raw))

	var parsed oracleResponse
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return nil, derrors.ErrOracle.WithMessage(fmt.Sprintf("unreadable oracle response (HTTP %d)", resp.StatusCode))
	}

	if parsed.Status.String() != "200" {
		msg := "slip verification failed with status " + parsed.Status.String()
		if parsed.Status == "" {
			msg = fmt.Sprintf("slip verification failed with HTTP %d", resp.StatusCode)
		}
		if m := scalarString(parsed.Message); m != "" {
			msg += " - " + m
		}
		return nil, derrors.ErrOracle.WithMessage(msg)
	}
	if parsed.Data == nil {
		return nil, derrors.ErrOracle.WithMessage("oracle response carries no slip data")
	}

	data := normalize(parsed.Data)
	zap.L().Info("slip verified by oracle",
		zap.String("reference", data.Reference),
		zap.String("amount", data.Amount.StringFixed(2)),
		zap.String("receiver_name", data.ReceiverName),
		zap.String("receiver_bank", data.ReceiverBankID),
		zap.String("receiver_account", data.ReceiverMaskedAccount),
	)
	return data, nil
}

// Match verifies the proof and checks it pays the expected amount to the
// configured receiver.
func (c *Client) Match(ctx context.Context, proof Proof, expected decimal.Decimal) (*SlipData, error) {
	data, err := c.Verify(ctx, proof)
	if err != nil {
		return nil, err
	}
	if err := c.check(data, expected); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) check(data *SlipData, expected decimal.Decimal) error {
	if !data.HasAmount || data.Amount.Sub(expected).Abs().GreaterThan(AmountTolerance) {
		return derrors.ErrVerificationMismatch.WithMessage(fmt.Sprintf(
			"amount mismatch: slip %s, requested %s", data.Amount.StringFixed(2), expected.StringFixed(2)))
	}
	if data.Reference == "" {
		zap.L().Warn("slip carries no transaction reference")
	}

	if data.ReceiverMaskedAccount != "" {
		if !maskedAccountMatches(data.ReceiverMaskedAccount, c.config.ExpectedAccount) {
			return derrors.ErrVerificationMismatch.WithMessage(fmt.Sprintf(
				"receiver account mismatch: slip %q, expected %q", data.ReceiverMaskedAccount, c.config.ExpectedAccount))
		}
		return nil
	}

	if data.ReceiverName != "" {
		if !receiverNameMatches(data.ReceiverName, c.config.ExpectedReceiverName) {
			return derrors.ErrVerificationMismatch.WithMessage(fmt.Sprintf(
				"receiver mismatch: slip %q, expected %q", data.ReceiverName, c.config.ExpectedReceiverName))
		}
		return nil
	}

	if c.config.RequireReceiver {
		return derrors.ErrVerificationMismatch.WithMessage("slip does not identify the receiver")
	}
	zap.L().Warn("slip has no receiver information, accepted on amount and reference only",
		zap.String("reference", data.Reference))
	return nil
}

func encodeProof(proof Proof) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := proof.Filename
	if filename == "" {
		filename = "slip"
	}
	contentType := proof.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(proof.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
