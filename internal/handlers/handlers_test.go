package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	derrors "walletledger/internal/errors"
	"walletledger/internal/middleware"
	"walletledger/internal/models"
	"walletledger/internal/repositories"
	"walletledger/internal/repositories/repotest"
	"walletledger/internal/services/promptpay"
	"walletledger/internal/services/reporting"
	"walletledger/internal/services/slip"
	"walletledger/internal/services/wallet"
	"walletledger/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "handler-secret"
	checkoutKey  = "checkout-key"
	testMaxBytes = 1 << 20
)

// stubSlips confirms every slip for the requested amount under a fresh
// reference, unless err is set.
type stubSlips struct {
	mu  sync.Mutex
	n   int
	err error
}

func (s *stubSlips) Match(_ context.Context, _ slip.Proof, expected decimal.Decimal) (*slip.SlipData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.n++
	return &slip.SlipData{Reference: fmt.Sprintf("REF-%d", s.n), Amount: expected, HasAmount: true}, nil
}

type testEnv struct {
	app   *fiber.App
	users repositories.UserRepository
	slips *stubSlips
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := repotest.OpenSQLite(t)

	users := repositories.NewUserRepository(db)
	slips := &stubSlips{}
	svc := wallet.NewService(
		repositories.NewWalletRepository(db),
		users,
		slips,
		wallet.NewDiskProofStore(t.TempDir()),
		nil,
		wallet.Config{},
		nil,
	)
	reports := reporting.NewService(repositories.NewLedgerQueryRepository(db))
	qr := promptpay.NewService("https://promptpay.io", "0812345678", decimal.Zero)

	walletHandler := NewWalletHandler(svc, reports, qr, WalletConfig{MaxProofBytes: testMaxBytes})
	checkoutHandler := NewCheckoutHandler(svc)
	adminHandler := NewAdminHandler(reports)

	app := fiber.New()
	auth := middleware.NewAuthMiddleware(testSecret)
	app.Get("/health", NewHealthHandler(db, nil).Check)

	w := app.Group("/api/wallet", auth.Handler)
	w.Get("/", walletHandler.GetWallet)
	w.Get("/balance", walletHandler.GetBalance)
	w.Get("/topup/qr", walletHandler.TopUpQR)
	w.Post("/topup/verify", walletHandler.VerifyTopUp)
	w.Get("/transactions", walletHandler.Transactions)
	w.Get("/transfer/search", walletHandler.SearchReceiver)
	w.Post("/transfer", walletHandler.Transfer)
	w.Get("/transfers", walletHandler.Transfers)

	app.Post("/api/internal/checkout/purchase", middleware.CheckoutKey(checkoutKey), checkoutHandler.Purchase)

	admin := app.Group("/api/admin", auth.Handler, middleware.AdminOnly)
	admin.Get("/reports/summary", adminHandler.Summary)
	admin.Get("/transactions", adminHandler.Transactions)

	return &testEnv{app: app, users: users, slips: slips}
}

func (e *testEnv) user(t *testing.T, email, name, role string) (*models.User, string) {
	t.Helper()
	u := &models.User{Email: email, Name: name, Role: role}
	require.NoError(t, e.users.Create(context.Background(), u))
	tok, err := utils.GenerateToken(testSecret, &models.UserClaims{UserID: u.ID, Email: u.Email, Role: u.Role}, time.Minute)
	require.NoError(t, err)
	return u, tok
}

func (e *testEnv) do(t *testing.T, req *http.Request, token string) (int, map[string]interface{}) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp.StatusCode, body
}

func jsonRequest(method, path string, payload interface{}) *http.Request {
	b, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, amount, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("amount", amount))
	if data != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="slip.png"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/wallet/topup/verify", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", body)
	return d
}

func decimalField(t *testing.T, m map[string]interface{}, key string) string {
	t.Helper()
	d, err := decimal.NewFromString(fmt.Sprint(m[key]))
	require.NoError(t, err)
	return d.StringFixed(2)
}

func (e *testEnv) topUp(t *testing.T, token, amount string) {
	t.Helper()
	status, body := e.do(t, uploadRequest(t, amount, "image/png", []byte("png")), token)
	require.Equal(t, fiber.StatusOK, status, body)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, httptest.NewRequest("GET", "/health", nil), "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestWallet_RequiresToken(t *testing.T) {
	env := newTestEnv(t)
	status, _ := env.do(t, httptest.NewRequest("GET", "/api/wallet/balance", nil), "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestGetWalletAndBalance(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.user(t, "alice@example.com", "Alice", models.RoleUser)

	status, body := env.do(t, httptest.NewRequest("GET", "/api/wallet/", nil), tok)
	require.Equal(t, fiber.StatusOK, status)
	w := data(t, body)["wallet"].(map[string]interface{})
	assert.Equal(t, "0.00", decimalField(t, w, "balance"))

	env.topUp(t, tok, "250")

	status, body = env.do(t, httptest.NewRequest("GET", "/api/wallet/balance", nil), tok)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "250.00", decimalField(t, data(t, body), "balance"))

	_, body = env.do(t, httptest.NewRequest("GET", "/api/wallet/", nil), tok)
	assert.Len(t, data(t, body)["recent_transactions"], 1)
}

func TestTopUpQR(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.user(t, "alice@example.com", "Alice", models.RoleUser)

	status, body := env.do(t, httptest.NewRequest("GET", "/api/wallet/topup/qr?amount=150.5", nil), tok)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "https://promptpay.io/0812345678/150.50.png", data(t, body)["qr_image_url"])

	status, body = env.do(t, httptest.NewRequest("GET", "/api/wallet/topup/qr?amount=-1", nil), tok)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, derrors.CodeInvalidAmount, body["code"])
}

func TestVerifyTopUp_RejectsBadInputBeforeEngine(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.user(t, "alice@example.com", "Alice", models.RoleUser)

	tests := []struct {
		name        string
		amount      string
		contentType string
		data        []byte
	}{
		{"missing file", "100", "", nil},
		{"empty file", "100", "image/png", []byte{}},
		{"not an image", "100", "application/pdf", []byte("pdf")},
		{"bad amount", "abc", "image/png", []byte("png")},
		{"too many decimals", "1.234", "image/png", []byte("png")},
		{"too large", "100", "image/png", bytes.Repeat([]byte("x"), testMaxBytes+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := env.do(t, uploadRequest(t, tt.amount, tt.contentType, tt.data), tok)
			assert.Equal(t, fiber.StatusBadRequest, status)
		})
	}

	env.slips.mu.Lock()
	defer env.slips.mu.Unlock()
	assert.Zero(t, env.slips.n, "oracle must not be called")
}

func TestVerifyTopUp_OracleMismatch(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	env.slips.err = derrors.ErrVerificationMismatch

	status, body := env.do(t, uploadRequest(t, "100", "image/png", []byte("png")), tok)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, derrors.CodeVerificationMismatch, body["code"])

	status, body = env.do(t, httptest.NewRequest("GET", "/api/wallet/transactions?status=failed", nil), tok)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)
}

func TestTransferFlow(t *testing.T) {
	env := newTestEnv(t)
	_, aliceTok := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	_, bobTok := env.user(t, "bob@example.com", "Bob", models.RoleUser)
	env.topUp(t, aliceTok, "500")

	status, body := env.do(t, httptest.NewRequest("GET", "/api/wallet/transfer/search?email=BOB@example.com", nil), aliceTok)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Bob", data(t, body)["name"])

	status, body = env.do(t, httptest.NewRequest("GET", "/api/wallet/transfer/search?email=nobody@example.com", nil), aliceTok)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, derrors.CodeReceiverNotFound, body["code"])

	status, body = env.do(t, jsonRequest("POST", "/api/wallet/transfer", fiber.Map{
		"receiver_email": "bob@example.com", "amount": "120.25", "note": "lunch",
	}), aliceTok)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "379.75", decimalField(t, data(t, body), "balance"))

	status, body = env.do(t, jsonRequest("POST", "/api/wallet/transfer", fiber.Map{
		"receiver_email": "bob@example.com", "amount": "10000",
	}), aliceTok)
	assert.Equal(t, fiber.StatusPaymentRequired, status)
	assert.Equal(t, derrors.CodeInsufficientFunds, body["code"])

	status, body = env.do(t, jsonRequest("POST", "/api/wallet/transfer", fiber.Map{
		"receiver_email": "alice@example.com", "amount": "1",
	}), aliceTok)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, derrors.CodeSelfTransfer, body["code"])

	// the insufficient-funds attempt is kept as a FAILED record
	status, body = env.do(t, httptest.NewRequest("GET", "/api/wallet/transfers?direction=received", nil), bobTok)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 2)

	status, _ = env.do(t, httptest.NewRequest("GET", "/api/wallet/transfers?direction=up", nil), bobTok)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCheckoutPurchase(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceTok := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	env.topUp(t, aliceTok, "100")

	purchase := func(amount string) (int, map[string]interface{}) {
		req := jsonRequest("POST", "/api/internal/checkout/purchase", fiber.Map{
			"user_id": alice.ID, "amount": amount, "description": "order #1",
		})
		req.Header.Set(middleware.CheckoutKeyHeader, checkoutKey)
		return env.do(t, req, "")
	}

	status, body := purchase("60")
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "40.00", decimalField(t, data(t, body), "balance"))

	status, body = purchase("60")
	assert.Equal(t, fiber.StatusPaymentRequired, status)
	assert.Equal(t, derrors.CodeInsufficientFunds, body["code"])

	req := jsonRequest("POST", "/api/internal/checkout/purchase", fiber.Map{"user_id": alice.ID, "amount": "1"})
	status, _ = env.do(t, req, "")
	assert.Equal(t, fiber.StatusUnauthorized, status, "missing checkout key")
}

func TestAdminReports(t *testing.T) {
	env := newTestEnv(t)
	_, aliceTok := env.user(t, "alice@example.com", "Alice", models.RoleUser)
	_, adminTok := env.user(t, "admin@example.com", "Admin", models.RoleAdmin)
	env.topUp(t, aliceTok, "300")

	status, _ := env.do(t, httptest.NewRequest("GET", "/api/admin/reports/summary", nil), aliceTok)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := env.do(t, httptest.NewRequest("GET", "/api/admin/reports/summary", nil), adminTok)
	require.Equal(t, fiber.StatusOK, status)
	summary := data(t, body)
	assert.Equal(t, "300.00", decimalField(t, summary, "topup_total"))
	assert.EqualValues(t, 0, summary["purchase_count"])

	status, body = env.do(t, httptest.NewRequest("GET", "/api/admin/transactions?limit=5", nil), adminTok)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["data"], 1)
	meta := body["meta"].(map[string]interface{})
	assert.EqualValues(t, 5, meta["per_page"])
}

func TestStatusForCode(t *testing.T) {
	assert.Equal(t, fiber.StatusConflict, statusForCode(derrors.CodeDuplicateReference))
	assert.Equal(t, fiber.StatusBadGateway, statusForCode(derrors.CodeOracle))
	assert.Equal(t, fiber.StatusInternalServerError, statusForCode(derrors.CodeInternal))
	assert.Equal(t, fiber.StatusInternalServerError, statusForCode(strings.ToLower("unknown")))
}
