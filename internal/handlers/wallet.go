package handlers

import (
	"io"
	"strings"

	"walletledger/internal/models"
	"walletledger/internal/repositories"
	"walletledger/internal/services/promptpay"
	"walletledger/internal/services/reporting"
	"walletledger/internal/services/slip"
	"walletledger/internal/services/wallet"
	"walletledger/internal/utils/pagination"
	"walletledger/internal/utils/response"
	"walletledger/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const recentItems = 5

// WalletConfig carries the request limits enforced before the engine runs.
type WalletConfig struct {
	MaxAmount     decimal.Decimal
	MaxProofBytes int64
}

type WalletHandler struct {
	walletService wallet.Service
	reports       reporting.Service
	promptPay     *promptpay.Service
	config        WalletConfig
}

// NewWalletHandler wires the wallet routes. promptPay may be nil when no
// merchant PromptPay id is configured; the QR route then answers 503.
func NewWalletHandler(walletService wallet.Service, reports reporting.Service, promptPay *promptpay.Service, config WalletConfig) *WalletHandler {
	if config.MaxAmount.IsZero() {
		config.MaxAmount = validation.DefaultMaxAmount
	}
	return &WalletHandler{
		walletService: walletService,
		reports:       reports,
		promptPay:     promptPay,
		config:        config,
	}
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	ctx := c.UserContext()

	w, err := h.walletService.GetOrCreateWallet(ctx, claims.UserID)
	if err != nil {
		zap.L().Error("failed to load wallet", zap.Uint("user_id", claims.UserID), zap.Error(err))
		return response.ServerError(c, "Failed to get wallet")
	}
	transactions, _, err := h.reports.TransactionHistory(ctx, claims.UserID, "", recentItems, 0)
	if err != nil {
		return response.ServerError(c, "Failed to get transactions")
	}
	transfers, _, err := h.reports.TransferHistory(ctx, claims.UserID, repositories.TransferDirectionAll, recentItems, 0)
	if err != nil {
		return response.ServerError(c, "Failed to get transfers")
	}

	return response.Success(c, "wallet", fiber.Map{
		"wallet":              w,
		"recent_transactions": transactions,
		"recent_transfers":    transfers,
	})
}

func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	balance, err := h.walletService.GetBalance(c.UserContext(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "Failed to get balance")
	}
	return response.Success(c, "balance", fiber.Map{"balance": balance})
}

// TopUpQR returns the PromptPay locators for paying a top-up of amount.
func (h *WalletHandler) TopUpQR(c *fiber.Ctx) error {
	if h.promptPay == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "PromptPay is not configured")
	}
	amount, err := validation.ParseAmount(c.Query("amount"), h.config.MaxAmount)
	if err != nil {
		return respondError(c, err)
	}
	req, err := h.promptPay.PaymentRequest(amount)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "scan the QR and upload the slip", req)
}

// VerifyTopUp accepts a multipart slip upload and runs the top-up.
func (h *WalletHandler) VerifyTopUp(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, validation.ErrEmptyProof.Error())
	}
	contentType := file.Header.Get(fiber.HeaderContentType)
	if err := validation.ValidateProof(contentType, file.Size, h.config.MaxProofBytes); err != nil {
		return response.BadRequest(c, err.Error())
	}
	amount, err := validation.ParseAmount(c.FormValue("amount"), h.config.MaxAmount)
	if err != nil {
		return respondError(c, err)
	}

	f, err := file.Open()
	if err != nil {
		return response.BadRequest(c, "could not read slip image")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return response.BadRequest(c, "could not read slip image")
	}

	proof := slip.Proof{Filename: file.Filename, ContentType: contentType, Data: data}
	res := h.walletService.ProcessTopUp(c.UserContext(), claims.UserID, proof, amount)
	return respondResult(c, res.Result, res)
}

func (h *WalletHandler) Transactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	status := models.TransactionStatus(strings.ToUpper(c.Query("status")))
	if status != "" && !status.Valid() {
		return response.BadRequest(c, "status must be one of PENDING, SUCCESS, FAILED")
	}

	p := pagination.ParseFromRequest(c)
	items, total, err := h.reports.TransactionHistory(c.UserContext(), claims.UserID, status, p.Limit, p.Offset)
	if err != nil {
		return response.ServerError(c, "Failed to get transactions")
	}
	p.Total = total
	return c.JSON(pagination.Response(p, items))
}

// SearchReceiver previews a transfer receiver by email.
func (h *WalletHandler) SearchReceiver(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	user, err := h.walletService.FindReceiver(c.UserContext(), c.Query("email"))
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "receiver found", fiber.Map{
		"email": user.Email,
		"name":  user.DisplayName(),
		"self":  user.ID == claims.UserID,
	})
}

type transferRequest struct {
	ReceiverEmail string          `json:"receiver_email"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note"`
}

func (h *WalletHandler) Transfer(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input transferRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	res := h.walletService.Transfer(c.UserContext(), claims.UserID, input.ReceiverEmail, input.Amount, input.Note)
	return respondResult(c, res.Result, res)
}

func (h *WalletHandler) Transfers(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	direction := repositories.TransferDirection(strings.ToLower(c.Query("direction", string(repositories.TransferDirectionAll))))
	switch direction {
	case repositories.TransferDirectionAll, repositories.TransferDirectionSent, repositories.TransferDirectionReceived:
	default:
		return response.BadRequest(c, "direction must be one of sent, received, all")
	}

	p := pagination.ParseFromRequest(c)
	items, total, err := h.reports.TransferHistory(c.UserContext(), claims.UserID, direction, p.Limit, p.Offset)
	if err != nil {
		return response.ServerError(c, "Failed to get transfers")
	}
	p.Total = total
	return c.JSON(pagination.Response(p, items))
}
