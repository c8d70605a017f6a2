package handlers

import (
	"walletledger/internal/services/wallet"
	"walletledger/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CheckoutHandler is the gate the order-checkout flow calls before it creates
// an order. Any non-success answer means the order must not be created.
type CheckoutHandler struct {
	walletService wallet.Service
}

func NewCheckoutHandler(walletService wallet.Service) *CheckoutHandler {
	return &CheckoutHandler{walletService: walletService}
}

type purchaseRequest struct {
	UserID      uint            `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (h *CheckoutHandler) Purchase(c *fiber.Ctx) error {
	var input purchaseRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.UserID == 0 {
		return response.BadRequest(c, "user_id is required")
	}

	res := h.walletService.Purchase(c.UserContext(), input.UserID, input.Amount, input.Description)
	return respondResult(c, res.Result, res)
}
