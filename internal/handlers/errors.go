package handlers

import (
	derrors "walletledger/internal/errors"
	"walletledger/internal/models"
	"walletledger/internal/services/wallet"
	"walletledger/internal/utils"
	"walletledger/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// statusForCode maps ledger result codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case derrors.CodeInvalidAmount, derrors.CodeSelfTransfer:
		return fiber.StatusBadRequest
	case derrors.CodeInsufficientFunds:
		return fiber.StatusPaymentRequired
	case derrors.CodeReceiverNotFound, derrors.CodeWalletNotFound:
		return fiber.StatusNotFound
	case derrors.CodeDuplicateReference:
		return fiber.StatusConflict
	case derrors.CodeVerificationMismatch:
		return fiber.StatusUnprocessableEntity
	case derrors.CodeOracle:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// respondResult writes an engine outcome. Failures keep the result body so
// callers still see the code and the current balance.
func respondResult(c *fiber.Ctx, res wallet.Result, body interface{}) error {
	if res.Success {
		return response.Success(c, res.Message, body)
	}
	return response.Failure(c, statusForCode(res.Code), res.Code, res.Message, body)
}

// respondError writes a plain error, keeping domain codes when present.
func respondError(c *fiber.Ctx, err error) error {
	derr := derrors.As(err)
	if derr.Code == derrors.CodeInternal {
		return response.ServerError(c, "internal server error")
	}
	return response.Failure(c, statusForCode(derr.Code), derr.Code, derr.Message, nil)
}

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, err := utils.GetUserClaims(c)
	if err != nil || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}
