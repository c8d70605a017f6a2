package handlers

import (
	"strconv"
	"strings"

	"walletledger/internal/models"
	"walletledger/internal/services/reporting"
	"walletledger/internal/utils/pagination"
	"walletledger/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	reports reporting.Service
}

func NewAdminHandler(reports reporting.Service) *AdminHandler {
	return &AdminHandler{reports: reports}
}

// Summary returns ledger-wide totals and the latest transactions.
func (h *AdminHandler) Summary(c *fiber.Ctx) error {
	recent, err := strconv.Atoi(c.Query("recent", strconv.Itoa(reporting.DefaultRecentSize)))
	if err != nil || recent < 1 {
		recent = reporting.DefaultRecentSize
	}

	summary, err := h.reports.Summary(c.UserContext(), recent)
	if err != nil {
		zap.L().Error("failed to build ledger summary", zap.Error(err))
		return response.ServerError(c, "Failed to build summary")
	}
	return response.Success(c, "summary", summary)
}

// Transactions lists every user's transactions, newest first.
func (h *AdminHandler) Transactions(c *fiber.Ctx) error {
	status := models.TransactionStatus(strings.ToUpper(c.Query("status")))
	if status != "" && !status.Valid() {
		return response.BadRequest(c, "status must be one of PENDING, SUCCESS, FAILED")
	}

	p := pagination.ParseFromRequest(c)
	items, total, err := h.reports.RecentTransactions(c.UserContext(), status, p.Limit, p.Offset)
	if err != nil {
		zap.L().Error("failed to list transactions", zap.Error(err))
		return response.ServerError(c, "Failed to fetch transactions")
	}
	p.Total = total
	return c.JSON(pagination.Response(p, items))
}
