// Package routes defines the API routing configuration.
// It builds the services from configuration and mounts every HTTP route
// with its middleware.
package routes

import (
	"time"

	"walletledger/internal/config"
	"walletledger/internal/handlers"
	"walletledger/internal/middleware"
	"walletledger/internal/models"
	"walletledger/internal/repositories"
	"walletledger/internal/repositories/cache"
	"walletledger/internal/services/promptpay"
	"walletledger/internal/services/reporting"
	"walletledger/internal/services/slip"
	"walletledger/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the process-level resources the routes are built from.
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	// Cache is nil when redis is disabled.
	Cache    *cache.CacheService
	Registry *prometheus.Registry
	// Slips overrides the slip oracle client.
	Slips wallet.SlipMatcher
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	cfg := deps.Config

	walletRepo := repositories.NewWalletRepository(deps.DB)
	userRepo := repositories.NewUserRepository(deps.DB)
	reports := reporting.NewService(repositories.NewLedgerQueryRepository(deps.DB))

	slips := deps.Slips
	if slips == nil {
		slips = slip.NewClient(slip.Config{
			URL:                  cfg.Oracle.URL,
			APIKey:               cfg.Oracle.APIKey,
			Timeout:              cfg.Oracle.Timeout,
			ExpectedAccount:      cfg.Merchant.PromptPayID,
			ExpectedReceiverName: cfg.Oracle.ExpectedReceiverName,
			RequireReceiver:      cfg.Oracle.RequireReceiver,
		})
	}

	var walletCache wallet.CacheOperator = &wallet.NoopCache{}
	var pinger handlers.Pinger
	if deps.Cache != nil {
		walletCache = deps.Cache
		pinger = deps.Cache
	}

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	walletService := wallet.NewService(
		walletRepo,
		userRepo,
		slips,
		wallet.NewDiskProofStore(cfg.Ledger.UploadDir),
		walletCache,
		wallet.Config{MaxAmount: cfg.Ledger.MaxAmount},
		wallet.NewPrometheusMetrics(registry),
	)

	var qr *promptpay.Service
	if cfg.Merchant.PromptPayID != "" {
		qr = promptpay.NewService(cfg.Merchant.PromptPayBaseURL, cfg.Merchant.PromptPayID, cfg.Ledger.MaxAmount)
	} else {
		zap.L().Warn("PROMPTPAY_ID not set, top-up QR route disabled")
	}

	walletHandler := handlers.NewWalletHandler(walletService, reports, qr, handlers.WalletConfig{
		MaxAmount:     cfg.Ledger.MaxAmount,
		MaxProofBytes: cfg.Ledger.MaxProofBytes,
	})
	checkoutHandler := handlers.NewCheckoutHandler(walletService)
	adminHandler := handlers.NewAdminHandler(reports)
	healthHandler := handlers.NewHealthHandler(deps.DB, pinger)

	// Public endpoints
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)
	api := app.Group("/api")

	setupWalletRoutes(api, authMiddleware, walletHandler)
	setupCheckoutRoutes(api, cfg.Auth.CheckoutAPIKey, checkoutHandler)
	setupAdminRoutes(api, authMiddleware, adminHandler)
}

func setupWalletRoutes(router fiber.Router, auth *middleware.AuthMiddleware, h *handlers.WalletHandler) {
	read := middleware.HasPermission(models.PermissionWalletRead)
	write := middleware.HasPermission(models.PermissionWalletWrite)

	w := router.Group("/wallet", auth.Handler)
	w.Get("/", read, h.GetWallet)
	w.Get("/balance", read, h.GetBalance)
	w.Get("/topup/qr", read, h.TopUpQR)
	w.Post("/topup/verify", write, verifyLimiter(), h.VerifyTopUp)
	w.Get("/transactions", read, h.Transactions)
	w.Get("/transfer/search", read, h.SearchReceiver)
	w.Post("/transfer", write, h.Transfer)
	w.Get("/transfers", read, h.Transfers)
}

func setupCheckoutRoutes(router fiber.Router, key string, h *handlers.CheckoutHandler) {
	internal := router.Group("/internal/checkout", middleware.CheckoutKey(key))
	internal.Post("/purchase", h.Purchase)
}

func setupAdminRoutes(router fiber.Router, auth *middleware.AuthMiddleware, h *handlers.AdminHandler) {
	admin := router.Group("/admin", auth.Handler, middleware.AdminOnly)
	admin.Get("/reports/summary", h.Summary)
	admin.Get("/transactions", h.Transactions)
}

// verifyLimiter caps slip uploads per user, since each one costs an oracle
// call.
func verifyLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if claims, ok := c.Locals("claims").(*models.UserClaims); ok {
				return "user:" + claims.Subject
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
}
