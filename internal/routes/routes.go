// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"log"

	"carepay/internal/config"
	"carepay/internal/handlers"
	"carepay/internal/middleware"
	"carepay/internal/models"
	"carepay/internal/repositories"
	"carepay/internal/services/bankaccount"
	"carepay/internal/services/dispute"
	"carepay/internal/services/gateway"
	"carepay/internal/services/ledger"
	"carepay/internal/services/notification"
	"carepay/internal/services/storage"
	"carepay/internal/services/withdrawal"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize repositories
	walletRepo := repositories.NewWalletRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)
	withdrawalRepo := repositories.NewWithdrawalRepository(db)
	bankAccountRepo := repositories.NewBankAccountRepository(db)
	disputeRepo := repositories.NewDisputeRepository(db)

	// Shared infrastructure
	gatewayClient := gateway.NewClient(gateway.FromEnv())
	publisher := notification.FromEnv(config.GetEnv("RABBITMQ_URL", ""))

	var uploads *storage.Client
	if config.GetEnv("S3_ACCESS_KEY_ID", "") != "" {
		var err error
		uploads, err = storage.FromEnv()
		if err != nil {
			log.Printf("object storage unavailable, evidence upload disabled: %v", err)
		}
	}

	// Initialize services in dependency order
	ledgerService := ledger.NewService(walletRepo, bookingRepo, repositories.CacheService, publisher)
	accountService := bankaccount.NewService(bankAccountRepo)
	withdrawalService := withdrawal.NewService(withdrawalRepo, bankAccountRepo, ledgerService, gatewayClient, publisher)
	disputeService := dispute.NewService(disputeRepo, bookingRepo, ledgerService, gatewayClient, publisher)

	// Initialize handlers
	walletHandler := handlers.NewWalletHandler(ledgerService)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService, accountService)
	disputeHandler := handlers.NewDisputeHandler(disputeService, uploads)
	webhookHandler := handlers.NewWebhookHandler(gatewayClient, withdrawalService)

	// Public routes
	app.Get("/health", handlers.HealthCheck)
	api := app.Group("/api")

	// Gateway callbacks are public; payloads are HMAC-authenticated.
	api.Post("/webhooks/gateway", webhookHandler.HandleGatewayWebhook)

	// Protected routes
	protected := api.Use(middleware.Auth)

	// Wallet routes (caregivers)
	wallet := protected.Group("/wallet", middleware.RequireRole(models.RoleCaregiver))
	wallet.Get("/", walletHandler.GetWallet)
	wallet.Get("/transactions", walletHandler.GetTransactions)

	// Dispute routes (both booking participants)
	disputes := protected.Group("/disputes")
	disputes.Post("/", disputeHandler.Create)
	disputes.Get("/", disputeHandler.ListMine)
	disputes.Get("/:id", disputeHandler.Get)
	disputes.Post("/:id/respond", disputeHandler.Respond)
	disputes.Post("/:id/withdraw", disputeHandler.Withdraw)
	disputes.Post("/:id/evidence", disputeHandler.UploadEvidence)
	disputes.Post("/:id/rating", disputeHandler.Rate)

	// Admin routes
	admin := protected.Group("/admin", middleware.AdminOnly)

	admin.Get("/overview", walletHandler.GetPlatformOverview)
	admin.Post("/settlements/run", walletHandler.SettleDueBookings)
	admin.Post("/bookings/:id/settle", walletHandler.SettleBooking)

	admin.Get("/withdrawals/balance", withdrawalHandler.GetBalance)
	admin.Get("/withdrawals/bank-account", withdrawalHandler.GetBankAccount)
	admin.Put("/withdrawals/bank-account", withdrawalHandler.UpsertBankAccount)
	admin.Post("/withdrawals", withdrawalHandler.Initiate)
	admin.Get("/withdrawals", withdrawalHandler.History)
	admin.Get("/withdrawals/:orderCode/status", withdrawalHandler.CheckStatus)

	admin.Get("/disputes", disputeHandler.ListAll)
	admin.Get("/disputes/stats", disputeHandler.Stats)
	admin.Post("/disputes/:id/assign", disputeHandler.Assign)
	admin.Patch("/disputes/:id/status", disputeHandler.UpdateStatus)
	admin.Post("/disputes/:id/decision", disputeHandler.Decide)
	admin.Post("/disputes/:id/refund", disputeHandler.ProcessRefund)
	admin.Post("/disputes/:id/notes", disputeHandler.AddInternalNote)
}
