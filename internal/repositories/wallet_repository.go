package repositories

import (
	"context"

	"carepay/internal/models"
)

// WalletTotals is the aggregated platform-fee view across all wallets.
type WalletTotals struct {
	TotalPlatformFees int64
	TotalEarnings     int64
	TotalAvailable    int64
	TotalPending      int64
	WalletCount       int64
}

// WalletRepository defines the interface for wallet-related database operations
type WalletRepository interface {
	Create(wallet *models.Wallet) error
	GetByCaregiverID(caregiverID uint) (*models.Wallet, error)
	// GetByCaregiverIDForUpdate takes a row lock; only meaningful inside
	// ExecuteInTransaction.
	GetByCaregiverIDForUpdate(caregiverID uint) (*models.Wallet, error)
	Update(wallet *models.Wallet) error

	CreateTransaction(tx *models.WalletTransaction) error
	ListTransactions(ctx context.Context, walletID uint, txType string, limit, offset int) ([]models.WalletTransaction, int64, error)
	// HasBookingEarning reports whether an earning entry for the booking
	// already exists, the idempotency guard for settlement.
	HasBookingEarning(bookingID uint) (bool, error)

	// Totals aggregates fee and earning sums across every wallet.
	Totals(ctx context.Context) (*WalletTotals, error)

	ExecuteInTransaction(fn func(WalletRepository) error) error
}
