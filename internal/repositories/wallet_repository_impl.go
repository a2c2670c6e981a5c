package repositories

import (
	"context"
	"fmt"

	"carepay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) Create(wallet *models.Wallet) error {
	result := r.db.Create(wallet)
	if result.Error != nil {
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetByCaregiverID(caregiverID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.Where("caregiver_id = ?", caregiverID).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByCaregiverIDForUpdate(caregiverID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("caregiver_id = ?", caregiverID).
		First(&wallet).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Update(wallet *models.Wallet) error {
	result := r.db.Save(wallet)
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) CreateTransaction(tx *models.WalletTransaction) error {
	result := r.db.Create(tx)
	if result.Error != nil {
		return fmt.Errorf("failed to create transaction: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) ListTransactions(ctx context.Context, walletID uint, txType string, limit, offset int) ([]models.WalletTransaction, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("wallet_id = ?", walletID)
	if txType != "" {
		query = query.Where("type = ?", txType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txs []models.WalletTransaction
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, total, nil
}

func (r *walletRepository) HasBookingEarning(bookingID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.WalletTransaction{}).
		Where("booking_id = ? AND type = ?", bookingID, models.TransactionTypeEarning).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check booking earning: %w", err)
	}
	return count > 0, nil
}

func (r *walletRepository) Totals(ctx context.Context) (*WalletTotals, error) {
	var totals WalletTotals
	err := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Select(`
			COALESCE(SUM(total_platform_fees), 0) as total_platform_fees,
			COALESCE(SUM(total_earnings), 0) as total_earnings,
			COALESCE(SUM(available_balance), 0) as total_available,
			COALESCE(SUM(pending_amount), 0) as total_pending,
			COUNT(*) as wallet_count
		`).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate wallet totals: %w", err)
	}
	return &totals, nil
}

func (r *walletRepository) ExecuteInTransaction(fn func(WalletRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&walletRepository{db: tx})
	})
}
