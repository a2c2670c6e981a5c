package repositories

import (
	"context"
	"fmt"
	"time"

	"carepay/internal/models"

	"gorm.io/gorm"
)

// withdrawalLockKey serializes fee-pool reservations across all admins.
const withdrawalLockKey = 7201

type withdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

func (r *withdrawalRepository) CreateReserved(ctx context.Context, w *models.AdminWithdrawal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Advisory lock is released at commit/rollback; it serializes the
		// read-check-insert below against concurrent reservations.
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", withdrawalLockKey).Error; err != nil {
			return fmt.Errorf("failed to take withdrawal lock: %w", err)
		}

		var feePool int64
		err := tx.Model(&models.Wallet{}).
			Select("COALESCE(SUM(total_platform_fees), 0)").
			Scan(&feePool).Error
		if err != nil {
			return fmt.Errorf("failed to sum platform fees: %w", err)
		}

		var reserved int64
		err = tx.Model(&models.AdminWithdrawal{}).
			Where("status IN ?", []models.WithdrawalStatus{models.WithdrawalCompleted, models.WithdrawalProcessing}).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&reserved).Error
		if err != nil {
			return fmt.Errorf("failed to sum reserved withdrawals: %w", err)
		}

		if w.Amount > feePool-reserved {
			return ErrInsufficientFeePool
		}

		now := time.Now()
		w.Status = models.WithdrawalProcessing
		w.ProcessedAt = &now
		if err := tx.Create(w).Error; err != nil {
			return fmt.Errorf("failed to create withdrawal: %w", err)
		}
		return nil
	})
}

func (r *withdrawalRepository) Update(w *models.AdminWithdrawal) error {
	result := r.db.Save(w)
	if result.Error != nil {
		return fmt.Errorf("failed to update withdrawal: %w", result.Error)
	}
	return nil
}

func (r *withdrawalRepository) GetByID(id uint) (*models.AdminWithdrawal, error) {
	var w models.AdminWithdrawal
	if err := r.db.First(&w, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return &w, nil
}

func (r *withdrawalRepository) GetByOrderCode(adminID uint, orderCode string) (*models.AdminWithdrawal, error) {
	var w models.AdminWithdrawal
	err := r.db.Where("admin_id = ? AND gateway_order_code = ?", adminID, orderCode).First(&w).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return &w, nil
}

func (r *withdrawalRepository) GetByOrderCodeAny(orderCode string) (*models.AdminWithdrawal, error) {
	var w models.AdminWithdrawal
	err := r.db.Where("gateway_order_code = ?", orderCode).First(&w).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return &w, nil
}

func (r *withdrawalRepository) List(ctx context.Context, adminID uint, status models.WithdrawalStatus, limit, offset int) ([]models.AdminWithdrawal, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AdminWithdrawal{})
	if adminID != 0 {
		query = query.Where("admin_id = ?", adminID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count withdrawals: %w", err)
	}

	var ws []models.AdminWithdrawal
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&ws).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return ws, total, nil
}

func (r *withdrawalRepository) SumReserved(ctx context.Context) (int64, error) {
	return r.sumByStatus(ctx, []models.WithdrawalStatus{models.WithdrawalCompleted, models.WithdrawalProcessing})
}

func (r *withdrawalRepository) SumCompleted(ctx context.Context) (int64, error) {
	return r.sumByStatus(ctx, []models.WithdrawalStatus{models.WithdrawalCompleted})
}

func (r *withdrawalRepository) sumByStatus(ctx context.Context, statuses []models.WithdrawalStatus) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.AdminWithdrawal{}).
		Where("status IN ?", statuses).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	return total, nil
}
