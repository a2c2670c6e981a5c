package repositories

import (
	"context"

	"carepay/internal/models"
)

// WithdrawalRepository defines the interface for admin withdrawal persistence.
type WithdrawalRepository interface {
	// CreateReserved atomically checks the unreserved fee pool and inserts
	// the withdrawal in processing status. Processing withdrawals count as
	// reserved, so two concurrent calls can never both overdraw the pool.
	// Returns ErrInsufficientFeePool when the amount does not fit.
	CreateReserved(ctx context.Context, w *models.AdminWithdrawal) error

	Update(w *models.AdminWithdrawal) error
	GetByID(id uint) (*models.AdminWithdrawal, error)
	// GetByOrderCode scopes to one admin; GetByOrderCodeAny is for webhook
	// reconciliation where no admin context exists.
	GetByOrderCode(adminID uint, orderCode string) (*models.AdminWithdrawal, error)
	GetByOrderCodeAny(orderCode string) (*models.AdminWithdrawal, error)

	List(ctx context.Context, adminID uint, status models.WithdrawalStatus, limit, offset int) ([]models.AdminWithdrawal, int64, error)
	// SumReserved returns the total of completed plus processing withdrawals.
	SumReserved(ctx context.Context) (int64, error)
	SumCompleted(ctx context.Context) (int64, error)
}
