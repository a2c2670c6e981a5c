package repositories

import (
	"fmt"

	"carepay/internal/models"

	"gorm.io/gorm"
)

// BankAccountRepository manages the per-admin payout destination.
type BankAccountRepository interface {
	GetByAdminID(adminID uint) (*models.AdminBankAccount, error)
	Save(account *models.AdminBankAccount) error
}

type bankAccountRepository struct {
	db *gorm.DB
}

func NewBankAccountRepository(db *gorm.DB) BankAccountRepository {
	return &bankAccountRepository{db: db}
}

func (r *bankAccountRepository) GetByAdminID(adminID uint) (*models.AdminBankAccount, error) {
	var account models.AdminBankAccount
	err := r.db.Where("admin_id = ?", adminID).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrBankAccountNotFound
		}
		return nil, fmt.Errorf("failed to get bank account: %w", err)
	}
	return &account, nil
}

func (r *bankAccountRepository) Save(account *models.AdminBankAccount) error {
	if err := r.db.Save(account).Error; err != nil {
		return fmt.Errorf("failed to save bank account: %w", err)
	}
	return nil
}
