// Package bankaccount manages the admin payout destination used by the
// withdrawal pipeline.
package bankaccount

import (
	"errors"
	"time"

	"carepay/internal/models"
	"carepay/internal/repositories"
)

var (
	ErrIncompleteDetails = errors.New("bank name, bank code, account number and account name are all required")
	ErrNotFound          = errors.New("bank account not found")
)

// Service manages admin bank accounts.
type Service interface {
	Get(adminID uint) (*models.AdminBankAccount, error)
	Upsert(adminID uint, details models.BankDetails) (*models.AdminBankAccount, error)
}

type service struct {
	repo repositories.BankAccountRepository
}

// NewService creates a new bank account service.
func NewService(repo repositories.BankAccountRepository) Service {
	if repo == nil {
		panic("bank account repository is required")
	}
	return &service{repo: repo}
}

func (s *service) Get(adminID uint) (*models.AdminBankAccount, error) {
	account, err := s.repo.GetByAdminID(adminID)
	if err == repositories.ErrBankAccountNotFound {
		return nil, ErrNotFound
	}
	return account, err
}

// Upsert creates or replaces the admin's payout account. One account per
// admin; saving overwrites the previous details.
func (s *service) Upsert(adminID uint, details models.BankDetails) (*models.AdminBankAccount, error) {
	if !details.Complete() {
		return nil, ErrIncompleteDetails
	}

	account, err := s.repo.GetByAdminID(adminID)
	if err == repositories.ErrBankAccountNotFound {
		account = &models.AdminBankAccount{
			AdminID:   adminID,
			IsDefault: true,
			IsActive:  true,
			CreatedAt: time.Now(),
		}
	} else if err != nil {
		return nil, err
	}

	account.BankName = details.BankName
	account.BankCode = details.BankCode
	account.AccountNumber = details.AccountNumber
	account.AccountName = details.AccountName

	if err := s.repo.Save(account); err != nil {
		return nil, err
	}
	return account, nil
}
