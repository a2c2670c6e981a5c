package models

import "time"

// BankDetails is the payout destination tuple the gateway needs. It is
// embedded as an immutable snapshot on withdrawal records so later edits to
// the registered account never rewrite history.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// Complete reports whether all four required fields are present.
func (d BankDetails) Complete() bool {
	return d.BankName != "" && d.BankCode != "" && d.AccountNumber != "" && d.AccountName != ""
}

// AdminBankAccount is the single active payout destination per admin.
// Upserted by owner, never hard-deleted in normal flow.
type AdminBankAccount struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	AdminID       uint      `gorm:"uniqueIndex;not null" json:"admin_id"`
	BankName      string    `gorm:"not null" json:"bank_name"`
	BankCode      string    `gorm:"not null" json:"bank_code"`
	AccountNumber string    `gorm:"not null" json:"account_number"`
	AccountName   string    `gorm:"not null" json:"account_name"`
	IsDefault     bool      `gorm:"not null;default:true" json:"is_default"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Details returns the snapshot copy used on withdrawal records.
func (a *AdminBankAccount) Details() BankDetails {
	return BankDetails{
		BankName:      a.BankName,
		BankCode:      a.BankCode,
		AccountNumber: a.AccountNumber,
		AccountName:   a.AccountName,
	}
}
