package models

import "time"

// Wallet is the per-caregiver ledger head. All amounts are VND minor units.
// AvailableBalance is derived from completed transactions only; the running
// totals are maintained atomically with every transaction append.
type Wallet struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	CaregiverID       uint      `gorm:"uniqueIndex;not null" json:"caregiver_id"`
	AvailableBalance  int64     `gorm:"not null;default:0" json:"available_balance"`
	TotalEarnings     int64     `gorm:"not null;default:0" json:"total_earnings"`
	TotalPlatformFees int64     `gorm:"not null;default:0" json:"total_platform_fees"`
	PendingAmount     int64     `gorm:"not null;default:0" json:"pending_amount"`
	LastUpdated       time.Time `json:"last_updated"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
