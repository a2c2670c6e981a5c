package models

import "time"

// Wallet transaction kinds
const (
	TransactionTypeEarning     = "earning"
	TransactionTypePlatformFee = "platform_fee"
	TransactionTypeRefund      = "refund"
	TransactionTypeDeposit     = "deposit"
	TransactionTypeWithdrawal  = "withdrawal"
)

// Wallet transaction statuses
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// WalletTransaction is one immutable entry of a wallet's append-only log.
// Amount is signed by kind: earnings are positive, platform fees and refunds
// negative. Entries are never edited once completed.
type WalletTransaction struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	WalletID    uint   `gorm:"not null;index" json:"wallet_id"`
	BookingID   *uint  `gorm:"index" json:"booking_id,omitempty"`
	Type        string `gorm:"not null" json:"type"`
	Amount      int64  `gorm:"not null" json:"amount"`
	Description string `json:"description"`
	Status      string `gorm:"not null;default:'pending'" json:"status"`

	// Gateway correlation for deposit/withdrawal entries.
	GatewayOrderCode     string `json:"gateway_order_code,omitempty"`
	GatewayTransactionID string `json:"gateway_transaction_id,omitempty"`

	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
