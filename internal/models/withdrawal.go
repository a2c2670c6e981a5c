package models

import "time"

// WithdrawalStatus is the closed status set of an admin withdrawal. The only
// legal moves are pending→processing/cancelled and processing→completed/failed
// (the latter pair driven by gateway reconciliation).
type WithdrawalStatus string

const (
	WithdrawalPending    WithdrawalStatus = "pending"
	WithdrawalProcessing WithdrawalStatus = "processing"
	WithdrawalCompleted  WithdrawalStatus = "completed"
	WithdrawalFailed     WithdrawalStatus = "failed"
	WithdrawalCancelled  WithdrawalStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s WithdrawalStatus) Terminal() bool {
	switch s {
	case WithdrawalCompleted, WithdrawalFailed, WithdrawalCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving to target is a legal transition.
func (s WithdrawalStatus) CanTransitionTo(target WithdrawalStatus) bool {
	switch s {
	case WithdrawalPending:
		return target == WithdrawalProcessing || target == WithdrawalCancelled
	case WithdrawalProcessing:
		return target == WithdrawalCompleted || target == WithdrawalFailed
	}
	return false
}

// MinWithdrawalAmount is the smallest payout the gateway accepts, in VND.
const MinWithdrawalAmount int64 = 10000

// AdminWithdrawal is one withdrawal attempt against the aggregated platform
// fee pool. Bank holds a snapshot of the account used; GatewayResponse keeps
// the raw gateway payload for audit.
type AdminWithdrawal struct {
	ID      uint             `gorm:"primarykey" json:"id"`
	AdminID uint             `gorm:"not null;index:idx_withdrawal_admin_created" json:"admin_id"`
	Amount  int64            `gorm:"not null" json:"amount"`
	Bank    BankDetails      `gorm:"embedded;embeddedPrefix:bank_" json:"bank_account"`
	Status  WithdrawalStatus `gorm:"not null;default:'pending';index" json:"status"`

	GatewayOrderCode     string `gorm:"index" json:"gateway_order_code,omitempty"`
	GatewayTransactionID string `json:"gateway_transaction_id,omitempty"`
	GatewayResponse      JSON   `gorm:"type:jsonb" json:"gateway_response,omitempty"`

	Note          string     `json:"note,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"index:idx_withdrawal_admin_created" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
