package gateway

import "carepay/internal/models"

// PayoutKind selects the order code prefix for outbound transfers.
type PayoutKind string

const (
	PayoutKindAdmin     PayoutKind = "ADMIN_WD"
	PayoutKindCaregiver PayoutKind = "CG_WD"
)

// Gateway order statuses
const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusPaid       = "PAID"
	OrderStatusCancelled  = "CANCELLED"
)

// PaymentResult carries the gateway's answer to a payment or payout request.
// Gateway declines and transport failures both land here with Success unset;
// the caller decides how to record them.
type PaymentResult struct {
	Success       bool        `json:"success"`
	OrderCode     string      `json:"order_code,omitempty"`
	TransactionID string      `json:"transaction_id,omitempty"`
	PaymentURL    string      `json:"payment_url,omitempty"`
	QRCode        string      `json:"qr_code,omitempty"`
	Status        string      `json:"status,omitempty"`
	Error         string      `json:"error,omitempty"`
	Raw           models.JSON `json:"raw,omitempty"`
}

// StatusResult is the answer to a transaction status lookup.
type StatusResult struct {
	Success bool        `json:"success"`
	Status  string      `json:"status,omitempty"`
	Error   string      `json:"error,omitempty"`
	Raw     models.JSON `json:"raw,omitempty"`
}

// PayoutRequest describes one outbound bank transfer.
type PayoutRequest struct {
	Kind        PayoutKind
	Amount      int64
	Description string
	Bank        models.BankDetails
}
