package dispute

import "carepay/internal/models"

// DisputeSLADays is the advisory processing deadline stamped at creation.
const DisputeSLADays = 7

// Timeline actions
const (
	actionCreated       = "dispute_created"
	actionResponded     = "dispute_responded"
	actionWithdrawn     = "dispute_withdrawn"
	actionAssigned      = "dispute_assigned"
	actionDecided       = "decision_made"
	actionStatusChanged = "status_changed"
	actionEvidenceAdded = "evidence_added"
	actionRefundStarted = "refund_processing_started"
	actionRefundDone    = "refund_completed"
	actionRefundFailed  = "refund_failed"
)

// EvidenceInput is one attachment submitted with a dispute or response.
type EvidenceInput struct {
	Kind        string `json:"kind"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// CreateInput carries the complainant's filing.
type CreateInput struct {
	BookingID           uint                  `json:"booking_id"`
	DisputeType         string                `json:"dispute_type"`
	Severity            string                `json:"severity"`
	Title               string                `json:"title"`
	Description         string                `json:"description"`
	Evidence            []EvidenceInput       `json:"evidence"`
	RequestedResolution string                `json:"requested_resolution"`
	RequestedAmount     int64                 `json:"requested_amount"`
	RefundBankInfo      models.RefundBankInfo `json:"refund_bank_info"`
}

// DecideInput carries the admin ruling.
type DecideInput struct {
	Decision           string   `json:"decision"`
	Resolution         string   `json:"resolution"`
	RefundAmount       int64    `json:"refund_amount"`
	CompensationAmount int64    `json:"compensation_amount"`
	Actions            []string `json:"actions"`
	Notes              string   `json:"notes"`
}

// RefundApproved reports whether the ruling carries a refund to pay out.
func (in DecideInput) RefundApproved() bool {
	if in.RefundAmount <= 0 {
		return false
	}
	return in.Decision == models.DecisionFavorComplainant || in.Decision == models.DecisionPartialFavor
}
