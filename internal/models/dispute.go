package models

import "time"

// Dispute type kinds
const (
	DisputeTypeServiceQuality   = "service_quality"
	DisputeTypePaymentIssue     = "payment_issue"
	DisputeTypeNoShow           = "no_show"
	DisputeTypeLateArrival      = "late_arrival"
	DisputeTypeEarlyDeparture   = "early_departure"
	DisputeTypeUnprofessional   = "unprofessional_behavior"
	DisputeTypeSafetyConcern    = "safety_concern"
	DisputeTypeBreachOfContract = "breach_of_agreement"
	DisputeTypeHarassment       = "harassment"
	DisputeTypeTheftOrDamage    = "theft_or_damage"
	DisputeTypeOther            = "other"
)

// Severity levels
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Requested resolution kinds
const (
	ResolutionRefund            = "refund"
	ResolutionPartialRefund     = "partial_refund"
	ResolutionCompensation      = "compensation"
	ResolutionApology           = "apology"
	ResolutionAccountWarning    = "account_warning"
	ResolutionAccountSuspension = "account_suspension"
	ResolutionOther             = "other"
)

// Priority levels, derived from severity at creation
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Admin decision kinds
const (
	DecisionFavorComplainant = "favor_complainant"
	DecisionFavorRespondent  = "favor_respondent"
	DecisionPartialFavor     = "partial_favor"
	DecisionNoFault          = "no_fault"
	DecisionMutualFault      = "mutual_fault"
)

// Admin decision action tags
const (
	ActionWarningIssued    = "warning_issued"
	ActionAccountSuspended = "account_suspended"
	ActionRefundProcessed  = "refund_processed"
	ActionCompensationPaid = "compensation_paid"
	ActionNoAction         = "no_action"
	ActionOther            = "other"
)

// Evidence kinds
const (
	EvidenceImage    = "image"
	EvidenceVideo    = "video"
	EvidenceDocument = "document"
	EvidenceAudio    = "audio"
)

// RefundBankInfo is the complainant's payout destination for an approved
// refund. Required at creation when the requested resolution is a refund
// variant and the complainant is the care-seeker.
type RefundBankInfo struct {
	AccountName   string `json:"account_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	BankBranch    string `json:"bank_branch,omitempty"`
}

// Complete reports whether the mandatory refund fields are present.
func (r RefundBankInfo) Complete() bool {
	return r.AccountName != "" && r.AccountNumber != "" && r.BankName != ""
}

// AdminDecision records the admin ruling on a dispute.
type AdminDecision struct {
	Decision           string      `json:"decision,omitempty"`
	Resolution         string      `json:"resolution,omitempty"`
	RefundAmount       int64       `json:"refund_amount,omitempty"`
	CompensationAmount int64       `json:"compensation_amount,omitempty"`
	Actions            StringSlice `gorm:"type:jsonb" json:"actions,omitempty"`
	DecidedBy          *uint       `json:"decided_by,omitempty"`
	DecidedAt          *time.Time  `json:"decided_at,omitempty"`
	Notes              string      `json:"notes,omitempty"`
}

// Satisfaction is one party's post-closure 1-5 rating of the resolution.
// Settable once; RatedAt doubles as the "already rated" marker.
type Satisfaction struct {
	Rating   int        `json:"rating,omitempty"`
	Feedback string     `json:"feedback,omitempty"`
	RatedAt  *time.Time `json:"rated_at,omitempty"`
}

// Dispute is a complaint one booking participant raises against the other.
// Rows are never deleted; terminal statuses stamp ClosedAt and freeze the
// case except for satisfaction ratings.
type Dispute struct {
	ID            uint `gorm:"primarykey" json:"id"`
	ComplainantID uint `gorm:"not null;index:idx_dispute_complainant_created" json:"complainant_id"`
	RespondentID  uint `gorm:"not null;index:idx_dispute_respondent_created" json:"respondent_id"`
	BookingID     uint `gorm:"not null;index" json:"booking_id"`

	DisputeType string `gorm:"not null;index:idx_dispute_type_status" json:"dispute_type"`
	Severity    string `gorm:"not null" json:"severity"`
	Title       string `gorm:"not null;size:200" json:"title"`
	Description string `gorm:"not null;size:3000" json:"description"`

	RequestedResolution string         `gorm:"not null" json:"requested_resolution"`
	RequestedAmount     int64          `json:"requested_amount,omitempty"`
	RefundBankInfo      RefundBankInfo `gorm:"embedded;embeddedPrefix:refund_" json:"refund_bank_info,omitempty"`

	RespondentMessage     string     `gorm:"size:2000" json:"respondent_message,omitempty"`
	RespondentRespondedAt *time.Time `json:"respondent_responded_at,omitempty"`

	Status     DisputeStatus `gorm:"not null;default:'pending';index:idx_dispute_status_created;index:idx_dispute_type_status" json:"status"`
	AssignedTo *uint         `gorm:"index" json:"assigned_to,omitempty"`
	Decision   AdminDecision `gorm:"embedded;embeddedPrefix:decision_" json:"admin_decision,omitempty"`
	Priority   string        `gorm:"not null;default:'medium';index" json:"priority"`
	Deadline   *time.Time    `json:"deadline,omitempty"`
	ClosedAt   *time.Time    `json:"closed_at,omitempty"`

	ComplainantSatisfaction Satisfaction `gorm:"embedded;embeddedPrefix:complainant_sat_" json:"complainant_satisfaction,omitempty"`
	RespondentSatisfaction  Satisfaction `gorm:"embedded;embeddedPrefix:respondent_sat_" json:"respondent_satisfaction,omitempty"`

	Evidence      []DisputeEvidence      `gorm:"foreignKey:DisputeID" json:"evidence,omitempty"`
	Timeline      []DisputeTimelineEntry `gorm:"foreignKey:DisputeID" json:"timeline,omitempty"`
	InternalNotes []DisputeInternalNote  `gorm:"foreignKey:DisputeID" json:"internal_notes,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_dispute_complainant_created;index:idx_dispute_respondent_created;index:idx_dispute_status_created" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisputeEvidence is one attachment on a dispute, submitted by either party.
// Insert-only.
type DisputeEvidence struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	DisputeID   uint      `gorm:"not null;index" json:"dispute_id"`
	Kind        string    `gorm:"not null" json:"kind"`
	URL         string    `gorm:"not null" json:"url"`
	Description string    `json:"description,omitempty"`
	UploadedBy  uint      `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// DisputeTimelineEntry is one immutable audit record of a dispute action.
// Rows are never updated or removed.
type DisputeTimelineEntry struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	DisputeID   uint      `gorm:"not null;index" json:"dispute_id"`
	Action      string    `gorm:"not null" json:"action"`
	Description string    `json:"description,omitempty"`
	PerformedBy uint      `json:"performed_by"`
	PerformedAt time.Time `json:"performed_at"`
}

// DisputeInternalNote is an admin-only note on a dispute. Insert-only, never
// returned to non-admin callers.
type DisputeInternalNote struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	DisputeID uint      `gorm:"not null;index" json:"dispute_id"`
	Note      string    `gorm:"not null" json:"note"`
	AddedBy   uint      `json:"added_by"`
	AddedAt   time.Time `json:"added_at"`
}

// ValidDisputeType reports whether t is a known dispute kind.
func ValidDisputeType(t string) bool {
	switch t {
	case DisputeTypeServiceQuality, DisputeTypePaymentIssue, DisputeTypeNoShow,
		DisputeTypeLateArrival, DisputeTypeEarlyDeparture, DisputeTypeUnprofessional,
		DisputeTypeSafetyConcern, DisputeTypeBreachOfContract, DisputeTypeHarassment,
		DisputeTypeTheftOrDamage, DisputeTypeOther:
		return true
	}
	return false
}

// ValidSeverity reports whether s is a known severity level.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidResolution reports whether r is a known requested resolution.
func ValidResolution(r string) bool {
	switch r {
	case ResolutionRefund, ResolutionPartialRefund, ResolutionCompensation,
		ResolutionApology, ResolutionAccountWarning, ResolutionAccountSuspension,
		ResolutionOther:
		return true
	}
	return false
}

// RefundRequested reports whether r asks for money back.
func RefundRequested(r string) bool {
	return r == ResolutionRefund || r == ResolutionPartialRefund
}

// ValidDecision reports whether d is a known admin decision kind.
func ValidDecision(d string) bool {
	switch d {
	case DecisionFavorComplainant, DecisionFavorRespondent, DecisionPartialFavor,
		DecisionNoFault, DecisionMutualFault:
		return true
	}
	return false
}

// ValidEvidenceKind reports whether k is a known evidence kind.
func ValidEvidenceKind(k string) bool {
	switch k {
	case EvidenceImage, EvidenceVideo, EvidenceDocument, EvidenceAudio:
		return true
	}
	return false
}
