package models

// DisputeStatus is the closed state set of a dispute. Transitions are
// validated through CanTransitionTo; anything not listed below is illegal.
type DisputeStatus string

const (
	DisputePending          DisputeStatus = "pending"
	DisputeUnderReview      DisputeStatus = "under_review"
	DisputeAwaitingResponse DisputeStatus = "awaiting_response"
	DisputeInvestigating    DisputeStatus = "investigating"
	DisputeMediation        DisputeStatus = "mediation"
	DisputeRefundApproved   DisputeStatus = "refund_approved"
	DisputeRefundProcessing DisputeStatus = "refund_processing"
	DisputeRefundCompleted  DisputeStatus = "refund_completed"
	DisputeResolved         DisputeStatus = "resolved"
	DisputeRejected         DisputeStatus = "rejected"
	DisputeWithdrawn        DisputeStatus = "withdrawn"
	DisputeEscalated        DisputeStatus = "escalated"
)

var disputeTransitions = map[DisputeStatus][]DisputeStatus{
	DisputePending:          {DisputeUnderReview, DisputeWithdrawn, DisputeRejected},
	DisputeUnderReview:      {DisputeAwaitingResponse, DisputeInvestigating, DisputeMediation, DisputeRefundApproved, DisputeResolved, DisputeRejected, DisputeEscalated, DisputeWithdrawn},
	DisputeAwaitingResponse: {DisputeUnderReview, DisputeInvestigating, DisputeMediation, DisputeRefundApproved, DisputeResolved, DisputeRejected, DisputeEscalated, DisputeWithdrawn},
	DisputeInvestigating:    {DisputeMediation, DisputeRefundApproved, DisputeResolved, DisputeRejected, DisputeEscalated, DisputeWithdrawn},
	DisputeMediation:        {DisputeRefundApproved, DisputeResolved, DisputeRejected, DisputeEscalated, DisputeWithdrawn},
	DisputeEscalated:        {DisputeInvestigating, DisputeMediation, DisputeRefundApproved, DisputeResolved, DisputeRejected, DisputeWithdrawn},
	DisputeRefundApproved:   {DisputeRefundProcessing},
	DisputeRefundProcessing: {DisputeRefundCompleted},
}

// CanTransitionTo reports whether moving to target is a legal transition.
func (s DisputeStatus) CanTransitionTo(target DisputeStatus) bool {
	for _, t := range disputeTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Terminal reports whether the dispute is closed in this status.
func (s DisputeStatus) Terminal() bool {
	switch s {
	case DisputeResolved, DisputeRejected, DisputeWithdrawn, DisputeRefundCompleted:
		return true
	}
	return false
}

// Rateable reports whether the parties may rate the resolution. A withdrawn
// case closed without a ruling and cannot be rated.
func (s DisputeStatus) Rateable() bool {
	switch s {
	case DisputeResolved, DisputeRejected, DisputeRefundCompleted:
		return true
	}
	return false
}

// CanAcceptResponse reports whether the respondent may still submit a
// response in this status.
func (s DisputeStatus) CanAcceptResponse() bool {
	switch s {
	case DisputePending, DisputeUnderReview, DisputeAwaitingResponse:
		return true
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s DisputeStatus) Valid() bool {
	switch s {
	case DisputePending, DisputeUnderReview, DisputeAwaitingResponse, DisputeInvestigating,
		DisputeMediation, DisputeRefundApproved, DisputeRefundProcessing, DisputeRefundCompleted,
		DisputeResolved, DisputeRejected, DisputeWithdrawn, DisputeEscalated:
		return true
	}
	return false
}
