package notification

import "time"

// Routing keys published on the settlement exchange.
const (
	RouteDisputeCreated      = "dispute.created"
	RouteDisputeDecided      = "dispute.decided"
	RouteDisputeRefunded     = "dispute.refunded"
	RouteWithdrawalCompleted = "withdrawal.completed"
	RouteWithdrawalFailed    = "withdrawal.failed"
	RouteBookingSettled      = "booking.settled"
)

// Event is the envelope published for every settlement-domain occurrence.
type Event struct {
	Route      string                 `json:"route"`
	OccurredAt time.Time              `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload"`
}

func NewEvent(route string, payload map[string]interface{}) Event {
	return Event{
		Route:      route,
		OccurredAt: time.Now(),
		Payload:    payload,
	}
}
