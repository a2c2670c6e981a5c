package ledger

import "time"

const (
	// PlatformFeePercent is the platform's cut of every settled booking.
	PlatformFeePercent = 15

	// SettlementDelay is how long after payment a booking's funds stay
	// pending before they move to the caregiver's available balance.
	SettlementDelay = 24 * time.Hour
)
