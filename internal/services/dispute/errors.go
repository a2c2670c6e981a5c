package dispute

import "errors"

var (
	ErrNotFound           = errors.New("dispute not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrNotParticipant     = errors.New("user is not a participant of this booking")
	ErrSelfDispute        = errors.New("respondent cannot be the complainant")
	ErrNotRespondent      = errors.New("only the respondent can respond")
	ErrNotComplainant     = errors.New("only the complainant can withdraw")
	ErrNotAuthorized      = errors.New("not authorized to view this dispute")
	ErrInvalidTransition  = errors.New("illegal status transition")
	ErrResponseClosed     = errors.New("dispute no longer accepts a response")
	ErrRefundInfoRequired = errors.New("refund bank info is required for refund requests")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrAlreadyRated       = errors.New("resolution already rated")
	ErrNotClosed          = errors.New("dispute is not closed yet")
	ErrNotRefundable      = errors.New("dispute has no approved refund")
	ErrFeePoolExhausted   = errors.New("refund exceeds the collected platform fees")
	ErrRefundFailed       = errors.New("refund payout failed")
	ErrInvalidInput       = errors.New("invalid dispute input")
	ErrDisputeClosed      = errors.New("dispute is closed")
)
