package ledger

import "errors"

var (
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientBalance  = errors.New("insufficient available balance")
	ErrFeePoolExhausted     = errors.New("platform fee pool exhausted")
	ErrAlreadySettled       = errors.New("booking already settled")
	ErrBookingNotSettleable = errors.New("booking is not eligible for settlement")
	ErrUnknownTransaction   = errors.New("unknown transaction type")
)
