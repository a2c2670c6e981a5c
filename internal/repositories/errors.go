package repositories

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrDuplicateWallet     = errors.New("wallet already exists")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrBankAccountNotFound = errors.New("bank account not found")
	ErrDisputeNotFound     = errors.New("dispute not found")

	// ErrInsufficientFeePool is returned by CreateReserved when the
	// requested amount exceeds the unreserved platform fee pool.
	ErrInsufficientFeePool = errors.New("insufficient available balance")
)
