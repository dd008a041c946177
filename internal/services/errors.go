package services

import (
	"errors"
	"fmt"
)

// Transfer validation errors. All are detected before any mutation; a caller
// receiving one of these is guaranteed both balances are unchanged.
var (
	// ErrInvalidAmount indicates the amount did not parse as a positive
	// decimal with cent granularity.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrUnknownAccount indicates the sender or receiver does not exist.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrSelfTransfer indicates sender and receiver are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")
	// ErrInsufficientFunds indicates the sender balance is below the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// PersistenceError marks a storage-layer failure. The enclosing database
// transaction is rolled back, so the account store is left exactly as it was
// before the call.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
