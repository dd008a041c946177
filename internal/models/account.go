package models

import "time"

// Account holds a user's balance. Balances are stored in cents and are
// mutated only by the ledger's transfer operation.
type Account struct {
	ID          int       `json:"id" db:"id"`
	DisplayName string    `json:"displayName" db:"display_name"`
	Balance     int64     `json:"balance" db:"balance"` // in cents
	Version     int       `json:"version" db:"version"` // for optimistic locking
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Recipient is the reduced account view shown on the send-money surface.
type Recipient struct {
	ID          int    `json:"id" db:"id"`
	DisplayName string `json:"displayName" db:"display_name"`
}
