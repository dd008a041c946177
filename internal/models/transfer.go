package models

import "time"

// TransferCompleted is the only status a persisted transfer can carry.
// A transfer that does not complete is rolled back and never written.
const TransferCompleted = "Completed"

// History direction tags relative to the queried account.
const (
	DirectionSent     = "Sent"
	DirectionReceived = "Received"
)

// TransferRecord is the immutable historical entry for one completed
// transfer. Written exactly once, in the same database transaction as the
// two balance updates.
type TransferRecord struct {
	ID         string    `json:"id" db:"id"`
	SenderID   int       `json:"senderId" db:"sender_id"`
	ReceiverID int       `json:"receiverId" db:"receiver_id"`
	Amount     int64     `json:"amount" db:"amount"` // in cents
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// HistoryEntry is a TransferRecord joined with counterparty names and
// annotated with the direction relative to the queried account.
type HistoryEntry struct {
	TransferRecord
	SenderName   string `json:"senderName" db:"sender_name"`
	ReceiverName string `json:"receiverName" db:"receiver_name"`
	Direction    string `json:"direction" db:"direction"`
}
