package audit

import (
	"encoding/json"
	"log"
	"time"
)

type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	EventType  string    `json:"event_type"`
	TransferID string    `json:"transfer_id"`
	AccountID  int       `json:"account_id,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	Status     string    `json:"status"`
	Details    any       `json:"details,omitempty"`
}

// Logger writes one JSON line per ledger event. Transfer outcomes, success
// and failure both, always leave an audit trail.
type Logger struct{}

func NewLogger() *Logger {
	return &Logger{}
}

func (a *Logger) LogTransfer(transferID string, senderID, receiverID int, amount int64, status string) {
	event := Event{
		Timestamp:  time.Now(),
		EventType:  "TRANSFER",
		TransferID: transferID,
		Amount:     amount,
		Status:     status,
		Details: map[string]int{
			"sender_id":   senderID,
			"receiver_id": receiverID,
		},
	}
	a.log(event)
}

func (a *Logger) LogError(transferID string, accountID int, err error) {
	event := Event{
		Timestamp:  time.Now(),
		EventType:  "ERROR",
		TransferID: transferID,
		AccountID:  accountID,
		Status:     "FAILED",
		Details:    map[string]string{"error": err.Error()},
	}
	a.log(event)
}

func (a *Logger) log(event Event) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
