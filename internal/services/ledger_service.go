package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quickpay/backend/internal/models"
)

// LedgerService owns the balance-conservation invariant: a transfer debits
// the sender, credits the receiver and appends one transfer record inside a
// single database transaction, or leaves everything untouched.
type LedgerService struct {
	db *sql.DB
}

func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{db: db}
}

// TransferResult carries the created record together with both post-transfer
// balances, so callers never need a follow-up read.
type TransferResult struct {
	Record          models.TransferRecord
	SenderBalance   int64
	ReceiverBalance int64
}

// Transfer moves amountStr (a decimal string) from sender to receiver.
// Validation order: amount, account existence, self-transfer, funds; the
// first failure wins and nothing is mutated.
func (s *LedgerService) Transfer(ctx context.Context, senderID, receiverID int, amountStr string) (*TransferResult, error) {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	defer tx.Rollback()

	result, err := s.transferTx(ctx, tx, senderID, receiverID, amount)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return result, nil
}

func (s *LedgerService) transferTx(ctx context.Context, tx *sql.Tx, senderID, receiverID int, amount int64) (*TransferResult, error) {
	if senderID == receiverID {
		// Existence is checked before the self-transfer guard so a
		// nonexistent id still reports ErrUnknownAccount.
		if _, err := s.lockAccount(ctx, tx, senderID); err != nil {
			return nil, err
		}
		return nil, ErrSelfTransfer
	}

	// Lock both rows in ascending id order to prevent deadlocks between
	// opposite-direction transfers.
	firstID, secondID := senderID, receiverID
	if receiverID < senderID {
		firstID, secondID = receiverID, senderID
	}

	first, err := s.lockAccount(ctx, tx, firstID)
	if err != nil {
		return nil, err
	}

	second, err := s.lockAccount(ctx, tx, secondID)
	if err != nil {
		return nil, err
	}

	sender, receiver := first, second
	if firstID != senderID {
		sender, receiver = second, first
	}

	if sender.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	if err := s.updateBalance(ctx, tx, sender.ID, sender.Balance-amount, sender.Version); err != nil {
		return nil, err
	}

	if err := s.updateBalance(ctx, tx, receiver.ID, receiver.Balance+amount, receiver.Version); err != nil {
		return nil, err
	}

	record := models.TransferRecord{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
		Status:     models.TransferCompleted,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.appendRecord(ctx, tx, record); err != nil {
		return nil, err
	}

	return &TransferResult{
		Record:          record,
		SenderBalance:   sender.Balance - amount,
		ReceiverBalance: receiver.Balance + amount,
	}, nil
}

func (s *LedgerService) lockAccount(ctx context.Context, tx *sql.Tx, accountID int) (*models.Account, error) {
	var account models.Account
	err := tx.QueryRowContext(ctx, `
		SELECT id, display_name, balance, version, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE`, accountID).
		Scan(&account.ID, &account.DisplayName, &account.Balance, &account.Version, &account.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrUnknownAccount
	}
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return &account, nil
}

func (s *LedgerService) updateBalance(ctx context.Context, tx *sql.Tx, accountID int, newBalance int64, version int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		newBalance, time.Now(), accountID, version)

	if err != nil {
		return &PersistenceError{Err: err}
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return &PersistenceError{Err: err}
	}

	if rowsAffected == 0 {
		return &PersistenceError{Err: fmt.Errorf("optimistic lock failed for account %d", accountID)}
	}

	return nil
}

func (s *LedgerService) appendRecord(ctx context.Context, tx *sql.Tx, record models.TransferRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transfers (id, sender_id, receiver_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID, record.SenderID, record.ReceiverID, record.Amount, record.Status, record.CreatedAt)

	if err != nil {
		return &PersistenceError{Err: err}
	}

	return nil
}

// GetBalance reads the latest committed balance for an account.
func (s *LedgerService) GetBalance(ctx context.Context, accountID int) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)

	if err == sql.ErrNoRows {
		return 0, ErrUnknownAccount
	}
	if err != nil {
		return 0, &PersistenceError{Err: err}
	}

	return balance, nil
}

// ListOtherAccounts returns every account except the given one, ordered by
// display name. Used to populate the recipient-selection surface.
func (s *LedgerService) ListOtherAccounts(ctx context.Context, excludingID int) ([]models.Recipient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name
		FROM accounts
		WHERE id != $1
		ORDER BY display_name ASC`, excludingID)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	defer rows.Close()

	recipients := []models.Recipient{}
	for rows.Next() {
		var r models.Recipient
		if err := rows.Scan(&r.ID, &r.DisplayName); err != nil {
			return nil, &PersistenceError{Err: err}
		}
		recipients = append(recipients, r)
	}

	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return recipients, nil
}

// GetHistory returns all transfers where the account is sender or receiver,
// newest first, each tagged Sent or Received.
func (s *LedgerService) GetHistory(ctx context.Context, accountID int) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.sender_id, t.receiver_id, t.amount, t.status, t.created_at,
		       s.display_name AS sender_name,
		       r.display_name AS receiver_name,
		       CASE WHEN t.sender_id = $1 THEN 'Sent' ELSE 'Received' END AS direction
		FROM transfers t
		JOIN accounts s ON t.sender_id = s.id
		JOIN accounts r ON t.receiver_id = r.id
		WHERE t.sender_id = $1 OR t.receiver_id = $1
		ORDER BY t.created_at DESC`, accountID)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		err := rows.Scan(
			&e.ID, &e.SenderID, &e.ReceiverID, &e.Amount, &e.Status, &e.CreatedAt,
			&e.SenderName, &e.ReceiverName, &e.Direction,
		)
		if err != nil {
			return nil, &PersistenceError{Err: err}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return entries, nil
}
