package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/quickpay/backend/internal/audit"
	"github.com/quickpay/backend/internal/models"
)

// TransferService exposes the ledger over HTTP. The caller identity always
// comes from the authenticated request context and is passed explicitly into
// every ledger call.
type TransferService struct {
	db        *sql.DB
	ledger    *LedgerService
	audit     *audit.Logger
	validator *ValidationHelper
}

type transferView struct {
	ID         string `json:"id"`
	SenderID   int    `json:"senderId"`
	ReceiverID int    `json:"receiverId"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

type historyView struct {
	transferView
	SenderName   string `json:"senderName"`
	ReceiverName string `json:"receiverName"`
	Direction    string `json:"direction"`
}

func NewTransferService(db *sql.DB) *TransferService {
	return &TransferService{
		db:        db,
		ledger:    NewLedgerService(db),
		audit:     audit.NewLogger(),
		validator: NewValidationHelper(),
	}
}

func callerID(r *http.Request) (int, bool) {
	v, ok := r.Context().Value("userID").(string)
	if !ok || v == "" {
		return 0, false
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return id, true
}

// CreateTransfer moves money from the authenticated caller to a receiver
// @Summary Send money
// @Description Atomically debit the caller and credit the receiver
// @Tags transfers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param transfer body object{receiverId=int,amount=string} true "Transfer request"
// @Success 201 {object} object{success=bool,transfer=object,senderBalance=string,receiverBalance=string}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /transfers [post]
func (ts *TransferService) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	senderID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		ReceiverID int    `json:"receiverId" validate:"required,gt=0"`
		Amount     string `json:"amount" validate:"required"`
	}

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	log.Printf("[TRANSFER] Request: sender=%d, receiver=%d, amount=%s", senderID, req.ReceiverID, req.Amount)

	result, err := ts.ledger.Transfer(r.Context(), senderID, req.ReceiverID, req.Amount)
	if err != nil {
		ts.audit.LogError("", senderID, err)
		status, message := transferFailure(err)
		log.Printf("[TRANSFER] Failed: sender=%d, receiver=%d: %v", senderID, req.ReceiverID, err)
		SendErrorResponse(w, message, status, nil)
		return
	}

	rec := result.Record
	ts.audit.LogTransfer(rec.ID, rec.SenderID, rec.ReceiverID, rec.Amount, rec.Status)
	log.Printf("[TRANSFER] Completed: %s, sender=%d, receiver=%d, amount=%s",
		rec.ID, rec.SenderID, rec.ReceiverID, FormatAmount(rec.Amount))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"success":         true,
		"transfer":        newTransferView(rec),
		"senderBalance":   FormatAmount(result.SenderBalance),
		"receiverBalance": FormatAmount(result.ReceiverBalance),
	})
}

// transferFailure maps the ledger error taxonomy onto HTTP statuses.
func transferFailure(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return http.StatusBadRequest, "Invalid amount"
	case errors.Is(err, ErrSelfTransfer):
		return http.StatusBadRequest, "Cannot transfer to the same account"
	case errors.Is(err, ErrUnknownAccount):
		return http.StatusNotFound, "Account not found"
	case errors.Is(err, ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "Insufficient funds"
	default:
		return http.StatusInternalServerError, "Failed to process transfer"
	}
}

// GetHistory returns the caller's transfer history
// @Summary Transfer history
// @Description All transfers the caller sent or received, newest first
// @Tags transfers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{history=[]object,count=int}
// @Failure 401 {object} ErrorResponse
// @Router /transfers/history [get]
func (ts *TransferService) GetHistory(w http.ResponseWriter, r *http.Request) {
	accountID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	entries, err := ts.ledger.GetHistory(r.Context(), accountID)
	if err != nil {
		log.Printf("[TRANSFER] Failed to fetch history for account %d: %v", accountID, err)
		SendErrorResponse(w, "Failed to fetch history", http.StatusInternalServerError, nil)
		return
	}

	views := make([]historyView, 0, len(entries))
	for _, e := range entries {
		views = append(views, historyView{
			transferView: newTransferView(e.TransferRecord),
			SenderName:   e.SenderName,
			ReceiverName: e.ReceiverName,
			Direction:    e.Direction,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"history": views,
		"count":   len(views),
	})
}

// GetBalance returns the caller's current balance
// @Summary Balance enquiry
// @Description Latest committed balance for the authenticated caller
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{accountId=int,balance=string}
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /accounts/balance [get]
func (ts *TransferService) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	balance, err := ts.ledger.GetBalance(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrUnknownAccount) {
			SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		} else {
			log.Printf("[TRANSFER] Failed to fetch balance for account %d: %v", accountID, err)
			SendErrorResponse(w, "Failed to fetch balance", http.StatusInternalServerError, nil)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"accountId": accountID,
		"balance":   FormatAmount(balance),
	})
}

// ListRecipients returns all accounts except the caller's
// @Summary List recipients
// @Description Accounts the caller can send money to, ordered by name
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{recipients=[]models.Recipient,count=int}
// @Failure 401 {object} ErrorResponse
// @Router /accounts/recipients [get]
func (ts *TransferService) ListRecipients(w http.ResponseWriter, r *http.Request) {
	accountID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	recipients, err := ts.ledger.ListOtherAccounts(r.Context(), accountID)
	if err != nil {
		log.Printf("[TRANSFER] Failed to list recipients for account %d: %v", accountID, err)
		SendErrorResponse(w, "Failed to fetch recipients", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"recipients": recipients,
		"count":      len(recipients),
	})
}

func newTransferView(rec models.TransferRecord) transferView {
	return transferView{
		ID:         rec.ID,
		SenderID:   rec.SenderID,
		ReceiverID: rec.ReceiverID,
		Amount:     FormatAmount(rec.Amount),
		Status:     rec.Status,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
	}
}
