package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/quickpay/backend/internal/services"
)

type PayLinkHandler struct {
	service   *services.PayLinkService
	validator *services.ValidationHelper
}

func NewPayLinkHandler(service *services.PayLinkService) *PayLinkHandler {
	return &PayLinkHandler{
		service:   service,
		validator: services.NewValidationHelper(),
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

// GeneratePayLink creates a payment-request QR code
// @Summary Generate payment link
// @Description Generate a one-shot QR payment request for the authenticated caller with a fixed amount
// @Tags paylinks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{amount=string} true "Payment link request"
// @Success 200 {object} object{code=string,image=string}
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /paylinks [post]
func (h *PayLinkHandler) GeneratePayLink(w http.ResponseWriter, r *http.Request) {
	receiverID, ok := callerID(r)
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		Amount string `json:"amount" validate:"required"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	code, image, err := h.service.GeneratePayLink(r.Context(), receiverID, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			services.SendErrorResponse(w, "Invalid amount", http.StatusBadRequest, nil)
			return
		}
		services.SendErrorResponse(w, "Failed to generate payment link", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"code":    code,
		"image":   image,
	})
}

// RedeemPayLink resolves a payment-request code
// @Summary Redeem payment link
// @Description Resolve a scanned code into the receiver and amount for a prefilled transfer; one-shot
// @Tags paylinks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{code=string} true "Redeem request"
// @Success 200 {object} object{receiverId=int,amount=string}
// @Failure 400 {object} services.ErrorResponse
// @Router /paylinks/redeem [post]
func (h *PayLinkHandler) RedeemPayLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code" validate:"required"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	receiverID, amount, err := h.service.RedeemPayLink(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, services.ErrPayLinkNotFound) {
			services.SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
			return
		}
		services.SendErrorResponse(w, "Failed to redeem payment link", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":    true,
		"receiverId": receiverID,
		"amount":     services.FormatAmount(amount),
	})
}
