package http

import (
	"encoding/json"
	"net/http"

	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/service"
)

type PaymentHandler struct {
	paymentSvc service.PaymentService
}

func NewPaymentHandler(paymentSvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

type attachPaymentRequest struct {
	Amount   int64           `json:"amount"`
	Currency domain.Currency `json:"currency"`
	Gateway  string          `json:"gateway"`
}

func (h *PaymentHandler) AttachPayment(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	appointmentID, ok := pathInt32(w, r, "id")
	if !ok {
		return
	}
	var req attachPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	payment, err := h.paymentSvc.AttachPayment(r.Context(), actor.ID, actor.Role, appointmentID, req.Amount, req.Currency, req.Gateway)
	if err != nil {
		if domain.KindOf(err) == "" {
			writeBadRequest(w, err.Error())
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	id, ok := pathInt32(w, r, "id")
	if !ok {
		return
	}
	payment, err := h.paymentSvc.CompletePayment(r.Context(), actor.ID, actor.Role, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

type refundRequest struct {
	RefundAmount int64  `json:"refundAmount"`
	Reason       string `json:"reason"`
}

// Refund is the direct admin refund endpoint. It bypasses the refund-request
// queue entirely.
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	id, ok := pathInt32(w, r, "id")
	if !ok {
		return
	}
	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	payment, err := h.paymentSvc.Refund(r.Context(), actor.ID, actor.Role, id, req.RefundAmount, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	id, ok := pathInt32(w, r, "id")
	if !ok {
		return
	}
	payment, err := h.paymentSvc.GetPayment(r.Context(), actor.ID, actor.Role, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}
