package http

import (
	"encoding/json"
	"net/http"

	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/service"
)

type RefundHandler struct {
	refundSvc service.RefundService
}

func NewRefundHandler(refundSvc service.RefundService) *RefundHandler {
	return &RefundHandler{refundSvc: refundSvc}
}

type createRefundRequestBody struct {
	PaymentID       int32             `json:"paymentId"`
	RefundType      domain.RefundType `json:"refundType"`
	RequestedAmount int64             `json:"requestedAmount"`
	Reason          string            `json:"reason"`
}

func (h *RefundHandler) CreateRefundRequest(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	var req createRefundRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.PaymentID <= 0 {
		writeBadRequest(w, "paymentId is required")
		return
	}

	rr, err := h.refundSvc.CreateRefundRequest(r.Context(), actor.ID, req.PaymentID, req.RefundType, req.RequestedAmount, req.Reason)
	if err != nil {
		if domain.KindOf(err) == "" {
			writeBadRequest(w, err.Error())
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rr)
}

type decideRequestBody struct {
	Decision          domain.RefundRequestStatus `json:"decision"`
	AdminNotes        string                     `json:"adminNotes"`
	AdminRefundAmount *int64                     `json:"adminRefundAmount"`
}

func (h *RefundHandler) Decide(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	id, ok := pathInt32(w, r, "id")
	if !ok {
		return
	}
	var req decideRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	rr, err := h.refundSvc.Decide(r.Context(), actor.ID, actor.Role, id, req.Decision, req.AdminNotes, req.AdminRefundAmount)
	if err != nil {
		if domain.KindOf(err) == "" {
			writeBadRequest(w, err.Error())
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rr)
}

type appealRequestBody struct {
	AppealReason string `json:"appealReason"`
	AppealText   string `json:"appealText"`
}

func (h *RefundHandler) Appeal(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	id, ok := pathInt32(w, r, "id")
	if !ok {
		return
	}
	var req appealRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	rr, err := h.refundSvc.Appeal(r.Context(), actor.ID, id, req.AppealReason, req.AppealText)
	if err != nil {
		if domain.KindOf(err) == "" {
			writeBadRequest(w, err.Error())
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rr)
}

type reopenRequestBody struct {
	ReopenReason string `json:"reopenReason"`
}

func (h *RefundHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	id, ok := pathInt32(w, r, "id")
	if !ok {
		return
	}
	var req reopenRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	rr, err := h.refundSvc.Reopen(r.Context(), actor.ID, actor.Role, id, req.ReopenReason)
	if err != nil {
		if domain.KindOf(err) == "" {
			writeBadRequest(w, err.Error())
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rr)
}

// refundRequestDetail carries the request together with its full decision
// history so admin UIs can render the audit trail in one call.
type refundRequestDetail struct {
	*domain.RefundRequest
	Decisions []domain.RefundDecision `json:"decisions"`
}

func (h *RefundHandler) GetRefundRequest(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	id, ok := pathInt32(w, r, "id")
	if !ok {
		return
	}
	rr, decisions, err := h.refundSvc.GetRefundRequest(r.Context(), actor.ID, actor.Role, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refundRequestDetail{RefundRequest: rr, Decisions: decisions})
}

func (h *RefundHandler) ListRefundRequests(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	page, pageSize := pagination(r)
	requests, count, err := h.refundSvc.ListRefundRequests(r.Context(), actor.Role, r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.RefundRequest]{Items: requests, TotalCount: count})
}
