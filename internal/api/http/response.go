package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}

type errorBody struct {
	Error *domain.Error `json:"error"`
}

// writeError maps engine error kinds onto HTTP status codes and returns the
// full domain error (kind, entity, id, status) so UIs can render a message.
func writeError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: &domain.Error{Message: "internal error"}})
		return
	}
	writeJSON(w, statusForKind(de.Kind), errorBody{Error: de})
}

// writeBadRequest reports malformed input (unparseable body, bad date format).
func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: &domain.Error{Message: msg}})
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrUnauthorized:
		return http.StatusForbidden
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrInvalidRefundAmount:
		return http.StatusBadRequest
	case domain.ErrInvalidTransition, domain.ErrBlockedByActiveAppointment,
		domain.ErrSelfBookingDenied, domain.ErrNotRefundable,
		domain.ErrNotEligible, domain.ErrDuplicatePayment:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

type listResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int32 `json:"totalCount"`
}
