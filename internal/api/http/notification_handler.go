package http

import (
	"net/http"

	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/service"
)

type NotificationHandler struct {
	notificationSvc service.NotificationService
}

func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	page, pageSize := pagination(r)
	notes, count, err := h.notificationSvc.GetNotifications(r.Context(), actor.ID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Notification]{Items: notes, TotalCount: count})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	id, ok := pathInt32(w, r, "id")
	if !ok {
		return
	}
	if err := h.notificationSvc.MarkAsRead(r.Context(), actor.ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
