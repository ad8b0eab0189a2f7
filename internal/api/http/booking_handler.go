package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"realty-booking-engine/internal/clock"
	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/service"
)

type BookingHandler struct {
	bookingSvc service.BookingService
	clk        clock.Clock
}

func NewBookingHandler(bookingSvc service.BookingService, clk clock.Clock) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc, clk: clk}
}

func (h *BookingHandler) CanBook(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	buyerID := queryInt32(r, "buyerId")
	listingID := queryInt32(r, "listingId")
	if listingID == 0 {
		writeBadRequest(w, "listingId is required")
		return
	}
	if buyerID == 0 || actor.Role != domain.RoleAdmin {
		buyerID = actor.ID
	}

	check, err := h.bookingSvc.CanBook(r.Context(), buyerID, listingID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

type createAppointmentRequest struct {
	BuyerID   int32                     `json:"buyerId"` // only honored for admins
	ListingID int32                     `json:"listingId"`
	Date      string                    `json:"date"`
	Time      string                    `json:"time"`
	Purpose   domain.AppointmentPurpose `json:"purpose"`
	Notes     string                    `json:"notes"`
}

func (h *BookingHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	buyerID := actor.ID
	if actor.Role == domain.RoleAdmin && req.BuyerID != 0 {
		buyerID = req.BuyerID
	}

	appt, err := h.bookingSvc.CreateAppointment(r.Context(), actor.ID, actor.Role, buyerID, req.ListingID, req.Date, req.Time, req.Purpose, req.Notes)
	if err != nil {
		if domain.KindOf(err) == "" {
			writeBadRequest(w, err.Error())
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(appt))
}

type transitionRequest struct {
	TargetStatus domain.AppointmentStatus `json:"targetStatus"`
}

func (h *BookingHandler) TransitionAppointment(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	id, ok := pathInt32(w, r, "id")
	if !ok {
		return
	}
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	appt, err := h.bookingSvc.TransitionAppointment(r.Context(), id, actor.ID, actor.Role, req.TargetStatus)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(appt))
}

func (h *BookingHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	id, ok := pathInt32(w, r, "id")
	if !ok {
		return
	}
	appt, err := h.bookingSvc.GetAppointment(r.Context(), actor.ID, actor.Role, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(appt))
}

func (h *BookingHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	page, pageSize := pagination(r)
	appts, count, err := h.bookingSvc.ListAppointments(r.Context(), actor.ID, actor.Role,
		queryInt32(r, "buyerId"), queryInt32(r, "listingId"), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]*appointmentJSON, len(appts))
	for i := range appts {
		views[i] = h.view(&appts[i])
	}
	writeJSON(w, http.StatusOK, listResponse[*appointmentJSON]{Items: views, TotalCount: count})
}

// appointmentJSON decorates the stored appointment with the server-derived
// presentation fields so UIs never recompute them.
type appointmentJSON struct {
	*domain.Appointment
	StatusColor string `json:"statusColor"`
	IsOutdated  bool   `json:"isOutdated"`
}

func (h *BookingHandler) view(a *domain.Appointment) *appointmentJSON {
	return &appointmentJSON{Appointment: a, StatusColor: a.StatusColor(), IsOutdated: a.IsOutdated(h.clk.Now())}
}

func pathInt32(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 32)
	if err != nil || v <= 0 {
		writeBadRequest(w, "invalid "+name)
		return 0, false
	}
	return int32(v), true
}

func queryInt32(r *http.Request, name string) int32 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 32)
	return int32(v)
}

func pagination(r *http.Request) (int32, int32) {
	page := queryInt32(r, "page")
	if page < 1 {
		page = 1
	}
	pageSize := queryInt32(r, "pageSize")
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
