package http

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"

	"realty-booking-engine/internal/security"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Booking      *BookingHandler
	Payment      *PaymentHandler
	Refund       *RefundHandler
	Notification *NotificationHandler
}

// NewRouter wires all routes. Everything under /api except /api/auth requires
// a valid access token.
func NewRouter(h Handlers, tokens security.TokenManager, db *sql.DB) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", healthHandler(db)).Methods(http.MethodGet)

	// Public auth endpoints.
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", h.Auth.Refresh).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(Authenticate(tokens))

	// Booking and appointment lifecycle.
	api.HandleFunc("/appointments/can-book", h.Booking.CanBook).Methods(http.MethodGet)
	api.HandleFunc("/appointments", h.Booking.CreateAppointment).Methods(http.MethodPost)
	api.HandleFunc("/appointments", h.Booking.ListAppointments).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{id:[0-9]+}", h.Booking.GetAppointment).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{id:[0-9]+}/status", h.Booking.TransitionAppointment).Methods(http.MethodPost)

	// Payments.
	api.HandleFunc("/appointments/{id:[0-9]+}/payment", h.Payment.AttachPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id:[0-9]+}", h.Payment.GetPayment).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id:[0-9]+}/complete", h.Payment.CompletePayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id:[0-9]+}/refund", h.Payment.Refund).Methods(http.MethodPost)

	// Refund requests.
	api.HandleFunc("/refund-requests", h.Refund.CreateRefundRequest).Methods(http.MethodPost)
	api.HandleFunc("/refund-requests", h.Refund.ListRefundRequests).Methods(http.MethodGet)
	api.HandleFunc("/refund-requests/{id:[0-9]+}", h.Refund.GetRefundRequest).Methods(http.MethodGet)
	api.HandleFunc("/refund-requests/{id:[0-9]+}/decide", h.Refund.Decide).Methods(http.MethodPost)
	api.HandleFunc("/refund-requests/{id:[0-9]+}/appeal", h.Refund.Appeal).Methods(http.MethodPost)
	api.HandleFunc("/refund-requests/{id:[0-9]+}/reopen", h.Refund.Reopen).Methods(http.MethodPost)

	// Notifications.
	api.HandleFunc("/notifications", h.Notification.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", h.Notification.MarkAsRead).Methods(http.MethodPost)

	return r
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
