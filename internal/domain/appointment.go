package domain

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending           AppointmentStatus = "pending"
	AppointmentStatusAccepted          AppointmentStatus = "accepted"
	AppointmentStatusRejected          AppointmentStatus = "rejected"
	AppointmentStatusCancelledByBuyer  AppointmentStatus = "cancelledByBuyer"
	AppointmentStatusCancelledBySeller AppointmentStatus = "cancelledBySeller"
	AppointmentStatusCompleted         AppointmentStatus = "completed"
)

type AppointmentPurpose string

const (
	AppointmentPurposeBuy  AppointmentPurpose = "buy"
	AppointmentPurposeRent AppointmentPurpose = "rent"
)

// MaxReinitiations is the number of buyer-initiated cancellations after which
// a cancelled appointment stops blocking re-booking of the same listing.
const MaxReinitiations = 2

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Appointment is a viewing/purchase appointment for a listing. Date and Time
// are stored in UTC. Rows are never deleted; cancelled and rejected
// appointments are retained for the booking history checks.
type Appointment struct {
	ID                     int32              `json:"id"`
	BuyerID                int32              `json:"buyerId"`
	ListingID              int32              `json:"listingId"`
	SellerID               int32              `json:"sellerId"`
	Date                   string             `json:"date"` // YYYY-MM-DD
	Time                   string             `json:"time"` // HH:MM, 24h; empty means whole day
	Status                 AppointmentStatus  `json:"status"`
	Purpose                AppointmentPurpose `json:"purpose"`
	Notes                  string             `json:"notes,omitempty"`
	BuyerReinitiationCount int32              `json:"buyerReinitiationCount"`
	CreatedOn              time.Time          `json:"createdOn"`
	UpdatedOn              time.Time          `json:"updatedOn"`
}

func ValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusAccepted, AppointmentStatusRejected,
		AppointmentStatusCancelledByBuyer, AppointmentStatusCancelledBySeller, AppointmentStatusCompleted:
		return true
	}
	return false
}

// IsOutdated reports whether the appointment's scheduled date/time has already
// passed relative to now. Outdated appointments never block a new booking.
// An unparseable date is treated as not outdated so that it keeps blocking.
func (a *Appointment) IsOutdated(now time.Time) bool {
	d, err := time.ParseInLocation(DateLayout, a.Date, time.UTC)
	if err != nil {
		return false
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		return true
	}
	if !d.Equal(today) || a.Time == "" {
		return false
	}
	t, err := time.Parse(TimeLayout, a.Time)
	if err != nil {
		return false
	}
	return t.Hour()*60+t.Minute() < now.Hour()*60+now.Minute()
}

// Blocks reports whether this appointment prevents the buyer from creating a
// new appointment for the same listing: it must not be outdated and must be
// either still open (pending/accepted) or a buyer-initiated cancellation with
// reinitiations remaining.
func (a *Appointment) Blocks(now time.Time) bool {
	if a.IsOutdated(now) {
		return false
	}
	switch a.Status {
	case AppointmentStatusPending, AppointmentStatusAccepted:
		return true
	case AppointmentStatusCancelledByBuyer:
		return a.BuyerReinitiationCount < MaxReinitiations
	}
	return false
}

// StatusColor is the presentation color for the status, computed here once so
// consuming UIs don't re-derive it.
func (a *Appointment) StatusColor() string {
	switch a.Status {
	case AppointmentStatusPending:
		return "yellow"
	case AppointmentStatusAccepted:
		return "green"
	case AppointmentStatusRejected, AppointmentStatusCancelledByBuyer, AppointmentStatusCancelledBySeller:
		return "red"
	case AppointmentStatusCompleted:
		return "blue"
	}
	return "gray"
}

// BookingCheck is the result of the conflict resolver.
type BookingCheck struct {
	Allowed             bool         `json:"allowed"`
	BlockingAppointment *Appointment `json:"blockingAppointment,omitempty"`
}
