package repository

import (
	"context"

	"realty-booking-engine/internal/domain"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id int32) (*domain.Appointment, error)
	Update(ctx context.Context, appt *domain.Appointment) error
	// ListByBuyerAndListing returns the buyer's full appointment history for a
	// listing, newest first. The conflict resolver scans all of it.
	ListByBuyerAndListing(ctx context.Context, buyerID, listingID int32) ([]domain.Appointment, error)
	List(ctx context.Context, buyerID, listingID int32, status string, page, pageSize int32) ([]domain.Appointment, int32, error)
	ListBySeller(ctx context.Context, sellerID int32, status string, page, pageSize int32) ([]domain.Appointment, int32, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int32) (*domain.Payment, error)
	// GetByAppointmentID returns nil, nil when the appointment has no payment.
	GetByAppointmentID(ctx context.Context, appointmentID int32) (*domain.Payment, error)
	Update(ctx context.Context, p *domain.Payment) error
}

type RefundRequestRepository interface {
	Create(ctx context.Context, req *domain.RefundRequest) error
	GetByID(ctx context.Context, id int32) (*domain.RefundRequest, error)
	Update(ctx context.Context, req *domain.RefundRequest) error
	// GetOpenByPaymentID returns the payment's pending or approved request, or
	// nil, nil when there is none.
	GetOpenByPaymentID(ctx context.Context, paymentID int32) (*domain.RefundRequest, error)
	List(ctx context.Context, status string, page, pageSize int32) ([]domain.RefundRequest, int32, error)

	// Append-only audit trail; entries are never updated or deleted.
	AppendDecision(ctx context.Context, d *domain.RefundDecision) error
	ListDecisions(ctx context.Context, requestID int32) ([]domain.RefundDecision, error)
}

type ListingRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Listing, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
