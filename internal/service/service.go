package service

import (
	"context"

	"realty-booking-engine/internal/domain"
)

type BookingService interface {
	// CanBook runs the conflict check only; it never mutates state.
	CanBook(ctx context.Context, buyerID, listingID int32) (*domain.BookingCheck, error)
	// CreateAppointment books for buyerID. Non-admin actors may only book for
	// themselves; admins may book on behalf of a designated buyer, in which
	// case the conflict check runs against that buyer's history.
	CreateAppointment(ctx context.Context, actorID int32, actorRole domain.Role, buyerID, listingID int32, date, timeOfDay string, purpose domain.AppointmentPurpose, notes string) (*domain.Appointment, error)
	TransitionAppointment(ctx context.Context, appointmentID, actorID int32, actorRole domain.Role, target domain.AppointmentStatus) (*domain.Appointment, error)
	GetAppointment(ctx context.Context, actorID int32, actorRole domain.Role, appointmentID int32) (*domain.Appointment, error)
	ListAppointments(ctx context.Context, actorID int32, actorRole domain.Role, buyerID, listingID int32, status string, page, pageSize int32) ([]domain.Appointment, int32, error)
}

type PaymentService interface {
	AttachPayment(ctx context.Context, actorID int32, actorRole domain.Role, appointmentID int32, amount int64, currency domain.Currency, gateway string) (*domain.Payment, error)
	// CompletePayment is restricted to the paying buyer or an admin acting on
	// a gateway callback.
	CompletePayment(ctx context.Context, actorID int32, actorRole domain.Role, paymentID int32) (*domain.Payment, error)
	// Refund is the direct admin refund path.
	Refund(ctx context.Context, adminID int32, actorRole domain.Role, paymentID int32, refundAmount int64, reason string) (*domain.Payment, error)
	GetPayment(ctx context.Context, actorID int32, actorRole domain.Role, paymentID int32) (*domain.Payment, error)
}

type RefundService interface {
	CreateRefundRequest(ctx context.Context, userID, paymentID int32, refundType domain.RefundType, requestedAmount int64, reason string) (*domain.RefundRequest, error)
	// Decide adjudicates a pending request. On approval it also executes the
	// refund and advances the request to processed.
	Decide(ctx context.Context, adminID int32, actorRole domain.Role, requestID int32, decision domain.RefundRequestStatus, adminNotes string, adminRefundAmount *int64) (*domain.RefundRequest, error)
	Appeal(ctx context.Context, userID, requestID int32, appealReason, appealText string) (*domain.RefundRequest, error)
	Reopen(ctx context.Context, adminID int32, actorRole domain.Role, requestID int32, reopenReason string) (*domain.RefundRequest, error)
	GetRefundRequest(ctx context.Context, actorID int32, actorRole domain.Role, requestID int32) (*domain.RefundRequest, []domain.RefundDecision, error)
	ListRefundRequests(ctx context.Context, actorRole domain.Role, status string, page, pageSize int32) ([]domain.RefundRequest, int32, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, string, *domain.User, error) // access, refresh
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendAppointmentRequested(ctx context.Context, sellerEmail, buyerName, listingTitle, date, timeOfDay string) error
	SendAppointmentDecision(ctx context.Context, buyerEmail, listingTitle string, status domain.AppointmentStatus) error
	SendAppointmentCancelled(ctx context.Context, email, cancelledBy, listingTitle string) error
	SendAppointmentReminder(ctx context.Context, email, listingTitle, date, timeOfDay string) error
	SendPaymentReceipt(ctx context.Context, buyerEmail string, amount int64, currency domain.Currency, reference string) error
	SendRefundUpdate(ctx context.Context, userEmail string, status domain.RefundRequestStatus, amount int64, notes string) error
}
