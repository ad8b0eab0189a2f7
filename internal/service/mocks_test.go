package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"realty-booking-engine/internal/domain"
)

type MockAppointmentRepo struct {
	mock.Mock
}

func (m *MockAppointmentRepo) Create(ctx context.Context, appt *domain.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *MockAppointmentRepo) GetByID(ctx context.Context, id int32) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepo) Update(ctx context.Context, appt *domain.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *MockAppointmentRepo) ListByBuyerAndListing(ctx context.Context, buyerID, listingID int32) ([]domain.Appointment, error) {
	args := m.Called(ctx, buyerID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepo) List(ctx context.Context, buyerID, listingID int32, status string, page, pageSize int32) ([]domain.Appointment, int32, error) {
	args := m.Called(ctx, buyerID, listingID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Appointment), args.Get(1).(int32), args.Error(2)
}

func (m *MockAppointmentRepo) ListBySeller(ctx context.Context, sellerID int32, status string, page, pageSize int32) ([]domain.Appointment, int32, error) {
	args := m.Called(ctx, sellerID, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Appointment), args.Get(1).(int32), args.Error(2)
}

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepo) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepo) GetByAppointmentID(ctx context.Context, appointmentID int32) (*domain.Payment, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepo) Update(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type MockRefundRequestRepo struct {
	mock.Mock
}

func (m *MockRefundRequestRepo) Create(ctx context.Context, req *domain.RefundRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRefundRequestRepo) GetByID(ctx context.Context, id int32) (*domain.RefundRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundRequest), args.Error(1)
}

func (m *MockRefundRequestRepo) Update(ctx context.Context, req *domain.RefundRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRefundRequestRepo) GetOpenByPaymentID(ctx context.Context, paymentID int32) (*domain.RefundRequest, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundRequest), args.Error(1)
}

func (m *MockRefundRequestRepo) List(ctx context.Context, status string, page, pageSize int32) ([]domain.RefundRequest, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.RefundRequest), args.Get(1).(int32), args.Error(2)
}

func (m *MockRefundRequestRepo) AppendDecision(ctx context.Context, d *domain.RefundDecision) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockRefundRequestRepo) ListDecisions(ctx context.Context, requestID int32) ([]domain.RefundDecision, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RefundDecision), args.Error(1)
}

type MockListingRepo struct {
	mock.Mock
}

func (m *MockListingRepo) GetByID(ctx context.Context, id int32) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int32), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendAppointmentRequested(ctx context.Context, sellerEmail, buyerName, listingTitle, date, timeOfDay string) error {
	args := m.Called(ctx, sellerEmail, buyerName, listingTitle, date, timeOfDay)
	return args.Error(0)
}

func (m *MockEmailService) SendAppointmentDecision(ctx context.Context, buyerEmail, listingTitle string, status domain.AppointmentStatus) error {
	args := m.Called(ctx, buyerEmail, listingTitle, status)
	return args.Error(0)
}

func (m *MockEmailService) SendAppointmentCancelled(ctx context.Context, email, cancelledBy, listingTitle string) error {
	args := m.Called(ctx, email, cancelledBy, listingTitle)
	return args.Error(0)
}

func (m *MockEmailService) SendAppointmentReminder(ctx context.Context, email, listingTitle, date, timeOfDay string) error {
	args := m.Called(ctx, email, listingTitle, date, timeOfDay)
	return args.Error(0)
}

func (m *MockEmailService) SendPaymentReceipt(ctx context.Context, buyerEmail string, amount int64, currency domain.Currency, reference string) error {
	args := m.Called(ctx, buyerEmail, amount, currency, reference)
	return args.Error(0)
}

func (m *MockEmailService) SendRefundUpdate(ctx context.Context, userEmail string, status domain.RefundRequestStatus, amount int64, notes string) error {
	args := m.Called(ctx, userEmail, status, amount, notes)
	return args.Error(0)
}
