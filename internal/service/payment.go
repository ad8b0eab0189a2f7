package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"realty-booking-engine/internal/clock"
	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/logger"
	"realty-booking-engine/internal/repository"
)

type paymentService struct {
	paymentRepo repository.PaymentRepository
	apptRepo    repository.AppointmentRepository
	userRepo    repository.UserRepository
	emailSvc    EmailService
	clk         clock.Clock
	locks       *LockTable
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	apptRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	clk clock.Clock,
	locks *LockTable,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		apptRepo:    apptRepo,
		userRepo:    userRepo,
		emailSvc:    emailSvc,
		clk:         clk,
		locks:       locks,
	}
}

func paymentKey(paymentID int32) string {
	return fmt.Sprintf("payment:%d", paymentID)
}

func (s *paymentService) AttachPayment(ctx context.Context, actorID int32, actorRole domain.Role, appointmentID int32, amount int64, currency domain.Currency, gateway string) (*domain.Payment, error) {
	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if actorRole != domain.RoleAdmin && actorID != appt.BuyerID {
		return nil, domain.NewError(domain.ErrUnauthorized, "appointment", appointmentID, string(appt.Status), "only the booking buyer or an admin may attach a payment")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	if !domain.ValidCurrency(currency) {
		return nil, fmt.Errorf("unsupported currency %q", currency)
	}

	// One payment per appointment; serialize the exists-then-create region.
	unlock := s.locks.Lock(fmt.Sprintf("payment-attach:%d", appointmentID))
	defer unlock()

	existing, err := s.paymentRepo.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewError(domain.ErrDuplicatePayment, "payment", existing.ID, string(existing.Status), "appointment already has a payment")
	}

	p := &domain.Payment{
		AppointmentID: appointmentID,
		Amount:        amount,
		Currency:      currency,
		Gateway:       gateway,
		Reference:     uuid.NewString(),
		Status:        domain.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *paymentService) CompletePayment(ctx context.Context, actorID int32, actorRole domain.Role, paymentID int32) (*domain.Payment, error) {
	unlock := s.locks.Lock(paymentKey(paymentID))
	defer unlock()

	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	appt, err := s.apptRepo.GetByID(ctx, p.AppointmentID)
	if err != nil {
		return nil, err
	}
	if actorRole != domain.RoleAdmin && actorID != appt.BuyerID {
		return nil, domain.NewError(domain.ErrUnauthorized, "payment", p.ID, string(p.Status), "only the paying buyer or an admin may complete a payment")
	}
	if p.Status != domain.PaymentStatusPending {
		return nil, domain.NewError(domain.ErrInvalidTransition, "payment", p.ID, string(p.Status), "only pending payments can be completed")
	}

	now := s.clk.Now()
	p.Status = domain.PaymentStatusCompleted
	p.CompletedAt = &now
	if err := s.paymentRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.sendReceipt(ctx, p, appt)
	return p, nil
}

func (s *paymentService) Refund(ctx context.Context, adminID int32, actorRole domain.Role, paymentID int32, refundAmount int64, reason string) (*domain.Payment, error) {
	if actorRole != domain.RoleAdmin {
		return nil, domain.Errorf(domain.ErrUnauthorized, "only admins may issue refunds")
	}

	unlock := s.locks.Lock(paymentKey(paymentID))
	defer unlock()

	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := executeRefund(ctx, s.paymentRepo, s.clk, p, refundAmount, reason); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *paymentService) GetPayment(ctx context.Context, actorID int32, actorRole domain.Role, paymentID int32) (*domain.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if actorRole == domain.RoleAdmin {
		return p, nil
	}
	appt, err := s.apptRepo.GetByID(ctx, p.AppointmentID)
	if err != nil {
		return nil, err
	}
	if actorID != appt.BuyerID && actorID != appt.SellerID {
		return nil, domain.NewError(domain.ErrUnauthorized, "payment", paymentID, string(p.Status), "not a party to this payment")
	}
	return p, nil
}

// executeRefund applies an invariant-checked refund to p and persists it. Both
// the direct admin refund and the approved-request path go through here, and
// both serialize on the payment key first, so refundAmount can never overshoot
// the payment amount. The payment is only mutated after all checks pass.
func executeRefund(ctx context.Context, repo repository.PaymentRepository, clk clock.Clock, p *domain.Payment, refundAmount int64, reason string) error {
	if !p.Refundable() {
		return domain.NewError(domain.ErrNotRefundable, "payment", p.ID, string(p.Status), "payment is not refundable")
	}
	if refundAmount <= 0 || refundAmount > p.RemainingRefundable() {
		return domain.NewError(domain.ErrInvalidRefundAmount, "payment", p.ID, string(p.Status),
			fmt.Sprintf("refund amount must be between 1 and %d", p.RemainingRefundable()))
	}

	now := clk.Now()
	p.RefundAmount += refundAmount
	p.RefundedAt = &now
	p.RefundReason = reason
	p.RecomputeStatus()
	return repo.Update(ctx, p)
}

func (s *paymentService) sendReceipt(ctx context.Context, p *domain.Payment, appt *domain.Appointment) {
	buyer, err := s.userRepo.GetByID(ctx, appt.BuyerID)
	if err != nil {
		logger.Warn("skipping payment receipt", "payment_id", p.ID, "error", err)
		return
	}
	_ = s.emailSvc.SendPaymentReceipt(ctx, buyer.Email, p.Amount, p.Currency, p.Reference)
}
