package service

import (
	"context"
	"fmt"

	"realty-booking-engine/internal/clock"
	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/logger"
	"realty-booking-engine/internal/repository"
)

type refundService struct {
	requestRepo repository.RefundRequestRepository
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	noteRepo    repository.NotificationRepository
	emailSvc    EmailService
	clk         clock.Clock
	locks       *LockTable
}

func NewRefundService(
	requestRepo repository.RefundRequestRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	clk clock.Clock,
	locks *LockTable,
) RefundService {
	return &refundService{
		requestRepo: requestRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		noteRepo:    noteRepo,
		emailSvc:    emailSvc,
		clk:         clk,
		locks:       locks,
	}
}

func requestKey(requestID int32) string {
	return fmt.Sprintf("refund-request:%d", requestID)
}

func (s *refundService) CreateRefundRequest(ctx context.Context, userID, paymentID int32, refundType domain.RefundType, requestedAmount int64, reason string) (*domain.RefundRequest, error) {
	if refundType != domain.RefundTypeFull && refundType != domain.RefundTypePartial {
		return nil, fmt.Errorf("invalid refund type %q", refundType)
	}

	// Serialize against concurrent requests for the same payment so a payment
	// never accumulates two open requests.
	unlock := s.locks.Lock(fmt.Sprintf("refund-request-create:%d", paymentID))
	defer unlock()

	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !p.Refundable() {
		return nil, domain.NewError(domain.ErrNotEligible, "payment", p.ID, string(p.Status), "payment is not eligible for a refund request")
	}

	if refundType == domain.RefundTypeFull {
		requestedAmount = p.RemainingRefundable()
	}
	if requestedAmount <= 0 || requestedAmount > p.RemainingRefundable() {
		return nil, domain.NewError(domain.ErrInvalidRefundAmount, "payment", p.ID, string(p.Status),
			fmt.Sprintf("requested amount must be between 1 and %d", p.RemainingRefundable()))
	}

	open, err := s.requestRepo.GetOpenByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, domain.NewError(domain.ErrNotEligible, "refundRequest", open.ID, string(open.Status), "payment already has an open refund request")
	}

	req := &domain.RefundRequest{
		PaymentID:       paymentID,
		UserID:          userID,
		Type:            refundType,
		RequestedAmount: requestedAmount,
		Reason:          reason,
		Status:          domain.RefundRequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, req.ID, domain.RefundActionRequested, userID, reason, &requestedAmount)
	return req, nil
}

func (s *refundService) Decide(ctx context.Context, adminID int32, actorRole domain.Role, requestID int32, decision domain.RefundRequestStatus, adminNotes string, adminRefundAmount *int64) (*domain.RefundRequest, error) {
	if actorRole != domain.RoleAdmin {
		return nil, domain.Errorf(domain.ErrUnauthorized, "only admins may adjudicate refund requests")
	}
	if decision != domain.RefundRequestStatusApproved && decision != domain.RefundRequestStatusRejected {
		return nil, domain.Errorf(domain.ErrInvalidTransition, "decision must be approved or rejected, got %q", decision)
	}

	unlock := s.locks.Lock(requestKey(requestID))
	defer unlock()

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RefundRequestStatusPending {
		return nil, domain.NewError(domain.ErrInvalidTransition, "refundRequest", req.ID, string(req.Status), "only pending requests can be adjudicated")
	}

	now := s.clk.Now()
	if decision == domain.RefundRequestStatusRejected {
		req.Status = domain.RefundRequestStatusRejected
		req.AdminNotes = adminNotes
		req.ProcessedBy = &adminID
		req.ProcessedAt = &now
		if err := s.requestRepo.Update(ctx, req); err != nil {
			return nil, err
		}
		s.appendAudit(ctx, req.ID, domain.RefundActionRejected, adminID, adminNotes, nil)
		s.notifyUser(ctx, req, 0)
		return req, nil
	}

	// The payment lock is taken before the read so a concurrent direct refund
	// cannot slip in between validation and execution.
	payUnlock := s.locks.Lock(paymentKey(req.PaymentID))
	defer payUnlock()

	p, err := s.paymentRepo.GetByID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	amount := req.RequestedAmount
	if adminRefundAmount != nil {
		amount = *adminRefundAmount
	}
	// The approval is validated against the same rules executeRefund enforces
	// BEFORE anything is persisted: a failing amount (zero, or above what a
	// concurrent direct refund left refundable) must leave the request pending,
	// never stranded in approved where no Decide or Reopen can reach it.
	if !p.Refundable() {
		return nil, domain.NewError(domain.ErrNotRefundable, "payment", p.ID, string(p.Status), "payment is not refundable")
	}
	if amount <= 0 || amount > p.RemainingRefundable() {
		return nil, domain.NewError(domain.ErrInvalidRefundAmount, "payment", p.ID, string(p.Status),
			fmt.Sprintf("refund amount must be between 1 and %d", p.RemainingRefundable()))
	}

	req.Status = domain.RefundRequestStatusApproved
	req.AdminNotes = adminNotes
	req.AdminRefundAmount = &amount
	req.ProcessedBy = &adminID
	req.ProcessedAt = &now
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, req.ID, domain.RefundActionApproved, adminID, adminNotes, &amount)

	// The money moves through the same invariant-checked path as a direct
	// admin refund. Its checks were satisfied above under the same payment
	// lock, so only a storage failure can surface here.
	if err := executeRefund(ctx, s.paymentRepo, s.clk, p, amount, fmt.Sprintf("refund request %d: %s", req.ID, req.Reason)); err != nil {
		return nil, err
	}

	req.Status = domain.RefundRequestStatusProcessed
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, req.ID, domain.RefundActionProcessed, adminID, "", &amount)
	s.notifyUser(ctx, req, amount)
	return req, nil
}

func (s *refundService) Appeal(ctx context.Context, userID, requestID int32, appealReason, appealText string) (*domain.RefundRequest, error) {
	unlock := s.locks.Lock(requestKey(requestID))
	defer unlock()

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, domain.NewError(domain.ErrUnauthorized, "refundRequest", req.ID, string(req.Status), "only the requesting user may appeal")
	}
	// Appeals attach advisory context to a rejection; they are not a state
	// transition and the status stays rejected.
	if req.Status != domain.RefundRequestStatusRejected {
		return nil, domain.NewError(domain.ErrInvalidTransition, "refundRequest", req.ID, string(req.Status), "only rejected requests can be appealed")
	}

	now := s.clk.Now()
	req.IsAppealed = true
	req.AppealReason = appealReason
	req.AppealText = appealText
	req.AppealedAt = &now
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, req.ID, domain.RefundActionAppealed, userID, appealReason, nil)
	return req, nil
}

func (s *refundService) Reopen(ctx context.Context, adminID int32, actorRole domain.Role, requestID int32, reopenReason string) (*domain.RefundRequest, error) {
	if actorRole != domain.RoleAdmin {
		return nil, domain.Errorf(domain.ErrUnauthorized, "only admins may reopen refund requests")
	}

	unlock := s.locks.Lock(requestKey(requestID))
	defer unlock()

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RefundRequestStatusRejected {
		return nil, domain.NewError(domain.ErrInvalidTransition, "refundRequest", req.ID, string(req.Status), "only rejected requests can be reopened")
	}

	now := s.clk.Now()
	req.Status = domain.RefundRequestStatusPending
	req.CaseReopened = true
	req.CaseReopenedAt = &now
	req.ReopenReason = reopenReason
	// Prior decision fields are cleared for the new adjudication round; the
	// decision itself stays in the append-only audit trail.
	req.AdminNotes = ""
	req.AdminRefundAmount = nil
	req.ProcessedBy = nil
	req.ProcessedAt = nil
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, req.ID, domain.RefundActionReopened, adminID, reopenReason, nil)
	s.notifyUser(ctx, req, 0)
	return req, nil
}

func (s *refundService) GetRefundRequest(ctx context.Context, actorID int32, actorRole domain.Role, requestID int32) (*domain.RefundRequest, []domain.RefundDecision, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if actorRole != domain.RoleAdmin && actorID != req.UserID {
		return nil, nil, domain.NewError(domain.ErrUnauthorized, "refundRequest", req.ID, string(req.Status), "not a party to this refund request")
	}
	decisions, err := s.requestRepo.ListDecisions(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	return req, decisions, nil
}

func (s *refundService) ListRefundRequests(ctx context.Context, actorRole domain.Role, status string, page, pageSize int32) ([]domain.RefundRequest, int32, error) {
	if actorRole != domain.RoleAdmin {
		return nil, 0, domain.Errorf(domain.ErrUnauthorized, "only admins may list refund requests")
	}
	return s.requestRepo.List(ctx, status, page, pageSize)
}

func (s *refundService) appendAudit(ctx context.Context, requestID int32, action domain.RefundDecisionAction, actorID int32, notes string, amount *int64) {
	d := &domain.RefundDecision{
		RequestID: requestID,
		Action:    action,
		ActorID:   actorID,
		Notes:     notes,
		Amount:    amount,
	}
	if err := s.requestRepo.AppendDecision(ctx, d); err != nil {
		logger.Warn("failed to append refund audit entry", "request_id", requestID, "action", action, "error", err)
	}
}

func (s *refundService) notifyUser(ctx context.Context, req *domain.RefundRequest, amount int64) {
	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		logger.Warn("skipping refund notification", "request_id", req.ID, "error", err)
		return
	}

	_ = s.emailSvc.SendRefundUpdate(ctx, user.Email, req.Status, amount, req.AdminNotes)

	note := &domain.Notification{
		UserID:  user.ID,
		Title:   "Refund Request Update",
		Message: fmt.Sprintf("Your refund request #%d is now %s", req.ID, req.Status),
		Attributes: map[string]string{
			"type":       "REFUND_REQUEST_" + string(req.Status),
			"request_id": fmt.Sprintf("%d", req.ID),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("failed to record notification", "request_id", req.ID, "error", err)
	}
}
