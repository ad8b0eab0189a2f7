package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"realty-booking-engine/internal/clock"
	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/service"
)

func newRefundService(requestRepo *MockRefundRequestRepo, paymentRepo *MockPaymentRepo, userRepo *MockUserRepo, noteRepo *MockNotificationRepo, emailSvc *MockEmailService) service.RefundService {
	return service.NewRefundService(requestRepo, paymentRepo, userRepo, noteRepo, emailSvc, clock.Fixed(testNow), service.NewLockTable())
}

func completedPayment() *domain.Payment {
	return &domain.Payment{ID: 7, AppointmentID: 100, Amount: 50000, Currency: domain.CurrencyINR, Status: domain.PaymentStatusCompleted}
}

func TestRefundService_CreateRefundRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("FullDefaultsToRemaining", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		paymentRepo := new(MockPaymentRepo)
		svc := newRefundService(requestRepo, paymentRepo, new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		paymentRepo.On("GetByID", ctx, int32(7)).Return(completedPayment(), nil).Once()
		requestRepo.On("GetOpenByPaymentID", ctx, int32(7)).Return(nil, nil).Once()
		requestRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.RefundRequest) bool {
			return r.PaymentID == 7 && r.RequestedAmount == 50000 && r.Status == domain.RefundRequestStatusPending
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.RefundRequest).ID = 42
		}).Return(nil).Once()
		requestRepo.On("AppendDecision", ctx, mock.MatchedBy(func(d *domain.RefundDecision) bool {
			return d.RequestID == 42 && d.Action == domain.RefundActionRequested && d.ActorID == 1
		})).Return(nil).Once()

		req, err := svc.CreateRefundRequest(ctx, 1, 7, domain.RefundTypeFull, 0, "changed my mind")
		assert.NoError(t, err)
		assert.Equal(t, int64(50000), req.RequestedAmount)
		requestRepo.AssertExpectations(t)
	})

	t.Run("PartialKeepsRequestedAmount", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		paymentRepo := new(MockPaymentRepo)
		svc := newRefundService(requestRepo, paymentRepo, new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		paymentRepo.On("GetByID", ctx, int32(7)).Return(completedPayment(), nil).Once()
		requestRepo.On("GetOpenByPaymentID", ctx, int32(7)).Return(nil, nil).Once()
		requestRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.RefundRequest) bool {
			return r.RequestedAmount == 20000 && r.Type == domain.RefundTypePartial
		})).Return(nil).Once()
		requestRepo.On("AppendDecision", ctx, mock.Anything).Return(nil).Once()

		_, err := svc.CreateRefundRequest(ctx, 1, 7, domain.RefundTypePartial, 20000, "overcharged")
		assert.NoError(t, err)
		requestRepo.AssertExpectations(t)
	})

	t.Run("PendingPaymentNotEligible", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		paymentRepo := new(MockPaymentRepo)
		svc := newRefundService(requestRepo, paymentRepo, new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		paymentRepo.On("GetByID", ctx, int32(7)).Return(&domain.Payment{ID: 7, Amount: 50000, Status: domain.PaymentStatusPending}, nil).Once()

		_, err := svc.CreateRefundRequest(ctx, 1, 7, domain.RefundTypeFull, 0, "")
		assert.True(t, domain.IsKind(err, domain.ErrNotEligible))
		requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("OpenRequestBlocksSecond", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		paymentRepo := new(MockPaymentRepo)
		svc := newRefundService(requestRepo, paymentRepo, new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		paymentRepo.On("GetByID", ctx, int32(7)).Return(completedPayment(), nil).Once()
		requestRepo.On("GetOpenByPaymentID", ctx, int32(7)).Return(&domain.RefundRequest{ID: 41, Status: domain.RefundRequestStatusPending}, nil).Once()

		_, err := svc.CreateRefundRequest(ctx, 1, 7, domain.RefundTypeFull, 0, "")
		assert.True(t, domain.IsKind(err, domain.ErrNotEligible))
	})

	t.Run("PartialAboveRemainingRejected", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		paymentRepo := new(MockPaymentRepo)
		svc := newRefundService(requestRepo, paymentRepo, new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		paymentRepo.On("GetByID", ctx, int32(7)).Return(completedPayment(), nil).Once()

		_, err := svc.CreateRefundRequest(ctx, 1, 7, domain.RefundTypePartial, 60000, "")
		assert.True(t, domain.IsKind(err, domain.ErrInvalidRefundAmount))
	})
}

func TestRefundService_Decide(t *testing.T) {
	ctx := context.Background()

	pendingRequest := func() *domain.RefundRequest {
		return &domain.RefundRequest{ID: 42, PaymentID: 7, UserID: 1, Type: domain.RefundTypeFull, RequestedAmount: 50000, Reason: "changed my mind", Status: domain.RefundRequestStatusPending}
	}

	t.Run("ApproveExecutesRefundAndProcesses", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		paymentRepo := new(MockPaymentRepo)
		userRepo := new(MockUserRepo)
		noteRepo := new(MockNotificationRepo)
		emailSvc := new(MockEmailService)
		svc := newRefundService(requestRepo, paymentRepo, userRepo, noteRepo, emailSvc)

		p := completedPayment()
		requestRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(), nil).Once()
		paymentRepo.On("GetByID", ctx, int32(7)).Return(p, nil).Once()
		requestRepo.On("Update", ctx, mock.MatchedBy(func(r *domain.RefundRequest) bool {
			return r.Status == domain.RefundRequestStatusApproved && r.ProcessedBy != nil && *r.ProcessedBy == 99
		})).Return(nil).Once()
		paymentRepo.On("Update", ctx, mock.MatchedBy(func(pp *domain.Payment) bool {
			return pp.Status == domain.PaymentStatusRefunded && pp.RefundAmount == 50000
		})).Return(nil).Once()
		requestRepo.On("Update", ctx, mock.MatchedBy(func(r *domain.RefundRequest) bool {
			return r.Status == domain.RefundRequestStatusProcessed
		})).Return(nil).Once()
		requestRepo.On("AppendDecision", ctx, mock.MatchedBy(func(d *domain.RefundDecision) bool {
			return d.Action == domain.RefundActionApproved
		})).Return(nil).Once()
		requestRepo.On("AppendDecision", ctx, mock.MatchedBy(func(d *domain.RefundDecision) bool {
			return d.Action == domain.RefundActionProcessed
		})).Return(nil).Once()
		userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "buyer@test.com"}, nil).Once()
		emailSvc.On("SendRefundUpdate", ctx, "buyer@test.com", domain.RefundRequestStatusProcessed, int64(50000), "ok").Return(nil).Once()
		noteRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		req, err := svc.Decide(ctx, 99, domain.RoleAdmin, 42, domain.RefundRequestStatusApproved, "ok", nil)
		assert.NoError(t, err)
		assert.Equal(t, domain.RefundRequestStatusProcessed, req.Status)
		assert.Equal(t, domain.PaymentStatusRefunded, p.Status)
		requestRepo.AssertExpectations(t)
		paymentRepo.AssertExpectations(t)
	})

	t.Run("AdminOverrideAmount", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		paymentRepo := new(MockPaymentRepo)
		userRepo := new(MockUserRepo)
		noteRepo := new(MockNotificationRepo)
		emailSvc := new(MockEmailService)
		svc := newRefundService(requestRepo, paymentRepo, userRepo, noteRepo, emailSvc)

		p := completedPayment()
		requestRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(), nil).Once()
		paymentRepo.On("GetByID", ctx, int32(7)).Return(p, nil).Once()
		requestRepo.On("Update", ctx, mock.Anything).Return(nil).Twice()
		paymentRepo.On("Update", ctx, mock.Anything).Return(nil).Once()
		requestRepo.On("AppendDecision", ctx, mock.Anything).Return(nil).Twice()
		userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "buyer@test.com"}, nil).Once()
		emailSvc.On("SendRefundUpdate", ctx, "buyer@test.com", domain.RefundRequestStatusProcessed, int64(30000), "partial settlement").Return(nil).Once()
		noteRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		override := int64(30000)
		req, err := svc.Decide(ctx, 99, domain.RoleAdmin, 42, domain.RefundRequestStatusApproved, "partial settlement", &override)
		assert.NoError(t, err)
		assert.Equal(t, int64(30000), *req.AdminRefundAmount)
		assert.Equal(t, domain.PaymentStatusPartiallyRefunded, p.Status)
	})

	t.Run("ZeroOverrideLeavesRequestPending", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		paymentRepo := new(MockPaymentRepo)
		svc := newRefundService(requestRepo, paymentRepo, new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		req := pendingRequest()
		requestRepo.On("GetByID", ctx, int32(42)).Return(req, nil).Once()
		paymentRepo.On("GetByID", ctx, int32(7)).Return(completedPayment(), nil).Once()

		override := int64(0)
		_, err := svc.Decide(ctx, 99, domain.RoleAdmin, 42, domain.RefundRequestStatusApproved, "", &override)
		assert.True(t, domain.IsKind(err, domain.ErrInvalidRefundAmount))
		// A failed approval must not persist anything: the request stays
		// pending and adjudicable, the payment untouched.
		assert.Equal(t, domain.RefundRequestStatusPending, req.Status)
		requestRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		paymentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("AmountAboveRemainingLeavesRequestPending", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		paymentRepo := new(MockPaymentRepo)
		svc := newRefundService(requestRepo, paymentRepo, new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		// A direct partial refund landed while the request sat pending, so the
		// requested amount now exceeds what is left.
		p := completedPayment()
		p.RefundAmount = 40000
		p.Status = domain.PaymentStatusPartiallyRefunded
		req := pendingRequest()
		requestRepo.On("GetByID", ctx, int32(42)).Return(req, nil).Once()
		paymentRepo.On("GetByID", ctx, int32(7)).Return(p, nil).Once()

		_, err := svc.Decide(ctx, 99, domain.RoleAdmin, 42, domain.RefundRequestStatusApproved, "", nil)
		assert.True(t, domain.IsKind(err, domain.ErrInvalidRefundAmount))
		assert.Equal(t, domain.RefundRequestStatusPending, req.Status)
		assert.Equal(t, int64(40000), p.RefundAmount)
		requestRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("FullyRefundedPaymentLeavesRequestPending", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		paymentRepo := new(MockPaymentRepo)
		svc := newRefundService(requestRepo, paymentRepo, new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		p := completedPayment()
		p.RefundAmount = 50000
		p.Status = domain.PaymentStatusRefunded
		req := pendingRequest()
		requestRepo.On("GetByID", ctx, int32(42)).Return(req, nil).Once()
		paymentRepo.On("GetByID", ctx, int32(7)).Return(p, nil).Once()

		_, err := svc.Decide(ctx, 99, domain.RoleAdmin, 42, domain.RefundRequestStatusApproved, "", nil)
		assert.True(t, domain.IsKind(err, domain.ErrNotRefundable))
		assert.Equal(t, domain.RefundRequestStatusPending, req.Status)
		requestRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Reject", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		paymentRepo := new(MockPaymentRepo)
		userRepo := new(MockUserRepo)
		noteRepo := new(MockNotificationRepo)
		emailSvc := new(MockEmailService)
		svc := newRefundService(requestRepo, paymentRepo, userRepo, noteRepo, emailSvc)

		requestRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(), nil).Once()
		requestRepo.On("Update", ctx, mock.MatchedBy(func(r *domain.RefundRequest) bool {
			return r.Status == domain.RefundRequestStatusRejected && r.AdminNotes == "no grounds"
		})).Return(nil).Once()
		requestRepo.On("AppendDecision", ctx, mock.MatchedBy(func(d *domain.RefundDecision) bool {
			return d.Action == domain.RefundActionRejected
		})).Return(nil).Once()
		userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "buyer@test.com"}, nil).Once()
		emailSvc.On("SendRefundUpdate", ctx, "buyer@test.com", domain.RefundRequestStatusRejected, int64(0), "no grounds").Return(nil).Once()
		noteRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		req, err := svc.Decide(ctx, 99, domain.RoleAdmin, 42, domain.RefundRequestStatusRejected, "no grounds", nil)
		assert.NoError(t, err)
		assert.Equal(t, domain.RefundRequestStatusRejected, req.Status)
		// The payment is never touched on a rejection.
		paymentRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("AdminOnly", func(t *testing.T) {
		svc := newRefundService(new(MockRefundRequestRepo), new(MockPaymentRepo), new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		_, err := svc.Decide(ctx, 1, domain.RoleBuyer, 42, domain.RefundRequestStatusApproved, "", nil)
		assert.True(t, domain.IsKind(err, domain.ErrUnauthorized))
	})

	t.Run("OnlyPendingAdjudicable", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		svc := newRefundService(requestRepo, new(MockPaymentRepo), new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		req := pendingRequest()
		req.Status = domain.RefundRequestStatusProcessed
		requestRepo.On("GetByID", ctx, int32(42)).Return(req, nil).Once()

		_, err := svc.Decide(ctx, 99, domain.RoleAdmin, 42, domain.RefundRequestStatusApproved, "", nil)
		assert.True(t, domain.IsKind(err, domain.ErrInvalidTransition))
	})

	t.Run("InvalidDecisionValue", func(t *testing.T) {
		svc := newRefundService(new(MockRefundRequestRepo), new(MockPaymentRepo), new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		_, err := svc.Decide(ctx, 99, domain.RoleAdmin, 42, domain.RefundRequestStatusProcessed, "", nil)
		assert.True(t, domain.IsKind(err, domain.ErrInvalidTransition))
	})
}

func TestRefundService_Appeal(t *testing.T) {
	ctx := context.Background()

	rejected := func() *domain.RefundRequest {
		return &domain.RefundRequest{ID: 42, PaymentID: 7, UserID: 1, Status: domain.RefundRequestStatusRejected}
	}

	t.Run("Success", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		svc := newRefundService(requestRepo, new(MockPaymentRepo), new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		requestRepo.On("GetByID", ctx, int32(42)).Return(rejected(), nil).Once()
		requestRepo.On("Update", ctx, mock.MatchedBy(func(r *domain.RefundRequest) bool {
			// An appeal annotates the rejection; the status does not move.
			return r.IsAppealed && r.Status == domain.RefundRequestStatusRejected && r.AppealedAt != nil
		})).Return(nil).Once()
		requestRepo.On("AppendDecision", ctx, mock.MatchedBy(func(d *domain.RefundDecision) bool {
			return d.Action == domain.RefundActionAppealed && d.ActorID == 1
		})).Return(nil).Once()

		req, err := svc.Appeal(ctx, 1, 42, "service not rendered", "the viewing never happened")
		assert.NoError(t, err)
		assert.True(t, req.IsAppealed)
		assert.Equal(t, "service not rendered", req.AppealReason)
		requestRepo.AssertExpectations(t)
	})

	t.Run("OnlyRequestingUser", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		svc := newRefundService(requestRepo, new(MockPaymentRepo), new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		requestRepo.On("GetByID", ctx, int32(42)).Return(rejected(), nil).Once()

		_, err := svc.Appeal(ctx, 2, 42, "", "")
		assert.True(t, domain.IsKind(err, domain.ErrUnauthorized))
	})

	t.Run("OnlyRejectedAppealable", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		svc := newRefundService(requestRepo, new(MockPaymentRepo), new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		req := rejected()
		req.Status = domain.RefundRequestStatusPending
		requestRepo.On("GetByID", ctx, int32(42)).Return(req, nil).Once()

		_, err := svc.Appeal(ctx, 1, 42, "", "")
		assert.True(t, domain.IsKind(err, domain.ErrInvalidTransition))
	})
}

func TestRefundService_Reopen(t *testing.T) {
	ctx := context.Background()

	t.Run("ResetsDecisionFields", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		userRepo := new(MockUserRepo)
		noteRepo := new(MockNotificationRepo)
		emailSvc := new(MockEmailService)
		svc := newRefundService(requestRepo, new(MockPaymentRepo), userRepo, noteRepo, emailSvc)

		adminID := int32(99)
		amount := int64(0)
		req := &domain.RefundRequest{
			ID: 42, PaymentID: 7, UserID: 1,
			Status:            domain.RefundRequestStatusRejected,
			AdminNotes:        "no grounds",
			AdminRefundAmount: &amount,
			ProcessedBy:       &adminID,
			ProcessedAt:       &testNow,
			IsAppealed:        true,
		}
		requestRepo.On("GetByID", ctx, int32(42)).Return(req, nil).Once()
		requestRepo.On("Update", ctx, mock.MatchedBy(func(r *domain.RefundRequest) bool {
			return r.Status == domain.RefundRequestStatusPending && r.CaseReopened &&
				r.AdminNotes == "" && r.AdminRefundAmount == nil && r.ProcessedBy == nil && r.ProcessedAt == nil
		})).Return(nil).Once()
		requestRepo.On("AppendDecision", ctx, mock.MatchedBy(func(d *domain.RefundDecision) bool {
			return d.Action == domain.RefundActionReopened && d.ActorID == 99
		})).Return(nil).Once()
		userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Email: "buyer@test.com"}, nil).Once()
		emailSvc.On("SendRefundUpdate", ctx, "buyer@test.com", domain.RefundRequestStatusPending, int64(0), "").Return(nil).Once()
		noteRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

		got, err := svc.Reopen(ctx, 99, domain.RoleAdmin, 42, "appeal has merit")
		assert.NoError(t, err)
		assert.Equal(t, domain.RefundRequestStatusPending, got.Status)
		assert.True(t, got.CaseReopened)
		assert.Equal(t, "appeal has merit", got.ReopenReason)
		// The appeal annotations survive the reopen.
		assert.True(t, got.IsAppealed)
		requestRepo.AssertExpectations(t)
	})

	t.Run("OnlyRejectedReopenable", func(t *testing.T) {
		requestRepo := new(MockRefundRequestRepo)
		svc := newRefundService(requestRepo, new(MockPaymentRepo), new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		requestRepo.On("GetByID", ctx, int32(42)).Return(&domain.RefundRequest{ID: 42, Status: domain.RefundRequestStatusPending}, nil).Once()

		_, err := svc.Reopen(ctx, 99, domain.RoleAdmin, 42, "")
		assert.True(t, domain.IsKind(err, domain.ErrInvalidTransition))
	})

	t.Run("AdminOnly", func(t *testing.T) {
		svc := newRefundService(new(MockRefundRequestRepo), new(MockPaymentRepo), new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))

		_, err := svc.Reopen(ctx, 1, domain.RoleBuyer, 42, "")
		assert.True(t, domain.IsKind(err, domain.ErrUnauthorized))
	})
}

func TestRefundService_GetRefundRequest(t *testing.T) {
	ctx := context.Background()
	req := &domain.RefundRequest{ID: 42, UserID: 1, Status: domain.RefundRequestStatusProcessed}
	decisions := []domain.RefundDecision{
		{RequestID: 42, Action: domain.RefundActionRequested, ActorID: 1},
		{RequestID: 42, Action: domain.RefundActionApproved, ActorID: 99},
		{RequestID: 42, Action: domain.RefundActionProcessed, ActorID: 99},
	}

	requestRepo := new(MockRefundRequestRepo)
	svc := newRefundService(requestRepo, new(MockPaymentRepo), new(MockUserRepo), new(MockNotificationRepo), new(MockEmailService))
	requestRepo.On("GetByID", ctx, int32(42)).Return(req, nil)
	requestRepo.On("ListDecisions", ctx, int32(42)).Return(decisions, nil)

	_, got, err := svc.GetRefundRequest(ctx, 1, domain.RoleBuyer, 42)
	assert.NoError(t, err)
	assert.Len(t, got, 3)

	_, _, err = svc.GetRefundRequest(ctx, 2, domain.RoleBuyer, 42)
	assert.True(t, domain.IsKind(err, domain.ErrUnauthorized))
}
