package service

import (
	"context"
	"fmt"
	"time"

	"realty-booking-engine/internal/clock"
	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/logger"
	"realty-booking-engine/internal/repository"
)

type bookingService struct {
	apptRepo    repository.AppointmentRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	noteRepo    repository.NotificationRepository
	emailSvc    EmailService
	clk         clock.Clock
	locks       *LockTable
}

func NewBookingService(
	apptRepo repository.AppointmentRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	clk clock.Clock,
	locks *LockTable,
) BookingService {
	return &bookingService{
		apptRepo:    apptRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		noteRepo:    noteRepo,
		emailSvc:    emailSvc,
		clk:         clk,
		locks:       locks,
	}
}

func bookingKey(buyerID, listingID int32) string {
	return fmt.Sprintf("booking:%d:%d", buyerID, listingID)
}

func (s *bookingService) CanBook(ctx context.Context, buyerID, listingID int32) (*domain.BookingCheck, error) {
	history, err := s.apptRepo.ListByBuyerAndListing(ctx, buyerID, listingID)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()
	for i := range history {
		if history[i].Blocks(now) {
			return &domain.BookingCheck{Allowed: false, BlockingAppointment: &history[i]}, nil
		}
	}
	return &domain.BookingCheck{Allowed: true}, nil
}

func (s *bookingService) CreateAppointment(ctx context.Context, actorID int32, actorRole domain.Role, buyerID, listingID int32, date, timeOfDay string, purpose domain.AppointmentPurpose, notes string) (*domain.Appointment, error) {
	if actorRole != domain.RoleAdmin && actorID != buyerID {
		return nil, domain.Errorf(domain.ErrUnauthorized, "only admins may book on behalf of another user")
	}
	if _, err := time.ParseInLocation(domain.DateLayout, date, time.UTC); err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	if timeOfDay != "" {
		if _, err := time.Parse(domain.TimeLayout, timeOfDay); err != nil {
			return nil, fmt.Errorf("invalid time %q: expected HH:MM", timeOfDay)
		}
	}
	if purpose != domain.AppointmentPurposeBuy && purpose != domain.AppointmentPurposeRent {
		return nil, fmt.Errorf("invalid purpose %q", purpose)
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	// Ownership check precedes the conflict check.
	if listing.OwnerID == buyerID {
		return nil, domain.NewError(domain.ErrSelfBookingDenied, "listing", listingID, "", "owners cannot book appointments on their own listing")
	}

	// Conflict check and creation are one atomic region per (buyer, listing).
	unlock := s.locks.Lock(bookingKey(buyerID, listingID))
	defer unlock()

	check, err := s.CanBook(ctx, buyerID, listingID)
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		blocking := check.BlockingAppointment
		return nil, domain.NewError(domain.ErrBlockedByActiveAppointment, "appointment", blocking.ID, string(blocking.Status),
			"an active appointment already exists for this listing")
	}

	appt := &domain.Appointment{
		BuyerID:   buyerID,
		ListingID: listingID,
		SellerID:  listing.OwnerID,
		Date:      date,
		Time:      timeOfDay,
		Status:    domain.AppointmentStatusPending,
		Purpose:   purpose,
		Notes:     notes,
	}
	if err := s.apptRepo.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.notifySeller(ctx, appt, listing)
	return appt, nil
}

func (s *bookingService) TransitionAppointment(ctx context.Context, appointmentID, actorID int32, actorRole domain.Role, target domain.AppointmentStatus) (*domain.Appointment, error) {
	if !domain.ValidAppointmentStatus(target) {
		return nil, domain.Errorf(domain.ErrInvalidTransition, "unknown target status %q", target)
	}

	unlock := s.locks.Lock(fmt.Sprintf("appointment:%d", appointmentID))
	defer unlock()

	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(appt, actorID, actorRole, target); err != nil {
		return nil, err
	}
	if err := checkTransition(appt, target); err != nil {
		return nil, err
	}

	appt.Status = target
	if target == domain.AppointmentStatusCancelledByBuyer {
		// Single authorized mutator of the reinitiation counter.
		appt.BuyerReinitiationCount++
	}
	if err := s.apptRepo.Update(ctx, appt); err != nil {
		return nil, err
	}

	s.notifyTransition(ctx, appt, target)
	return appt, nil
}

// transitionSources lists the states each target status is reachable from.
var transitionSources = map[domain.AppointmentStatus][]domain.AppointmentStatus{
	domain.AppointmentStatusAccepted:          {domain.AppointmentStatusPending},
	domain.AppointmentStatusRejected:          {domain.AppointmentStatusPending},
	domain.AppointmentStatusCancelledByBuyer:  {domain.AppointmentStatusPending, domain.AppointmentStatusAccepted},
	domain.AppointmentStatusCancelledBySeller: {domain.AppointmentStatusPending, domain.AppointmentStatusAccepted},
	domain.AppointmentStatusCompleted:         {domain.AppointmentStatusAccepted},
}

func checkTransition(appt *domain.Appointment, target domain.AppointmentStatus) error {
	for _, src := range transitionSources[target] {
		if appt.Status == src {
			return nil
		}
	}
	return domain.NewError(domain.ErrInvalidTransition, "appointment", appt.ID, string(appt.Status),
		fmt.Sprintf("cannot transition to %q", target))
}

func authorizeTransition(appt *domain.Appointment, actorID int32, actorRole domain.Role, target domain.AppointmentStatus) error {
	switch target {
	case domain.AppointmentStatusCancelledByBuyer:
		// Only the buyer themselves; admins cancel via cancelledBySeller.
		if actorID != appt.BuyerID {
			return domain.NewError(domain.ErrUnauthorized, "appointment", appt.ID, string(appt.Status),
				"only the booking buyer may cancel as buyer")
		}
	case domain.AppointmentStatusAccepted, domain.AppointmentStatusRejected,
		domain.AppointmentStatusCancelledBySeller, domain.AppointmentStatusCompleted:
		if actorRole != domain.RoleAdmin && actorID != appt.SellerID {
			return domain.NewError(domain.ErrUnauthorized, "appointment", appt.ID, string(appt.Status),
				"only the listing owner or an admin may perform this transition")
		}
	default:
		return domain.NewError(domain.ErrInvalidTransition, "appointment", appt.ID, string(appt.Status),
			fmt.Sprintf("cannot transition to %q", target))
	}
	return nil
}

func (s *bookingService) GetAppointment(ctx context.Context, actorID int32, actorRole domain.Role, appointmentID int32) (*domain.Appointment, error) {
	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if actorRole != domain.RoleAdmin && actorID != appt.BuyerID && actorID != appt.SellerID {
		return nil, domain.NewError(domain.ErrUnauthorized, "appointment", appointmentID, string(appt.Status), "not a party to this appointment")
	}
	return appt, nil
}

func (s *bookingService) ListAppointments(ctx context.Context, actorID int32, actorRole domain.Role, buyerID, listingID int32, status string, page, pageSize int32) ([]domain.Appointment, int32, error) {
	switch actorRole {
	case domain.RoleAdmin:
		return s.apptRepo.List(ctx, buyerID, listingID, status, page, pageSize)
	case domain.RoleSeller:
		return s.apptRepo.ListBySeller(ctx, actorID, status, page, pageSize)
	default:
		return s.apptRepo.List(ctx, actorID, listingID, status, page, pageSize)
	}
}

// Notification dispatch is fire-and-forget: a failure is logged and never
// rolls back the transition that triggered it.
func (s *bookingService) notifySeller(ctx context.Context, appt *domain.Appointment, listing *domain.Listing) {
	seller, err := s.userRepo.GetByID(ctx, appt.SellerID)
	if err != nil {
		logger.Warn("skipping booking notification", "appointment_id", appt.ID, "error", err)
		return
	}
	buyer, err := s.userRepo.GetByID(ctx, appt.BuyerID)
	if err != nil {
		logger.Warn("skipping booking notification", "appointment_id", appt.ID, "error", err)
		return
	}

	_ = s.emailSvc.SendAppointmentRequested(ctx, seller.Email, buyer.Name, listing.Title, appt.Date, appt.Time)

	note := &domain.Notification{
		UserID:  seller.ID,
		Title:   "New Appointment Request",
		Message: fmt.Sprintf("%s requested a %s appointment for %s on %s", buyer.Name, appt.Purpose, listing.Title, appt.Date),
		Attributes: map[string]string{
			"type":           "APPOINTMENT_REQUESTED",
			"appointment_id": fmt.Sprintf("%d", appt.ID),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("failed to record notification", "appointment_id", appt.ID, "error", err)
	}
}

func (s *bookingService) notifyTransition(ctx context.Context, appt *domain.Appointment, target domain.AppointmentStatus) {
	// The counterpart of whoever acted gets informed.
	recipientID := appt.BuyerID
	if target == domain.AppointmentStatusCancelledByBuyer {
		recipientID = appt.SellerID
	}
	recipient, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		logger.Warn("skipping transition notification", "appointment_id", appt.ID, "error", err)
		return
	}
	listing, err := s.listingRepo.GetByID(ctx, appt.ListingID)
	if err != nil {
		logger.Warn("skipping transition notification", "appointment_id", appt.ID, "error", err)
		return
	}

	switch target {
	case domain.AppointmentStatusCancelledByBuyer:
		_ = s.emailSvc.SendAppointmentCancelled(ctx, recipient.Email, "the buyer", listing.Title)
	case domain.AppointmentStatusCancelledBySeller:
		_ = s.emailSvc.SendAppointmentCancelled(ctx, recipient.Email, "the seller", listing.Title)
	default:
		_ = s.emailSvc.SendAppointmentDecision(ctx, recipient.Email, listing.Title, target)
	}

	note := &domain.Notification{
		UserID:  recipient.ID,
		Title:   "Appointment Update",
		Message: fmt.Sprintf("Your appointment for %s is now %s", listing.Title, target),
		Attributes: map[string]string{
			"type":           "APPOINTMENT_" + string(target),
			"appointment_id": fmt.Sprintf("%d", appt.ID),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("failed to record notification", "appointment_id", appt.ID, "error", err)
	}
}
