package service

import (
	"context"
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"

	"realty-booking-engine/internal/domain"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host, port, username, password, from string) EmailService {
	p, _ := strconv.Atoi(port)
	return &emailService{
		host:     host,
		port:     p,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

func (s *emailService) SendAppointmentRequested(ctx context.Context, sellerEmail, buyerName, listingTitle, date, timeOfDay string) error {
	when := date
	if timeOfDay != "" {
		when += " at " + timeOfDay
	}
	body := fmt.Sprintf("Hello,\n\n%s has requested an appointment for your listing %q on %s.\n\nPlease accept or reject the request from your dashboard.", buyerName, listingTitle, when)
	return s.send(sellerEmail, fmt.Sprintf("New appointment request for %s", listingTitle), body)
}

func (s *emailService) SendAppointmentDecision(ctx context.Context, buyerEmail, listingTitle string, status domain.AppointmentStatus) error {
	body := fmt.Sprintf("Hello,\n\nYour appointment for %q is now %s.", listingTitle, status)
	return s.send(buyerEmail, fmt.Sprintf("Appointment %s - %s", status, listingTitle), body)
}

func (s *emailService) SendAppointmentCancelled(ctx context.Context, email, cancelledBy, listingTitle string) error {
	body := fmt.Sprintf("Hello,\n\nThe appointment for %q was cancelled by %s.", listingTitle, cancelledBy)
	return s.send(email, fmt.Sprintf("Appointment cancelled - %s", listingTitle), body)
}

func (s *emailService) SendAppointmentReminder(ctx context.Context, email, listingTitle, date, timeOfDay string) error {
	when := date
	if timeOfDay != "" {
		when += " at " + timeOfDay
	}
	body := fmt.Sprintf("Hello,\n\nThis is a reminder of your upcoming appointment for %q on %s.", listingTitle, when)
	return s.send(email, fmt.Sprintf("Appointment reminder - %s", listingTitle), body)
}

func (s *emailService) SendPaymentReceipt(ctx context.Context, buyerEmail string, amount int64, currency domain.Currency, reference string) error {
	body := fmt.Sprintf("Hello,\n\nWe received your payment of %d %s.\nGateway reference: %s", amount, currency, reference)
	return s.send(buyerEmail, "Payment received", body)
}

func (s *emailService) SendRefundUpdate(ctx context.Context, userEmail string, status domain.RefundRequestStatus, amount int64, notes string) error {
	body := fmt.Sprintf("Hello,\n\nYour refund request is now %s.", status)
	if status == domain.RefundRequestStatusProcessed {
		body += fmt.Sprintf("\nRefunded amount: %d", amount)
	}
	if notes != "" {
		body += fmt.Sprintf("\n\nNotes from the review team: %s", notes)
	}
	return s.send(userEmail, fmt.Sprintf("Refund request %s", status), body)
}
