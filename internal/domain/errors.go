package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures. Every kind is returned to the caller
// verbatim; none is fatal — each is recoverable with different input, a
// different actor, or waiting.
type ErrorKind string

const (
	ErrUnauthorized               ErrorKind = "Unauthorized"
	ErrInvalidTransition          ErrorKind = "InvalidTransition"
	ErrBlockedByActiveAppointment ErrorKind = "BlockedByActiveAppointment"
	ErrSelfBookingDenied          ErrorKind = "SelfBookingDenied"
	ErrInvalidRefundAmount        ErrorKind = "InvalidRefundAmount"
	ErrNotRefundable              ErrorKind = "NotRefundable"
	ErrNotEligible                ErrorKind = "NotEligible"
	ErrDuplicatePayment           ErrorKind = "DuplicatePayment"
	ErrNotFound                   ErrorKind = "NotFound"
)

// Error carries the kind plus enough context (entity, id, current status) for
// the API boundary to render a user-facing message.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Entity  string    `json:"entity,omitempty"`
	ID      int32     `json:"id,omitempty"`
	Status  string    `json:"status,omitempty"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s %d (status %q): %s", e.Kind, e.Entity, e.ID, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewError(kind ErrorKind, entity string, id int32, status, msg string) *Error {
	return &Error{Kind: kind, Entity: entity, ID: id, Status: status, Message: msg}
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is (or wraps) a domain Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// KindOf returns the kind of a domain Error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
