package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusCompleted         PaymentStatus = "completed"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
)

// Payment is the single payment bound to an appointment. Amounts are in the
// smallest currency unit (paise/cents). Rows are never deleted.
type Payment struct {
	ID            int32         `json:"id"`
	AppointmentID int32         `json:"appointmentId"`
	Amount        int64         `json:"amount"`
	Currency      Currency      `json:"currency"`
	Gateway       string        `json:"gateway"`
	Reference     string        `json:"reference"` // gateway reference, minted at attach time
	Status        PaymentStatus `json:"status"`
	RefundAmount  int64         `json:"refundAmount"`
	RefundReason  string        `json:"refundReason,omitempty"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`
	RefundedAt    *time.Time    `json:"refundedAt,omitempty"`
	CreatedOn     time.Time     `json:"createdOn"`
	UpdatedOn     time.Time     `json:"updatedOn"`
}

func ValidCurrency(c Currency) bool {
	return c == CurrencyINR || c == CurrencyUSD
}

// RemainingRefundable is the amount still available to refund.
func (p *Payment) RemainingRefundable() int64 {
	return p.Amount - p.RefundAmount
}

// Refundable reports whether any further refund may be applied to this
// payment. Only completed payments (including those partially refunded) can
// receive refunds.
func (p *Payment) Refundable() bool {
	return (p.Status == PaymentStatusCompleted || p.Status == PaymentStatusPartiallyRefunded) &&
		p.RemainingRefundable() > 0
}

// RecomputeStatus derives the status from the refund amount: refunded when the
// full amount is returned, partially_refunded when some of it is.
func (p *Payment) RecomputeStatus() {
	switch {
	case p.RefundAmount >= p.Amount:
		p.Status = PaymentStatusRefunded
	case p.RefundAmount > 0:
		p.Status = PaymentStatusPartiallyRefunded
	}
}
