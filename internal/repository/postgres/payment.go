package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/repository"
)

const paymentColumns = `id, appointment_id, amount, currency, gateway, reference, status, refund_amount, refund_reason, completed_at, refunded_at, created_on, updated_on`

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (appointment_id, amount, currency, gateway, reference, status, refund_amount, refund_reason, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, p.AppointmentID, p.Amount, p.Currency, p.Gateway, p.Reference, p.Status, p.RefundAmount, p.RefundReason, now, now).Scan(&p.ID)
}

func (r *paymentRepository) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewError(domain.ErrNotFound, "payment", id, "", "payment not found")
	}
	return p, err
}

func (r *paymentRepository) GetByAppointmentID(ctx context.Context, appointmentID int32) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE appointment_id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, appointmentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *paymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	query := `UPDATE payments SET status=$1, refund_amount=$2, refund_reason=$3, completed_at=$4, refunded_at=$5, updated_on=$6 WHERE id=$7`
	_, err := r.db.ExecContext(ctx, query, p.Status, p.RefundAmount, p.RefundReason, p.CompletedAt, p.RefundedAt, time.Now(), p.ID)
	return err
}

func scanPayment(row *sql.Row) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(&p.ID, &p.AppointmentID, &p.Amount, &p.Currency, &p.Gateway, &p.Reference, &p.Status, &p.RefundAmount, &p.RefundReason, &p.CompletedAt, &p.RefundedAt, &p.CreatedOn, &p.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return p, nil
}
