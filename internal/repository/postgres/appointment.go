package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/repository"
)

const appointmentColumns = `id, buyer_id, listing_id, seller_id, date, time, status, purpose, notes, buyer_reinitiation_count, created_on, updated_on`

type appointmentRepository struct {
	db *sql.DB
}

func NewAppointmentRepository(db *sql.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	query := `INSERT INTO appointments (buyer_id, listing_id, seller_id, date, time, status, purpose, notes, buyer_reinitiation_count, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, a.BuyerID, a.ListingID, a.SellerID, a.Date, a.Time, a.Status, a.Purpose, a.Notes, a.BuyerReinitiationCount, now, now).Scan(&a.ID)
}

func (r *appointmentRepository) GetByID(ctx context.Context, id int32) (*domain.Appointment, error) {
	a := &domain.Appointment{}
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.BuyerID, &a.ListingID, &a.SellerID, &a.Date, &a.Time, &a.Status, &a.Purpose, &a.Notes, &a.BuyerReinitiationCount, &a.CreatedOn, &a.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewError(domain.ErrNotFound, "appointment", id, "", "appointment not found")
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *appointmentRepository) Update(ctx context.Context, a *domain.Appointment) error {
	query := `UPDATE appointments SET status=$1, notes=$2, buyer_reinitiation_count=$3, updated_on=$4 WHERE id=$5`
	_, err := r.db.ExecContext(ctx, query, a.Status, a.Notes, a.BuyerReinitiationCount, time.Now(), a.ID)
	return err
}

func (r *appointmentRepository) ListByBuyerAndListing(ctx context.Context, buyerID, listingID int32) ([]domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE buyer_id = $1 AND listing_id = $2 ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, buyerID, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *appointmentRepository) List(ctx context.Context, buyerID, listingID int32, status string, page, pageSize int32) ([]domain.Appointment, int32, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	var args []interface{}
	argIdx := 1
	if buyerID != 0 {
		query += fmt.Sprintf(" AND buyer_id = $%d", argIdx)
		args = append(args, buyerID)
		argIdx++
	}
	if listingID != 0 {
		query += fmt.Sprintf(" AND listing_id = $%d", argIdx)
		args = append(args, listingID)
		argIdx++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}
	return r.paginate(ctx, query, args, argIdx, page, pageSize)
}

func (r *appointmentRepository) ListBySeller(ctx context.Context, sellerID int32, status string, page, pageSize int32) ([]domain.Appointment, int32, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE seller_id = $1`
	args := []interface{}{sellerID}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}
	return r.paginate(ctx, query, args, argIdx, page, pageSize)
}

func (r *appointmentRepository) paginate(ctx context.Context, query string, args []interface{}, argIdx int, page, pageSize int32) ([]domain.Appointment, int32, error) {
	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	appts, err := scanAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return appts, count, nil
}

func scanAppointments(rows *sql.Rows) ([]domain.Appointment, error) {
	var appts []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(&a.ID, &a.BuyerID, &a.ListingID, &a.SellerID, &a.Date, &a.Time, &a.Status, &a.Purpose, &a.Notes, &a.BuyerReinitiationCount, &a.CreatedOn, &a.UpdatedOn); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}
