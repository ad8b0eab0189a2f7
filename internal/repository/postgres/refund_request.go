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

const refundRequestColumns = `id, payment_id, user_id, type, requested_amount, admin_refund_amount, reason, status, admin_notes, processed_by, processed_at, is_appealed, appeal_reason, appeal_text, appealed_at, case_reopened, case_reopened_at, reopen_reason, created_on, updated_on`

type refundRequestRepository struct {
	db *sql.DB
}

func NewRefundRequestRepository(db *sql.DB) repository.RefundRequestRepository {
	return &refundRequestRepository{db: db}
}

func (r *refundRequestRepository) Create(ctx context.Context, req *domain.RefundRequest) error {
	query := `INSERT INTO refund_requests (payment_id, user_id, type, requested_amount, reason, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, req.PaymentID, req.UserID, req.Type, req.RequestedAmount, req.Reason, req.Status, now, now).Scan(&req.ID)
}

func (r *refundRequestRepository) GetByID(ctx context.Context, id int32) (*domain.RefundRequest, error) {
	query := `SELECT ` + refundRequestColumns + ` FROM refund_requests WHERE id = $1`
	req, err := scanRefundRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewError(domain.ErrNotFound, "refundRequest", id, "", "refund request not found")
	}
	return req, err
}

func (r *refundRequestRepository) GetOpenByPaymentID(ctx context.Context, paymentID int32) (*domain.RefundRequest, error) {
	query := `SELECT ` + refundRequestColumns + ` FROM refund_requests WHERE payment_id = $1 AND status IN ('pending', 'approved') ORDER BY created_on DESC LIMIT 1`
	req, err := scanRefundRequest(r.db.QueryRowContext(ctx, query, paymentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return req, err
}

func (r *refundRequestRepository) Update(ctx context.Context, req *domain.RefundRequest) error {
	query := `UPDATE refund_requests SET status=$1, admin_refund_amount=$2, admin_notes=$3, processed_by=$4, processed_at=$5,
	          is_appealed=$6, appeal_reason=$7, appeal_text=$8, appealed_at=$9,
	          case_reopened=$10, case_reopened_at=$11, reopen_reason=$12, updated_on=$13 WHERE id=$14`
	_, err := r.db.ExecContext(ctx, query, req.Status, req.AdminRefundAmount, req.AdminNotes, req.ProcessedBy, req.ProcessedAt,
		req.IsAppealed, req.AppealReason, req.AppealText, req.AppealedAt,
		req.CaseReopened, req.CaseReopenedAt, req.ReopenReason, time.Now(), req.ID)
	return err
}

func (r *refundRequestRepository) List(ctx context.Context, status string, page, pageSize int32) ([]domain.RefundRequest, int32, error) {
	query := `SELECT ` + refundRequestColumns + ` FROM refund_requests WHERE 1=1`
	var args []interface{}
	argIdx := 1
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

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

	var reqs []domain.RefundRequest
	for rows.Next() {
		var req domain.RefundRequest
		if err := rows.Scan(&req.ID, &req.PaymentID, &req.UserID, &req.Type, &req.RequestedAmount, &req.AdminRefundAmount, &req.Reason, &req.Status, &req.AdminNotes, &req.ProcessedBy, &req.ProcessedAt, &req.IsAppealed, &req.AppealReason, &req.AppealText, &req.AppealedAt, &req.CaseReopened, &req.CaseReopenedAt, &req.ReopenReason, &req.CreatedOn, &req.UpdatedOn); err != nil {
			return nil, 0, err
		}
		reqs = append(reqs, req)
	}
	return reqs, count, rows.Err()
}

func (r *refundRequestRepository) AppendDecision(ctx context.Context, d *domain.RefundDecision) error {
	query := `INSERT INTO refund_request_decisions (request_id, action, actor_id, notes, amount, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query, d.RequestID, d.Action, d.ActorID, d.Notes, d.Amount, time.Now()).Scan(&d.ID)
}

func (r *refundRequestRepository) ListDecisions(ctx context.Context, requestID int32) ([]domain.RefundDecision, error) {
	query := `SELECT id, request_id, action, actor_id, notes, amount, created_on FROM refund_request_decisions WHERE request_id = $1 ORDER BY created_on ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []domain.RefundDecision
	for rows.Next() {
		var d domain.RefundDecision
		if err := rows.Scan(&d.ID, &d.RequestID, &d.Action, &d.ActorID, &d.Notes, &d.Amount, &d.CreatedOn); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

func scanRefundRequest(row *sql.Row) (*domain.RefundRequest, error) {
	req := &domain.RefundRequest{}
	err := row.Scan(&req.ID, &req.PaymentID, &req.UserID, &req.Type, &req.RequestedAmount, &req.AdminRefundAmount, &req.Reason, &req.Status, &req.AdminNotes, &req.ProcessedBy, &req.ProcessedAt, &req.IsAppealed, &req.AppealReason, &req.AppealText, &req.AppealedAt, &req.CaseReopened, &req.CaseReopenedAt, &req.ReopenReason, &req.CreatedOn, &req.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return req, nil
}
