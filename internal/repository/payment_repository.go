package repository

import (
	"context"
	"database/sql"

	"github.com/hanbit-travel/booking-api/internal/model"
)

// PaymentRepo persists reservation payment attempts. Rows are created
// pending when a payment link is requested and mutated only by the
// gateway's return callback.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts a pending payment row and populates the generated ID.
func (r *PaymentRepo) Create(ctx context.Context, p *model.ReservationPayment) error {
	const q = `INSERT INTO reservation_payments (reservation_id, amount, payment_status, payment_method, gateway, transaction_id)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		p.ReservationID, p.Amount, p.PaymentStatus, p.PaymentMethod, p.Gateway, p.TransactionID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID fetches a payment row by primary key.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (model.ReservationPayment, error) {
	const q = `SELECT id, reservation_id, amount, payment_status, payment_method, gateway, transaction_id, raw_response, memo, created_at, updated_at
	           FROM reservation_payments WHERE id = ? LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// GetByTransactionID fetches a payment row by the merchant transaction id
// echoed back by the gateway callback.
func (r *PaymentRepo) GetByTransactionID(ctx context.Context, txid string) (model.ReservationPayment, error) {
	const q = `SELECT id, reservation_id, amount, payment_status, payment_method, gateway, transaction_id, raw_response, memo, created_at, updated_at
	           FROM reservation_payments WHERE transaction_id = ? LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, txid))
}

func (r *PaymentRepo) scanOne(row *sql.Row) (model.ReservationPayment, error) {
	var (
		p    model.ReservationPayment
		raw  sql.NullString
		memo sql.NullString
	)
	err := row.Scan(&p.ID, &p.ReservationID, &p.Amount, &p.PaymentStatus, &p.PaymentMethod,
		&p.Gateway, &p.TransactionID, &raw, &memo, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if raw.Valid {
		p.RawResponse = &raw.String
	}
	if memo.Valid {
		p.Memo = &memo.String
	}
	return p, nil
}

// RecordOutcome stores the callback's verdict and its raw query string.
// Only pending rows are mutated; replayed callbacks are ignored and
// reported via ErrConflict so the handler can answer idempotently.
func (r *PaymentRepo) RecordOutcome(ctx context.Context, txid, status, rawResponse, memo string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservation_payments
		 SET payment_status=?, raw_response=?, memo=NULLIF(?, '')
		 WHERE transaction_id=? AND payment_status=?`,
		status, rawResponse, memo, txid, model.PaymentStatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByTransactionID(ctx, txid); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}
