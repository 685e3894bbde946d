package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hanbit-travel/booking-api/internal/model"
)

// ReservationRepo provides access to reservations. A reservation is
// created exactly once per converted quote; the unique constraint on
// reservations.quote_id is the backstop that makes a second conversion
// attempt fail with ErrConflict instead of duplicating the booking.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateTx inserts a reservation within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided record. A duplicate quote_id maps to ErrConflict.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, quote_id, type, status, total_amount) VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.UserID, res.QuoteID, res.Type, res.Status, res.TotalAmount)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// ExistsForQuote reports whether a quote has already been converted.
func (r *ReservationRepo) ExistsForQuote(ctx context.Context, quoteID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM reservations WHERE quote_id = ? LIMIT 1", quoteID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ReservationDetail carries a reservation together with its quote's
// title and checkin for listing screens.
type ReservationDetail struct {
	ID          uint64 `json:"id"`
	QuoteID     uint64 `json:"quote_id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"total_amount"`
	QuoteTitle  string `json:"quote_title"`
	Checkin     string `json:"checkin"`
	CreatedAt   string `json:"created_at"`
}

// GetByIDForUser returns a single reservation for the given user.
// sql.ErrNoRows is returned when the reservation does not exist;
// ErrForbidden when it belongs to someone else.
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, reservationID, userID uint64) (*ReservationDetail, error) {
	const q = `SELECT r.id, r.user_id, r.quote_id, r.type, r.status, r.total_amount,
	                  q.title, q.checkin, r.created_at
	           FROM reservations r
	           JOIN quotes q ON q.id = r.quote_id
	           WHERE r.id = ?`
	var (
		det     ReservationDetail
		ownerID uint64
		checkin string
		created string
	)
	err := r.db.QueryRowContext(ctx, q, reservationID).Scan(
		&det.ID, &ownerID, &det.QuoteID, &det.Type, &det.Status, &det.TotalAmount,
		&det.QuoteTitle, &checkin, &created)
	if err != nil {
		return nil, err
	}
	if ownerID != userID {
		return nil, ErrForbidden
	}
	det.Checkin = checkin
	det.CreatedAt = created
	return &det, nil
}

// ListByUser returns all reservations for the given user, newest first.
// When none exist, an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.quote_id, r.type, r.status, r.total_amount,
	                  q.title, q.checkin, r.created_at
	           FROM reservations r
	           JOIN quotes q ON q.id = r.quote_id
	           WHERE r.user_id = ?
	           ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		if err := rows.Scan(&d.ID, &d.QuoteID, &d.Type, &d.Status, &d.TotalAmount,
			&d.QuoteTitle, &d.Checkin, &d.CreatedAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// GetOwner returns the owning user of a reservation, used by the payment
// bridge to verify that the caller may pay for it.
func (r *ReservationRepo) GetOwner(ctx context.Context, reservationID uint64) (uint64, int64, error) {
	var (
		ownerID uint64
		amount  int64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, total_amount FROM reservations WHERE id = ? LIMIT 1",
		reservationID).Scan(&ownerID, &amount)
	return ownerID, amount, err
}
