package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hanbit-travel/booking-api/internal/model"
)

// QuoteRepo provides CRUD operations for quotes and their child rows.
// A quote aggregates room, car and generic service lines plus a derived
// price summary. The aggregate is always written inside a single
// transaction so it can never be observed half-built: the quote head is
// inserted first, then the zeroed price summary, then the lines, and a
// failure at any step rolls the whole aggregate back.
type QuoteRepo struct {
	db *sql.DB
}

// NewQuoteRepo returns a new QuoteRepo bound to the given database.
func NewQuoteRepo(db *sql.DB) *QuoteRepo { return &QuoteRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *QuoteRepo) DB() *sql.DB { return r.db }

// serviceTables whitelists the per-type service tables a quote item's
// service_ref_id may point into. Item inserts reject any other type.
var serviceTables = map[string]string{
	model.ServiceTypeAirport: "service_airport",
	model.ServiceTypeRentcar: "service_rentcar",
	model.ServiceTypeTour:    "service_tour",
}

// CreateTx inserts the quote head within an existing transaction and
// populates the generated ID and timestamps on the provided record.
func (r *QuoteRepo) CreateTx(ctx context.Context, tx *sql.Tx, q *model.Quote) error {
	const ins = `INSERT INTO quotes (user_id, status, title, checkin, schedule_code, cruise_code, payment_code, discount_rate, total_price)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`
	res, err := tx.ExecContext(ctx, ins,
		q.UserID, q.Status, q.Title, q.Checkin.Format("2006-01-02"),
		q.ScheduleCode, q.CruiseCode, q.PaymentCode, q.DiscountRate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	q.ID = uint64(id)
	const sel = `SELECT total_price, created_at, updated_at FROM quotes WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, q.ID).Scan(&q.TotalPrice, &q.CreatedAt, &q.UpdatedAt)
}

// CreateSummaryTx inserts the 1:1 price summary row. At aggregate
// creation time every amount is zero; the pricing step fills them in.
func (r *QuoteRepo) CreateSummaryTx(ctx context.Context, tx *sql.Tx, s *model.QuotePriceSummary) error {
	const q = `INSERT INTO quote_price_summary (quote_id, total_room_price, total_car_price, grand_total, final_total, discount_rate, checkin)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		s.QuoteID, s.TotalRoomPrice, s.TotalCarPrice, s.GrandTotal, s.FinalTotal,
		s.DiscountRate, s.Checkin.Format("2006-01-02"))
	return err
}

// CreateRoomsBulkTx inserts the room lines in a single statement. The
// caller must have validated the MaxRoomsPerQuote cap; passing an empty
// slice has no effect and returns nil.
func (r *QuoteRepo) CreateRoomsBulkTx(ctx context.Context, tx *sql.Tx, rooms []model.QuoteRoom) error {
	if len(rooms) == 0 {
		return nil
	}
	query := `INSERT INTO quote_rooms (quote_id, room_code, category, persons, infants, extra_adult, extra_child, unit_price, total_price) VALUES `
	args := make([]interface{}, 0, len(rooms)*9)
	for i, rm := range rooms {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, 0, 0)"
		args = append(args, rm.QuoteID, rm.RoomCode, rm.Category, rm.Persons, rm.Infants, rm.ExtraAdult, rm.ExtraChild)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// CreateCarsBulkTx inserts the car lines in a single statement.
func (r *QuoteRepo) CreateCarsBulkTx(ctx context.Context, tx *sql.Tx, cars []model.QuoteCar) error {
	if len(cars) == 0 {
		return nil
	}
	query := `INSERT INTO quote_cars (quote_id, vehicle_code, category_code, passenger_type, car_count, unit_price, total_price) VALUES `
	args := make([]interface{}, 0, len(cars)*7)
	for i, cr := range cars {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, 0, 0)"
		args = append(args, cr.QuoteID, cr.VehicleCode, cr.CategoryCode, cr.PassengerType, cr.CarCount)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// CreateServiceTx inserts a type-specific service row and returns its ID
// so the caller can reference it from a quote item. Unknown service
// types return ErrConflict; the type tag names the target table and is
// never interpolated from user input without the whitelist.
func (r *QuoteRepo) CreateServiceTx(ctx context.Context, tx *sql.Tx, serviceType, description, serviceCode string, serviceDate time.Time) (uint64, error) {
	table, ok := serviceTables[serviceType]
	if !ok {
		return 0, ErrConflict
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO "+table+" (service_code, description, service_date) VALUES (?, ?, ?)",
		serviceCode, description, serviceDate.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateItemTx inserts a quote item pointing at a previously created
// service row.
func (r *QuoteRepo) CreateItemTx(ctx context.Context, tx *sql.Tx, it *model.QuoteItem) error {
	const q = `INSERT INTO quote_items (quote_id, service_type, service_ref_id, quantity, unit_price, total_price)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, it.QuoteID, it.ServiceType, it.ServiceRefID, it.Quantity, it.UnitPrice, it.TotalPrice)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// GetByID fetches a quote head row without an ownership filter. Callers
// that act on behalf of a user must check ownership via GetForUser.
func (r *QuoteRepo) GetByID(ctx context.Context, id uint64) (model.Quote, error) {
	const q = `SELECT id, user_id, status, title, checkin, schedule_code, cruise_code, payment_code,
	                  discount_rate, total_price, submitted_at, created_at, updated_at
	           FROM quotes WHERE id = ? LIMIT 1`
	return r.scanQuote(r.db.QueryRowContext(ctx, q, id))
}

// GetForUser fetches a quote head row and enforces ownership. It returns
// ErrQuoteNotFound when no row exists and ErrForbidden when the quote
// belongs to another user.
func (r *QuoteRepo) GetForUser(ctx context.Context, id, userID uint64) (model.Quote, error) {
	q, err := r.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return q, ErrQuoteNotFound
		}
		return q, err
	}
	if q.UserID != userID {
		return model.Quote{}, ErrForbidden
	}
	return q, nil
}

func (r *QuoteRepo) scanQuote(row *sql.Row) (model.Quote, error) {
	var (
		q           model.Quote
		submittedAt sql.NullTime
	)
	err := row.Scan(&q.ID, &q.UserID, &q.Status, &q.Title, &q.Checkin,
		&q.ScheduleCode, &q.CruiseCode, &q.PaymentCode,
		&q.DiscountRate, &q.TotalPrice, &submittedAt, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return q, err
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		q.SubmittedAt = &t
	}
	return q, nil
}

// ListByUser returns the user's quote heads, newest first.
func (r *QuoteRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Quote, error) {
	const q = `SELECT id, user_id, status, title, checkin, schedule_code, cruise_code, payment_code,
	                  discount_rate, total_price, submitted_at, created_at, updated_at
	           FROM quotes WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	quotes := make([]model.Quote, 0)
	for rows.Next() {
		var (
			item        model.Quote
			submittedAt sql.NullTime
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.Status, &item.Title, &item.Checkin,
			&item.ScheduleCode, &item.CruiseCode, &item.PaymentCode,
			&item.DiscountRate, &item.TotalPrice, &submittedAt, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if submittedAt.Valid {
			t := submittedAt.Time
			item.SubmittedAt = &t
		}
		quotes = append(quotes, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return quotes, nil
}

// ListRooms returns the room lines of a quote ordered by insertion.
func (r *QuoteRepo) ListRooms(ctx context.Context, quoteID uint64) ([]model.QuoteRoom, error) {
	const q = `SELECT id, quote_id, room_code, category, persons, infants, extra_adult, extra_child, unit_price, total_price
	           FROM quote_rooms WHERE quote_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.QuoteRoom, 0)
	for rows.Next() {
		var rm model.QuoteRoom
		if err := rows.Scan(&rm.ID, &rm.QuoteID, &rm.RoomCode, &rm.Category, &rm.Persons,
			&rm.Infants, &rm.ExtraAdult, &rm.ExtraChild, &rm.UnitPrice, &rm.TotalPrice); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// ListCars returns the car lines of a quote ordered by insertion.
func (r *QuoteRepo) ListCars(ctx context.Context, quoteID uint64) ([]model.QuoteCar, error) {
	const q = `SELECT id, quote_id, vehicle_code, category_code, passenger_type, car_count, unit_price, total_price
	           FROM quote_cars WHERE quote_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.QuoteCar, 0)
	for rows.Next() {
		var cr model.QuoteCar
		if err := rows.Scan(&cr.ID, &cr.QuoteID, &cr.VehicleCode, &cr.CategoryCode,
			&cr.PassengerType, &cr.CarCount, &cr.UnitPrice, &cr.TotalPrice); err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

// ListItems returns the generic service lines of a quote.
func (r *QuoteRepo) ListItems(ctx context.Context, quoteID uint64) ([]model.QuoteItem, error) {
	const q = `SELECT id, quote_id, service_type, service_ref_id, quantity, unit_price, total_price
	           FROM quote_items WHERE quote_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.QuoteItem, 0)
	for rows.Next() {
		var it model.QuoteItem
		if err := rows.Scan(&it.ID, &it.QuoteID, &it.ServiceType, &it.ServiceRefID,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetSummary returns the derived price summary of a quote.
func (r *QuoteRepo) GetSummary(ctx context.Context, quoteID uint64) (model.QuotePriceSummary, error) {
	const q = `SELECT quote_id, total_room_price, total_car_price, grand_total, final_total, discount_rate, checkin
	           FROM quote_price_summary WHERE quote_id = ? LIMIT 1`
	var s model.QuotePriceSummary
	err := r.db.QueryRowContext(ctx, q, quoteID).Scan(
		&s.QuoteID, &s.TotalRoomPrice, &s.TotalCarPrice, &s.GrandTotal, &s.FinalTotal,
		&s.DiscountRate, &s.Checkin)
	return s, err
}

// Submit moves a draft quote to submitted and stamps submitted_at. It
// returns ErrQuoteNotFound when the quote does not exist for the user
// and ErrConflict when the quote has already left draft.
func (r *QuoteRepo) Submit(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE quotes SET status=?, submitted_at=NOW() WHERE id=? AND user_id=? AND status=?",
		model.QuoteStatusSubmitted, id, userID, model.QuoteStatusDraft)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.GetForUser(ctx, id, userID); err != nil {
		return err
	}
	return ErrConflict
}

// UpdateStatusTx transitions a quote's status within a transaction,
// accepting the move only from the listed statuses. ErrConflict is
// returned when the current status is not in the allowed set.
func (r *QuoteRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from []string, to string) error {
	if len(from) == 0 {
		return ErrConflict
	}
	query := "UPDATE quotes SET status=? WHERE id=? AND status IN (?"
	args := []interface{}{to, id, from[0]}
	for _, s := range from[1:] {
		query += ",?"
		args = append(args, s)
	}
	query += ")"
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// DeleteTx removes a draft quote and all of its children in one
// transaction. Non-draft quotes return ErrConflict.
func (r *QuoteRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id, userID uint64) error {
	var status string
	err := tx.QueryRowContext(ctx, "SELECT status FROM quotes WHERE id=? AND user_id=? FOR UPDATE", id, userID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrQuoteNotFound
		}
		return err
	}
	if status != model.QuoteStatusDraft {
		return ErrConflict
	}
	for _, q := range []string{
		"DELETE FROM quote_rooms WHERE quote_id=?",
		"DELETE FROM quote_cars WHERE quote_id=?",
		"DELETE FROM quote_items WHERE quote_id=?",
		"DELETE FROM quote_price_summary WHERE quote_id=?",
		"DELETE FROM quotes WHERE id=?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return nil
}

// UpdateRoomPriceTx writes the filled-in prices of a room line.
func (r *QuoteRepo) UpdateRoomPriceTx(ctx context.Context, tx *sql.Tx, roomID uint64, unit, total int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE quote_rooms SET unit_price=?, total_price=? WHERE id=?", unit, total, roomID)
	return err
}

// UpdateCarPriceTx writes the filled-in prices of a car line.
func (r *QuoteRepo) UpdateCarPriceTx(ctx context.Context, tx *sql.Tx, carID uint64, unit, total int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE quote_cars SET unit_price=?, total_price=? WHERE id=?", unit, total, carID)
	return err
}

// UpdateItemPriceTx writes the filled-in prices of a service line.
func (r *QuoteRepo) UpdateItemPriceTx(ctx context.Context, tx *sql.Tx, itemID uint64, unit, total int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE quote_items SET unit_price=?, total_price=? WHERE id=?", unit, total, itemID)
	return err
}

// UpdateSummaryTx rewrites the derived summary after a pricing pass.
func (r *QuoteRepo) UpdateSummaryTx(ctx context.Context, tx *sql.Tx, s *model.QuotePriceSummary) error {
	const q = `UPDATE quote_price_summary
	           SET total_room_price=?, total_car_price=?, grand_total=?, final_total=?, discount_rate=?
	           WHERE quote_id=?`
	_, err := tx.ExecContext(ctx, q, s.TotalRoomPrice, s.TotalCarPrice, s.GrandTotal, s.FinalTotal, s.DiscountRate, s.QuoteID)
	return err
}

// UpdateTotalTx writes the quote head's final amount.
func (r *QuoteRepo) UpdateTotalTx(ctx context.Context, tx *sql.Tx, quoteID uint64, total int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE quotes SET total_price=? WHERE id=?", total, quoteID)
	return err
}
