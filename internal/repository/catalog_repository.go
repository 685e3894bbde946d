package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hanbit-travel/booking-api/internal/model"
)

// CatalogRepo answers the option cascade queries against the reference
// tables and the price grids. Every level of a cascade is derived from
// the grid rows that remain after filtering by the upstream keys and the
// checkin date window, so the same inputs always yield the same options.
// All read queries return an empty slice rather than sql.ErrNoRows when
// nothing matches; the caller decides how to render "no options".
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo returns a new CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// ListSchedules returns all active sailing schedules, the first level of
// the cruise cascade. It is the only level not bound to a checkin date.
func (r *CatalogRepo) ListSchedules(ctx context.Context) ([]model.Option, error) {
	const q = `SELECT code, label FROM schedules WHERE is_active = 1 ORDER BY code`
	return r.options(ctx, q)
}

// ListCruises returns the cruises selectable under a schedule for a
// checkin date. A cruise is selectable when at least one room_prices row
// exists for the schedule whose validity window covers the checkin.
func (r *CatalogRepo) ListCruises(ctx context.Context, scheduleCode string, checkin time.Time) ([]model.Option, error) {
	const q = `SELECT DISTINCT p.cruise_code, c.label
	           FROM room_prices p
	           JOIN cruises c ON c.code = p.cruise_code
	           WHERE p.schedule_code = ?
	             AND p.start_date <= ? AND p.end_date >= ?
	           ORDER BY p.cruise_code`
	day := checkin.Format("2006-01-02")
	return r.options(ctx, q, scheduleCode, day, day)
}

// ListPayments returns the payment plans selectable under a schedule and
// cruise for a checkin date.
func (r *CatalogRepo) ListPayments(ctx context.Context, scheduleCode, cruiseCode string, checkin time.Time) ([]model.Option, error) {
	const q = `SELECT DISTINCT p.payment_code, m.label
	           FROM room_prices p
	           JOIN payment_methods m ON m.code = p.payment_code
	           WHERE p.schedule_code = ? AND p.cruise_code = ?
	             AND p.start_date <= ? AND p.end_date >= ?
	           ORDER BY p.payment_code`
	day := checkin.Format("2006-01-02")
	return r.options(ctx, q, scheduleCode, cruiseCode, day, day)
}

// ListRooms returns the room grades selectable once schedule, cruise and
// payment plan are all fixed. Labels come straight from the grid rows.
func (r *CatalogRepo) ListRooms(ctx context.Context, scheduleCode, cruiseCode, paymentCode string, checkin time.Time) ([]model.Option, error) {
	const q = `SELECT DISTINCT room_code, room_label
	           FROM room_prices
	           WHERE schedule_code = ? AND cruise_code = ? AND payment_code = ?
	             AND start_date <= ? AND end_date >= ?
	           ORDER BY room_code`
	day := checkin.Format("2006-01-02")
	return r.options(ctx, q, scheduleCode, cruiseCode, paymentCode, day, day)
}

// ListRentalCategories returns the first level of the rental cascade.
func (r *CatalogRepo) ListRentalCategories(ctx context.Context) ([]model.Option, error) {
	const q = `SELECT DISTINCT category_code, category_code FROM rental_routes ORDER BY category_code`
	return r.options(ctx, q)
}

// ListRentalRoutes returns the routes available under a category.
func (r *CatalogRepo) ListRentalRoutes(ctx context.Context, categoryCode string) ([]model.Option, error) {
	const q = `SELECT DISTINCT route_code, route_code FROM rental_routes WHERE category_code = ? ORDER BY route_code`
	return r.options(ctx, q, categoryCode)
}

// ListRentalCarTypes returns the car types available under a category and
// route.
func (r *CatalogRepo) ListRentalCarTypes(ctx context.Context, categoryCode, routeCode string) ([]model.Option, error) {
	const q = `SELECT DISTINCT car_type_code, car_type_code FROM rental_routes WHERE category_code = ? AND route_code = ? ORDER BY car_type_code`
	return r.options(ctx, q, categoryCode, routeCode)
}

// RentalCompositeKey builds the fixed lookup code for the final rental
// cascade level. Rental fares are not freely combined; the composite key
// must resolve to exactly one grid row.
func RentalCompositeKey(categoryCode, routeCode, carTypeCode string) string {
	return fmt.Sprintf("%s_%s_%s",
		strings.ToUpper(strings.TrimSpace(categoryCode)),
		strings.ToUpper(strings.TrimSpace(routeCode)),
		strings.ToUpper(strings.TrimSpace(carTypeCode)))
}

// ResolveRentalRoute looks up the rental grid row for a composite key and
// checkin date. sql.ErrNoRows is returned when the key does not exist or
// the checkin falls outside every validity window.
func (r *CatalogRepo) ResolveRentalRoute(ctx context.Context, compositeKey string, checkin time.Time) (model.RentalRoute, error) {
	const q = `SELECT id, composite_key, category_code, route_code, car_type_code, label, unit_price, start_date, end_date
	           FROM rental_routes
	           WHERE composite_key = ? AND start_date <= ? AND end_date >= ?
	           LIMIT 1`
	day := checkin.Format("2006-01-02")
	var rr model.RentalRoute
	err := r.db.QueryRowContext(ctx, q, compositeKey, day, day).Scan(
		&rr.ID, &rr.CompositeKey, &rr.CategoryCode, &rr.RouteCode, &rr.CarTypeCode,
		&rr.Label, &rr.UnitPrice, &rr.StartDate, &rr.EndDate)
	return rr, err
}

// GetRoomPrice returns the grid row for a fully-specified room selection
// and checkin date. sql.ErrNoRows means the selection has no valid fare,
// which the pricing step surfaces as ErrPriceNotFound.
func (r *CatalogRepo) GetRoomPrice(ctx context.Context, scheduleCode, cruiseCode, paymentCode, roomCode string, checkin time.Time) (model.RoomPrice, error) {
	const q = `SELECT id, schedule_code, cruise_code, payment_code, room_code, room_label,
	                  adult_price, extra_adult_price, child_price, infant_price, start_date, end_date
	           FROM room_prices
	           WHERE schedule_code = ? AND cruise_code = ? AND payment_code = ? AND room_code = ?
	             AND start_date <= ? AND end_date >= ?
	           LIMIT 1`
	day := checkin.Format("2006-01-02")
	var p model.RoomPrice
	err := r.db.QueryRowContext(ctx, q, scheduleCode, cruiseCode, paymentCode, roomCode, day, day).Scan(
		&p.ID, &p.ScheduleCode, &p.CruiseCode, &p.PaymentCode, &p.RoomCode, &p.RoomLabel,
		&p.AdultPrice, &p.ExtraAdultPrice, &p.ChildPrice, &p.InfantPrice, &p.StartDate, &p.EndDate)
	return p, err
}

// GetVehicle returns the vehicle for a code. Used to validate car lines
// before a quote aggregate is written.
func (r *CatalogRepo) GetVehicle(ctx context.Context, code string) (model.Vehicle, error) {
	const q = `SELECT id, code, label, category_code, capacity FROM vehicles WHERE code = ? LIMIT 1`
	var v model.Vehicle
	err := r.db.QueryRowContext(ctx, q, code).Scan(&v.ID, &v.Code, &v.Label, &v.CategoryCode, &v.Capacity)
	return v, err
}

// options runs a two-column (code, label) query and collects the rows,
// deduplicating codes in case a grid carries overlapping windows.
func (r *CatalogRepo) options(ctx context.Context, query string, args ...interface{}) ([]model.Option, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	opts := make([]model.Option, 0)
	seen := make(map[string]struct{})
	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.Code, &o.Label); err != nil {
			return nil, err
		}
		if _, ok := seen[o.Code]; ok {
			continue
		}
		seen[o.Code] = struct{}{}
		opts = append(opts, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return opts, nil
}
