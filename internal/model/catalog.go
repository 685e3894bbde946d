package model

import "time"

// Schedule is a sailing schedule offered by the operator, the first level of
// the cruise selection cascade.
type Schedule struct {
	ID        uint64    // schedules.id
	Code      string    // schedules.code (e.g. "S1")
	Label     string    // schedules.label
	IsActive  bool      // schedules.is_active
	CreatedAt time.Time // schedules.created_at
}

// Cruise is a ship/itinerary combination selectable under a schedule.
type Cruise struct {
	ID    uint64 // cruises.id
	Code  string // cruises.code (e.g. "C1")
	Label string // cruises.label
}

// PaymentMethod is a fare/payment plan selectable under a cruise.
type PaymentMethod struct {
	ID    uint64 // payment_methods.id
	Code  string // payment_methods.code
	Label string // payment_methods.label
}

// RoomPrice is a row of the `room_prices` grid.  A row exists per
// (schedule, cruise, payment, room) tuple and carries a validity window.
// The grid drives both the option cascade (which cruises/payments/rooms are
// selectable for a checkin date) and the pricing fill-in step.
//
// Fields:
//  ID              – primary key identifier.
//  ScheduleCode    – schedule the fare belongs to.
//  CruiseCode      – cruise the fare belongs to.
//  PaymentCode     – payment plan the fare belongs to.
//  RoomCode        – room grade (e.g. "SUITE_OV").
//  RoomLabel       – display name of the room grade.
//  AdultPrice      – per-adult fare in KRW.
//  ExtraAdultPrice – fare for each adult beyond base occupancy.
//  ChildPrice      – fare for each extra child.
//  InfantPrice     – fare for each infant.
//  StartDate       – first checkin date the fare is valid for.
//  EndDate         – last checkin date the fare is valid for.
type RoomPrice struct {
	ID              uint64    // room_prices.id
	ScheduleCode    string    // room_prices.schedule_code
	CruiseCode      string    // room_prices.cruise_code
	PaymentCode     string    // room_prices.payment_code
	RoomCode        string    // room_prices.room_code
	RoomLabel       string    // room_prices.room_label
	AdultPrice      int64     // room_prices.adult_price
	ExtraAdultPrice int64     // room_prices.extra_adult_price
	ChildPrice      int64     // room_prices.child_price
	InfantPrice     int64     // room_prices.infant_price
	StartDate       time.Time // room_prices.start_date
	EndDate         time.Time // room_prices.end_date
}

// ValidOn reports whether the fare's validity window covers the given
// checkin date. Both window endpoints are inclusive and compared at day
// granularity.
func (p RoomPrice) ValidOn(checkin time.Time) bool {
	return WithinWindow(checkin, p.StartDate, p.EndDate)
}

// WithinWindow reports start <= day <= end at day granularity in UTC.
func WithinWindow(day, start, end time.Time) bool {
	d := day.UTC().Truncate(24 * time.Hour)
	s := start.UTC().Truncate(24 * time.Hour)
	e := end.UTC().Truncate(24 * time.Hour)
	return !d.Before(s) && !d.After(e)
}

// Vehicle is a rentable vehicle type (airport pickup / rentcar flows).
type Vehicle struct {
	ID           uint64 // vehicles.id
	Code         string // vehicles.code
	Label        string // vehicles.label
	CategoryCode string // vehicles.category_code
	Capacity     uint32 // vehicles.capacity
}

// RentalRoute is a row of the `rental_routes` grid.  Rental fares are not
// freely combined: the composite code "{category}_{route}_{carType}" must
// resolve to exactly one grid row valid for the checkin date.
type RentalRoute struct {
	ID           uint64    // rental_routes.id
	CompositeKey string    // rental_routes.composite_key
	CategoryCode string    // rental_routes.category_code
	RouteCode    string    // rental_routes.route_code
	CarTypeCode  string    // rental_routes.car_type_code
	Label        string    // rental_routes.label
	UnitPrice    int64     // rental_routes.unit_price
	StartDate    time.Time // rental_routes.start_date
	EndDate      time.Time // rental_routes.end_date
}

// ValidOn reports whether the rental fare covers the given checkin date.
func (r RentalRoute) ValidOn(checkin time.Time) bool {
	return WithinWindow(checkin, r.StartDate, r.EndDate)
}

// Option is a single {code,label} pair returned by the cascade endpoints.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}
