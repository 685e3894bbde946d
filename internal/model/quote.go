package model

import "time"

// Quote statuses.  StatusDraft through StatusConfirmed follow the quote's own
// lifecycle; StatusReserved is set when the quote has been converted into a
// reservation and can no longer change.
const (
	QuoteStatusDraft     = "draft"
	QuoteStatusSubmitted = "submitted"
	QuoteStatusApproved  = "approved"
	QuoteStatusRejected  = "rejected"
	QuoteStatusCompleted = "completed"
	QuoteStatusConfirmed = "confirmed"
	QuoteStatusReserved  = "reserved"
)

// MaxRoomsPerQuote caps the number of rooms a single quote may carry.
const MaxRoomsPerQuote = 3

// Service types accepted in quote_items.service_type.  Each tags the table
// the item's ServiceRefID points into.
const (
	ServiceTypeAirport = "airport"
	ServiceTypeRentcar = "rentcar"
	ServiceTypeTour    = "tour"
)

// Quote is a priced-or-unpriced draft travel order.  TotalPrice stays zero
// until the pricing step has run; a zero total renders to the customer as
// "견적 대기" (awaiting quote).
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owning user; quotes are never visible across users.
//  Status       – one of the QuoteStatus constants.
//  Title        – customer-facing title of the order.
//  Checkin      – checkin date used for all date-window lookups.
//  ScheduleCode – selected sailing schedule.
//  CruiseCode   – selected cruise.
//  PaymentCode  – selected payment plan.
//  DiscountRate – percentage discount applied to the grand total.
//  TotalPrice   – final amount in KRW, zero until priced.
//  SubmittedAt  – when the quote left draft (nullable).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Quote struct {
	ID           uint64     // quotes.id
	UserID       uint64     // quotes.user_id
	Status       string     // quotes.status
	Title        string     // quotes.title
	Checkin      time.Time  // quotes.checkin
	ScheduleCode string     // quotes.schedule_code
	CruiseCode   string     // quotes.cruise_code
	PaymentCode  string     // quotes.payment_code
	DiscountRate int        // quotes.discount_rate (percent)
	TotalPrice   int64      // quotes.total_price
	SubmittedAt  *time.Time // quotes.submitted_at (nullable)
	CreatedAt    time.Time  // quotes.created_at
	UpdatedAt    time.Time  // quotes.updated_at
}

// QuoteRoom is one cabin line of a quote.  Price fields are zero at insert
// time and filled in by the pricing step.
type QuoteRoom struct {
	ID         uint64 // quote_rooms.id
	QuoteID    uint64 // quote_rooms.quote_id
	RoomCode   string // quote_rooms.room_code
	Category   string // quote_rooms.category
	Persons    uint32 // quote_rooms.persons
	Infants    uint32 // quote_rooms.infants
	ExtraAdult uint32 // quote_rooms.extra_adult
	ExtraChild uint32 // quote_rooms.extra_child
	UnitPrice  int64  // quote_rooms.unit_price
	TotalPrice int64  // quote_rooms.total_price
}

// QuoteCar is one vehicle line of a quote.  CarCount is always >= 1.
type QuoteCar struct {
	ID            uint64 // quote_cars.id
	QuoteID       uint64 // quote_cars.quote_id
	VehicleCode   string // quote_cars.vehicle_code
	CategoryCode  string // quote_cars.category_code
	PassengerType string // quote_cars.passenger_type
	CarCount      uint32 // quote_cars.car_count
	UnitPrice     int64  // quote_cars.unit_price
	TotalPrice    int64  // quote_cars.total_price
}

// QuoteItem is a generic service line.  ServiceRefID points at a row of the
// type-specific service table named by ServiceType (service_airport,
// service_rentcar or service_tour).
type QuoteItem struct {
	ID           uint64 // quote_items.id
	QuoteID      uint64 // quote_items.quote_id
	ServiceType  string // quote_items.service_type
	ServiceRefID uint64 // quote_items.service_ref_id
	Quantity     uint32 // quote_items.quantity
	UnitPrice    int64  // quote_items.unit_price
	TotalPrice   int64  // quote_items.total_price
}

// QuotePriceSummary is the derived 1:1 pricing record of a quote.  It is
// never authoritative: it must always equal the sum of the current line
// totals minus the discount, and is recomputed whenever prices change.
type QuotePriceSummary struct {
	QuoteID        uint64    // quote_price_summary.quote_id
	TotalRoomPrice int64     // quote_price_summary.total_room_price
	TotalCarPrice  int64     // quote_price_summary.total_car_price
	GrandTotal     int64     // quote_price_summary.grand_total
	FinalTotal     int64     // quote_price_summary.final_total
	DiscountRate   int       // quote_price_summary.discount_rate
	Checkin        time.Time // quote_price_summary.checkin
}
