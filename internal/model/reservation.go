package model

import "time"

// Reservation statuses.  These belong to the booking record itself and are
// intentionally a separate enumeration from payment statuses; the two
// lifecycles must not be conflated.
const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
)

// Payment statuses for reservation_payments rows.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Reservation is the booking record created exactly once per converted
// quote.  The quote_id column carries a unique constraint so a second
// conversion attempt fails instead of duplicating the booking.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who owns the reservation.
//  QuoteID     – quote the reservation was converted from (unique).
//  Type        – reservation kind (cruise, hotel, airport, rentcar).
//  Status      – one of the ReservationStatus constants.
//  TotalAmount – amount carried over from the quote's final total, KRW.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Reservation struct {
	ID          uint64    // reservations.id
	UserID      uint64    // reservations.user_id
	QuoteID     uint64    // reservations.quote_id
	Type        string    // reservations.type
	Status      string    // reservations.status
	TotalAmount int64     // reservations.total_amount
	CreatedAt   time.Time // reservations.created_at
	UpdatedAt   time.Time // reservations.updated_at
}

// ReservationPayment records one payment attempt against a reservation.
// RawResponse captures the gateway's callback query string verbatim so
// disputes can be investigated without the gateway's portal.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation being paid.
//  Amount        – amount requested from the gateway, KRW.
//  PaymentStatus – pending, completed or failed.
//  PaymentMethod – customer-chosen method (card, transfer, ...).
//  Gateway       – gateway identifier ("onepay").
//  TransactionID – merchant transaction id sent to the gateway.
//  RawResponse   – opaque capture of the gateway callback (nullable).
//  Memo          – operator memo (nullable).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type ReservationPayment struct {
	ID            uint64    // reservation_payments.id
	ReservationID uint64    // reservation_payments.reservation_id
	Amount        int64     // reservation_payments.amount
	PaymentStatus string    // reservation_payments.payment_status
	PaymentMethod string    // reservation_payments.payment_method
	Gateway       string    // reservation_payments.gateway
	TransactionID string    // reservation_payments.transaction_id
	RawResponse   *string   // reservation_payments.raw_response (nullable)
	Memo          *string   // reservation_payments.memo (nullable)
	CreatedAt     time.Time // reservation_payments.created_at
	UpdatedAt     time.Time // reservation_payments.updated_at
}
