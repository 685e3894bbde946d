// Package queue defines message payloads exchanged over the message broker
// and the publisher/consumer plumbing around them.
package queue

// QuotePricedEvent is published after a pricing pass commits. Downstream
// consumers can notify the customer that the quote left the "견적 대기"
// state without querying the primary database.
type QuotePricedEvent struct {
	QuoteID    uint64 `json:"quote_id"`
	UserID     uint64 `json:"user_id"`
	GrandTotal int64  `json:"grand_total"`
	FinalTotal int64  `json:"final_total"`
	PricedAt   string `json:"priced_at"`
}

// ReservationCreatedEvent is published when a quote is successfully
// converted into a reservation. It carries enough information for
// logging, notification or analytics consumers.
type ReservationCreatedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	QuoteID       uint64 `json:"quote_id"`
	QuoteTitle    string `json:"quote_title"`
	Type          string `json:"type"`
	TotalAmount   int64  `json:"total_amount"`
	CreatedAt     string `json:"created_at"`
}

// Queue names. Both queues are declared durable by publisher and consumer.
const (
	QuotePricedQueue        = "quote.priced"
	ReservationCreatedQueue = "reservation.created"
)
