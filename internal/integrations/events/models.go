package events

import "time"

// Типы доменных событий
const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	OrderPaid        = "order.paid"
	OrderFailed      = "order.failed"
	OrderExpired     = "order.expired"
)

// Event доменное событие, публикуемое в Kafka
type Event struct {
	Type          string    `json:"type"`
	OrderPublicID string    `json:"orderId"`
	VenueID       int64     `json:"venueId"`
	BookingIDs    []int64   `json:"bookingIds,omitempty"`
	UserID        *int64    `json:"userId,omitempty"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Topics топики Kafka для событий
type Topics struct {
	Booking string
	Order   string
}
