package domain

import (
	"fmt"
	"time"
)

// OrderStatus represents the payment state of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderFailed    OrderStatus = "failed"
	OrderExpired   OrderStatus = "expired"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

// PaymentMethod how the order is paid
type PaymentMethod string

const (
	MethodCard     PaymentMethod = "card"
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
)

// ParsePaymentMethod converts a raw string to PaymentMethod
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodCard, MethodCash, MethodTransfer:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("%w: payment method %q", ErrInvalidStatus, s)
}

// Order groups one or more bookings under one payment
type Order struct {
	ID            int64
	PublicID      string
	UserID        *int64
	VenueID       int64
	TotalAmount   int64
	Currency      string
	Status        OrderStatus
	PaymentMethod PaymentMethod
	ExpiresAt     *time.Time
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsExpiredAt returns true if a pending order outlived its payment window
func (o *Order) IsExpiredAt(now time.Time) bool {
	return o.Status == OrderPending && o.ExpiresAt != nil && o.ExpiresAt.Before(now)
}

// IsPaidByCard returns true if money was captured through the provider
func (o *Order) IsPaidByCard() bool {
	return o.Status == OrderPaid && o.PaymentMethod == MethodCard
}

// IsOwnedBy returns true if the order belongs to the user
func (o *Order) IsOwnedBy(userID int64) bool {
	return o.UserID != nil && *o.UserID == userID
}

// PaymentProvider who processed the payment
type PaymentProvider string

const (
	ProviderStripe PaymentProvider = "stripe"
	ProviderManual PaymentProvider = "manual"
)

// PaymentStatus represents the state of a payment attempt
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment is one payment attempt for an order
type Payment struct {
	ID            int64
	OrderID       int64
	Provider      PaymentProvider
	ProviderRef   *string // ID PaymentIntent у провайдера
	Amount        int64
	Currency      string
	Status        PaymentStatus
	FailureReason *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
