package models

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	bookingModels "github.com/m04kA/SMC-CourtBooking/internal/service/bookings/models"
)

// PaymentResponse данные попытки оплаты
type PaymentResponse struct {
	ID            int64     `json:"id"`
	Provider      string    `json:"provider"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	FailureReason *string   `json:"failureReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// OrderResponse заказ вместе с бронями и платежами
type OrderResponse struct {
	ID            string                          `json:"id"`
	VenueID       int64                           `json:"venueId"`
	UserID        *int64                          `json:"userId,omitempty"`
	TotalAmount   int64                           `json:"totalAmount"`
	Currency      string                          `json:"currency"`
	Status        string                          `json:"status"`
	PaymentMethod string                          `json:"paymentMethod"`
	ExpiresAt     *time.Time                      `json:"expiresAt,omitempty"`
	PaidAt        *time.Time                      `json:"paidAt,omitempty"`
	ClientSecret  string                          `json:"clientSecret,omitempty"`
	Bookings      []bookingModels.BookingResponse `json:"bookings"`
	Payments      []PaymentResponse               `json:"payments,omitempty"`
	CreatedAt     time.Time                       `json:"createdAt"`
}

// FromDomainOrder собирает ответ из заказа, его броней и платежей
func FromDomainOrder(o *domain.Order, bookings []*domain.Booking, payments []*domain.Payment) *OrderResponse {
	resp := &OrderResponse{
		ID:            o.PublicID,
		VenueID:       o.VenueID,
		UserID:        o.UserID,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		ExpiresAt:     o.ExpiresAt,
		PaidAt:        o.PaidAt,
		Bookings:      bookingModels.FromDomainBookingList(bookings).Bookings,
		CreatedAt:     o.CreatedAt,
	}

	for _, p := range payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:            p.ID,
			Provider:      string(p.Provider),
			Amount:        p.Amount,
			Currency:      p.Currency,
			Status:        string(p.Status),
			FailureReason: p.FailureReason,
			CreatedAt:     p.CreatedAt,
		})
	}

	return resp
}
