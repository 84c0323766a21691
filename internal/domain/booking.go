package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending          BookingStatus = "pending"
	StatusConfirmed        BookingStatus = "confirmed"
	StatusCompleted        BookingStatus = "completed"
	StatusCancelledByUser  BookingStatus = "cancelled_by_user"
	StatusCancelledByVenue BookingStatus = "cancelled_by_venue"
	StatusExpired          BookingStatus = "expired"
	StatusNoShow           BookingStatus = "no_show"
)

// ParseBookingStatus converts a raw string to BookingStatus
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelledByUser,
		StatusCancelledByVenue, StatusExpired, StatusNoShow:
		return BookingStatus(s), nil
	}
	return "", fmt.Errorf("%w: booking status %q", ErrInvalidStatus, s)
}

// BookingSource shows who created the booking
type BookingSource string

const (
	SourceOnline BookingSource = "online"
	SourceManual BookingSource = "manual"
)

// Booking represents a court reservation for one or more contiguous slots
type Booking struct {
	ID      int64
	OrderID int64
	CourtID int64
	VenueID int64
	UserID  *int64 // nil для ручных бронирований без аккаунта

	CustomerName  string
	CustomerPhone *string

	BookingDate     time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Price           int64 // в минимальных единицах валюты
	Status          BookingStatus
	Source          BookingSource
	Notes           *string

	CancellationReason *string
	CancelledAt        *time.Time

	// Denormalized from orders
	OrderPublicID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndTime returns the end of the booking; empty if the span is out of day range
func (b *Booking) EndTime() types.TimeString {
	end, err := b.StartTime.AddMinutes(b.DurationMinutes)
	if err != nil {
		return ""
	}
	return end
}

// StartsAt returns the absolute start moment in the given location
func (b *Booking) StartsAt(loc *time.Location) time.Time {
	y, m, d := b.BookingDate.Date()
	return b.StartTime.On(time.Date(y, m, d, 0, 0, 0, 0, loc))
}

// IsActive returns true if the booking occupies its slots
func (b *Booking) IsActive() bool {
	for _, s := range ActiveStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelledByUser || b.Status == StatusCancelledByVenue
}

// CountsAsRevenue returns true if the booking price is part of venue revenue
func (b *Booking) CountsAsRevenue() bool {
	return b.Status == StatusConfirmed || b.Status == StatusCompleted
}

// IsOwnedBy returns true if the booking belongs to the user
func (b *Booking) IsOwnedBy(userID int64) bool {
	return b.UserID != nil && *b.UserID == userID
}

// Overlaps reports whether the booking intersects [start, end)
// Граничащие интервалы не пересекаются
func (b *Booking) Overlaps(start, end types.TimeString) bool {
	return Overlaps(b.StartTime, b.EndTime(), start, end)
}

// Overlaps checks strict intersection of [aStart, aEnd) and [bStart, bEnd)
func Overlaps(aStart, aEnd, bStart, bEnd types.TimeString) bool {
	if aEnd.IsZero() || bEnd.IsZero() {
		return false
	}
	return aStart.IsBefore(bEnd) && bStart.IsBefore(aEnd)
}

// BookingsFilter фильтр для выборки бронирований
type BookingsFilter struct {
	VenueID         *int64
	CourtID         *int64
	UserID          *int64
	OrderID         *int64
	StartDate       *time.Time     // Начало периода (включительно)
	EndDate         *time.Time     // Конец периода (включительно)
	Status          *BookingStatus // Фильтр по статусу
	IncludeInactive bool           // Включать отменённые, истёкшие и no-show

	// HoldsValidAt исключает pending бронирования, чей заказ истёк к этому моменту
	HoldsValidAt *time.Time
}

// IsSingleDay returns true if the filter targets exactly one date
func (f BookingsFilter) IsSingleDay() bool {
	return f.StartDate != nil && f.EndDate != nil && f.StartDate.Equal(*f.EndDate)
}

// DateIn возвращает полночь того же календарного дня в зоне loc.
// Дата из запроса разобрана в UTC, перевод через In сдвинул бы её на сутки в зонах западнее UTC
func DateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
