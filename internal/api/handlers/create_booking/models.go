package create_booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-CourtBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time")
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	Items []BookingItem `json:"items"`
	Notes *string       `json:"notes,omitempty"`
}

// BookingItem позиция заказа
type BookingItem struct {
	CourtID   int64  `json:"courtId"`
	Date      string `json:"date"`      // "2025-10-15"
	StartTime string `json:"startTime"` // "10:00"
	Slots     int    `json:"slots"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	items := make([]createBooking.Item, 0, len(r.Items))
	for i, item := range r.Items {
		date, err := time.Parse(domain.DateFormat, item.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", errInvalidDate, i, err)
		}

		startTime, err := types.NewTimeStringFromString(item.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", errInvalidTime, i, err)
		}

		items = append(items, createBooking.Item{
			CourtID:   item.CourtID,
			Date:      date,
			StartTime: startTime,
			Slots:     item.Slots,
		})
	}

	return &createBooking.Request{
		UserID: userID,
		Items:  items,
		Notes:  r.Notes,
	}, nil
}
