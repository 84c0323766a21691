package create_manual_booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	createManualBooking "github.com/m04kA/SMC-CourtBooking/internal/usecase/create_manual_booking"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time")
)

// CreateManualBookingRequest HTTP request model
type CreateManualBookingRequest struct {
	CourtID       int64   `json:"courtId"`
	Date          string  `json:"date"`      // "2025-10-15"
	StartTime     string  `json:"startTime"` // "10:00"
	Slots         int     `json:"slots"`
	CustomerName  string  `json:"customerName"`
	CustomerPhone *string `json:"customerPhone,omitempty"`
	PaymentMethod string  `json:"paymentMethod"` // cash | transfer
	Price         *int64  `json:"price,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateManualBookingRequest) ToUseCaseRequest(managerID int64) (*createManualBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidDate, err)
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidTime, err)
	}

	return &createManualBooking.Request{
		ManagerID:     managerID,
		CourtID:       r.CourtID,
		Date:          date,
		StartTime:     startTime,
		Slots:         r.Slots,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		PaymentMethod: r.PaymentMethod,
		PriceOverride: r.Price,
		Notes:         r.Notes,
	}, nil
}
