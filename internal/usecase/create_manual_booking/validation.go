package create_manual_booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, maxSlotsPerItem int) (domain.PaymentMethod, error) {
	if req.ManagerID <= 0 {
		return "", fmt.Errorf("%w: managerID must be positive", ErrInvalidInput)
	}
	if req.CourtID <= 0 {
		return "", fmt.Errorf("%w: courtID must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return "", fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return "", fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	if req.Slots < 1 || (maxSlotsPerItem > 0 && req.Slots > maxSlotsPerItem) {
		return "", fmt.Errorf("%w: slots must be between 1 and %d", ErrInvalidInput, maxSlotsPerItem)
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return "", fmt.Errorf("%w: customerName is required", ErrInvalidInput)
	}
	if len([]rune(name)) > MaxCustomerNameLength {
		return "", fmt.Errorf("%w: customerName must be at most %d characters", ErrInvalidInput, MaxCustomerNameLength)
	}

	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil || method == domain.MethodCard {
		return "", fmt.Errorf("%w: paymentMethod must be cash or transfer", ErrInvalidInput)
	}

	if req.PriceOverride != nil && *req.PriceOverride < 0 {
		return "", fmt.Errorf("%w: priceOverride must be >= 0", ErrInvalidInput)
	}
	if req.Notes != nil && len([]rune(*req.Notes)) > domain.MaxNotesLength {
		return "", fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return method, nil
}

// validateTime проверяет окно дат и то, что бронь не начинается в прошлом.
// Минимальный запас до начала для менеджера не действует
func validateTime(date time.Time, span domain.Span, now time.Time, advanceDays int) error {
	today := startOfDay(now)
	if date.Before(today) || span.Start.On(date).Before(now) {
		return ErrInvalidDate
	}
	if advanceDays > 0 && date.After(today.AddDate(0, 0, advanceDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceDays)
	}
	return nil
}

func validateSpan(court *domain.Court, req *Request) (domain.Span, error) {
	span, err := court.SpanOf(req.StartTime, req.Slots)
	if err != nil {
		if errors.Is(err, domain.ErrSlotNotOnGrid) || errors.Is(err, domain.ErrOutsideCourtHours) {
			return domain.Span{}, fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
		}
		return domain.Span{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return span, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
