package get_available_slots

import (
	"fmt"
	"time"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CourtID <= 0 {
		return fmt.Errorf("%w: courtID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}

// validateDate проверяет окно бронирования
// Прошедшие даты допустимы: в сетке все слоты будут past
func validateDate(date, now time.Time, advanceDays int) error {
	// advanceDays = 0 означает отсутствие ограничения
	if advanceDays == 0 {
		return nil
	}

	maxDate := startOfDay(now).AddDate(0, 0, advanceDays)
	if startOfDay(date).After(maxDate) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceDays)
	}

	return nil
}
