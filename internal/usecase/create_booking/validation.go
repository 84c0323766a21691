package create_booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, maxSlotsPerItem int) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}
	if len(req.Items) > MaxItemsPerOrder {
		return fmt.Errorf("%w: at most %d items per order", ErrInvalidInput, MaxItemsPerOrder)
	}

	if req.Notes != nil && len([]rune(*req.Notes)) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	for i, item := range req.Items {
		if item.CourtID <= 0 {
			return fmt.Errorf("%w: item %d: courtID must be positive", ErrInvalidInput, i)
		}
		if item.Date.IsZero() {
			return fmt.Errorf("%w: item %d: date is required", ErrInvalidInput, i)
		}
		if err := item.StartTime.Validate(); err != nil {
			return fmt.Errorf("%w: item %d: invalid startTime: %v", ErrInvalidInput, i, err)
		}
		if item.Slots < 1 || (maxSlotsPerItem > 0 && item.Slots > maxSlotsPerItem) {
			return fmt.Errorf("%w: item %d: slots must be between 1 and %d", ErrInvalidInput, i, maxSlotsPerItem)
		}
	}

	return nil
}

// validateDate проверяет, что дата не в прошлом и попадает в окно advance_days
func validateDate(date, now time.Time, advanceDays int) error {
	today := startOfDay(now)
	if startOfDay(date).Before(today) {
		return ErrInvalidDate
	}

	// advanceDays = 0 означает отсутствие ограничения
	if advanceDays == 0 {
		return nil
	}

	if startOfDay(date).After(today.AddDate(0, 0, advanceDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, advanceDays)
	}

	return nil
}

// validateNotice проверяет, что до начала брони осталось не меньше min_notice_minutes
func validateNotice(date time.Time, span domain.Span, now time.Time, minNoticeMinutes int) error {
	earliest := now.Add(time.Duration(minNoticeMinutes) * time.Minute)
	if span.Start.On(date).Before(earliest) {
		return fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, minNoticeMinutes)
	}
	return nil
}

// validateSpan переводит ошибки сетки в ошибки usecase
func validateSpan(court *domain.Court, item Item) (domain.Span, error) {
	span, err := court.SpanOf(item.StartTime, item.Slots)
	if err != nil {
		if errors.Is(err, domain.ErrSlotNotOnGrid) || errors.Is(err, domain.ErrOutsideCourtHours) {
			return domain.Span{}, fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
		}
		return domain.Span{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return span, nil
}

// checkItemsDisjoint запрещает пересечение позиций одного заказа на одном корте
func checkItemsDisjoint(items []plannedItem) error {
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			a, b := items[i], items[j]
			if a.court.ID != b.court.ID || !a.date.Equal(b.date) {
				continue
			}
			if domain.Overlaps(a.span.Start, a.span.End, b.span.Start, b.span.End) {
				return fmt.Errorf("%w: %s %s-%s", ErrOverlappingItems,
					a.date.Format(domain.DateFormat), b.span.Start, b.span.End)
			}
		}
	}
	return nil
}

// startOfDay обнуляет время, сохраняя часовой пояс
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
