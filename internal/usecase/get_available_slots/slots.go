package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// generateGrid строит сетку слотов от открытия корта с шагом slot_duration_minutes
// Слот попадает в сетку, только если заканчивается не позже закрытия
func generateGrid(court *domain.Court) ([]types.TimeString, error) {
	grid := make([]types.TimeString, 0)
	current := court.OpenTime

	for current.IsBefore(court.CloseTime) {
		slotEnd, err := current.AddMinutes(court.SlotDurationMinutes)
		if err != nil {
			return nil, err
		}
		if slotEnd.IsAfter(court.CloseTime) {
			break
		}

		grid = append(grid, current)
		current = slotEnd
	}

	return grid, nil
}

// buildSlots определяет статус и цену каждого слота сетки
//
// Приоритет статусов: blocked > booked > past > available
//
// Примеры (слот 11:00-12:00):
// - блокировка 11:30-13:00 → blocked, даже если на слот есть бронь
// - бронь 10:00-11:00 → available (интервалы граничат)
// - сегодня 10:45 при min notice 30 минут → past
func buildSlots(
	court *domain.Court,
	grid []types.TimeString,
	date time.Time,
	now time.Time,
	minNoticeMinutes int,
	bookings []*domain.Booking,
	blocks []*domain.CourtBlock,
	rules []*domain.DynamicPrice,
) ([]domain.Slot, error) {
	earliestStart := now.Add(time.Duration(minNoticeMinutes) * time.Minute)

	slots := make([]domain.Slot, 0, len(grid))
	for _, start := range grid {
		end, err := start.AddMinutes(court.SlotDurationMinutes)
		if err != nil {
			return nil, err
		}

		slot := domain.Slot{
			StartTime:       start,
			EndTime:         end,
			DurationMinutes: court.SlotDurationMinutes,
			Price:           domain.PriceFor(court, rules, date, start),
			Status:          domain.SlotAvailable,
		}

		switch {
		case isBlocked(start, end, blocks):
			slot.Status = domain.SlotBlocked
		case isBooked(start, end, bookings):
			slot.Status = domain.SlotBooked
		case start.On(date).Before(earliestStart):
			slot.Status = domain.SlotPast
		}

		slots = append(slots, slot)
	}

	return slots, nil
}

// isBooked проверяет пересечение слота с активными бронированиями
// Граничащие интервалы не пересекаются
func isBooked(start, end types.TimeString, bookings []*domain.Booking) bool {
	for _, b := range bookings {
		if b.IsActive() && b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func isBlocked(start, end types.TimeString, blocks []*domain.CourtBlock) bool {
	for _, block := range blocks {
		if block.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// startOfDay обнуляет время, сохраняя часовой пояс
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
