package domain

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// DynamicPrice overrides a court's base price for a date or weekday and an hour range
type DynamicPrice struct {
	ID           int64
	CourtID      int64
	SpecificDate *time.Time
	DayOfWeek    *int // 0 = воскресенье, как time.Weekday
	StartTime    types.TimeString
	EndTime      types.TimeString
	Price        int64
	CreatedAt    time.Time
}

// Validate checks the rule against the court hours
func (p *DynamicPrice) Validate(court *Court) error {
	if (p.SpecificDate == nil) == (p.DayOfWeek == nil) {
		return ErrInvalidPriceRule
	}
	if p.DayOfWeek != nil && (*p.DayOfWeek < 0 || *p.DayOfWeek > 6) {
		return ErrInvalidPriceRule
	}
	if p.StartTime.Validate() != nil || p.EndTime.Validate() != nil || !p.StartTime.IsBefore(p.EndTime) {
		return ErrInvalidTimeRange
	}
	if !court.ContainsRange(p.StartTime, p.EndTime) {
		return ErrOutsideCourtHours
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Covers returns true if slotStart lies in [StartTime, EndTime)
func (p *DynamicPrice) Covers(slotStart types.TimeString) bool {
	return !slotStart.IsBefore(p.StartTime) && slotStart.IsBefore(p.EndTime)
}

// AppliesToDate returns true if the rule targets the exact date
func (p *DynamicPrice) AppliesToDate(date time.Time) bool {
	if p.SpecificDate == nil {
		return false
	}
	y1, m1, d1 := p.SpecificDate.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// AppliesToWeekday returns true if the rule targets the weekday of the date
func (p *DynamicPrice) AppliesToWeekday(date time.Time) bool {
	return p.DayOfWeek != nil && time.Weekday(*p.DayOfWeek) == date.Weekday()
}

// PriceFor returns the price of a single slot
// Правило на конкретную дату важнее правила на день недели, оно важнее базовой цены.
// На одном уровне побеждает правило с наибольшим ID (созданное последним)
func PriceFor(court *Court, rules []*DynamicPrice, date time.Time, slotStart types.TimeString) int64 {
	var byDate, byWeekday *DynamicPrice

	for _, rule := range rules {
		if rule.CourtID != court.ID || !rule.Covers(slotStart) {
			continue
		}
		switch {
		case rule.AppliesToDate(date):
			if byDate == nil || rule.ID > byDate.ID {
				byDate = rule
			}
		case rule.AppliesToWeekday(date):
			if byWeekday == nil || rule.ID > byWeekday.ID {
				byWeekday = rule
			}
		}
	}

	if byDate != nil {
		return byDate.Price
	}
	if byWeekday != nil {
		return byWeekday.Price
	}
	return court.BasePrice
}

// PriceForSpan sums slot prices of a booking of `slots` slots starting at start
func PriceForSpan(court *Court, rules []*DynamicPrice, date time.Time, start types.TimeString, slots int) (int64, error) {
	var total int64
	current := start
	for i := 0; i < slots; i++ {
		total += PriceFor(court, rules, date, current)
		next, err := current.AddMinutes(court.SlotDurationMinutes)
		if err != nil {
			return 0, err
		}
		current = next
	}
	return total, nil
}
