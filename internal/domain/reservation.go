package domain

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

var (
	ErrSlotNotOnGrid = errors.New("domain: start time is not on the slot grid")
	ErrSlotTaken     = errors.New("domain: slot overlaps an active booking")
	ErrSlotBlocked   = errors.New("domain: slot overlaps a court block")
)

// Span is a contiguous range of grid slots on one court and date
type Span struct {
	Start types.TimeString
	End   types.TimeString
	Slots int
}

// SpanOf checks that `slots` slots starting at start lie on the grid inside working hours
func (c *Court) SpanOf(start types.TimeString, slots int) (Span, error) {
	if slots < 1 {
		return Span{}, fmt.Errorf("%w: at least one slot is required", ErrInvalidTimeRange)
	}
	if !c.IsAligned(start) {
		return Span{}, fmt.Errorf("%w: %s", ErrSlotNotOnGrid, start)
	}

	end, err := start.AddMinutes(slots * c.SlotDurationMinutes)
	if err != nil {
		return Span{}, fmt.Errorf("%w: %v", ErrOutsideCourtHours, err)
	}
	if !c.ContainsRange(start, end) {
		return Span{}, fmt.Errorf("%w: %s-%s", ErrOutsideCourtHours, start, end)
	}

	return Span{Start: start, End: end, Slots: slots}, nil
}

// Minutes returns the length of the span
func (s Span) Minutes() int {
	return s.Start.MinutesUntil(s.End)
}

// FindConflict returns ErrSlotBlocked or ErrSlotTaken if the span intersects a block or an active booking
func FindConflict(span Span, bookings []*Booking, blocks []*CourtBlock) error {
	for _, block := range blocks {
		if block.Overlaps(span.Start, span.End) {
			return fmt.Errorf("%w: %s-%s (%s)", ErrSlotBlocked, block.StartTime, block.EndTime, block.Reason)
		}
	}
	for _, b := range bookings {
		if b.IsActive() && b.Overlaps(span.Start, span.End) {
			return fmt.Errorf("%w: %s-%s", ErrSlotTaken, b.StartTime, b.EndTime())
		}
	}
	return nil
}
