package domain

import "github.com/m04kA/SMC-CourtBooking/pkg/types"

// SlotStatus availability of a grid slot
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
	SlotBlocked   SlotStatus = "blocked"
	SlotPast      SlotStatus = "past"
)

// Slot represents one cell of a court's daily grid
type Slot struct {
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	Price           int64
	Status          SlotStatus
}

// IsBookable returns true if the slot can be booked
func (s *Slot) IsBookable() bool {
	return s.Status == SlotAvailable
}
