package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// Venue represents a facility with courts; it is the tenant boundary
type Venue struct {
	ID          int64
	OwnerID     int64
	Name        string
	Address     string
	City        string
	Description string
	Phone       string
	IsActive    bool
	ManagerIDs  []int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsManager returns true if the user may administer the venue
func (v *Venue) IsManager(userID int64) bool {
	if v.OwnerID == userID {
		return true
	}
	for _, id := range v.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Sport played on a court
type Sport string

const (
	SportBadminton  Sport = "badminton"
	SportTennis     Sport = "tennis"
	SportFutsal     Sport = "futsal"
	SportPadel      Sport = "padel"
	SportBasketball Sport = "basketball"
	SportOther      Sport = "other"
)

// ParseSport converts a raw string to Sport
func ParseSport(s string) (Sport, error) {
	switch Sport(s) {
	case SportBadminton, SportTennis, SportFutsal, SportPadel, SportBasketball, SportOther:
		return Sport(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSport, s)
}

// Court represents a bookable unit within a venue
type Court struct {
	ID                  int64
	VenueID             int64
	Name                string
	Sport               Sport
	OpenTime            types.TimeString
	CloseTime           types.TimeString // может быть 24:00
	SlotDurationMinutes int
	BasePrice           int64
	ExternalRef         *string // ID площадки у внешнего провайдера
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Validate checks hours, slot duration, price and sport
func (c *Court) Validate() error {
	if _, err := ParseSport(string(c.Sport)); err != nil {
		return err
	}
	if err := c.OpenTime.Validate(); err != nil {
		return fmt.Errorf("%w: open time: %v", ErrInvalidCourtHours, err)
	}
	if err := c.CloseTime.Validate(); err != nil {
		return fmt.Errorf("%w: close time: %v", ErrInvalidCourtHours, err)
	}
	if !c.OpenTime.IsBefore(c.CloseTime) {
		return ErrInvalidCourtHours
	}
	if c.SlotDurationMinutes < MinSlotDurationMinutes || c.SlotDurationMinutes > MaxSlotDurationMinutes {
		return fmt.Errorf("%w: must be between %d and %d minutes",
			ErrInvalidSlotDuration, MinSlotDurationMinutes, MaxSlotDurationMinutes)
	}
	if c.OperatingMinutes()%c.SlotDurationMinutes != 0 {
		return fmt.Errorf("%w: %d minutes does not divide opening hours", ErrInvalidSlotDuration, c.SlotDurationMinutes)
	}
	if c.BasePrice < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// OperatingMinutes returns the length of the working day in minutes
func (c *Court) OperatingMinutes() int {
	return c.OpenTime.MinutesUntil(c.CloseTime)
}

// IsAligned returns true if t is on the slot grid
func (c *Court) IsAligned(t types.TimeString) bool {
	offset := c.OpenTime.MinutesUntil(t)
	return offset >= 0 && c.SlotDurationMinutes > 0 && offset%c.SlotDurationMinutes == 0
}

// ContainsRange returns true if [start, end) lies inside working hours
func (c *Court) ContainsRange(start, end types.TimeString) bool {
	return !start.IsBefore(c.OpenTime) && !end.IsAfter(c.CloseTime) && start.IsBefore(end)
}

// BlockSource shows where a block came from
type BlockSource string

const (
	BlockManual   BlockSource = "manual"
	BlockExternal BlockSource = "external"
)

// CourtBlock makes a time range of a court unavailable
type CourtBlock struct {
	ID         int64
	CourtID    int64
	BlockDate  time.Time
	StartTime  types.TimeString
	EndTime    types.TimeString
	Reason     string
	Source     BlockSource
	ExternalID *string
	CreatedAt  time.Time
}

// Overlaps reports whether the block intersects [start, end)
func (b *CourtBlock) Overlaps(start, end types.TimeString) bool {
	return Overlaps(b.StartTime, b.EndTime, start, end)
}

// IsExternal returns true if the block is managed by field sync
func (b *CourtBlock) IsExternal() bool {
	return b.Source == BlockExternal
}
