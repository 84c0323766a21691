package domain

import "errors"

var (
	ErrInvalidSport        = errors.New("domain: unknown sport")
	ErrInvalidCourtHours   = errors.New("domain: court must open before it closes")
	ErrInvalidSlotDuration = errors.New("domain: invalid slot duration")
	ErrInvalidPrice        = errors.New("domain: price must not be negative")
	ErrInvalidTimeRange    = errors.New("domain: start must be before end")
	ErrOutsideCourtHours   = errors.New("domain: time range is outside court hours")
	ErrInvalidPriceRule    = errors.New("domain: exactly one of specific date or day of week must be set")
	ErrInvalidStatus       = errors.New("domain: invalid status")
)
