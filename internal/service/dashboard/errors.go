package dashboard

import "errors"

var (
	ErrVenueNotFound = errors.New("venue not found")
	ErrAccessDenied  = errors.New("access denied")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrPeriodTooLong = errors.New("period is too long")
	ErrExportFailed  = errors.New("failed to build export")
	ErrInternal      = errors.New("internal error")
)
