package domain

// Court validation constants
const (
	MinSlotDurationMinutes = 15
	MaxSlotDurationMinutes = 240 // 4 hours
	MaxNotesLength         = 500
	MaxCancellationReason  = 500
	MaxBlockReasonLength   = 500
	MaxDashboardPeriodDays = 366
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов бронирований, не занимающих слот
var InactiveStatuses = []BookingStatus{
	StatusCancelledByUser,
	StatusCancelledByVenue,
	StatusExpired,
	StatusNoShow,
}

// ActiveStatuses список статусов бронирований, занимающих слот
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
}

// RevenueStatuses статусы, которые учитываются в выручке
var RevenueStatuses = []BookingStatus{
	StatusConfirmed,
	StatusCompleted,
}
