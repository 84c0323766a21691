package models

// PeriodRequest период отчёта по площадке
type PeriodRequest struct {
	UserID    int64
	VenueID   int64
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD, включительно
}

// DashboardResponse сводка по площадке за период
type DashboardResponse struct {
	VenueID           int64        `json:"venueId"`
	StartDate         string       `json:"startDate"`
	EndDate           string       `json:"endDate"`
	TotalBookings     int          `json:"totalBookings"`
	ConfirmedBookings int          `json:"confirmedBookings"`
	CancelledBookings int          `json:"cancelledBookings"`
	PendingBookings   int          `json:"pendingBookings"`
	Revenue           int64        `json:"revenue"`
	OccupancyRate     float64      `json:"occupancyRate"`
	Courts            []CourtStats `json:"courts"`
	Daily             []DailyStats `json:"daily"`
}

// CourtStats показатели одного корта
type CourtStats struct {
	CourtID          int64   `json:"courtId"`
	Name             string  `json:"name"`
	Bookings         int     `json:"bookings"`
	Revenue          int64   `json:"revenue"`
	BookedMinutes    int     `json:"bookedMinutes"`
	AvailableMinutes int     `json:"availableMinutes"`
	OccupancyRate    float64 `json:"occupancyRate"`
}

// DailyStats показатели за один день
type DailyStats struct {
	Date     string `json:"date"`
	Bookings int    `json:"bookings"`
	Revenue  int64  `json:"revenue"`
}

// ExportFile готовый файл выгрузки
type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}
