package venue_dashboard

import (
	"context"

	"github.com/m04kA/SMC-CourtBooking/internal/service/dashboard/models"
)

type DashboardService interface {
	GetVenueDashboard(ctx context.Context, req *models.PeriodRequest) (*models.DashboardResponse, error)
	ExportVenueBookings(ctx context.Context, req *models.PeriodRequest) (*models.ExportFile, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
