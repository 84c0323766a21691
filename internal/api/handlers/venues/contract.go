package venues

import (
	"context"

	"github.com/m04kA/SMC-CourtBooking/internal/service/venues/models"
)

type VenueService interface {
	CreateVenue(ctx context.Context, req *models.CreateVenueRequest) (*models.VenueResponse, error)
	ListVenues(ctx context.Context, city *string, onlyActive bool) (*models.VenueListResponse, error)
	GetVenue(ctx context.Context, id int64) (*models.VenueResponse, error)
	UpdateVenue(ctx context.Context, id int64, req *models.UpdateVenueRequest) (*models.VenueResponse, error)
	AddManager(ctx context.Context, venueID, callerID, managerID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
