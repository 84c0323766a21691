package courts

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/service/venues/models"
)

type CourtService interface {
	CreateCourt(ctx context.Context, req *models.CreateCourtRequest) (*models.CourtResponse, error)
	UpdateCourt(ctx context.Context, courtID int64, req *models.UpdateCourtRequest) (*models.CourtResponse, error)
	ListCourts(ctx context.Context, venueID int64) (*models.CourtListResponse, error)
	CreateBlock(ctx context.Context, req *models.CreateBlockRequest) (*models.BlockResponse, error)
	ListBlocks(ctx context.Context, courtID int64, from, to time.Time) (*models.BlockListResponse, error)
	DeleteBlock(ctx context.Context, blockID, userID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
