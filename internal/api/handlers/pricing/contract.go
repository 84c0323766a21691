package pricing

import (
	"context"

	"github.com/m04kA/SMC-CourtBooking/internal/service/pricing/models"
)

type PricingService interface {
	ListDynamicPrices(ctx context.Context, courtID int64) (*models.PriceListResponse, error)
	CreateDynamicPrice(ctx context.Context, req *models.CreatePriceRequest) (*models.PriceResponse, error)
	DeleteDynamicPrice(ctx context.Context, id, userID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
