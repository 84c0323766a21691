package get_order

import (
	"context"

	"github.com/m04kA/SMC-CourtBooking/internal/service/orders/models"
)

type OrderService interface {
	GetOrder(ctx context.Context, publicID string, userID int64) (*models.OrderResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
