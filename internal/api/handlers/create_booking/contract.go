package create_booking

import (
	"context"

	orderModels "github.com/m04kA/SMC-CourtBooking/internal/service/orders/models"
	createBooking "github.com/m04kA/SMC-CourtBooking/internal/usecase/create_booking"
)

type CreateBookingUseCase interface {
	Execute(ctx context.Context, req *createBooking.Request) (*orderModels.OrderResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
