package create_manual_booking

import (
	"context"

	orderModels "github.com/m04kA/SMC-CourtBooking/internal/service/orders/models"
	createManualBooking "github.com/m04kA/SMC-CourtBooking/internal/usecase/create_manual_booking"
)

type CreateManualBookingUseCase interface {
	Execute(ctx context.Context, req *createManualBooking.Request) (*orderModels.OrderResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
