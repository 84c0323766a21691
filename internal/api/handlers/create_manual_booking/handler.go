package create_manual_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	createManualBooking "github.com/m04kA/SMC-CourtBooking/internal/usecase/create_manual_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidDate        = "некорректный формат даты бронирования, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:MM"
	msgInvalidInput       = "некорректные данные бронирования"
	msgCourtNotFound      = "корт не найден"
	msgForbidden          = "доступ запрещен"
	msgInvalidBookingDate = "некорректная дата бронирования"
	msgDateTooFar         = "дата бронирования слишком далеко в будущем"
	msgInvalidTimeSlot    = "некорректный временной слот"
	msgSlotNotAvailable   = "выбранный временной слот недоступен"
)

type Handler struct {
	useCase CreateManualBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateManualBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/manual
// Бронь от имени клиента, оплаченная на месте. Доступно менеджерам площадки корта
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	managerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/manual - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateManualBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/manual - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(managerID)
	if err != nil {
		h.logger.Warn("POST /bookings/manual - Invalid request: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	order, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createManualBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings/manual - Slot not available: court_id=%d, manager_id=%d", req.CourtID, managerID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, createManualBooking.ErrCourtNotFound):
			h.logger.Warn("POST /bookings/manual - Court not found: court_id=%d", req.CourtID)
			handlers.RespondNotFound(w, msgCourtNotFound)

		case errors.Is(err, createManualBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/manual - Access denied: court_id=%d, manager_id=%d", req.CourtID, managerID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, createManualBooking.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createManualBooking.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createManualBooking.ErrInvalidTimeSlot):
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, createManualBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/manual - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/manual - Failed to create booking: court_id=%d, error=%v", req.CourtID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/manual - Booking created successfully: order_id=%s, manager_id=%d",
		order.ID, managerID)
	handlers.RespondJSON(w, http.StatusCreated, order)
}
