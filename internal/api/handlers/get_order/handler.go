package get_order

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/service/orders"
)

const (
	msgInvalidOrderID = "некорректный ID заказа"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgNotFound       = "заказ не найден"
	msgForbidden      = "доступ запрещен"
)

type Handler struct {
	service OrderService
	logger  Logger
}

func NewHandler(service OrderService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/orders/{orderId}
// orderId - публичный UUID заказа
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]
	if _, err := uuid.Parse(orderID); err != nil {
		h.logger.Warn("GET /orders/{id} - Invalid order ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOrderID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /orders/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			h.logger.Warn("GET /orders/{id} - Order not found: order_id=%s", orderID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, orders.ErrAccessDenied):
			h.logger.Warn("GET /orders/{id} - Access denied: order_id=%s, user_id=%d", orderID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /orders/{id} - Failed to get order: order_id=%s, error=%v", orderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /orders/{id} - Order retrieved successfully: order_id=%s, status=%s", orderID, order.Status)
	handlers.RespondJSON(w, http.StatusOK, order)
}
