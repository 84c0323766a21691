package pricing

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/service/pricing"
	"github.com/m04kA/SMC-CourtBooking/internal/service/pricing/models"
)

const (
	msgInvalidID          = "некорректный ID"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректное правило цены"
	msgCourtNotFound      = "корт не найден"
	msgPriceNotFound      = "правило цены не найдено"
	msgForbidden          = "доступ запрещен"
)

// Handler обработчики динамических цен корта
type Handler struct {
	service PricingService
	logger  Logger
}

func NewHandler(service PricingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// List GET /api/v1/courts/{courtId}/prices
// Публичный endpoint - без авторизации
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	courtID, err := handlers.PathID(r, "courtId")
	if err != nil {
		h.logger.Warn("GET /courts/{id}/prices - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	result, err := h.service.ListDynamicPrices(r.Context(), courtID)
	if err != nil {
		h.respondError(w, "GET /courts/{id}/prices", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create POST /api/v1/courts/{courtId}/prices
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	courtID, err := handlers.PathID(r, "courtId")
	if err != nil {
		h.logger.Warn("POST /courts/{id}/prices - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /courts/{id}/prices - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CreatePriceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /courts/{id}/prices - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.CourtID = courtID

	price, err := h.service.CreateDynamicPrice(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /courts/{id}/prices", err)
		return
	}

	h.logger.Info("POST /courts/{id}/prices - Price created: court_id=%d, price_id=%d", courtID, price.ID)
	handlers.RespondJSON(w, http.StatusCreated, price)
}

// Delete DELETE /api/v1/prices/{priceId}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	priceID, err := handlers.PathID(r, "priceId")
	if err != nil {
		h.logger.Warn("DELETE /prices/{id} - Invalid price ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /prices/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.DeleteDynamicPrice(r.Context(), priceID, userID); err != nil {
		h.respondError(w, "DELETE /prices/{id}", err)
		return
	}

	h.logger.Info("DELETE /prices/{id} - Price deleted: price_id=%d, user_id=%d", priceID, userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, pricing.ErrCourtNotFound):
		h.logger.Warn("%s - Court not found", route)
		handlers.RespondNotFound(w, msgCourtNotFound)

	case errors.Is(err, pricing.ErrPriceNotFound):
		h.logger.Warn("%s - Price not found", route)
		handlers.RespondNotFound(w, msgPriceNotFound)

	case errors.Is(err, pricing.ErrAccessDenied):
		h.logger.Warn("%s - Access denied", route)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, pricing.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	default:
		h.logger.Error("%s - Failed: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
