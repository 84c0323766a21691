package courts

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues/models"
)

const (
	msgInvalidID          = "некорректный ID"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgMissingPeriod      = "параметры from и to обязательны, формат YYYY-MM-DD"
	msgInvalidInput       = "некорректные данные корта"
	msgVenueNotFound      = "площадка не найдена"
	msgCourtNotFound      = "корт не найден"
	msgBlockNotFound      = "блокировка не найдена"
	msgForbidden          = "доступ запрещен"
	msgBlockConflict      = "интервал пересекается с активным бронированием"
	msgExternalBlock      = "блокировка внешнего провайдера удаляется только синхронизацией"
)

// Handler обработчики кортов и блокировок времени
type Handler struct {
	service CourtService
	logger  Logger
}

func NewHandler(service CourtService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/v1/venues/{venueId}/courts
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	venueID, err := handlers.PathID(r, "venueId")
	if err != nil {
		h.logger.Warn("POST /venues/{id}/courts - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /venues/{id}/courts - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CreateCourtRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /venues/{id}/courts - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.VenueID = venueID

	court, err := h.service.CreateCourt(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /venues/{id}/courts", err)
		return
	}

	h.logger.Info("POST /venues/{id}/courts - Court created: venue_id=%d, court_id=%d", venueID, court.ID)
	handlers.RespondJSON(w, http.StatusCreated, court)
}

// List GET /api/v1/venues/{venueId}/courts
// Публичный endpoint - без авторизации
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	venueID, err := handlers.PathID(r, "venueId")
	if err != nil {
		h.logger.Warn("GET /venues/{id}/courts - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	result, err := h.service.ListCourts(r.Context(), venueID)
	if err != nil {
		h.respondError(w, "GET /venues/{id}/courts", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Courts)
}

// Update PUT /api/v1/courts/{courtId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	courtID, err := handlers.PathID(r, "courtId")
	if err != nil {
		h.logger.Warn("PUT /courts/{id} - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /courts/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateCourtRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /courts/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	court, err := h.service.UpdateCourt(r.Context(), courtID, &req)
	if err != nil {
		h.respondError(w, "PUT /courts/{id}", err)
		return
	}

	h.logger.Info("PUT /courts/{id} - Court updated: court_id=%d, user_id=%d", courtID, userID)
	handlers.RespondJSON(w, http.StatusOK, court)
}

// CreateBlock POST /api/v1/courts/{courtId}/blocks
func (h *Handler) CreateBlock(w http.ResponseWriter, r *http.Request) {
	courtID, err := handlers.PathID(r, "courtId")
	if err != nil {
		h.logger.Warn("POST /courts/{id}/blocks - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /courts/{id}/blocks - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CreateBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /courts/{id}/blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.CourtID = courtID

	block, err := h.service.CreateBlock(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /courts/{id}/blocks", err)
		return
	}

	h.logger.Info("POST /courts/{id}/blocks - Block created: court_id=%d, block_id=%d", courtID, block.ID)
	handlers.RespondJSON(w, http.StatusCreated, block)
}

// ListBlocks GET /api/v1/courts/{courtId}/blocks
// Query params: from, to (обязательные, YYYY-MM-DD)
// Публичный endpoint - без авторизации
func (h *Handler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	courtID, err := handlers.PathID(r, "courtId")
	if err != nil {
		h.logger.Warn("GET /courts/{id}/blocks - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	from, errFrom := handlers.QueryDate(r, "from")
	to, errTo := handlers.QueryDate(r, "to")
	if errFrom != nil || errTo != nil || from == nil || to == nil {
		h.logger.Warn("GET /courts/{id}/blocks - Invalid period: court_id=%d", courtID)
		handlers.RespondBadRequest(w, msgMissingPeriod)
		return
	}

	result, err := h.service.ListBlocks(r.Context(), courtID, *from, *to)
	if err != nil {
		h.respondError(w, "GET /courts/{id}/blocks", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Blocks)
}

// DeleteBlock DELETE /api/v1/blocks/{blockId}
func (h *Handler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	blockID, err := handlers.PathID(r, "blockId")
	if err != nil {
		h.logger.Warn("DELETE /blocks/{id} - Invalid block ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /blocks/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.DeleteBlock(r.Context(), blockID, userID); err != nil {
		h.respondError(w, "DELETE /blocks/{id}", err)
		return
	}

	h.logger.Info("DELETE /blocks/{id} - Block deleted: block_id=%d, user_id=%d", blockID, userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, route string, err error) {
	switch {
	case errors.Is(err, venues.ErrVenueNotFound):
		h.logger.Warn("%s - Venue not found", route)
		handlers.RespondNotFound(w, msgVenueNotFound)

	case errors.Is(err, venues.ErrCourtNotFound):
		h.logger.Warn("%s - Court not found", route)
		handlers.RespondNotFound(w, msgCourtNotFound)

	case errors.Is(err, venues.ErrBlockNotFound):
		h.logger.Warn("%s - Block not found", route)
		handlers.RespondNotFound(w, msgBlockNotFound)

	case errors.Is(err, venues.ErrAccessDenied):
		h.logger.Warn("%s - Access denied", route)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, venues.ErrBlockConflict):
		h.logger.Warn("%s - Block overlaps a booking", route)
		handlers.RespondConflict(w, msgBlockConflict)

	case errors.Is(err, venues.ErrExternalBlock):
		h.logger.Warn("%s - External block", route)
		handlers.RespondConflict(w, msgExternalBlock)

	case errors.Is(err, venues.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	default:
		h.logger.Error("%s - Failed: %v", route, err)
		handlers.RespondInternalError(w)
	}
}
