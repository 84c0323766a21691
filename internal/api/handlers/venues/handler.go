package venues

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues/models"
)

const (
	msgInvalidVenueID     = "некорректный ID площадки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные данные площадки"
	msgNotFound           = "площадка не найдена"
	msgForbidden          = "доступ запрещен"
)

// Handler обработчики площадок
type Handler struct {
	service VenueService
	logger  Logger
}

func NewHandler(service VenueService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/v1/venues
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /venues - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CreateVenueRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /venues - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	venue, err := h.service.CreateVenue(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /venues", 0, err)
		return
	}

	h.logger.Info("POST /venues - Venue created: venue_id=%d, owner_id=%d", venue.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, venue)
}

// List GET /api/v1/venues
// Query params: city (опционально)
// Публичный endpoint - без авторизации
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListVenues(r.Context(), handlers.QueryString(r, "city"), true)
	if err != nil {
		h.respondError(w, "GET /venues", 0, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result.Venues)
}

// Get GET /api/v1/venues/{venueId}
// Публичный endpoint - без авторизации
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	venueID, err := handlers.PathID(r, "venueId")
	if err != nil {
		h.logger.Warn("GET /venues/{id} - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	venue, err := h.service.GetVenue(r.Context(), venueID)
	if err != nil {
		h.respondError(w, "GET /venues/{id}", venueID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, venue)
}

// Update PUT /api/v1/venues/{venueId}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	venueID, err := handlers.PathID(r, "venueId")
	if err != nil {
		h.logger.Warn("PUT /venues/{id} - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /venues/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateVenueRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /venues/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID

	venue, err := h.service.UpdateVenue(r.Context(), venueID, &req)
	if err != nil {
		h.respondError(w, "PUT /venues/{id}", venueID, err)
		return
	}

	h.logger.Info("PUT /venues/{id} - Venue updated: venue_id=%d, user_id=%d", venueID, userID)
	handlers.RespondJSON(w, http.StatusOK, venue)
}

// AddManager POST /api/v1/venues/{venueId}/managers
// Доступно только владельцу площадки
func (h *Handler) AddManager(w http.ResponseWriter, r *http.Request) {
	venueID, err := handlers.PathID(r, "venueId")
	if err != nil {
		h.logger.Warn("POST /venues/{id}/managers - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /venues/{id}/managers - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req AddManagerRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /venues/{id}/managers - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.AddManager(r.Context(), venueID, userID, req.UserID); err != nil {
		h.respondError(w, "POST /venues/{id}/managers", venueID, err)
		return
	}

	h.logger.Info("POST /venues/{id}/managers - Manager added: venue_id=%d, manager_id=%d", venueID, req.UserID)
	handlers.RespondMessage(w, http.StatusOK, "менеджер добавлен")
}

func (h *Handler) respondError(w http.ResponseWriter, route string, venueID int64, err error) {
	switch {
	case errors.Is(err, venues.ErrVenueNotFound):
		h.logger.Warn("%s - Venue not found: venue_id=%d", route, venueID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, venues.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: venue_id=%d", route, venueID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, venues.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	default:
		h.logger.Error("%s - Failed: venue_id=%d, error=%v", route, venueID, err)
		handlers.RespondInternalError(w)
	}
}
