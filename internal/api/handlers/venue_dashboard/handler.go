package venue_dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/service/dashboard"
	"github.com/m04kA/SMC-CourtBooking/internal/service/dashboard/models"
)

const (
	msgInvalidVenueID = "некорректный ID площадки"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgInvalidPeriod  = "некорректный период, ожидаются from и to в формате YYYY-MM-DD"
	msgPeriodTooLong  = "период отчёта слишком длинный"
	msgNotFound       = "площадка не найдена"
	msgForbidden      = "доступ запрещен"
)

// Handler обработчики отчётов площадки
type Handler struct {
	service DashboardService
	logger  Logger
}

func NewHandler(service DashboardService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Dashboard GET /api/v1/venues/{venueId}/dashboard
// Query params: from, to (YYYY-MM-DD)
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	req, ok := h.periodRequest(w, r, "GET /venues/{id}/dashboard")
	if !ok {
		return
	}

	result, err := h.service.GetVenueDashboard(r.Context(), req)
	if err != nil {
		h.respondError(w, "GET /venues/{id}/dashboard", req.VenueID, err)
		return
	}

	h.logger.Info("GET /venues/{id}/dashboard - Dashboard built: venue_id=%d, period=%s..%s",
		req.VenueID, req.StartDate, req.EndDate)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Export GET /api/v1/venues/{venueId}/bookings/export
// Query params: from, to (YYYY-MM-DD). Ответ - xlsx файл
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	req, ok := h.periodRequest(w, r, "GET /venues/{id}/bookings/export")
	if !ok {
		return
	}

	file, err := h.service.ExportVenueBookings(r.Context(), req)
	if err != nil {
		h.respondError(w, "GET /venues/{id}/bookings/export", req.VenueID, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Content); err != nil {
		h.logger.Error("GET /venues/{id}/bookings/export - Failed to write file: venue_id=%d, error=%v", req.VenueID, err)
		return
	}

	h.logger.Info("GET /venues/{id}/bookings/export - Export sent: venue_id=%d, size=%d", req.VenueID, len(file.Content))
}

func (h *Handler) periodRequest(w http.ResponseWriter, r *http.Request, route string) (*models.PeriodRequest, bool) {
	venueID, err := handlers.PathID(r, "venueId")
	if err != nil {
		h.logger.Warn("%s - Invalid venue ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return nil, false
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return nil, false
	}

	return &models.PeriodRequest{
		UserID:    userID,
		VenueID:   venueID,
		StartDate: r.URL.Query().Get("from"),
		EndDate:   r.URL.Query().Get("to"),
	}, true
}

func (h *Handler) respondError(w http.ResponseWriter, route string, venueID int64, err error) {
	switch {
	case errors.Is(err, dashboard.ErrVenueNotFound):
		h.logger.Warn("%s - Venue not found: venue_id=%d", route, venueID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, dashboard.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: venue_id=%d", route, venueID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, dashboard.ErrInvalidPeriod):
		handlers.RespondBadRequest(w, msgInvalidPeriod)

	case errors.Is(err, dashboard.ErrPeriodTooLong):
		handlers.RespondBadRequest(w, msgPeriodTooLong)

	default:
		h.logger.Error("%s - Failed: venue_id=%d, error=%v", route, venueID, err)
		handlers.RespondInternalError(w)
	}
}
