package get_venue_bookings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/bookings"
	"github.com/m04kA/SMC-CourtBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) GetVenueBookings(ctx context.Context, req *models.GetVenueBookingsRequest) (*models.BookingListResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*models.BookingListResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func serve(svc *mockService, url string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/venues/{venueId}/bookings", NewHandler(svc, logger.Nop()).Handle)

	req := httptest.NewRequest(http.MethodGet, url, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), 10, domain.RoleUser))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_ParsesFilters(t *testing.T) {
	svc := &mockService{}
	svc.On("GetVenueBookings", mock.Anything, mock.MatchedBy(func(req *models.GetVenueBookingsRequest) bool {
		return req.VenueID == 2 && req.UserID == 10 &&
			req.CourtID != nil && *req.CourtID == 3 &&
			req.StartDate.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) &&
			req.EndDate.Equal(time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC)) &&
			req.Status != nil && *req.Status == "confirmed" &&
			req.IncludeInactive
	})).Return(&models.BookingListResponse{Bookings: []models.BookingResponse{{ID: 1}}}, nil)

	rec := serve(svc, "/api/v1/venues/2/bookings?courtId=3&from=2026-06-01&to=2026-06-07&status=confirmed&includeInactive=true")
	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandle_SingleDate(t *testing.T) {
	svc := &mockService{}
	svc.On("GetVenueBookings", mock.Anything, mock.MatchedBy(func(req *models.GetVenueBookingsRequest) bool {
		return req.StartDate != nil && req.EndDate != nil && req.StartDate.Equal(*req.EndDate) && !req.IncludeInactive
	})).Return(&models.BookingListResponse{}, nil)

	assert.Equal(t, http.StatusOK, serve(svc, "/api/v1/venues/2/bookings?date=2026-06-01").Code)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		url  string
		err  error
		want int
	}{
		{name: "bad venue id", url: "/api/v1/venues/0/bookings", want: http.StatusBadRequest},
		{name: "bad court id", url: "/api/v1/venues/2/bookings?courtId=x", want: http.StatusBadRequest},
		{name: "bad date", url: "/api/v1/venues/2/bookings?date=01.06.2026", want: http.StatusBadRequest},
		{name: "date with range", url: "/api/v1/venues/2/bookings?date=2026-06-01&from=2026-06-01", want: http.StatusBadRequest},
		{name: "bad flag", url: "/api/v1/venues/2/bookings?includeInactive=maybe", want: http.StatusBadRequest},
		{name: "not found", url: "/api/v1/venues/2/bookings", err: bookings.ErrVenueNotFound, want: http.StatusNotFound},
		{name: "not manager", url: "/api/v1/venues/2/bookings", err: bookings.ErrAccessDenied, want: http.StatusForbidden},
		{name: "invalid filter", url: "/api/v1/venues/2/bookings", err: bookings.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "internal", url: "/api/v1/venues/2/bookings", err: bookings.ErrInternal, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("GetVenueBookings", mock.Anything, mock.Anything).Return(nil, tt.err)

			assert.Equal(t, tt.want, serve(svc, tt.url).Code)
		})
	}
}
