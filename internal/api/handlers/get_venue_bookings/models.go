package get_venue_bookings

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/service/bookings/models"
)

var errDateAndRange = errors.New("date cannot be combined with from/to")

// ToServiceRequest формирует запрос к сервису из query параметров
// date задаёт один день, from/to задают период; вместе их указывать нельзя
func ToServiceRequest(r *http.Request, venueID, userID int64) (*models.GetVenueBookingsRequest, error) {
	query := r.URL.Query()

	req := &models.GetVenueBookingsRequest{
		UserID:  userID,
		VenueID: venueID,
		Status:  handlers.QueryString(r, "status"),
	}

	if courtIDStr := query.Get("courtId"); courtIDStr != "" {
		courtID, err := strconv.ParseInt(courtIDStr, 10, 64)
		if err != nil || courtID <= 0 {
			return nil, fmt.Errorf("invalid courtId: %q", courtIDStr)
		}
		req.CourtID = &courtID
	}

	date, err := handlers.QueryDate(r, "date")
	if err != nil {
		return nil, err
	}
	from, err := handlers.QueryDate(r, "from")
	if err != nil {
		return nil, err
	}
	to, err := handlers.QueryDate(r, "to")
	if err != nil {
		return nil, err
	}

	if date != nil {
		if from != nil || to != nil {
			return nil, errDateAndRange
		}
		req.StartDate = date
		req.EndDate = date
	} else {
		req.StartDate = from
		req.EndDate = to
	}

	if includeInactiveStr := query.Get("includeInactive"); includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
