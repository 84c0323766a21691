package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	venueRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/venue"
	"github.com/m04kA/SMC-CourtBooking/internal/service/dashboard/models"
)

// Service сервис отчётов для менеджеров площадок
type Service struct {
	bookingRepo BookingRepository
	courtRepo   CourtRepository
	venueRepo   VenueRepository
	location    *time.Location
	logger      Logger
}

// NewService создает новый экземпляр сервиса отчётов
func NewService(
	bookingRepo BookingRepository,
	courtRepo CourtRepository,
	venueRepo VenueRepository,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		courtRepo:   courtRepo,
		venueRepo:   venueRepo,
		location:    location,
		logger:      logger,
	}
}

// period отчётный период, обе даты включительно
type period struct {
	from time.Time
	to   time.Time
	days int
}

// GetVenueDashboard считает показатели площадки за период
func (s *Service) GetVenueDashboard(ctx context.Context, req *models.PeriodRequest) (*models.DashboardResponse, error) {
	s.logger.Info("GetVenueDashboard: venue=%d user=%d period=%s..%s", req.VenueID, req.UserID, req.StartDate, req.EndDate)

	p, err := s.parsePeriod(req)
	if err != nil {
		s.logger.Warn("GetVenueDashboard: invalid period %s..%s: %v", req.StartDate, req.EndDate, err)
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, "GetVenueDashboard", req.VenueID, req.UserID); err != nil {
		return nil, err
	}

	courts, bookings, err := s.load(ctx, "GetVenueDashboard", req.VenueID, p)
	if err != nil {
		return nil, err
	}

	return buildDashboard(req.VenueID, p, courts, bookings), nil
}

func (s *Service) parsePeriod(req *models.PeriodRequest) (period, error) {
	from, err := time.ParseInLocation(domain.DateFormat, req.StartDate, s.location)
	if err != nil {
		return period{}, fmt.Errorf("%w: start date: %v", ErrInvalidPeriod, err)
	}
	to, err := time.ParseInLocation(domain.DateFormat, req.EndDate, s.location)
	if err != nil {
		return period{}, fmt.Errorf("%w: end date: %v", ErrInvalidPeriod, err)
	}
	if to.Before(from) {
		return period{}, fmt.Errorf("%w: end date before start date", ErrInvalidPeriod)
	}

	// Round сглаживает переход на летнее время
	days := int(math.Round(to.Sub(from).Hours()/24)) + 1
	if days > domain.MaxDashboardPeriodDays {
		return period{}, fmt.Errorf("%w: %d days, max %d", ErrPeriodTooLong, days, domain.MaxDashboardPeriodDays)
	}

	return period{from: from, to: to, days: days}, nil
}

func (s *Service) checkManagerAccess(ctx context.Context, op string, venueID, userID int64) error {
	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("%s: venue id=%d not found", op, venueID)
			return ErrVenueNotFound
		}
		s.logger.Error("%s: failed to get venue id=%d: %v", op, venueID, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	if !venue.IsManager(userID) {
		s.logger.Warn("%s: user=%d is not a manager of venue=%d", op, userID, venueID)
		return ErrAccessDenied
	}
	return nil
}

func (s *Service) load(ctx context.Context, op string, venueID int64, p period) ([]*domain.Court, []*domain.Booking, error) {
	courts, err := s.courtRepo.ListByVenue(ctx, venueID, false)
	if err != nil {
		s.logger.Error("%s: failed to list courts of venue=%d: %v", op, venueID, err)
		return nil, nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	bookings, err := s.bookingRepo.List(ctx, domain.BookingsFilter{
		VenueID:         &venueID,
		StartDate:       &p.from,
		EndDate:         &p.to,
		IncludeInactive: true,
	})
	if err != nil {
		s.logger.Error("%s: failed to list bookings of venue=%d: %v", op, venueID, err)
		return nil, nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	return courts, bookings, nil
}

// buildDashboard агрегирует брони в памяти.
// Истёкшие неоплаченные брони в отчёт не попадают
func buildDashboard(venueID int64, p period, courts []*domain.Court, bookings []*domain.Booking) *models.DashboardResponse {
	resp := &models.DashboardResponse{
		VenueID:   venueID,
		StartDate: p.from.Format(domain.DateFormat),
		EndDate:   p.to.Format(domain.DateFormat),
		Courts:    make([]models.CourtStats, 0, len(courts)),
		Daily:     make([]models.DailyStats, 0, p.days),
	}

	courtIndex := make(map[int64]int, len(courts))
	for _, c := range courts {
		stats := models.CourtStats{CourtID: c.ID, Name: c.Name}
		if c.IsActive {
			stats.AvailableMinutes = c.OperatingMinutes() * p.days
		}
		courtIndex[c.ID] = len(resp.Courts)
		resp.Courts = append(resp.Courts, stats)
	}

	dayIndex := make(map[string]int, p.days)
	for d := p.from; !d.After(p.to); d = d.AddDate(0, 0, 1) {
		key := d.Format(domain.DateFormat)
		dayIndex[key] = len(resp.Daily)
		resp.Daily = append(resp.Daily, models.DailyStats{Date: key})
	}

	for _, b := range bookings {
		if b.Status == domain.StatusExpired {
			continue
		}

		resp.TotalBookings++
		switch {
		case b.CountsAsRevenue():
			resp.ConfirmedBookings++
			resp.Revenue += b.Price
		case b.IsCancelled():
			resp.CancelledBookings++
		case b.Status == domain.StatusPending:
			resp.PendingBookings++
		}

		if i, ok := dayIndex[b.BookingDate.Format(domain.DateFormat)]; ok {
			resp.Daily[i].Bookings++
			if b.CountsAsRevenue() {
				resp.Daily[i].Revenue += b.Price
			}
		}

		i, ok := courtIndex[b.CourtID]
		if !ok {
			continue
		}
		resp.Courts[i].Bookings++
		if b.CountsAsRevenue() {
			resp.Courts[i].Revenue += b.Price
		}
		if b.IsActive() {
			resp.Courts[i].BookedMinutes += b.DurationMinutes
		}
	}

	var booked, available int
	for i := range resp.Courts {
		c := &resp.Courts[i]
		c.OccupancyRate = occupancy(c.BookedMinutes, c.AvailableMinutes)
		booked += c.BookedMinutes
		available += c.AvailableMinutes
	}
	resp.OccupancyRate = occupancy(booked, available)

	return resp
}

// occupancy процент занятости с точностью до сотых
func occupancy(booked, available int) float64 {
	if available <= 0 {
		return 0
	}
	return math.Round(float64(booked)/float64(available)*10000) / 100
}
