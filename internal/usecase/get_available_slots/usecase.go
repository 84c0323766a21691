package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/court"
	venueRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/venue"
)

// UseCase use case для получения сетки слотов корта на день
type UseCase struct {
	bookingRepo  BookingRepository
	courtRepo    CourtRepository
	venueRepo    VenueRepository
	priceRepo    PriceRepository
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	courtRepo CourtRepository,
	venueRepo VenueRepository,
	priceRepo PriceRepository,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		courtRepo:    courtRepo,
		venueRepo:    venueRepo,
		priceRepo:    priceRepo,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения сетки слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: court=%d, date=%s", req.CourtID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.settings.Location)
	date := domain.DateIn(req.Date, uc.settings.Location)

	// 2. Окно бронирования
	if err := validateDate(date, now, uc.settings.AdvanceDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 3. Корт и площадка должны быть активны
	court, err := uc.getActiveCourt(ctx, req.CourtID)
	if err != nil {
		return nil, err
	}

	// 4. Сетка
	grid, err := generateGrid(court)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate grid for court=%d: %v", court.ID, err)
		return nil, fmt.Errorf("%w: failed to generate grid: %v", ErrInternal, err)
	}

	// 5. Активные брони, блокировки и правила цен
	bookings, err := uc.bookingRepo.List(ctx, domain.BookingsFilter{
		CourtID:      &court.ID,
		StartDate:    &date,
		EndDate:      &date,
		HoldsValidAt: &now,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	blocks, err := uc.courtRepo.ListBlocks(ctx, court.ID, date, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get blocks: %v", err)
		return nil, fmt.Errorf("%w: failed to get blocks: %v", ErrInternal, err)
	}

	rules, err := uc.priceRepo.ListByCourt(ctx, court.ID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get price rules: %v", err)
		return nil, fmt.Errorf("%w: failed to get price rules: %v", ErrInternal, err)
	}

	// 6. Статусы и цены
	slots, err := buildSlots(court, grid, date, now, uc.settings.MinNoticeMinutes, bookings, blocks, rules)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to build slots: %v", err)
		return nil, fmt.Errorf("%w: failed to build slots: %v", ErrInternal, err)
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots for court=%d, date=%s",
		len(slots), court.ID, date.Format(domain.DateFormat))

	return &Response{
		Date:    date,
		CourtID: court.ID,
		Slots:   slots,
	}, nil
}

func (uc *UseCase) getActiveCourt(ctx context.Context, courtID int64) (*domain.Court, error) {
	court, err := uc.courtRepo.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			uc.logger.Warn("GetAvailableSlots: court id=%d not found", courtID)
			return nil, ErrCourtNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get court id=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: failed to get court: %v", ErrInternal, err)
	}
	if !court.IsActive {
		uc.logger.Warn("GetAvailableSlots: court id=%d is inactive", courtID)
		return nil, ErrCourtNotFound
	}

	venue, err := uc.venueRepo.GetByID(ctx, court.VenueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			uc.logger.Warn("GetAvailableSlots: venue id=%d of court=%d not found", court.VenueID, courtID)
			return nil, ErrCourtNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get venue id=%d: %v", court.VenueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %v", ErrInternal, err)
	}
	if !venue.IsActive {
		uc.logger.Warn("GetAvailableSlots: venue id=%d is inactive", venue.ID)
		return nil, ErrCourtNotFound
	}

	return court, nil
}
