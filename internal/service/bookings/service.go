package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/booking"
	venueRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/venue"
	"github.com/m04kA/SMC-CourtBooking/internal/service/bookings/models"
)

// Settings правила отмены бронирований
type Settings struct {
	CancelNoticeMinutes int
	Location            *time.Location
}

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	orderRepo    OrderRepository
	venueRepo    VenueRepository
	courtRepo    CourtRepository
	userRepo     UserRepository
	gateway      PaymentGateway
	publisher    EventPublisher
	mailer       Mailer
	txManager    TransactionManager
	timeProvider TimeProvider
	settings     Settings
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	orderRepo OrderRepository,
	venueRepo VenueRepository,
	courtRepo CourtRepository,
	userRepo UserRepository,
	gateway PaymentGateway,
	publisher EventPublisher,
	mailer Mailer,
	txManager TransactionManager,
	settings Settings,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		orderRepo:    orderRepo,
		venueRepo:    venueRepo,
		courtRepo:    courtRepo,
		userRepo:     userRepo,
		gateway:      gateway,
		publisher:    publisher,
		mailer:       mailer,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		settings:     settings,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Проверяет права доступа - пользователь может видеть только своё бронирование
// или если он является менеджером площадки
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	// Проверяем права доступа
	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d, status=%v", req.UserID, req.Status)

	filter := domain.BookingsFilter{
		UserID:          &req.UserID,
		IncludeInactive: true,
	}

	// Конвертируем статус из строки в domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: successfully fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetVenueBookings получает бронирования площадки с гибкой фильтрацией
// Поддерживает фильтрацию по корту, периоду, статусу и включению неактивных бронирований
// Доступно только менеджерам площадки
//
// Примеры использования:
// - Все активные бронирования: GetVenueBookings(ctx, &GetVenueBookingsRequest{VenueID: 123, UserID: 456})
// - Бронирования одного корта: указать CourtID
// - Бронирования на дату: StartDate и EndDate указывают на одну дату
// - Только подтвержденные: указать Status = "confirmed"
// - Включая отменённые: IncludeInactive = true
func (s *Service) GetVenueBookings(ctx context.Context, req *models.GetVenueBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetVenueBookings: fetching bookings for venue=%d, user=%d", req.VenueID, req.UserID)
	if req.CourtID != nil {
		logMsg += fmt.Sprintf(", court=%d", *req.CourtID)
	}
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: endDate must not be before startDate", ErrInvalidInput)
	}

	// Проверяем права доступа менеджера
	if _, err := s.checkManagerAccess(ctx, "GetVenueBookings", req.VenueID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetVenueBookings: invalid filter for venue=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetVenueBookings: repository error for venue=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: GetVenueBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetVenueBookings: successfully fetched %d bookings for venue=%d", len(bookings), req.VenueID)
	return models.FromDomainBookingList(bookings), nil
}

// UpdateStatus отмечает прошедшее бронирование как completed или no_show
// Доступно только менеджерам площадки, исходный статус - confirmed
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d",
		bookingID, req.Status, req.UserID)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil || (newStatus != domain.StatusCompleted && newStatus != domain.StatusNoShow) {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return ErrInvalidStatus
	}

	booking, err := s.getBooking(ctx, "UpdateStatus", bookingID)
	if err != nil {
		return err
	}

	// Проверяем права доступа (только менеджер площадки)
	if _, err := s.checkManagerAccess(ctx, "UpdateStatus", booking.VenueID, req.UserID); err != nil {
		return err
	}

	if booking.Status != domain.StatusConfirmed {
		s.logger.Warn("UpdateStatus: booking id=%d has status=%s, expected confirmed", bookingID, booking.Status)
		return ErrInvalidStatus
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, newStatus); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateStatus: booking id=%d not found during update", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)
	return nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// checkUserAccess проверяет, что пользователь имеет доступ к бронированию
// Пользователь может видеть своё бронирование или если он менеджер площадки
func (s *Service) checkUserAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.IsOwnedBy(userID) {
		return nil
	}

	_, err := s.checkManagerAccess(ctx, "checkUserAccess", booking.VenueID, userID)
	return err
}

// checkManagerAccess проверяет, что пользователь является менеджером площадки
func (s *Service) checkManagerAccess(ctx context.Context, op string, venueID int64, userID int64) (*domain.Venue, error) {
	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("%s: venue id=%d not found", op, venueID)
			return nil, ErrVenueNotFound
		}
		s.logger.Error("%s: failed to get venue id=%d: %v", op, venueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %v", ErrInternal, err)
	}

	if !venue.IsManager(userID) {
		s.logger.Warn("%s: user=%d is not a manager of venue=%d", op, userID, venueID)
		return nil, ErrAccessDenied
	}

	return venue, nil
}
