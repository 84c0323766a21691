package venues

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/court"
	venueRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/venue"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues/models"
)

// Service сервис площадок, кортов и блокировок
type Service struct {
	venueRepo    VenueRepository
	courtRepo    CourtRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewService создает новый экземпляр сервиса площадок
func NewService(
	venueRepo VenueRepository,
	courtRepo CourtRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		venueRepo:    venueRepo,
		courtRepo:    courtRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// CreateVenue создает площадку; создатель становится владельцем и первым менеджером
func (s *Service) CreateVenue(ctx context.Context, req *models.CreateVenueRequest) (*models.VenueResponse, error) {
	s.logger.Info("CreateVenue: creating venue %q by user=%d", req.Name, req.UserID)

	if err := validateVenueFields(req.Name, req.Address, req.City, req.Phone); err != nil {
		s.logger.Warn("CreateVenue: validation failed: %v", err)
		return nil, err
	}

	venue := &domain.Venue{
		OwnerID:     req.UserID,
		Name:        strings.TrimSpace(req.Name),
		Address:     strings.TrimSpace(req.Address),
		City:        strings.TrimSpace(req.City),
		Description: req.Description,
		Phone:       strings.TrimSpace(req.Phone),
		IsActive:    true,
	}

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.venueRepo.Create(txCtx, venue); err != nil {
			return err
		}
		return s.venueRepo.AddManager(txCtx, venue.ID, req.UserID)
	})
	if err != nil {
		s.logger.Error("CreateVenue: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateVenue - repository error: %v", ErrInternal, err)
	}
	venue.ManagerIDs = []int64{req.UserID}

	s.logger.Info("CreateVenue: successfully created venue id=%d", venue.ID)
	return models.FromDomainVenue(venue), nil
}

// ListVenues получает список площадок
// Публичный метод, фильтр по городу опционален
func (s *Service) ListVenues(ctx context.Context, city *string, onlyActive bool) (*models.VenueListResponse, error) {
	venues, err := s.venueRepo.List(ctx, city, onlyActive)
	if err != nil {
		s.logger.Error("ListVenues: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListVenues - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListVenues: fetched %d venues", len(venues))
	return models.FromDomainVenueList(venues), nil
}

// GetVenue получает площадку с активными кортами
func (s *Service) GetVenue(ctx context.Context, id int64) (*models.VenueResponse, error) {
	venue, err := s.getVenue(ctx, "GetVenue", id)
	if err != nil {
		return nil, err
	}

	courts, err := s.courtRepo.ListByVenue(ctx, id, true)
	if err != nil {
		s.logger.Error("GetVenue: failed to list courts of venue id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetVenue - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainVenue(venue)
	resp.ManagerIDs = nil
	resp.Courts = models.FromDomainCourtList(courts).Courts
	return resp, nil
}

// UpdateVenue частично обновляет площадку
// Доступно только менеджерам площадки
func (s *Service) UpdateVenue(ctx context.Context, id int64, req *models.UpdateVenueRequest) (*models.VenueResponse, error) {
	s.logger.Info("UpdateVenue: updating venue id=%d by user=%d", id, req.UserID)

	venue, err := s.checkManagerAccess(ctx, "UpdateVenue", id, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		venue.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		venue.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		venue.City = strings.TrimSpace(*req.City)
	}
	if req.Description != nil {
		venue.Description = *req.Description
	}
	if req.Phone != nil {
		venue.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.IsActive != nil {
		venue.IsActive = *req.IsActive
	}

	if err := validateVenueFields(venue.Name, venue.Address, venue.City, venue.Phone); err != nil {
		s.logger.Warn("UpdateVenue: validation failed: %v", err)
		return nil, err
	}

	if err := s.venueRepo.Update(ctx, venue); err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			return nil, ErrVenueNotFound
		}
		s.logger.Error("UpdateVenue: repository error for venue id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateVenue - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateVenue: successfully updated venue id=%d", id)
	return models.FromDomainVenue(venue), nil
}

// AddManager добавляет менеджера площадки
// Доступно только владельцу; повторное добавление не считается ошибкой
func (s *Service) AddManager(ctx context.Context, venueID, callerID, managerID int64) error {
	s.logger.Info("AddManager: adding user=%d to venue id=%d by user=%d", managerID, venueID, callerID)

	venue, err := s.getVenue(ctx, "AddManager", venueID)
	if err != nil {
		return err
	}

	if venue.OwnerID != callerID {
		s.logger.Warn("AddManager: user=%d is not the owner of venue id=%d", callerID, venueID)
		return ErrAccessDenied
	}
	if managerID <= 0 {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	if err := s.venueRepo.AddManager(ctx, venueID, managerID); err != nil {
		s.logger.Error("AddManager: repository error for venue id=%d: %v", venueID, err)
		return fmt.Errorf("%w: AddManager - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AddManager: user=%d is now a manager of venue id=%d", managerID, venueID)
	return nil
}

// Вспомогательные методы

func (s *Service) getVenue(ctx context.Context, op string, id int64) (*domain.Venue, error) {
	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("%s: venue id=%d not found", op, id)
			return nil, ErrVenueNotFound
		}
		s.logger.Error("%s: repository error for venue id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return venue, nil
}

// checkManagerAccess проверяет, что пользователь является менеджером площадки
func (s *Service) checkManagerAccess(ctx context.Context, op string, venueID, userID int64) (*domain.Venue, error) {
	venue, err := s.getVenue(ctx, op, venueID)
	if err != nil {
		return nil, err
	}

	if !venue.IsManager(userID) {
		s.logger.Warn("%s: user=%d is not a manager of venue id=%d", op, userID, venueID)
		return nil, ErrAccessDenied
	}

	return venue, nil
}

func (s *Service) getCourt(ctx context.Context, op string, id int64) (*domain.Court, error) {
	court, err := s.courtRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			s.logger.Warn("%s: court id=%d not found", op, id)
			return nil, ErrCourtNotFound
		}
		s.logger.Error("%s: repository error for court id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return court, nil
}
