package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/court"
	priceRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/pricing"
	venueRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/venue"
	"github.com/m04kA/SMC-CourtBooking/internal/service/pricing/models"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// Service сервис динамических цен кортов
type Service struct {
	priceRepo PriceRepository
	courtRepo CourtRepository
	venueRepo VenueRepository
	location  *time.Location
	logger    Logger
}

// NewService создает новый экземпляр сервиса цен
func NewService(
	priceRepo PriceRepository,
	courtRepo CourtRepository,
	venueRepo VenueRepository,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		priceRepo: priceRepo,
		courtRepo: courtRepo,
		venueRepo: venueRepo,
		location:  location,
		logger:    logger,
	}
}

// ListDynamicPrices получает правила цены корта
// Публичный метод
func (s *Service) ListDynamicPrices(ctx context.Context, courtID int64) (*models.PriceListResponse, error) {
	court, err := s.getCourt(ctx, "ListDynamicPrices", courtID)
	if err != nil {
		return nil, err
	}

	rules, err := s.priceRepo.ListByCourt(ctx, courtID)
	if err != nil {
		s.logger.Error("ListDynamicPrices: repository error for court id=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: ListDynamicPrices - repository error: %v", ErrInternal, err)
	}

	resp := &models.PriceListResponse{
		CourtID:   court.ID,
		BasePrice: court.BasePrice,
		Prices:    make([]*models.PriceResponse, 0, len(rules)),
	}
	for _, rule := range rules {
		resp.Prices = append(resp.Prices, models.FromDomainPrice(rule))
	}
	return resp, nil
}

// CreateDynamicPrice создает правило цены
// Доступно только менеджерам площадки корта
func (s *Service) CreateDynamicPrice(ctx context.Context, req *models.CreatePriceRequest) (*models.PriceResponse, error) {
	s.logger.Info("CreateDynamicPrice: creating rule for court id=%d by user=%d", req.CourtID, req.UserID)

	court, err := s.getCourt(ctx, "CreateDynamicPrice", req.CourtID)
	if err != nil {
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, "CreateDynamicPrice", court.VenueID, req.UserID); err != nil {
		return nil, err
	}

	rule, err := s.buildRule(court, req)
	if err != nil {
		s.logger.Warn("CreateDynamicPrice: validation failed: %v", err)
		return nil, err
	}

	created, err := s.priceRepo.Create(ctx, rule)
	if err != nil {
		s.logger.Error("CreateDynamicPrice: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateDynamicPrice - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateDynamicPrice: successfully created rule id=%d", created.ID)
	return models.FromDomainPrice(created), nil
}

// DeleteDynamicPrice удаляет правило цены
// Доступно только менеджерам площадки корта
func (s *Service) DeleteDynamicPrice(ctx context.Context, id, userID int64) error {
	s.logger.Info("DeleteDynamicPrice: deleting rule id=%d by user=%d", id, userID)

	rule, err := s.priceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, priceRepo.ErrPriceNotFound) {
			s.logger.Warn("DeleteDynamicPrice: rule id=%d not found", id)
			return ErrPriceNotFound
		}
		s.logger.Error("DeleteDynamicPrice: repository error for rule id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteDynamicPrice - repository error: %v", ErrInternal, err)
	}

	court, err := s.getCourt(ctx, "DeleteDynamicPrice", rule.CourtID)
	if err != nil {
		return err
	}

	if err := s.checkManagerAccess(ctx, "DeleteDynamicPrice", court.VenueID, userID); err != nil {
		return err
	}

	if err := s.priceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, priceRepo.ErrPriceNotFound) {
			return ErrPriceNotFound
		}
		s.logger.Error("DeleteDynamicPrice: repository error for rule id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteDynamicPrice - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteDynamicPrice: successfully deleted rule id=%d", id)
	return nil
}

func (s *Service) buildRule(court *domain.Court, req *models.CreatePriceRequest) (*domain.DynamicPrice, error) {
	rule := &domain.DynamicPrice{
		CourtID:   court.ID,
		DayOfWeek: req.DayOfWeek,
		Price:     req.Price,
	}

	if req.SpecificDate != nil {
		date, err := time.ParseInLocation(domain.DateFormat, *req.SpecificDate, s.location)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid specificDate, expected YYYY-MM-DD", ErrInvalidInput)
		}
		rule.SpecificDate = &date
	}

	var err error
	if rule.StartTime, err = types.NewTimeStringFromString(req.StartTime); err != nil {
		return nil, fmt.Errorf("%w: invalid startTime", ErrInvalidInput)
	}
	if rule.EndTime, err = types.NewTimeStringFromString(req.EndTime); err != nil {
		return nil, fmt.Errorf("%w: invalid endTime", ErrInvalidInput)
	}

	if err := rule.Validate(court); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return rule, nil
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

// checkManagerAccess проверяет, что пользователь является менеджером площадки
func (s *Service) checkManagerAccess(ctx context.Context, op string, venueID, userID int64) error {
	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			return ErrCourtNotFound
		}
		s.logger.Error("%s: failed to get venue id=%d: %v", op, venueID, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	if !venue.IsManager(userID) {
		s.logger.Warn("%s: user=%d is not a manager of venue id=%d", op, userID, venueID)
		return ErrAccessDenied
	}
	return nil
}
