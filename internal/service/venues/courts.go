package venues

import (
	"context"
	"errors"
	"fmt"
	"strings"

	courtRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues/models"
)

// CreateCourt создает корт площадки
// Доступно только менеджерам площадки
func (s *Service) CreateCourt(ctx context.Context, req *models.CreateCourtRequest) (*models.CourtResponse, error) {
	s.logger.Info("CreateCourt: creating court %q in venue id=%d by user=%d", req.Name, req.VenueID, req.UserID)

	if _, err := s.checkManagerAccess(ctx, "CreateCourt", req.VenueID, req.UserID); err != nil {
		return nil, err
	}

	court := req.ToDomainCourt()
	court.Name = strings.TrimSpace(court.Name)
	if err := validateCourt(court); err != nil {
		s.logger.Warn("CreateCourt: validation failed: %v", err)
		return nil, err
	}

	created, err := s.courtRepo.Create(ctx, court)
	if err != nil {
		s.logger.Error("CreateCourt: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateCourt - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateCourt: successfully created court id=%d", created.ID)
	return models.FromDomainCourt(created), nil
}

// UpdateCourt частично обновляет корт
// Валидация применяется к итоговому состоянию корта
func (s *Service) UpdateCourt(ctx context.Context, courtID int64, req *models.UpdateCourtRequest) (*models.CourtResponse, error) {
	s.logger.Info("UpdateCourt: updating court id=%d by user=%d", courtID, req.UserID)

	court, err := s.getCourt(ctx, "UpdateCourt", courtID)
	if err != nil {
		return nil, err
	}

	if _, err := s.checkManagerAccess(ctx, "UpdateCourt", court.VenueID, req.UserID); err != nil {
		return nil, err
	}

	req.ApplyTo(court)
	court.Name = strings.TrimSpace(court.Name)
	if err := validateCourt(court); err != nil {
		s.logger.Warn("UpdateCourt: validation failed: %v", err)
		return nil, err
	}

	if err := s.courtRepo.Update(ctx, court); err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		s.logger.Error("UpdateCourt: repository error for court id=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: UpdateCourt - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateCourt: successfully updated court id=%d", courtID)
	return models.FromDomainCourt(court), nil
}

// ListCourts получает корты площадки
// Публичный метод, возвращает только активные корты
func (s *Service) ListCourts(ctx context.Context, venueID int64) (*models.CourtListResponse, error) {
	if _, err := s.getVenue(ctx, "ListCourts", venueID); err != nil {
		return nil, err
	}

	courts, err := s.courtRepo.ListByVenue(ctx, venueID, true)
	if err != nil {
		s.logger.Error("ListCourts: repository error for venue id=%d: %v", venueID, err)
		return nil, fmt.Errorf("%w: ListCourts - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainCourtList(courts), nil
}
