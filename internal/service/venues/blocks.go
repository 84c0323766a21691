package venues

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues/models"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// CreateBlock блокирует интервал времени корта
// Блокировка не может пересекаться с активным бронированием
func (s *Service) CreateBlock(ctx context.Context, req *models.CreateBlockRequest) (*models.BlockResponse, error) {
	s.logger.Info("CreateBlock: blocking court id=%d on %s %s-%s by user=%d",
		req.CourtID, req.Date, req.StartTime, req.EndTime, req.UserID)

	court, err := s.getCourt(ctx, "CreateBlock", req.CourtID)
	if err != nil {
		return nil, err
	}

	if _, err := s.checkManagerAccess(ctx, "CreateBlock", court.VenueID, req.UserID); err != nil {
		return nil, err
	}

	block, err := s.buildBlock(court, req)
	if err != nil {
		s.logger.Warn("CreateBlock: validation failed: %v", err)
		return nil, err
	}

	var created *domain.CourtBlock
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		now := s.timeProvider.Now()
		bookings, err := s.bookingRepo.List(txCtx, domain.BookingsFilter{
			CourtID:      &court.ID,
			StartDate:    &block.BlockDate,
			EndDate:      &block.BlockDate,
			HoldsValidAt: &now,
		})
		if err != nil {
			return err
		}

		for _, b := range bookings {
			if b.Overlaps(block.StartTime, block.EndTime) {
				s.logger.Warn("CreateBlock: block overlaps booking id=%d", b.ID)
				return ErrBlockConflict
			}
		}

		created, err = s.courtRepo.CreateBlock(txCtx, block)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrBlockConflict) {
			return nil, ErrBlockConflict
		}
		s.logger.Error("CreateBlock: repository error for court id=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: CreateBlock - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("CreateBlock: successfully created block id=%d", created.ID)
	return models.FromDomainBlock(created), nil
}

// ListBlocks получает блокировки корта за период
// Публичный метод
func (s *Service) ListBlocks(ctx context.Context, courtID int64, from, to time.Time) (*models.BlockListResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: 'to' must not be before 'from'", ErrInvalidInput)
	}

	if _, err := s.getCourt(ctx, "ListBlocks", courtID); err != nil {
		return nil, err
	}

	blocks, err := s.courtRepo.ListBlocks(ctx, courtID, from, to)
	if err != nil {
		s.logger.Error("ListBlocks: repository error for court id=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: ListBlocks - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBlockList(blocks), nil
}

// DeleteBlock удаляет ручную блокировку
// Внешние блокировки управляются синхронизацией и вручную не удаляются
func (s *Service) DeleteBlock(ctx context.Context, blockID, userID int64) error {
	s.logger.Info("DeleteBlock: deleting block id=%d by user=%d", blockID, userID)

	block, err := s.courtRepo.GetBlock(ctx, blockID)
	if err != nil {
		if errors.Is(err, courtRepo.ErrBlockNotFound) {
			s.logger.Warn("DeleteBlock: block id=%d not found", blockID)
			return ErrBlockNotFound
		}
		s.logger.Error("DeleteBlock: repository error for block id=%d: %v", blockID, err)
		return fmt.Errorf("%w: DeleteBlock - repository error: %v", ErrInternal, err)
	}

	court, err := s.getCourt(ctx, "DeleteBlock", block.CourtID)
	if err != nil {
		return err
	}

	if _, err := s.checkManagerAccess(ctx, "DeleteBlock", court.VenueID, userID); err != nil {
		return err
	}

	if block.IsExternal() {
		s.logger.Warn("DeleteBlock: block id=%d is external", blockID)
		return ErrExternalBlock
	}

	if err := s.courtRepo.DeleteBlock(ctx, blockID); err != nil {
		if errors.Is(err, courtRepo.ErrBlockNotFound) {
			return ErrBlockNotFound
		}
		s.logger.Error("DeleteBlock: repository error for block id=%d: %v", blockID, err)
		return fmt.Errorf("%w: DeleteBlock - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteBlock: successfully deleted block id=%d", blockID)
	return nil
}

func (s *Service) buildBlock(court *domain.Court, req *models.CreateBlockRequest) (*domain.CourtBlock, error) {
	date, err := time.ParseInLocation(domain.DateFormat, req.Date, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date format, expected YYYY-MM-DD", ErrInvalidInput)
	}

	start, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startTime", ErrInvalidInput)
	}
	end, err := types.NewTimeStringFromString(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endTime", ErrInvalidInput)
	}

	if !start.IsBefore(end) {
		return nil, fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}
	if !court.ContainsRange(start, end) {
		return nil, fmt.Errorf("%w: block is outside court hours %s-%s", ErrInvalidInput, court.OpenTime, court.CloseTime)
	}

	reason := strings.TrimSpace(req.Reason)
	if utf8.RuneCountInString(reason) > domain.MaxBlockReasonLength {
		return nil, fmt.Errorf("%w: reason is too long", ErrInvalidInput)
	}

	return &domain.CourtBlock{
		CourtID:   court.ID,
		BlockDate: date,
		StartTime: start,
		EndTime:   end,
		Reason:    reason,
		Source:    domain.BlockManual,
	}, nil
}
