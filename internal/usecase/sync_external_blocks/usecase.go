package sync_external_blocks

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/fieldsync"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

// UseCase use case для синхронизации блокировок с внешним провайдером
type UseCase struct {
	courtRepo    CourtRepository
	client       FieldSyncClient
	txManager    TransactionManager
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	courtRepo CourtRepository,
	client FieldSyncClient,
	txManager TransactionManager,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.DaysAhead <= 0 {
		settings.DaysAhead = 14
	}
	return &UseCase{
		courtRepo:    courtRepo,
		client:       client,
		txManager:    txManager,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// courtResult итог синхронизации одного корта
type courtResult struct {
	upserted int
	removed  int64
	skipped  int
}

// Execute зеркалирует брони провайдера в external блокировки на days_ahead дней вперёд.
// Ошибка по одному корту логируется и не останавливает остальные
func (uc *UseCase) Execute(ctx context.Context) (*Result, error) {
	now := uc.timeProvider.Now().In(uc.settings.Location)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.settings.Location)
	// Окно включает сегодняшний день, последний день окна from + days_ahead - 1
	to := from.AddDate(0, 0, uc.settings.DaysAhead-1)

	courts, err := uc.courtRepo.ListSynced(ctx)
	if err != nil {
		uc.logger.Error("SyncExternalBlocks: failed to list synced courts: %v", err)
		return nil, fmt.Errorf("%w: failed to list courts: %v", ErrInternal, err)
	}

	result := &Result{Courts: len(courts)}
	for _, court := range courts {
		cr, err := uc.syncCourt(ctx, court, from, to)
		if err != nil {
			uc.logger.Error("SyncExternalBlocks: court=%d ref=%s failed: %v", court.ID, ptr.Value(court.ExternalRef), err)
			result.Failed++
			continue
		}
		result.Upserted += cr.upserted
		result.Removed += cr.removed
		result.Skipped += cr.skipped
	}

	uc.logger.Info("SyncExternalBlocks: courts=%d, upserted=%d, removed=%d, skipped=%d, failed=%d",
		result.Courts, result.Upserted, result.Removed, result.Skipped, result.Failed)

	if result.Failed > 0 {
		return result, fmt.Errorf("%w: %d of %d", ErrCourtSyncFailed, result.Failed, result.Courts)
	}
	return result, nil
}

func (uc *UseCase) syncCourt(ctx context.Context, court *domain.Court, from, to time.Time) (*courtResult, error) {
	ref := ptr.Value(court.ExternalRef)
	if ref == "" {
		return &courtResult{}, nil
	}

	reservations, err := uc.client.ListReservations(ctx, ref, from, to)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	blocks := make([]*domain.CourtBlock, 0, len(reservations))
	res := &courtResult{}
	for _, r := range reservations {
		block, ok := uc.toBlock(court, r, from, to)
		if !ok {
			res.skipped++
			continue
		}
		blocks = append(blocks, block)
	}

	// Отменённые и пропавшие у провайдера брони удаляются вместе с upsert в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		keep := make([]string, 0, len(blocks))
		for _, b := range blocks {
			if err := uc.courtRepo.UpsertExternalBlock(txCtx, b); err != nil {
				return fmt.Errorf("upsert block %s: %w", ptr.Value(b.ExternalID), err)
			}
			keep = append(keep, ptr.Value(b.ExternalID))
		}

		removed, err := uc.courtRepo.DeleteStaleExternalBlocks(txCtx, court.ID, from, to, keep)
		if err != nil {
			return fmt.Errorf("delete stale blocks: %w", err)
		}
		res.removed = removed
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.upserted = len(blocks)
	return res, nil
}

// toBlock переводит бронь провайдера в блокировку; отменённые и некорректные брони пропускаются
func (uc *UseCase) toBlock(court *domain.Court, r fieldsync.Reservation, from, to time.Time) (*domain.CourtBlock, bool) {
	if r.ID == "" || r.IsCancelled() {
		return nil, false
	}

	date, err := time.ParseInLocation(domain.DateFormat, r.Date, uc.settings.Location)
	if err != nil || date.Before(from) || date.After(to) {
		uc.logger.Warn("SyncExternalBlocks: court=%d reservation %s has bad date %q", court.ID, r.ID, r.Date)
		return nil, false
	}

	start, errStart := types.NewTimeStringFromString(r.StartTime)
	end, errEnd := types.NewTimeStringFromString(r.EndTime)
	if errStart != nil || errEnd != nil || !start.IsBefore(end) {
		uc.logger.Warn("SyncExternalBlocks: court=%d reservation %s has bad range %q-%q",
			court.ID, r.ID, r.StartTime, r.EndTime)
		return nil, false
	}

	return &domain.CourtBlock{
		CourtID:    court.ID,
		BlockDate:  date,
		StartTime:  start,
		EndTime:    end,
		Reason:     ExternalBlockReason,
		Source:     domain.BlockExternal,
		ExternalID: ptr.Ptr(r.ID),
	}, true
}
