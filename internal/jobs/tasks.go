package jobs

import (
	"context"
	"errors"

	syncExternalBlocks "github.com/m04kA/SMC-CourtBooking/internal/usecase/sync_external_blocks"
)

const (
	JobExpireOrders = "expire_orders"
	JobSyncBlocks   = "sync_external_blocks"
	JobLimiterGC    = "rate_limiter_cleanup"
)

// ExpireOrders задача истечения неоплаченных заказов
func ExpireOrders(expirer OrderExpirer, logger Logger) Task {
	return func(ctx context.Context) error {
		expired, err := expirer.ExpirePendingOrders(ctx)
		if err != nil {
			return err
		}
		if expired > 0 {
			logger.Info("ExpireOrders: %d orders expired", expired)
		}
		return nil
	}
}

// SyncExternalBlocks задача синхронизации с внешним провайдером
// Сбой отдельных кортов не считается ошибкой запуска: они будут повторены следующим проходом
func SyncExternalBlocks(syncer BlockSyncer, logger Logger) Task {
	return func(ctx context.Context) error {
		result, err := syncer.Execute(ctx)
		if err != nil && !errors.Is(err, syncExternalBlocks.ErrCourtSyncFailed) {
			return err
		}

		logger.Info("SyncExternalBlocks: courts=%d, upserted=%d, removed=%d, skipped=%d, failed=%d",
			result.Courts, result.Upserted, result.Removed, result.Skipped, result.Failed)
		if err != nil {
			logger.Warn("SyncExternalBlocks: %v", err)
		}
		return nil
	}
}

// CleanupLimiters задача очистки неактивных лимитеров
func CleanupLimiters(cleaner LimiterCleaner, logger Logger) Task {
	return func(_ context.Context) error {
		if removed := cleaner.Cleanup(); removed > 0 {
			logger.Info("CleanupLimiters: removed %d idle limiters", removed)
		}
		return nil
	}
}
