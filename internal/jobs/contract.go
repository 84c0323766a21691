package jobs

import (
	"context"

	syncExternalBlocks "github.com/m04kA/SMC-CourtBooking/internal/usecase/sync_external_blocks"
)

// OrderExpirer освобождает слоты неоплаченных заказов
type OrderExpirer interface {
	ExpirePendingOrders(ctx context.Context) (int, error)
}

// BlockSyncer зеркалирует брони внешнего провайдера в блокировки кортов
type BlockSyncer interface {
	Execute(ctx context.Context) (*syncExternalBlocks.Result, error)
}

// LimiterCleaner удаляет неактивные лимитеры запросов
type LimiterCleaner interface {
	Cleanup() int
}

type Metrics interface {
	IncJobRun(job, result string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
