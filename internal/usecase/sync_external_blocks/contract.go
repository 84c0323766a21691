package sync_external_blocks

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/fieldsync"
)

// CourtRepository интерфейс репозитория кортов и блокировок
type CourtRepository interface {
	ListSynced(ctx context.Context) ([]*domain.Court, error)
	UpsertExternalBlock(ctx context.Context, block *domain.CourtBlock) error
	DeleteStaleExternalBlocks(ctx context.Context, courtID int64, from, to time.Time, keep []string) (int64, error)
}

// FieldSyncClient интерфейс клиента внешнего провайдера бронирований
type FieldSyncClient interface {
	ListReservations(ctx context.Context, fieldRef string, from, to time.Time) ([]fieldsync.Reservation, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
