package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// List получает бронирования по фильтру
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
}

// CourtRepository интерфейс репозитория кортов и блокировок
type CourtRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
	ListBlocks(ctx context.Context, courtID int64, from, to time.Time) ([]*domain.CourtBlock, error)
}

// VenueRepository интерфейс репозитория площадок
type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// PriceRepository интерфейс репозитория динамических цен
type PriceRepository interface {
	ListByCourt(ctx context.Context, courtID int64) ([]*domain.DynamicPrice, error)
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
