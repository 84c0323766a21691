package venues

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// VenueRepository интерфейс репозитория площадок
type VenueRepository interface {
	Create(ctx context.Context, venue *domain.Venue) (*domain.Venue, error)
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
	List(ctx context.Context, city *string, onlyActive bool) ([]*domain.Venue, error)
	Update(ctx context.Context, venue *domain.Venue) error
	AddManager(ctx context.Context, venueID, userID int64) error
}

// CourtRepository интерфейс репозитория кортов и блокировок
type CourtRepository interface {
	Create(ctx context.Context, court *domain.Court) (*domain.Court, error)
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
	ListByVenue(ctx context.Context, venueID int64, onlyActive bool) ([]*domain.Court, error)
	Update(ctx context.Context, court *domain.Court) error
	CreateBlock(ctx context.Context, block *domain.CourtBlock) (*domain.CourtBlock, error)
	GetBlock(ctx context.Context, id int64) (*domain.CourtBlock, error)
	ListBlocks(ctx context.Context, courtID int64, from, to time.Time) ([]*domain.CourtBlock, error)
	DeleteBlock(ctx context.Context, id int64) error
}

// BookingRepository интерфейс репозитория бронирований (проверка пересечений с блокировками)
type BookingRepository interface {
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
