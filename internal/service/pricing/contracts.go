package pricing

import (
	"context"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// PriceRepository интерфейс репозитория динамических цен
type PriceRepository interface {
	Create(ctx context.Context, rule *domain.DynamicPrice) (*domain.DynamicPrice, error)
	GetByID(ctx context.Context, id int64) (*domain.DynamicPrice, error)
	ListByCourt(ctx context.Context, courtID int64) ([]*domain.DynamicPrice, error)
	Delete(ctx context.Context, id int64) error
}

// CourtRepository интерфейс репозитория кортов
type CourtRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
}

// VenueRepository интерфейс репозитория площадок (проверка прав менеджера)
type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
