package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/stripegateway"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	UpdateStatusByOrder(ctx context.Context, orderID int64, from []domain.BookingStatus, to domain.BookingStatus) (int64, error)
}

// OrderRepository интерфейс репозитория заказов и платежей
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error
	CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
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

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
}

// PaymentGateway интерфейс платёжного провайдера
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, req stripegateway.PaymentIntentRequest) (*stripegateway.PaymentIntent, error)
}

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// Metrics доменные счётчики
type Metrics interface {
	IncBookingCreated(source string)
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
