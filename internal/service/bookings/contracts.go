package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/mailer"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/stripegateway"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason *string) error
}

// OrderRepository интерфейс репозитория заказов и платежей
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error
	ListPayments(ctx context.Context, orderID int64) ([]*domain.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, failureReason *string) error
}

// VenueRepository интерфейс репозитория площадок
type VenueRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
}

// CourtRepository интерфейс репозитория кортов (название корта для письма)
type CourtRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
}

// UserRepository интерфейс репозитория пользователей (адрес для письма)
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// PaymentGateway интерфейс платёжного провайдера
type PaymentGateway interface {
	Refund(ctx context.Context, paymentIntentID string, amount int64, idempotencyKey string) (*stripegateway.Refund, error)
}

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// Mailer интерфейс отправки писем
type Mailer interface {
	SendBookingCancellation(ctx context.Context, to string, data mailer.CancellationMail) error
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
