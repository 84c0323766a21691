package orders

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/mailer"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/stripegateway"
)

// OrderRepository интерфейс репозитория заказов и платежей
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByPublicID(ctx context.Context, publicID string) (*domain.Order, error)
	ListExpired(ctx context.Context, now time.Time, limit uint64) ([]int64, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error
	CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	GetPaymentByProviderRef(ctx context.Context, provider domain.PaymentProvider, ref string) (*domain.Payment, error)
	ListPayments(ctx context.Context, orderID int64) ([]*domain.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, failureReason *string) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	UpdateStatusByOrder(ctx context.Context, orderID int64, from []domain.BookingStatus, to domain.BookingStatus) (int64, error)
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

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// PaymentGateway интерфейс платёжного провайдера
type PaymentGateway interface {
	ParseWebhook(payload []byte, signature string) (*stripegateway.WebhookEvent, error)
	Refund(ctx context.Context, paymentIntentID string, amount int64, idempotencyKey string) (*stripegateway.Refund, error)
}

// IdempotencyStore хранилище обработанных событий вебхука
type IdempotencyStore interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

// Mailer интерфейс отправки писем
type Mailer interface {
	SendBookingConfirmation(ctx context.Context, to string, data mailer.OrderMail) error
}

// Metrics доменные счётчики
type Metrics interface {
	IncOrderFinished(status string)
	IncWebhookEvent(eventType, result string)
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
