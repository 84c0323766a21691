package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	orderRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/order"
	"github.com/m04kA/SMC-CourtBooking/internal/service/orders/models"
)

// Service сервис заказов: просмотр, обработка платежей и истечение неоплаченных заказов
type Service struct {
	orderRepo    OrderRepository
	bookingRepo  BookingRepository
	courtRepo    CourtRepository
	venueRepo    VenueRepository
	userRepo     UserRepository
	gateway      PaymentGateway
	idempotency  IdempotencyStore
	publisher    EventPublisher
	mailer       Mailer
	metrics      Metrics
	txManager    TransactionManager
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// Deps зависимости сервиса заказов
type Deps struct {
	OrderRepo   OrderRepository
	BookingRepo BookingRepository
	CourtRepo   CourtRepository
	VenueRepo   VenueRepository
	UserRepo    UserRepository
	Gateway     PaymentGateway
	Idempotency IdempotencyStore
	Publisher   EventPublisher
	Mailer      Mailer
	Metrics     Metrics
	TxManager   TransactionManager
	Location    *time.Location
	Logger      Logger
}

// NewService создает новый экземпляр сервиса заказов
func NewService(deps Deps) *Service {
	return &Service{
		orderRepo:    deps.OrderRepo,
		bookingRepo:  deps.BookingRepo,
		courtRepo:    deps.CourtRepo,
		venueRepo:    deps.VenueRepo,
		userRepo:     deps.UserRepo,
		gateway:      deps.Gateway,
		idempotency:  deps.Idempotency,
		publisher:    deps.Publisher,
		mailer:       deps.Mailer,
		metrics:      deps.Metrics,
		txManager:    deps.TxManager,
		timeProvider: &RealTimeProvider{},
		location:     deps.Location,
		logger:       deps.Logger,
	}
}

// GetOrder получает заказ по публичному ID вместе с бронями и платежами
// Доступно владельцу заказа и менеджерам площадки
func (s *Service) GetOrder(ctx context.Context, publicID string, userID int64) (*models.OrderResponse, error) {
	s.logger.Info("GetOrder: fetching order %s for user=%d", publicID, userID)

	order, err := s.orderRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, orderRepo.ErrOrderNotFound) {
			s.logger.Warn("GetOrder: order %s not found", publicID)
			return nil, ErrOrderNotFound
		}
		s.logger.Error("GetOrder: repository error for order %s: %v", publicID, err)
		return nil, fmt.Errorf("%w: GetOrder - repository error: %v", ErrInternal, err)
	}

	if !order.IsOwnedBy(userID) {
		venue, err := s.venueRepo.GetByID(ctx, order.VenueID)
		if err != nil {
			s.logger.Error("GetOrder: failed to get venue id=%d: %v", order.VenueID, err)
			return nil, fmt.Errorf("%w: GetOrder - repository error: %v", ErrInternal, err)
		}
		if !venue.IsManager(userID) {
			s.logger.Warn("GetOrder: access denied for user=%d to order %s", userID, publicID)
			return nil, ErrAccessDenied
		}
	}

	bookings, err := s.bookingRepo.List(ctx, domain.BookingsFilter{OrderID: &order.ID, IncludeInactive: true})
	if err != nil {
		s.logger.Error("GetOrder: failed to list bookings of order %s: %v", publicID, err)
		return nil, fmt.Errorf("%w: GetOrder - repository error: %v", ErrInternal, err)
	}

	payments, err := s.orderRepo.ListPayments(ctx, order.ID)
	if err != nil {
		s.logger.Error("GetOrder: failed to list payments of order %s: %v", publicID, err)
		return nil, fmt.Errorf("%w: GetOrder - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainOrder(order, bookings, payments), nil
}
