package create_manual_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/court"
	venueRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/venue"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/events"
	orderModels "github.com/m04kA/SMC-CourtBooking/internal/service/orders/models"
)

// UseCase use case для ручного бронирования менеджером площадки
type UseCase struct {
	bookingRepo  BookingRepository
	orderRepo    OrderRepository
	courtRepo    CourtRepository
	venueRepo    VenueRepository
	priceRepo    PriceRepository
	publisher    EventPublisher
	metrics      Metrics
	txManager    TransactionManager
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	orderRepo OrderRepository,
	courtRepo CourtRepository,
	venueRepo VenueRepository,
	priceRepo PriceRepository,
	publisher EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		orderRepo:    orderRepo,
		courtRepo:    courtRepo,
		venueRepo:    venueRepo,
		priceRepo:    priceRepo,
		publisher:    publisher,
		metrics:      metrics,
		txManager:    txManager,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute создает оплаченный заказ, платёж manual и подтверждённую бронь.
// Оплата принимается на месте, поэтому заказ не ждёт провайдера
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*orderModels.OrderResponse, error) {
	uc.logger.Info("CreateManualBooking: manager=%d, court=%d, date=%s, start=%s, slots=%d",
		req.ManagerID, req.CourtID, req.Date.Format(domain.DateFormat), req.StartTime, req.Slots)

	// 1. Валидация входных данных
	method, err := validateRequest(req, uc.settings.MaxSlotsPerItem)
	if err != nil {
		uc.logger.Warn("CreateManualBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.settings.Location)

	// 2. Корт и права менеджера
	court, err := uc.getActiveCourt(ctx, req.CourtID)
	if err != nil {
		return nil, err
	}
	if err := uc.checkManagerAccess(ctx, court.VenueID, req.ManagerID); err != nil {
		return nil, err
	}

	// 3. Сетка и время
	date := domain.DateIn(req.Date, uc.settings.Location)
	span, err := validateSpan(court, req)
	if err != nil {
		uc.logger.Warn("CreateManualBooking: span validation failed: %v", err)
		return nil, err
	}
	if err := validateTime(date, span, now, uc.settings.AdvanceDays); err != nil {
		uc.logger.Warn("CreateManualBooking: date validation failed: %v", err)
		return nil, err
	}

	rules, err := uc.priceRepo.ListByCourt(ctx, court.ID)
	if err != nil {
		uc.logger.Error("CreateManualBooking: failed to get price rules of court=%d: %v", court.ID, err)
		return nil, fmt.Errorf("%w: failed to get price rules: %w", ErrInternal, err)
	}

	// 4. Заказ, платёж и бронь в одной сериализуемой транзакции
	var (
		order   *domain.Order
		booking *domain.Booking
		payment *domain.Payment
	)
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var txErr error
		order, booking, payment, txErr = uc.reserve(txCtx, req, court, rules, date, span, method, now)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateManualBooking: order %s paid by %s, booking id=%d, price=%d",
		order.PublicID, method, booking.ID, booking.Price)

	uc.publisher.Publish(ctx, events.Event{
		Type:          events.BookingCreated,
		OrderPublicID: order.PublicID,
		VenueID:       order.VenueID,
		BookingIDs:    []int64{booking.ID},
		Amount:        order.TotalAmount,
		Currency:      order.Currency,
		OccurredAt:    now,
	})
	uc.metrics.IncBookingCreated(string(domain.SourceManual))

	return orderModels.FromDomainOrder(order, []*domain.Booking{booking}, []*domain.Payment{payment}), nil
}

func (uc *UseCase) reserve(
	ctx context.Context,
	req *Request,
	court *domain.Court,
	rules []*domain.DynamicPrice,
	date time.Time,
	span domain.Span,
	method domain.PaymentMethod,
	now time.Time,
) (*domain.Order, *domain.Booking, *domain.Payment, error) {
	existing, err := uc.bookingRepo.List(ctx, domain.BookingsFilter{
		CourtID:      &court.ID,
		StartDate:    &date,
		EndDate:      &date,
		HoldsValidAt: &now,
	})
	if err != nil {
		uc.logger.Error("CreateManualBooking: failed to get bookings: %v", err)
		return nil, nil, nil, fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
	}

	blocks, err := uc.courtRepo.ListBlocks(ctx, court.ID, date, date)
	if err != nil {
		uc.logger.Error("CreateManualBooking: failed to get blocks: %v", err)
		return nil, nil, nil, fmt.Errorf("%w: failed to get blocks: %w", ErrInternal, err)
	}

	if err := domain.FindConflict(span, existing, blocks); err != nil {
		uc.logger.Warn("CreateManualBooking: court=%d %s %s-%s not available: %v",
			court.ID, date.Format(domain.DateFormat), span.Start, span.End, err)
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
	}

	price, err := domain.PriceForSpan(court, rules, date, span.Start, span.Slots)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: failed to price span: %w", ErrInternal, err)
	}
	if req.PriceOverride != nil {
		price = *req.PriceOverride
	}

	order, err := uc.orderRepo.Create(ctx, &domain.Order{
		PublicID:      uuid.NewString(),
		VenueID:       court.VenueID,
		TotalAmount:   price,
		Currency:      uc.settings.Currency,
		Status:        domain.OrderPaid,
		PaymentMethod: method,
		PaidAt:        &now,
	})
	if err != nil {
		uc.logger.Error("CreateManualBooking: failed to create order: %v", err)
		return nil, nil, nil, fmt.Errorf("%w: failed to create order: %w", ErrInternal, err)
	}

	payment, err := uc.orderRepo.CreatePayment(ctx, &domain.Payment{
		OrderID:  order.ID,
		Provider: domain.ProviderManual,
		Amount:   price,
		Currency: order.Currency,
		Status:   domain.PaymentSucceeded,
	})
	if err != nil {
		uc.logger.Error("CreateManualBooking: failed to create payment: %v", err)
		return nil, nil, nil, fmt.Errorf("%w: failed to create payment: %w", ErrInternal, err)
	}

	booking, err := uc.bookingRepo.Create(ctx, &domain.Booking{
		OrderID:         order.ID,
		CourtID:         court.ID,
		VenueID:         court.VenueID,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   req.CustomerPhone,
		BookingDate:     date,
		StartTime:       span.Start,
		DurationMinutes: span.Minutes(),
		Price:           price,
		Status:          domain.StatusConfirmed,
		Source:          domain.SourceManual,
		Notes:           req.Notes,
	})
	if err != nil {
		uc.logger.Error("CreateManualBooking: failed to create booking: %v", err)
		return nil, nil, nil, fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
	}
	booking.OrderPublicID = order.PublicID

	return order, booking, payment, nil
}

func (uc *UseCase) getActiveCourt(ctx context.Context, courtID int64) (*domain.Court, error) {
	court, err := uc.courtRepo.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			uc.logger.Warn("CreateManualBooking: court id=%d not found", courtID)
			return nil, ErrCourtNotFound
		}
		uc.logger.Error("CreateManualBooking: failed to get court id=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: failed to get court: %w", ErrInternal, err)
	}
	if !court.IsActive {
		uc.logger.Warn("CreateManualBooking: court id=%d is inactive", courtID)
		return nil, ErrCourtNotFound
	}
	return court, nil
}

func (uc *UseCase) checkManagerAccess(ctx context.Context, venueID, userID int64) error {
	venue, err := uc.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			return ErrCourtNotFound
		}
		uc.logger.Error("CreateManualBooking: failed to get venue id=%d: %v", venueID, err)
		return fmt.Errorf("%w: failed to get venue: %w", ErrInternal, err)
	}
	if !venue.IsManager(userID) {
		uc.logger.Warn("CreateManualBooking: access denied for user=%d to venue=%d", userID, venueID)
		return ErrAccessDenied
	}
	return nil
}
