package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/court"
	userRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/user"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/stripegateway"
	orderModels "github.com/m04kA/SMC-CourtBooking/internal/service/orders/models"
)

// UseCase use case для создания заказа с онлайн-оплатой
type UseCase struct {
	bookingRepo  BookingRepository
	orderRepo    OrderRepository
	courtRepo    CourtRepository
	venueRepo    VenueRepository
	priceRepo    PriceRepository
	userRepo     UserRepository
	gateway      PaymentGateway
	publisher    EventPublisher
	metrics      Metrics
	txManager    TransactionManager
	settings     Settings
	timeProvider TimeProvider
	logger       Logger
}

// Deps зависимости use case
type Deps struct {
	BookingRepo BookingRepository
	OrderRepo   OrderRepository
	CourtRepo   CourtRepository
	VenueRepo   VenueRepository
	PriceRepo   PriceRepository
	UserRepo    UserRepository
	Gateway     PaymentGateway
	Publisher   EventPublisher
	Metrics     Metrics
	TxManager   TransactionManager
	Logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(deps Deps, settings Settings) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &UseCase{
		bookingRepo:  deps.BookingRepo,
		orderRepo:    deps.OrderRepo,
		courtRepo:    deps.CourtRepo,
		venueRepo:    deps.VenueRepo,
		priceRepo:    deps.PriceRepo,
		userRepo:     deps.UserRepo,
		gateway:      deps.Gateway,
		publisher:    deps.Publisher,
		metrics:      deps.Metrics,
		txManager:    deps.TxManager,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
		logger:       deps.Logger,
	}
}

// plannedItem позиция заказа, прошедшая проверки вне транзакции
type plannedItem struct {
	court *domain.Court
	date  time.Time
	span  domain.Span
	rules []*domain.DynamicPrice
}

// Execute создает заказ со статусом pending и бронирования по всем позициям,
// затем создает PaymentIntent на сумму заказа.
// Проверка занятости и вставка выполняются в сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*orderModels.OrderResponse, error) {
	uc.logger.Info("CreateBooking: user=%d, items=%d", req.UserID, len(req.Items))

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.settings.MaxSlotsPerItem); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now().In(uc.settings.Location)

	// 2. Клиент
	profile, err := uc.userRepo.GetProfile(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			uc.logger.Warn("CreateBooking: profile of user=%d not found", req.UserID)
			return nil, fmt.Errorf("%w: user not found", ErrInvalidInput)
		}
		uc.logger.Error("CreateBooking: failed to get profile of user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: failed to get profile: %w", ErrInternal, err)
	}

	// 3. Корты, окно бронирования и сетка
	planned, venueID, err := uc.plan(ctx, req.Items, now)
	if err != nil {
		return nil, err
	}

	// 4. Заказ и брони в сериализуемой транзакции
	var (
		order    *domain.Order
		bookings []*domain.Booking
	)
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		order, bookings, err = uc.reserve(txCtx, req, profile, venueID, planned, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: order %s created with %d bookings, total=%d %s",
		order.PublicID, len(bookings), order.TotalAmount, order.Currency)

	// 5. Платёж создается после коммита, чтобы не держать транзакцию на время запроса к провайдеру
	payment, intent, err := uc.startPayment(ctx, order)
	if err != nil {
		uc.releaseOrder(ctx, order)
		return nil, err
	}

	uc.afterCreate(ctx, order, bookings, now)

	resp := orderModels.FromDomainOrder(order, bookings, []*domain.Payment{payment})
	resp.ClientSecret = intent.ClientSecret
	return resp, nil
}

// plan проверяет позиции без блокировок: корты активны, одна площадка, сетка и окно дат
func (uc *UseCase) plan(ctx context.Context, items []Item, now time.Time) ([]plannedItem, int64, error) {
	courts := make(map[int64]*domain.Court)
	rules := make(map[int64][]*domain.DynamicPrice)
	var venueID int64

	planned := make([]plannedItem, 0, len(items))
	for _, item := range items {
		court, ok := courts[item.CourtID]
		if !ok {
			var err error
			court, err = uc.getActiveCourt(ctx, item.CourtID)
			if err != nil {
				return nil, 0, err
			}
			courts[court.ID] = court

			courtRules, err := uc.priceRepo.ListByCourt(ctx, court.ID)
			if err != nil {
				uc.logger.Error("CreateBooking: failed to get price rules of court=%d: %v", court.ID, err)
				return nil, 0, fmt.Errorf("%w: failed to get price rules: %w", ErrInternal, err)
			}
			rules[court.ID] = courtRules
		}

		if venueID == 0 {
			venueID = court.VenueID
		} else if venueID != court.VenueID {
			uc.logger.Warn("CreateBooking: court=%d belongs to venue=%d, expected venue=%d", court.ID, court.VenueID, venueID)
			return nil, 0, ErrMixedVenues
		}

		date := domain.DateIn(item.Date, uc.settings.Location)
		if err := validateDate(date, now, uc.settings.AdvanceDays); err != nil {
			uc.logger.Warn("CreateBooking: date validation failed: %v", err)
			return nil, 0, err
		}

		span, err := validateSpan(court, item)
		if err != nil {
			uc.logger.Warn("CreateBooking: span validation failed for court=%d: %v", court.ID, err)
			return nil, 0, err
		}

		if err := validateNotice(date, span, now, uc.settings.MinNoticeMinutes); err != nil {
			uc.logger.Warn("CreateBooking: booking time validation failed: %v", err)
			return nil, 0, err
		}

		planned = append(planned, plannedItem{court: court, date: date, span: span, rules: rules[court.ID]})
	}

	if err := checkItemsDisjoint(planned); err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, 0, err
	}

	if err := uc.checkVenueActive(ctx, venueID); err != nil {
		return nil, 0, err
	}

	return planned, venueID, nil
}

// reserve выполняется внутри транзакции: FOR UPDATE на брони дня, проверка пересечений, вставка
func (uc *UseCase) reserve(
	ctx context.Context,
	req *Request,
	profile *domain.Profile,
	venueID int64,
	planned []plannedItem,
	now time.Time,
) (*domain.Order, []*domain.Booking, error) {
	var total int64
	prices := make([]int64, len(planned))

	for i, p := range planned {
		existing, err := uc.bookingRepo.List(ctx, domain.BookingsFilter{
			CourtID:      &p.court.ID,
			StartDate:    &p.date,
			EndDate:      &p.date,
			HoldsValidAt: &now,
		})
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return nil, nil, fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
		}

		blocks, err := uc.courtRepo.ListBlocks(ctx, p.court.ID, p.date, p.date)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get blocks: %v", err)
			return nil, nil, fmt.Errorf("%w: failed to get blocks: %w", ErrInternal, err)
		}

		if err := domain.FindConflict(p.span, existing, blocks); err != nil {
			uc.logger.Warn("CreateBooking: court=%d %s %s-%s not available: %v",
				p.court.ID, p.date.Format(domain.DateFormat), p.span.Start, p.span.End, err)
			return nil, nil, fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
		}

		price, err := domain.PriceForSpan(p.court, p.rules, p.date, p.span.Start, p.span.Slots)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to price span: %w", ErrInternal, err)
		}
		prices[i] = price
		total += price
	}

	expiresAt := now.Add(time.Duration(uc.settings.OrderTTLMinutes) * time.Minute)
	order, err := uc.orderRepo.Create(ctx, &domain.Order{
		PublicID:      uuid.NewString(),
		UserID:        &req.UserID,
		VenueID:       venueID,
		TotalAmount:   total,
		Currency:      uc.settings.Currency,
		Status:        domain.OrderPending,
		PaymentMethod: domain.MethodCard,
		ExpiresAt:     &expiresAt,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to create order: %v", err)
		return nil, nil, fmt.Errorf("%w: failed to create order: %w", ErrInternal, err)
	}

	bookings := make([]*domain.Booking, 0, len(planned))
	for i, p := range planned {
		created, err := uc.bookingRepo.Create(ctx, &domain.Booking{
			OrderID:         order.ID,
			CourtID:         p.court.ID,
			VenueID:         venueID,
			UserID:          &req.UserID,
			CustomerName:    profile.FullName,
			CustomerPhone:   profile.Phone,
			BookingDate:     p.date,
			StartTime:       p.span.Start,
			DurationMinutes: p.span.Minutes(),
			Price:           prices[i],
			Status:          domain.StatusPending,
			Source:          domain.SourceOnline,
			Notes:           req.Notes,
		})
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return nil, nil, fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}
		created.OrderPublicID = order.PublicID
		bookings = append(bookings, created)
	}

	return order, bookings, nil
}

func (uc *UseCase) startPayment(ctx context.Context, order *domain.Order) (*domain.Payment, *stripegateway.PaymentIntent, error) {
	intent, err := uc.gateway.CreatePaymentIntent(ctx, stripegateway.PaymentIntentRequest{
		OrderID:        order.ID,
		OrderPublicID:  order.PublicID,
		Amount:         order.TotalAmount,
		Currency:       order.Currency,
		Description:    fmt.Sprintf("Court booking %s", order.PublicID),
		IdempotencyKey: "order-" + order.PublicID,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: payment intent for order %s failed: %v", order.PublicID, err)
		return nil, nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	payment, err := uc.orderRepo.CreatePayment(ctx, &domain.Payment{
		OrderID:     order.ID,
		Provider:    domain.ProviderStripe,
		ProviderRef: &intent.ID,
		Amount:      order.TotalAmount,
		Currency:    order.Currency,
		Status:      domain.PaymentPending,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to store payment %s of order %s: %v", intent.ID, order.PublicID, err)
		return nil, nil, fmt.Errorf("%w: failed to store payment: %w", ErrInternal, err)
	}

	return payment, intent, nil
}

// releaseOrder помечает заказ failed и освобождает слоты, если платёж не удалось начать
func (uc *UseCase) releaseOrder(ctx context.Context, order *domain.Order) {
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.orderRepo.UpdateStatus(txCtx, order.ID, domain.OrderPending, domain.OrderFailed); err != nil {
			return err
		}
		_, err := uc.bookingRepo.UpdateStatusByOrder(txCtx, order.ID,
			[]domain.BookingStatus{domain.StatusPending}, domain.StatusExpired)
		return err
	})
	if err != nil {
		// Слоты освободит задача истечения заказов
		uc.logger.Error("CreateBooking: failed to release order %s: %v", order.PublicID, err)
		return
	}
	uc.logger.Warn("CreateBooking: order %s marked failed, slots released", order.PublicID)
}

func (uc *UseCase) afterCreate(ctx context.Context, order *domain.Order, bookings []*domain.Booking, now time.Time) {
	event := events.Event{
		Type:          events.BookingCreated,
		OrderPublicID: order.PublicID,
		VenueID:       order.VenueID,
		UserID:        order.UserID,
		Amount:        order.TotalAmount,
		Currency:      order.Currency,
		OccurredAt:    now,
	}
	for _, b := range bookings {
		event.BookingIDs = append(event.BookingIDs, b.ID)
		uc.metrics.IncBookingCreated(string(domain.SourceOnline))
	}
	uc.publisher.Publish(ctx, event)
}

func (uc *UseCase) getActiveCourt(ctx context.Context, courtID int64) (*domain.Court, error) {
	court, err := uc.courtRepo.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			uc.logger.Warn("CreateBooking: court id=%d not found", courtID)
			return nil, ErrCourtNotFound
		}
		uc.logger.Error("CreateBooking: failed to get court id=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: failed to get court: %w", ErrInternal, err)
	}
	if !court.IsActive {
		uc.logger.Warn("CreateBooking: court id=%d is inactive", courtID)
		return nil, ErrCourtNotFound
	}
	return court, nil
}

func (uc *UseCase) checkVenueActive(ctx context.Context, venueID int64) error {
	venue, err := uc.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get venue id=%d: %v", venueID, err)
		return fmt.Errorf("%w: failed to get venue: %w", ErrInternal, err)
	}
	if !venue.IsActive {
		uc.logger.Warn("CreateBooking: venue id=%d is inactive", venueID)
		return ErrCourtNotFound
	}
	return nil
}
