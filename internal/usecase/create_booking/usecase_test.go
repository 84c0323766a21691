package create_booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/stripegateway"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
	"github.com/m04kA/SMC-CourtBooking/pkg/txmanager"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

type mockBookingRepo struct {
	mock.Mock
	nextID int64
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	args := m.Called(ctx, booking)
	m.nextID++
	booking.ID = m.nextID
	return booking, args.Error(0)
}

func (m *mockBookingRepo) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) UpdateStatusByOrder(ctx context.Context, orderID int64, from []domain.BookingStatus, to domain.BookingStatus) (int64, error) {
	args := m.Called(ctx, orderID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	args := m.Called(ctx, order)
	order.ID = 7
	return order, args.Error(0)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *mockOrderRepo) CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	args := m.Called(ctx, payment)
	payment.ID = 11
	return payment, args.Error(0)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) CreatePaymentIntent(ctx context.Context, req stripegateway.PaymentIntentRequest) (*stripegateway.PaymentIntent, error) {
	args := m.Called(ctx, req)
	if pi, ok := args.Get(0).(*stripegateway.PaymentIntent); ok {
		return pi, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}

// stubCourts корты площадки 1 и блокировки по корту
type stubCourts struct {
	courts map[int64]*domain.Court
	blocks map[int64][]*domain.CourtBlock
}

func (s *stubCourts) GetByID(_ context.Context, id int64) (*domain.Court, error) {
	if c, ok := s.courts[id]; ok {
		return c, nil
	}
	return nil, courtNotFound
}

func (s *stubCourts) ListBlocks(_ context.Context, courtID int64, _, _ time.Time) ([]*domain.CourtBlock, error) {
	return s.blocks[courtID], nil
}

type stubVenues struct{ active bool }

func (s stubVenues) GetByID(_ context.Context, id int64) (*domain.Venue, error) {
	return &domain.Venue{ID: id, IsActive: s.active}, nil
}

type stubPrices struct{ rules []*domain.DynamicPrice }

func (s stubPrices) ListByCourt(_ context.Context, _ int64) ([]*domain.DynamicPrice, error) {
	return s.rules, nil
}

type stubUsers struct{}

func (stubUsers) GetProfile(_ context.Context, userID int64) (*domain.Profile, error) {
	return &domain.Profile{UserID: userID, FullName: "Иван Петров", Phone: ptr.Ptr("+79990001122")}, nil
}

type nopMetrics struct{}

func (nopMetrics) IncBookingCreated(string) {}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

const userID int64 = 100

// 2026-06-01 09:00 UTC, понедельник
var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

var tomorrow = time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)

type fixture struct {
	uc        *UseCase
	bookings  *mockBookingRepo
	orders    *mockOrderRepo
	gateway   *mockGateway
	publisher *mockPublisher
	courts    *stubCourts
}

func newFixture() *fixture {
	court := func(id, venueID int64) *domain.Court {
		return &domain.Court{
			ID: id, VenueID: venueID, Name: "Корт", Sport: domain.SportTennis,
			OpenTime: "08:00", CloseTime: "22:00", SlotDurationMinutes: 60,
			BasePrice: 2000, IsActive: true,
		}
	}

	f := &fixture{
		bookings:  &mockBookingRepo{},
		orders:    &mockOrderRepo{},
		gateway:   &mockGateway{},
		publisher: &mockPublisher{},
		courts: &stubCourts{
			courts: map[int64]*domain.Court{3: court(3, 1), 4: court(4, 1), 9: court(9, 2)},
			blocks: map[int64][]*domain.CourtBlock{},
		},
	}
	f.uc = NewUseCase(Deps{
		BookingRepo: f.bookings,
		OrderRepo:   f.orders,
		CourtRepo:   f.courts,
		VenueRepo:   stubVenues{active: true},
		PriceRepo:   stubPrices{},
		UserRepo:    stubUsers{},
		Gateway:     f.gateway,
		Publisher:   f.publisher,
		Metrics:     nopMetrics{},
		TxManager:   passthroughTx{},
		Logger:      logger.Nop(),
	}, Settings{
		AdvanceDays:      14,
		MinNoticeMinutes: 30,
		MaxSlotsPerItem:  4,
		OrderTTLMinutes:  15,
		Currency:         "usd",
		Location:         time.UTC,
	})
	f.uc.timeProvider = fixedTime{now: testNow}
	return f
}

func item(courtID int64, date time.Time, start string, slots int) Item {
	return Item{CourtID: courtID, Date: date, StartTime: types.MustTimeString(start), Slots: slots}
}

func TestExecute_CreatesOrderAndPaymentIntent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("List", ctx, mock.Anything).Return([]*domain.Booking{}, nil)
	f.orders.On("Create", ctx, mock.MatchedBy(func(o *domain.Order) bool {
		return o.Status == domain.OrderPending && o.TotalAmount == 6000 && o.VenueID == 1 &&
			o.ExpiresAt.Equal(testNow.Add(15*time.Minute)) && o.PublicID != ""
	})).Return(nil)
	f.bookings.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Status == domain.StatusPending && b.Source == domain.SourceOnline &&
			b.CustomerName == "Иван Петров" && b.OrderID == 7
	})).Return(nil)
	f.gateway.On("CreatePaymentIntent", ctx, mock.MatchedBy(func(req stripegateway.PaymentIntentRequest) bool {
		return req.Amount == 6000 && req.Currency == "usd" && req.OrderID == 7
	})).Return(&stripegateway.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil)
	f.orders.On("CreatePayment", ctx, mock.MatchedBy(func(p *domain.Payment) bool {
		return *p.ProviderRef == "pi_1" && p.Status == domain.PaymentPending && p.Amount == 6000
	})).Return(nil)
	f.publisher.On("Publish", ctx, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.BookingCreated && len(e.BookingIDs) == 2
	})).Return()

	resp, err := f.uc.Execute(ctx, &Request{
		UserID: userID,
		Items: []Item{
			item(3, tomorrow, "10:00", 2),
			item(4, tomorrow, "10:00", 1),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_1_secret", resp.ClientSecret)
	assert.Equal(t, int64(6000), resp.TotalAmount)
	assert.Equal(t, "pending", resp.Status)
	require.Len(t, resp.Bookings, 2)
	assert.Equal(t, int64(4000), resp.Bookings[0].Price)
	assert.Equal(t, 120, resp.Bookings[0].DurationMinutes)
	f.bookings.AssertNumberOfCalls(t, "Create", 2)
	f.publisher.AssertExpectations(t)
}

func TestExecute_RetriesOnSerializationFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	f.uc.txManager = txmanager.NewTransactionManager(dbmetrics.Wrap(db, nil))

	sqlMock.ExpectBegin()
	sqlMock.ExpectRollback()
	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	f.bookings.On("List", mock.Anything, mock.Anything).
		Return([]*domain.Booking{}, fmt.Errorf("select bookings: %w", &pq.Error{Code: "40001"})).Once()
	f.bookings.On("List", mock.Anything, mock.Anything).Return([]*domain.Booking{}, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.gateway.On("CreatePaymentIntent", ctx, mock.Anything).
		Return(&stripegateway.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil)
	f.orders.On("CreatePayment", ctx, mock.Anything).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return()

	resp, err := f.uc.Execute(ctx, &Request{
		UserID: userID,
		Items:  []Item{item(3, tomorrow, "10:00", 1)},
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_1_secret", resp.ClientSecret)
	f.bookings.AssertNumberOfCalls(t, "List", 2)
	f.orders.AssertNumberOfCalls(t, "Create", 1)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestExecute_UsesDynamicPrices(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.uc.priceRepo = stubPrices{rules: []*domain.DynamicPrice{
		{ID: 1, CourtID: 3, DayOfWeek: ptr.Ptr(int(time.Tuesday)), StartTime: "18:00", EndTime: "22:00", Price: 3500},
	}}

	f.bookings.On("List", ctx, mock.Anything).Return([]*domain.Booking{}, nil)
	f.orders.On("Create", ctx, mock.MatchedBy(func(o *domain.Order) bool {
		// 17:00 базовая цена, 18:00 и 19:00 вечерний тариф
		return o.TotalAmount == 2000+3500+3500
	})).Return(nil)
	f.bookings.On("Create", ctx, mock.Anything).Return(nil)
	f.gateway.On("CreatePaymentIntent", ctx, mock.Anything).Return(&stripegateway.PaymentIntent{ID: "pi_1"}, nil)
	f.orders.On("CreatePayment", ctx, mock.Anything).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return()

	_, err := f.uc.Execute(ctx, &Request{UserID: userID, Items: []Item{item(3, tomorrow, "17:00", 3)}})
	require.NoError(t, err)
	f.orders.AssertExpectations(t)
}

func TestExecute_SlotTaken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("List", ctx, mock.Anything).Return([]*domain.Booking{{
		CourtID: 3, StartTime: "11:00", DurationMinutes: 60, Status: domain.StatusConfirmed,
	}}, nil)

	_, err := f.uc.Execute(ctx, &Request{UserID: userID, Items: []Item{item(3, tomorrow, "10:00", 2)}})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.gateway.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
}

func TestExecute_SlotBlocked(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.courts.blocks[3] = []*domain.CourtBlock{{CourtID: 3, StartTime: "10:30", EndTime: "11:00"}}

	f.bookings.On("List", ctx, mock.Anything).Return([]*domain.Booking{}, nil)

	_, err := f.uc.Execute(ctx, &Request{UserID: userID, Items: []Item{item(3, tomorrow, "10:00", 1)}})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_PaymentProviderFailureReleasesSlots(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("List", ctx, mock.Anything).Return([]*domain.Booking{}, nil)
	f.orders.On("Create", ctx, mock.Anything).Return(nil)
	f.bookings.On("Create", ctx, mock.Anything).Return(nil)
	f.gateway.On("CreatePaymentIntent", ctx, mock.Anything).Return(nil, stripegateway.ErrStripeAPI)
	f.orders.On("UpdateStatus", ctx, int64(7), domain.OrderPending, domain.OrderFailed).Return(nil)
	f.bookings.On("UpdateStatusByOrder", ctx, int64(7),
		[]domain.BookingStatus{domain.StatusPending}, domain.StatusExpired).Return(int64(1), nil)

	_, err := f.uc.Execute(ctx, &Request{UserID: userID, Items: []Item{item(3, tomorrow, "10:00", 1)}})
	assert.ErrorIs(t, err, ErrPaymentProvider)
	f.orders.AssertExpectations(t)
	f.bookings.AssertExpectations(t)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name    string
		items   []Item
		wantErr error
	}{
		{name: "no items", items: nil, wantErr: ErrInvalidInput},
		{name: "zero slots", items: []Item{item(3, tomorrow, "10:00", 0)}, wantErr: ErrInvalidInput},
		{name: "too many slots", items: []Item{item(3, tomorrow, "10:00", 5)}, wantErr: ErrInvalidInput},
		{name: "unknown court", items: []Item{item(42, tomorrow, "10:00", 1)}, wantErr: ErrCourtNotFound},
		{name: "mixed venues", items: []Item{item(3, tomorrow, "10:00", 1), item(9, tomorrow, "10:00", 1)}, wantErr: ErrMixedVenues},
		{name: "past date", items: []Item{item(3, testNow.AddDate(0, 0, -1), "10:00", 1)}, wantErr: ErrInvalidDate},
		{name: "too far", items: []Item{item(3, testNow.AddDate(0, 0, 15), "10:00", 1)}, wantErr: ErrDateTooFarInFuture},
		{name: "not on grid", items: []Item{item(3, tomorrow, "10:30", 1)}, wantErr: ErrInvalidTimeSlot},
		{name: "past closing", items: []Item{item(3, tomorrow, "21:00", 2)}, wantErr: ErrInvalidTimeSlot},
		{name: "min notice", items: []Item{item(3, testNow, "09:00", 1)}, wantErr: ErrTooLateToBook},
		{
			name:    "overlapping items",
			items:   []Item{item(3, tomorrow, "10:00", 2), item(3, tomorrow, "11:00", 1)},
			wantErr: ErrOverlappingItems,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.uc.Execute(context.Background(), &Request{UserID: userID, Items: tt.items})
			assert.ErrorIs(t, err, tt.wantErr)
			f.bookings.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		})
	}
}

func TestExecute_AdjacentItemsAllowed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("List", ctx, mock.Anything).Return([]*domain.Booking{}, nil)
	f.orders.On("Create", ctx, mock.Anything).Return(nil)
	f.bookings.On("Create", ctx, mock.Anything).Return(nil)
	f.gateway.On("CreatePaymentIntent", ctx, mock.Anything).Return(&stripegateway.PaymentIntent{ID: "pi_1"}, nil)
	f.orders.On("CreatePayment", ctx, mock.Anything).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return()

	_, err := f.uc.Execute(ctx, &Request{UserID: userID, Items: []Item{
		item(3, tomorrow, "10:00", 1),
		item(3, tomorrow, "11:00", 1),
	}})
	require.NoError(t, err)
}

func TestExecute_InactiveVenue(t *testing.T) {
	f := newFixture()
	f.uc.venueRepo = stubVenues{active: false}

	_, err := f.uc.Execute(context.Background(), &Request{UserID: userID, Items: []Item{item(3, tomorrow, "10:00", 1)}})
	assert.ErrorIs(t, err, ErrCourtNotFound)
}

var courtNotFound = courtRepo.ErrCourtNotFound
