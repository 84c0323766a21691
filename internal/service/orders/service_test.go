package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	orderRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/order"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/mailer"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/stripegateway"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*domain.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) GetByPublicID(ctx context.Context, publicID string) (*domain.Order, error) {
	args := m.Called(ctx, publicID)
	if o, ok := args.Get(0).(*domain.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) ListExpired(ctx context.Context, now time.Time, limit uint64) ([]int64, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *mockOrderRepo) CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	args := m.Called(ctx, payment)
	if p, ok := args.Get(0).(*domain.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) GetPaymentByProviderRef(ctx context.Context, provider domain.PaymentProvider, ref string) (*domain.Payment, error) {
	args := m.Called(ctx, provider, ref)
	if p, ok := args.Get(0).(*domain.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) ListPayments(ctx context.Context, orderID int64) ([]*domain.Payment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *mockOrderRepo) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, failureReason *string) error {
	return m.Called(ctx, id, status, failureReason).Error(0)
}

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) UpdateStatusByOrder(ctx context.Context, orderID int64, from []domain.BookingStatus, to domain.BookingStatus) (int64, error) {
	args := m.Called(ctx, orderID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (*stripegateway.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if e, ok := args.Get(0).(*stripegateway.WebhookEvent); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) Refund(ctx context.Context, paymentIntentID string, amount int64, idempotencyKey string) (*stripegateway.Refund, error) {
	args := m.Called(ctx, paymentIntentID, amount, idempotencyKey)
	if r, ok := args.Get(0).(*stripegateway.Refund); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockIdempotency struct{ mock.Mock }

func (m *mockIdempotency) Claim(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotency) Release(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendBookingConfirmation(ctx context.Context, to string, data mailer.OrderMail) error {
	return m.Called(ctx, to, data).Error(0)
}

// stubCourts отдаёт корт и заданные блокировки
type stubCourts struct{ blocks []*domain.CourtBlock }

func (s stubCourts) GetByID(_ context.Context, id int64) (*domain.Court, error) {
	return &domain.Court{ID: id, Name: "Корт 1"}, nil
}

func (s stubCourts) ListBlocks(_ context.Context, _ int64, _, _ time.Time) ([]*domain.CourtBlock, error) {
	return s.blocks, nil
}

type stubVenues struct{}

func (stubVenues) GetByID(_ context.Context, id int64) (*domain.Venue, error) {
	return &domain.Venue{ID: id, Name: "Padel Club", ManagerIDs: []int64{managerID}}, nil
}

type stubUsers struct{}

func (stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return &domain.User{ID: id, Email: "player@example.com"}, nil
}

type nopMetrics struct{}

func (nopMetrics) IncOrderFinished(string)        {}
func (nopMetrics) IncWebhookEvent(string, string) {}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

const (
	playerID  int64 = 100
	managerID int64 = 2
	orderID   int64 = 7
	publicID        = "0b6a5d5e-3c1f-4d52-9a4e-1f2a3b4c5d6e"
	intentID        = "pi_123"
	eventID         = "evt_1"
)

// 2026-06-01 09:00 UTC
var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *Service
	orders    *mockOrderRepo
	bookings  *mockBookingRepo
	gateway   *mockGateway
	idem      *mockIdempotency
	publisher *mockPublisher
	mail      *mockMailer
	courts    *stubCourts
}

func newFixture() *fixture {
	f := &fixture{
		orders:    &mockOrderRepo{},
		bookings:  &mockBookingRepo{},
		gateway:   &mockGateway{},
		idem:      &mockIdempotency{},
		publisher: &mockPublisher{},
		mail:      &mockMailer{},
		courts:    &stubCourts{},
	}
	f.svc = NewService(Deps{
		OrderRepo:   f.orders,
		BookingRepo: f.bookings,
		CourtRepo:   f.courts,
		VenueRepo:   stubVenues{},
		UserRepo:    stubUsers{},
		Gateway:     f.gateway,
		Idempotency: f.idem,
		Publisher:   f.publisher,
		Mailer:      f.mail,
		Metrics:     nopMetrics{},
		TxManager:   passthroughTx{},
		Location:    time.UTC,
		Logger:      logger.Nop(),
	})
	f.svc.timeProvider = fixedTime{now: testNow}
	return f
}

func pendingOrder(expiresIn time.Duration) *domain.Order {
	return &domain.Order{
		ID:            orderID,
		PublicID:      publicID,
		UserID:        ptr.Ptr(playerID),
		VenueID:       1,
		TotalAmount:   3000,
		Currency:      "usd",
		Status:        domain.OrderPending,
		PaymentMethod: domain.MethodCard,
		ExpiresAt:     ptr.Ptr(testNow.Add(expiresIn)),
	}
}

func stripePayment() *domain.Payment {
	return &domain.Payment{
		ID:          11,
		OrderID:     orderID,
		Provider:    domain.ProviderStripe,
		ProviderRef: ptr.Ptr(intentID),
		Amount:      3000,
		Currency:    "usd",
		Status:      domain.PaymentPending,
	}
}

func orderBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:              50,
		OrderID:         orderID,
		CourtID:         3,
		VenueID:         1,
		UserID:          ptr.Ptr(playerID),
		CustomerName:    "Иван",
		BookingDate:     time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime:       types.MustTimeString("10:00"),
		DurationMinutes: 60,
		Price:           3000,
		Status:          status,
		OrderPublicID:   publicID,
	}
}

func succeededEvent() *stripegateway.WebhookEvent {
	return &stripegateway.WebhookEvent{
		ID:              eventID,
		Type:            stripegateway.EventPaymentSucceeded,
		PaymentIntentID: intentID,
		OrderPublicID:   publicID,
		Amount:          3000,
	}
}

var payload = []byte(`{}`)

func TestHandleWebhook_Succeeded_ConfirmsOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.gateway.On("ParseWebhook", payload, "sig").Return(succeededEvent(), nil)
	f.idem.On("Claim", ctx, eventID).Return(true, nil)
	f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(stripePayment(), nil)
	f.orders.On("GetByID", ctx, orderID).Return(pendingOrder(10*time.Minute), nil)
	f.orders.On("UpdatePaymentStatus", ctx, int64(11), domain.PaymentSucceeded, (*string)(nil)).Return(nil)
	f.orders.On("UpdateStatus", ctx, orderID, domain.OrderPending, domain.OrderPaid).Return(nil)
	f.bookings.On("UpdateStatusByOrder", ctx, orderID,
		[]domain.BookingStatus{domain.StatusPending, domain.StatusExpired}, domain.StatusConfirmed).Return(int64(1), nil)
	f.bookings.On("List", ctx, domain.BookingsFilter{OrderID: ptr.Ptr(orderID)}).
		Return([]*domain.Booking{orderBooking(domain.StatusConfirmed)}, nil)
	f.publisher.On("Publish", ctx, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.OrderPaid && e.OrderPublicID == publicID && len(e.BookingIDs) == 1
	})).Return()
	f.mail.On("SendBookingConfirmation", ctx, "player@example.com", mock.MatchedBy(func(m mailer.OrderMail) bool {
		return m.VenueName == "Padel Club" && len(m.Bookings) == 1 &&
			m.Bookings[0].CourtName == "Корт 1" && m.Bookings[0].EndTime == "11:00"
	})).Return(nil)

	err := f.svc.HandleWebhook(ctx, payload, "sig")
	require.NoError(t, err)

	f.orders.AssertExpectations(t)
	f.bookings.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
	f.mail.AssertExpectations(t)
	f.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	f := newFixture()

	f.gateway.On("ParseWebhook", payload, "bad").Return(nil, stripegateway.ErrInvalidSignature)

	err := f.svc.HandleWebhook(context.Background(), payload, "bad")
	assert.ErrorIs(t, err, ErrInvalidWebhook)
	f.idem.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything)
}

func TestHandleWebhook_IgnoresUnrelatedEvents(t *testing.T) {
	f := newFixture()

	f.gateway.On("ParseWebhook", payload, "sig").
		Return(&stripegateway.WebhookEvent{ID: "evt_x", Type: "customer.created"}, nil)

	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, "sig"))
	f.idem.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything)
}

func TestHandleWebhook_DuplicateIsNoop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.gateway.On("ParseWebhook", payload, "sig").Return(succeededEvent(), nil)
	f.idem.On("Claim", ctx, eventID).Return(false, nil)

	require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
	f.orders.AssertNotCalled(t, "GetPaymentByProviderRef", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhook_ClaimErrorIsRetriable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.gateway.On("ParseWebhook", payload, "sig").Return(succeededEvent(), nil)
	f.idem.On("Claim", ctx, eventID).Return(false, errors.New("redis down"))

	err := f.svc.HandleWebhook(ctx, payload, "sig")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestHandleWebhook_ProcessingErrorReleasesClaim(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.gateway.On("ParseWebhook", payload, "sig").Return(succeededEvent(), nil)
	f.idem.On("Claim", ctx, eventID).Return(true, nil)
	f.idem.On("Release", ctx, eventID).Return(nil)
	f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(stripePayment(), nil)
	f.orders.On("GetByID", ctx, orderID).Return(nil, errors.New("connection reset"))

	err := f.svc.HandleWebhook(ctx, payload, "sig")
	assert.ErrorIs(t, err, ErrInternal)
	f.idem.AssertCalled(t, "Release", ctx, eventID)
}

func TestHandleWebhook_UnknownPaymentIsSkipped(t *testing.T) {
	t.Run("no order in metadata", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		event := succeededEvent()
		event.OrderPublicID = ""

		f.gateway.On("ParseWebhook", payload, "sig").Return(event, nil)
		f.idem.On("Claim", ctx, eventID).Return(true, nil)
		f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(nil, orderRepo.ErrPaymentNotFound)

		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
		f.orders.AssertNotCalled(t, "GetByPublicID", mock.Anything, mock.Anything)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("failed event", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		event := succeededEvent()
		event.Type = stripegateway.EventPaymentFailed

		f.gateway.On("ParseWebhook", payload, "sig").Return(event, nil)
		f.idem.On("Claim", ctx, eventID).Return(true, nil)
		f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(nil, orderRepo.ErrPaymentNotFound)

		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
		f.orders.AssertNotCalled(t, "GetByPublicID", mock.Anything, mock.Anything)
	})

	t.Run("order from metadata does not exist", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		f.gateway.On("ParseWebhook", payload, "sig").Return(succeededEvent(), nil)
		f.idem.On("Claim", ctx, eventID).Return(true, nil)
		f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(nil, orderRepo.ErrPaymentNotFound)
		f.orders.On("GetByPublicID", ctx, publicID).Return(nil, orderRepo.ErrOrderNotFound)

		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
		f.orders.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
		f.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleWebhook_UnrecordedPayment(t *testing.T) {
	restored := func(p *domain.Payment) bool {
		return p.OrderID == orderID && p.Provider == domain.ProviderStripe &&
			ptr.Value(p.ProviderRef) == intentID && p.Amount == 3000 &&
			p.Currency == "usd" && p.Status == domain.PaymentPending
	}

	t.Run("failed order - payment refunded", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		failed := pendingOrder(10 * time.Minute)
		failed.Status = domain.OrderFailed

		f.gateway.On("ParseWebhook", payload, "sig").Return(succeededEvent(), nil)
		f.idem.On("Claim", ctx, eventID).Return(true, nil)
		f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(nil, orderRepo.ErrPaymentNotFound)
		f.orders.On("GetByPublicID", ctx, publicID).Return(failed, nil)
		f.orders.On("CreatePayment", ctx, mock.MatchedBy(restored)).Return(stripePayment(), nil)
		f.orders.On("UpdatePaymentStatus", ctx, int64(11), domain.PaymentRefunded, (*string)(nil)).Return(nil)
		f.gateway.On("Refund", ctx, intentID, int64(3000), "refund-order-"+publicID).
			Return(&stripegateway.Refund{ID: "re_1"}, nil)

		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
		f.orders.AssertExpectations(t)
		f.gateway.AssertExpectations(t)
		f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("pending order - confirmed", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		f.gateway.On("ParseWebhook", payload, "sig").Return(succeededEvent(), nil)
		f.idem.On("Claim", ctx, eventID).Return(true, nil)
		f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(nil, orderRepo.ErrPaymentNotFound)
		f.orders.On("GetByPublicID", ctx, publicID).Return(pendingOrder(10*time.Minute), nil)
		f.orders.On("CreatePayment", ctx, mock.MatchedBy(restored)).Return(stripePayment(), nil)
		f.orders.On("UpdatePaymentStatus", ctx, int64(11), domain.PaymentSucceeded, (*string)(nil)).Return(nil)
		f.orders.On("UpdateStatus", ctx, orderID, domain.OrderPending, domain.OrderPaid).Return(nil)
		f.bookings.On("UpdateStatusByOrder", ctx, orderID,
			[]domain.BookingStatus{domain.StatusPending, domain.StatusExpired}, domain.StatusConfirmed).Return(int64(1), nil)
		f.bookings.On("List", ctx, domain.BookingsFilter{OrderID: ptr.Ptr(orderID)}).
			Return([]*domain.Booking{orderBooking(domain.StatusConfirmed)}, nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return()
		f.mail.On("SendBookingConfirmation", ctx, mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
		f.orders.AssertExpectations(t)
		f.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleWebhook_AlreadyPaidIsNoop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	paid := pendingOrder(10 * time.Minute)
	paid.Status = domain.OrderPaid

	f.gateway.On("ParseWebhook", payload, "sig").Return(succeededEvent(), nil)
	f.idem.On("Claim", ctx, eventID).Return(true, nil)
	f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(stripePayment(), nil)
	f.orders.On("GetByID", ctx, orderID).Return(paid, nil)

	require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestHandleWebhook_LatePayment(t *testing.T) {
	t.Run("slots free - order confirmed", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		expired := pendingOrder(-5 * time.Minute)
		expired.Status = domain.OrderExpired
		own := orderBooking(domain.StatusExpired)

		f.gateway.On("ParseWebhook", payload, "sig").Return(succeededEvent(), nil)
		f.idem.On("Claim", ctx, eventID).Return(true, nil)
		f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(stripePayment(), nil)
		f.orders.On("GetByID", ctx, orderID).Return(expired, nil)
		f.orders.On("UpdatePaymentStatus", ctx, int64(11), domain.PaymentSucceeded, (*string)(nil)).Return(nil)
		f.bookings.On("List", ctx, domain.BookingsFilter{OrderID: ptr.Ptr(orderID), IncludeInactive: true}).
			Return([]*domain.Booking{own}, nil)
		f.bookings.On("List", ctx, mock.MatchedBy(func(filter domain.BookingsFilter) bool {
			return filter.CourtID != nil && filter.HoldsValidAt != nil
		})).Return([]*domain.Booking{}, nil)
		f.orders.On("UpdateStatus", ctx, orderID, domain.OrderExpired, domain.OrderPaid).Return(nil)
		f.bookings.On("UpdateStatusByOrder", ctx, orderID,
			[]domain.BookingStatus{domain.StatusPending, domain.StatusExpired}, domain.StatusConfirmed).Return(int64(1), nil)
		f.bookings.On("List", ctx, domain.BookingsFilter{OrderID: ptr.Ptr(orderID)}).
			Return([]*domain.Booking{orderBooking(domain.StatusConfirmed)}, nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return()
		f.mail.On("SendBookingConfirmation", ctx, mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
		f.orders.AssertExpectations(t)
		f.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("slot taken - payment refunded", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		stale := pendingOrder(-5 * time.Minute)
		own := orderBooking(domain.StatusPending)
		other := orderBooking(domain.StatusConfirmed)
		other.ID = 60
		other.OrderID = 99

		f.gateway.On("ParseWebhook", payload, "sig").Return(succeededEvent(), nil)
		f.idem.On("Claim", ctx, eventID).Return(true, nil)
		f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(stripePayment(), nil)
		f.orders.On("GetByID", ctx, orderID).Return(stale, nil)
		f.orders.On("UpdatePaymentStatus", ctx, int64(11), domain.PaymentSucceeded, (*string)(nil)).Return(nil)
		f.bookings.On("List", ctx, domain.BookingsFilter{OrderID: ptr.Ptr(orderID), IncludeInactive: true}).
			Return([]*domain.Booking{own}, nil)
		f.bookings.On("List", ctx, mock.MatchedBy(func(filter domain.BookingsFilter) bool {
			return filter.CourtID != nil && filter.HoldsValidAt != nil
		})).Return([]*domain.Booking{other}, nil)
		f.orders.On("UpdateStatus", ctx, orderID, domain.OrderPending, domain.OrderExpired).Return(nil)
		f.bookings.On("UpdateStatusByOrder", ctx, orderID,
			[]domain.BookingStatus{domain.StatusPending}, domain.StatusExpired).Return(int64(1), nil)
		f.orders.On("UpdatePaymentStatus", ctx, int64(11), domain.PaymentRefunded, (*string)(nil)).Return(nil)
		f.gateway.On("Refund", ctx, intentID, int64(3000), "refund-order-"+publicID).
			Return(&stripegateway.Refund{ID: "re_1"}, nil)

		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
		f.orders.AssertExpectations(t)
		f.gateway.AssertExpectations(t)
		f.orders.AssertNotCalled(t, "UpdateStatus", ctx, orderID, domain.OrderPending, domain.OrderPaid)
		f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("slot blocked - payment refunded", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		expired := pendingOrder(-5 * time.Minute)
		expired.Status = domain.OrderExpired
		f.courts.blocks = []*domain.CourtBlock{{
			ID: 1, CourtID: 3,
			StartTime: types.MustTimeString("09:30"),
			EndTime:   types.MustTimeString("10:30"),
		}}

		f.gateway.On("ParseWebhook", payload, "sig").Return(succeededEvent(), nil)
		f.idem.On("Claim", ctx, eventID).Return(true, nil)
		f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(stripePayment(), nil)
		f.orders.On("GetByID", ctx, orderID).Return(expired, nil)
		f.orders.On("UpdatePaymentStatus", ctx, int64(11), domain.PaymentSucceeded, (*string)(nil)).Return(nil)
		f.bookings.On("List", ctx, domain.BookingsFilter{OrderID: ptr.Ptr(orderID), IncludeInactive: true}).
			Return([]*domain.Booking{orderBooking(domain.StatusExpired)}, nil)
		f.bookings.On("List", ctx, mock.MatchedBy(func(filter domain.BookingsFilter) bool {
			return filter.CourtID != nil
		})).Return([]*domain.Booking{}, nil)
		f.orders.On("UpdatePaymentStatus", ctx, int64(11), domain.PaymentRefunded, (*string)(nil)).Return(nil)
		f.gateway.On("Refund", ctx, intentID, int64(3000), "refund-order-"+publicID).
			Return(&stripegateway.Refund{ID: "re_1"}, nil)

		require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
		f.gateway.AssertExpectations(t)
		f.bookings.AssertNotCalled(t, "UpdateStatusByOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleWebhook_RefundFailureReleasesClaim(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cancelled := pendingOrder(10 * time.Minute)
	cancelled.Status = domain.OrderCancelled

	f.gateway.On("ParseWebhook", payload, "sig").Return(succeededEvent(), nil)
	f.idem.On("Claim", ctx, eventID).Return(true, nil)
	f.idem.On("Release", ctx, eventID).Return(nil)
	f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(stripePayment(), nil)
	f.orders.On("GetByID", ctx, orderID).Return(cancelled, nil)
	f.orders.On("UpdatePaymentStatus", ctx, int64(11), mock.Anything, (*string)(nil)).Return(nil)
	f.gateway.On("Refund", ctx, intentID, int64(3000), "refund-order-"+publicID).
		Return(nil, stripegateway.ErrStripeAPI)

	err := f.svc.HandleWebhook(ctx, payload, "sig")
	assert.ErrorIs(t, err, ErrInternal)
	f.idem.AssertCalled(t, "Release", ctx, eventID)
}

func TestHandleWebhook_FailedPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	event := succeededEvent()
	event.Type = stripegateway.EventPaymentFailed
	event.FailureReason = "card_declined"

	f.gateway.On("ParseWebhook", payload, "sig").Return(event, nil)
	f.idem.On("Claim", ctx, eventID).Return(true, nil)
	f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(stripePayment(), nil)
	f.orders.On("GetByID", ctx, orderID).Return(pendingOrder(10*time.Minute), nil)
	f.orders.On("UpdatePaymentStatus", ctx, int64(11), domain.PaymentFailed, ptr.Ptr("card_declined")).Return(nil)
	f.orders.On("UpdateStatus", ctx, orderID, domain.OrderPending, domain.OrderFailed).Return(nil)
	f.bookings.On("UpdateStatusByOrder", ctx, orderID,
		[]domain.BookingStatus{domain.StatusPending}, domain.StatusExpired).Return(int64(1), nil)
	f.publisher.On("Publish", ctx, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.OrderFailed
	})).Return()

	require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
	f.orders.AssertExpectations(t)
	f.bookings.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
	f.mail.AssertNotCalled(t, "SendBookingConfirmation", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhook_FailedAfterPaidOnlyRecordsPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	event := succeededEvent()
	event.Type = stripegateway.EventPaymentCanceled

	paid := pendingOrder(10 * time.Minute)
	paid.Status = domain.OrderPaid
	payment := stripePayment()
	payment.Status = domain.PaymentSucceeded

	f.gateway.On("ParseWebhook", payload, "sig").Return(event, nil)
	f.idem.On("Claim", ctx, eventID).Return(true, nil)
	f.orders.On("GetPaymentByProviderRef", ctx, domain.ProviderStripe, intentID).Return(payment, nil)
	f.orders.On("GetByID", ctx, orderID).Return(paid, nil)

	require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
	f.orders.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExpirePendingOrders(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	paidMeanwhile := pendingOrder(-time.Minute)
	paidMeanwhile.ID = 8

	f.orders.On("ListExpired", ctx, testNow, uint64(expiryBatchSize)).Return([]int64{orderID, 8, 9}, nil)
	f.orders.On("GetByID", ctx, orderID).Return(pendingOrder(-time.Minute), nil)
	f.orders.On("UpdateStatus", ctx, orderID, domain.OrderPending, domain.OrderExpired).Return(nil)
	f.bookings.On("UpdateStatusByOrder", ctx, orderID,
		[]domain.BookingStatus{domain.StatusPending}, domain.StatusExpired).Return(int64(2), nil)

	f.orders.On("GetByID", ctx, int64(8)).Return(paidMeanwhile, nil)
	f.orders.On("UpdateStatus", ctx, int64(8), domain.OrderPending, domain.OrderExpired).Return(orderRepo.ErrStatusConflict)

	f.orders.On("GetByID", ctx, int64(9)).Return(nil, errors.New("db error"))

	f.publisher.On("Publish", ctx, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.OrderExpired && e.OrderPublicID == publicID
	})).Return().Once()

	expired, err := f.svc.ExpirePendingOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	f.publisher.AssertExpectations(t)
}

func TestExpirePendingOrders_SkipsNotYetExpired(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.orders.On("ListExpired", ctx, testNow, uint64(expiryBatchSize)).Return([]int64{orderID}, nil)
	f.orders.On("GetByID", ctx, orderID).Return(pendingOrder(time.Minute), nil)

	expired, err := f.svc.ExpirePendingOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrder(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		f.orders.On("GetByPublicID", ctx, publicID).Return(pendingOrder(time.Minute), nil)
		f.bookings.On("List", ctx, domain.BookingsFilter{OrderID: ptr.Ptr(orderID), IncludeInactive: true}).
			Return([]*domain.Booking{orderBooking(domain.StatusPending)}, nil)
		f.orders.On("ListPayments", ctx, orderID).Return([]*domain.Payment{stripePayment()}, nil)

		resp, err := f.svc.GetOrder(ctx, publicID, playerID)
		require.NoError(t, err)
		assert.Equal(t, publicID, resp.ID)
		assert.Len(t, resp.Bookings, 1)
		assert.Len(t, resp.Payments, 1)
	})

	t.Run("manager", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		f.orders.On("GetByPublicID", ctx, publicID).Return(pendingOrder(time.Minute), nil)
		f.bookings.On("List", ctx, mock.Anything).Return([]*domain.Booking{}, nil)
		f.orders.On("ListPayments", ctx, orderID).Return([]*domain.Payment{}, nil)

		_, err := f.svc.GetOrder(ctx, publicID, managerID)
		require.NoError(t, err)
	})

	t.Run("stranger", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		f.orders.On("GetByPublicID", ctx, publicID).Return(pendingOrder(time.Minute), nil)

		_, err := f.svc.GetOrder(ctx, publicID, 555)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		f.orders.On("GetByPublicID", ctx, publicID).Return(nil, orderRepo.ErrOrderNotFound)

		_, err := f.svc.GetOrder(ctx, publicID, playerID)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
