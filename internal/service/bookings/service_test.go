package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/mailer"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/stripegateway"
	"github.com/m04kA/SMC-CourtBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*domain.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingRepo) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockBookingRepo) Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason *string) error {
	return m.Called(ctx, id, status, reason).Error(0)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*domain.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *mockOrderRepo) ListPayments(ctx context.Context, orderID int64) ([]*domain.Payment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *mockOrderRepo) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, failureReason *string) error {
	return m.Called(ctx, id, status, failureReason).Error(0)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Refund(ctx context.Context, paymentIntentID string, amount int64, idempotencyKey string) (*stripegateway.Refund, error) {
	args := m.Called(ctx, paymentIntentID, amount, idempotencyKey)
	if r, ok := args.Get(0).(*stripegateway.Refund); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendBookingCancellation(ctx context.Context, to string, data mailer.CancellationMail) error {
	return m.Called(ctx, to, data).Error(0)
}

type stubVenues struct{ venue *domain.Venue }

func (s stubVenues) GetByID(_ context.Context, _ int64) (*domain.Venue, error) { return s.venue, nil }

type stubCourts struct{}

func (stubCourts) GetByID(_ context.Context, id int64) (*domain.Court, error) {
	return &domain.Court{ID: id, Name: "Корт 1"}, nil
}

type stubUsers struct{}

func (stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return &domain.User{ID: id, Email: "player@example.com"}, nil
}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

const (
	playerID  int64 = 100
	managerID int64 = 2
)

// 2026-06-01 09:00 UTC
var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *Service
	bookings  *mockBookingRepo
	orders    *mockOrderRepo
	gateway   *mockGateway
	publisher *mockPublisher
	mail      *mockMailer
}

func newFixture() *fixture {
	f := &fixture{
		bookings:  &mockBookingRepo{},
		orders:    &mockOrderRepo{},
		gateway:   &mockGateway{},
		publisher: &mockPublisher{},
		mail:      &mockMailer{},
	}
	venue := &domain.Venue{ID: 10, OwnerID: 1, Name: "Arena", ManagerIDs: []int64{1, managerID}}
	f.svc = NewService(f.bookings, f.orders, stubVenues{venue}, stubCourts{}, stubUsers{},
		f.gateway, f.publisher, f.mail, passthroughTx{},
		Settings{CancelNoticeMinutes: 120, Location: time.UTC}, logger.Nop())
	f.svc.timeProvider = fixedTime{now: testNow}
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return()
	f.mail.On("SendBookingCancellation", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return f
}

func booking(start string, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID: 1, OrderID: 50, CourtID: 20, VenueID: 10, UserID: ptr.Ptr(playerID),
		CustomerName: "Player", BookingDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		StartTime: types.MustTimeString(start), DurationMinutes: 60, Price: 1500, Status: status,
	}
}

func paidOrder() *domain.Order {
	return &domain.Order{ID: 50, PublicID: "ord-1", VenueID: 10, Status: domain.OrderPaid,
		PaymentMethod: domain.MethodCard, Currency: "usd"}
}

func TestCancel_OwnerRefundsAndClosesOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(1)).Return(booking("12:00", domain.StatusConfirmed), nil)
	f.orders.On("GetByID", ctx, int64(50)).Return(paidOrder(), nil)
	f.bookings.On("Cancel", ctx, int64(1), domain.StatusCancelledByUser, (*string)(nil)).Return(nil)
	f.bookings.On("List", ctx, mock.Anything).Return([]*domain.Booking{}, nil)
	f.orders.On("UpdateStatus", ctx, int64(50), domain.OrderPaid, domain.OrderRefunded).Return(nil)
	f.orders.On("ListPayments", ctx, int64(50)).Return([]*domain.Payment{
		{ID: 70, Provider: domain.ProviderStripe, Status: domain.PaymentSucceeded, ProviderRef: ptr.Ptr("pi_123")},
	}, nil)
	f.orders.On("UpdatePaymentStatus", ctx, int64(70), domain.PaymentRefunded, (*string)(nil)).Return(nil)
	f.gateway.On("Refund", ctx, "pi_123", int64(1500), "refund-booking-1").Return(&stripegateway.Refund{ID: "re_1"}, nil)

	err := f.svc.Cancel(ctx, 1, &models.CancelBookingRequest{UserID: playerID})

	require.NoError(t, err)
	f.gateway.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.publisher.AssertCalled(t, "Publish", ctx, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.BookingCancelled && e.OrderPublicID == "ord-1"
	}))
	f.mail.AssertCalled(t, "SendBookingCancellation", ctx, "player@example.com", mock.MatchedBy(func(m mailer.CancellationMail) bool {
		return m.Refunded && m.Booking.CourtName == "Корт 1" && m.Booking.EndTime == "13:00"
	}))
}

func TestCancel_OwnerInsideNoticeWindow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// до начала 1 час при окне отмены 2 часа
	f.bookings.On("GetByID", ctx, int64(1)).Return(booking("10:00", domain.StatusConfirmed), nil)
	f.orders.On("GetByID", ctx, int64(50)).Return(paidOrder(), nil)

	err := f.svc.Cancel(ctx, 1, &models.CancelBookingRequest{UserID: playerID})

	assert.ErrorIs(t, err, ErrCancellationWindowClosed)
	f.bookings.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCancel_ManagerBeforeStartKeepsOrderWithOtherBookings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(1)).Return(booking("10:00", domain.StatusConfirmed), nil)
	f.orders.On("GetByID", ctx, int64(50)).Return(paidOrder(), nil)
	f.bookings.On("Cancel", ctx, int64(1), domain.StatusCancelledByVenue, ptr.Ptr("дождь")).Return(nil)
	f.bookings.On("List", ctx, mock.Anything).Return([]*domain.Booking{booking("11:00", domain.StatusConfirmed)}, nil)
	f.orders.On("ListPayments", ctx, int64(50)).Return([]*domain.Payment{
		{ID: 70, Provider: domain.ProviderStripe, Status: domain.PaymentSucceeded, ProviderRef: ptr.Ptr("pi_123")},
	}, nil)
	f.gateway.On("Refund", ctx, "pi_123", int64(1500), "refund-booking-1").Return(&stripegateway.Refund{ID: "re_1"}, nil)

	err := f.svc.Cancel(ctx, 1, &models.CancelBookingRequest{UserID: managerID, CancellationReason: ptr.Ptr("  дождь ")})

	require.NoError(t, err)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_RefundFailureRollsBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.bookings.On("GetByID", ctx, int64(1)).Return(booking("12:00", domain.StatusConfirmed), nil)
	f.orders.On("GetByID", ctx, int64(50)).Return(paidOrder(), nil)
	f.bookings.On("Cancel", ctx, int64(1), domain.StatusCancelledByUser, (*string)(nil)).Return(nil)
	f.bookings.On("List", ctx, mock.Anything).Return([]*domain.Booking{booking("11:00", domain.StatusConfirmed)}, nil)
	f.orders.On("ListPayments", ctx, int64(50)).Return([]*domain.Payment{
		{ID: 70, Provider: domain.ProviderStripe, Status: domain.PaymentSucceeded, ProviderRef: ptr.Ptr("pi_123")},
	}, nil)
	f.gateway.On("Refund", ctx, "pi_123", int64(1500), "refund-booking-1").Return(nil, errors.New("stripe down"))

	err := f.svc.Cancel(ctx, 1, &models.CancelBookingRequest{UserID: playerID})

	assert.ErrorIs(t, err, ErrPaymentProvider)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCancel_PendingOrderIsCancelledWithoutRefund(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order := paidOrder()
	order.Status = domain.OrderPending

	f.bookings.On("GetByID", ctx, int64(1)).Return(booking("12:00", domain.StatusPending), nil)
	f.orders.On("GetByID", ctx, int64(50)).Return(order, nil)
	f.bookings.On("Cancel", ctx, int64(1), domain.StatusCancelledByUser, (*string)(nil)).Return(nil)
	f.bookings.On("List", ctx, mock.Anything).Return([]*domain.Booking{}, nil)
	f.orders.On("UpdateStatus", ctx, int64(50), domain.OrderPending, domain.OrderCancelled).Return(nil)

	require.NoError(t, f.svc.Cancel(ctx, 1, &models.CancelBookingRequest{UserID: playerID}))
	f.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_Errors(t *testing.T) {
	t.Run("stranger", func(t *testing.T) {
		f := newFixture()
		f.bookings.On("GetByID", mock.Anything, int64(1)).Return(booking("12:00", domain.StatusConfirmed), nil)
		f.orders.On("GetByID", mock.Anything, int64(50)).Return(paidOrder(), nil)

		err := f.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 999})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("already cancelled", func(t *testing.T) {
		f := newFixture()
		f.bookings.On("GetByID", mock.Anything, int64(1)).Return(booking("12:00", domain.StatusCancelledByUser), nil)
		f.orders.On("GetByID", mock.Anything, int64(50)).Return(paidOrder(), nil)

		err := f.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: playerID})
		assert.ErrorIs(t, err, ErrCannotCancel)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.bookings.On("GetByID", mock.Anything, int64(9)).Return(nil, bookingRepo.ErrBookingNotFound)

		err := f.svc.Cancel(context.Background(), 9, &models.CancelBookingRequest{UserID: playerID})
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("manager after start", func(t *testing.T) {
		f := newFixture()
		f.bookings.On("GetByID", mock.Anything, int64(1)).Return(booking("08:00", domain.StatusConfirmed), nil)
		f.orders.On("GetByID", mock.Anything, int64(50)).Return(paidOrder(), nil)

		err := f.svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: managerID})
		assert.ErrorIs(t, err, ErrCannotCancel)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("completed from confirmed", func(t *testing.T) {
		f := newFixture()
		f.bookings.On("GetByID", mock.Anything, int64(1)).Return(booking("08:00", domain.StatusConfirmed), nil)
		f.bookings.On("UpdateStatus", mock.Anything, int64(1), domain.StatusCompleted).Return(nil)

		assert.NoError(t, f.svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: managerID, Status: "completed"}))
	})

	t.Run("only completed or no_show", func(t *testing.T) {
		f := newFixture()
		err := f.svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: managerID, Status: "confirmed"})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("pending booking", func(t *testing.T) {
		f := newFixture()
		f.bookings.On("GetByID", mock.Anything, int64(1)).Return(booking("08:00", domain.StatusPending), nil)

		err := f.svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: managerID, Status: "no_show"})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("player cannot mark", func(t *testing.T) {
		f := newFixture()
		f.bookings.On("GetByID", mock.Anything, int64(1)).Return(booking("08:00", domain.StatusConfirmed), nil)

		err := f.svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: playerID, Status: "no_show"})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestGetByID_Access(t *testing.T) {
	f := newFixture()
	f.bookings.On("GetByID", mock.Anything, int64(1)).Return(booking("12:00", domain.StatusConfirmed), nil)

	resp, err := f.svc.GetByID(context.Background(), 1, playerID)
	require.NoError(t, err)
	assert.Equal(t, "13:00", resp.EndTime)

	_, err = f.svc.GetByID(context.Background(), 1, managerID)
	assert.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetUserBookings_InvalidStatus(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GetUserBookings(context.Background(), &models.GetUserBookingsRequest{UserID: playerID, Status: ptr.Ptr("bogus")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetVenueBookings_FilterPassedThrough(t *testing.T) {
	f := newFixture()
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	f.bookings.On("List", mock.Anything, mock.MatchedBy(func(filter domain.BookingsFilter) bool {
		return *filter.VenueID == 10 && *filter.CourtID == 20 && filter.IsSingleDay() &&
			*filter.Status == domain.StatusConfirmed
	})).Return([]*domain.Booking{booking("12:00", domain.StatusConfirmed)}, nil)

	resp, err := f.svc.GetVenueBookings(context.Background(), &models.GetVenueBookingsRequest{
		UserID: managerID, VenueID: 10, CourtID: ptr.Ptr(int64(20)),
		StartDate: &from, EndDate: &from, Status: ptr.Ptr("confirmed"),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 1)
}
