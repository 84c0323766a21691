package venues

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/court"
	venueRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/venue"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues/models"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

type mockVenueRepo struct{ mock.Mock }

func (m *mockVenueRepo) Create(ctx context.Context, venue *domain.Venue) (*domain.Venue, error) {
	args := m.Called(ctx, venue)
	venue.ID = 10
	return venue, args.Error(0)
}

func (m *mockVenueRepo) GetByID(ctx context.Context, id int64) (*domain.Venue, error) {
	args := m.Called(ctx, id)
	if v, ok := args.Get(0).(*domain.Venue); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVenueRepo) List(ctx context.Context, city *string, onlyActive bool) ([]*domain.Venue, error) {
	args := m.Called(ctx, city, onlyActive)
	return args.Get(0).([]*domain.Venue), args.Error(1)
}

func (m *mockVenueRepo) Update(ctx context.Context, venue *domain.Venue) error {
	return m.Called(ctx, venue).Error(0)
}

func (m *mockVenueRepo) AddManager(ctx context.Context, venueID, userID int64) error {
	return m.Called(ctx, venueID, userID).Error(0)
}

type mockCourtRepo struct{ mock.Mock }

func (m *mockCourtRepo) Create(ctx context.Context, court *domain.Court) (*domain.Court, error) {
	args := m.Called(ctx, court)
	court.ID = 20
	return court, args.Error(0)
}

func (m *mockCourtRepo) GetByID(ctx context.Context, id int64) (*domain.Court, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*domain.Court); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCourtRepo) ListByVenue(ctx context.Context, venueID int64, onlyActive bool) ([]*domain.Court, error) {
	args := m.Called(ctx, venueID, onlyActive)
	return args.Get(0).([]*domain.Court), args.Error(1)
}

func (m *mockCourtRepo) Update(ctx context.Context, court *domain.Court) error {
	return m.Called(ctx, court).Error(0)
}

func (m *mockCourtRepo) CreateBlock(ctx context.Context, block *domain.CourtBlock) (*domain.CourtBlock, error) {
	args := m.Called(ctx, block)
	block.ID = 30
	return block, args.Error(0)
}

func (m *mockCourtRepo) GetBlock(ctx context.Context, id int64) (*domain.CourtBlock, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*domain.CourtBlock); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCourtRepo) ListBlocks(ctx context.Context, courtID int64, from, to time.Time) ([]*domain.CourtBlock, error) {
	args := m.Called(ctx, courtID, from, to)
	return args.Get(0).([]*domain.CourtBlock), args.Error(1)
}

func (m *mockCourtRepo) DeleteBlock(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockBookingRepo struct{ mock.Mock }

func (m *mockBookingRepo) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const (
	ownerID    int64 = 1
	managerID  int64 = 2
	strangerID int64 = 3
)

func testVenue() *domain.Venue {
	return &domain.Venue{ID: 10, OwnerID: ownerID, Name: "Arena", Address: "Main st. 1", City: "Riga",
		IsActive: true, ManagerIDs: []int64{ownerID, managerID}}
}

func testCourt() *domain.Court {
	return &domain.Court{ID: 20, VenueID: 10, Name: "Court 1", Sport: domain.SportBadminton,
		OpenTime: "08:00", CloseTime: "22:00", SlotDurationMinutes: 60, BasePrice: 1500, IsActive: true}
}

func newTestService() (*Service, *mockVenueRepo, *mockCourtRepo, *mockBookingRepo) {
	venues := &mockVenueRepo{}
	courts := &mockCourtRepo{}
	bookings := &mockBookingRepo{}
	svc := NewService(venues, courts, bookings, passthroughTx{}, time.UTC, logger.Nop())
	return svc, venues, courts, bookings
}

func TestCreateVenue_OwnerBecomesManager(t *testing.T) {
	svc, venues, _, _ := newTestService()
	ctx := context.Background()

	venues.On("Create", ctx, mock.MatchedBy(func(v *domain.Venue) bool {
		return v.OwnerID == ownerID && v.Name == "Arena" && v.IsActive
	})).Return(nil)
	venues.On("AddManager", ctx, int64(10), ownerID).Return(nil)

	resp, err := svc.CreateVenue(ctx, &models.CreateVenueRequest{
		UserID: ownerID, Name: " Arena ", Address: "Main st. 1", City: "Riga",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.ID)
	assert.Equal(t, []int64{ownerID}, resp.ManagerIDs)
	venues.AssertExpectations(t)
}

func TestCreateVenue_Validation(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.CreateVenue(context.Background(), &models.CreateVenueRequest{UserID: ownerID, City: "Riga"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateVenue_AccessDenied(t *testing.T) {
	svc, venues, _, _ := newTestService()
	venues.On("GetByID", mock.Anything, int64(10)).Return(testVenue(), nil)

	_, err := svc.UpdateVenue(context.Background(), 10, &models.UpdateVenueRequest{UserID: strangerID, Name: ptr.Ptr("X")})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestAddManager_OnlyOwner(t *testing.T) {
	svc, venues, _, _ := newTestService()
	ctx := context.Background()
	venues.On("GetByID", ctx, int64(10)).Return(testVenue(), nil)
	venues.On("AddManager", ctx, int64(10), int64(5)).Return(nil)

	assert.ErrorIs(t, svc.AddManager(ctx, 10, managerID, 5), ErrAccessDenied)
	assert.NoError(t, svc.AddManager(ctx, 10, ownerID, 5))
	venues.AssertNumberOfCalls(t, "AddManager", 1)
}

func TestGetVenue_NotFound(t *testing.T) {
	svc, venues, _, _ := newTestService()
	venues.On("GetByID", mock.Anything, int64(99)).Return(nil, venueRepo.ErrVenueNotFound)

	_, err := svc.GetVenue(context.Background(), 99)
	assert.ErrorIs(t, err, ErrVenueNotFound)
}

func TestCreateCourt_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  models.CreateCourtRequest
		ok   bool
	}{
		{name: "valid", req: models.CreateCourtRequest{Name: "C1", Sport: "tennis", OpenTime: "08:00", CloseTime: "24:00", SlotDurationMinutes: 60, BasePrice: 100}, ok: true},
		{name: "close before open", req: models.CreateCourtRequest{Name: "C1", Sport: "tennis", OpenTime: "20:00", CloseTime: "08:00", SlotDurationMinutes: 60}},
		{name: "duration does not divide", req: models.CreateCourtRequest{Name: "C1", Sport: "tennis", OpenTime: "08:00", CloseTime: "09:30", SlotDurationMinutes: 60}},
		{name: "duration too short", req: models.CreateCourtRequest{Name: "C1", Sport: "tennis", OpenTime: "08:00", CloseTime: "09:00", SlotDurationMinutes: 10}},
		{name: "unknown sport", req: models.CreateCourtRequest{Name: "C1", Sport: "chess", OpenTime: "08:00", CloseTime: "09:00", SlotDurationMinutes: 60}},
		{name: "negative price", req: models.CreateCourtRequest{Name: "C1", Sport: "tennis", OpenTime: "08:00", CloseTime: "09:00", SlotDurationMinutes: 60, BasePrice: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, venues, courts, _ := newTestService()
			venues.On("GetByID", mock.Anything, int64(10)).Return(testVenue(), nil)
			courts.On("Create", mock.Anything, mock.Anything).Return(nil)

			req := tt.req
			req.UserID = managerID
			req.VenueID = 10
			resp, err := svc.CreateCourt(context.Background(), &req)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, int64(20), resp.ID)
				assert.Equal(t, "24:00", resp.CloseTime)
			} else {
				assert.ErrorIs(t, err, ErrInvalidInput)
			}
		})
	}
}

func TestUpdateCourt_ValidatesMergedState(t *testing.T) {
	svc, venues, courts, _ := newTestService()
	courts.On("GetByID", mock.Anything, int64(20)).Return(testCourt(), nil)
	venues.On("GetByID", mock.Anything, int64(10)).Return(testVenue(), nil)

	// 45 минут не делит 14 часов работы корта
	_, err := svc.UpdateCourt(context.Background(), 20, &models.UpdateCourtRequest{
		UserID: managerID, SlotDurationMinutes: ptr.Ptr(45),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	courts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCreateBlock(t *testing.T) {
	date := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("overlaps active booking", func(t *testing.T) {
		svc, venues, courts, bookings := newTestService()
		courts.On("GetByID", mock.Anything, int64(20)).Return(testCourt(), nil)
		venues.On("GetByID", mock.Anything, int64(10)).Return(testVenue(), nil)
		bookings.On("List", mock.Anything, mock.Anything).Return([]*domain.Booking{
			{ID: 5, BookingDate: date, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		}, nil)

		_, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
			UserID: managerID, CourtID: 20, Date: "2026-06-01", StartTime: "10:30", EndTime: "12:00",
		})
		assert.ErrorIs(t, err, ErrBlockConflict)
		courts.AssertNotCalled(t, "CreateBlock", mock.Anything, mock.Anything)
	})

	t.Run("touching booking is fine", func(t *testing.T) {
		svc, venues, courts, bookings := newTestService()
		courts.On("GetByID", mock.Anything, int64(20)).Return(testCourt(), nil)
		venues.On("GetByID", mock.Anything, int64(10)).Return(testVenue(), nil)
		bookings.On("List", mock.Anything, mock.MatchedBy(func(f domain.BookingsFilter) bool {
			return *f.CourtID == 20 && f.IsSingleDay() && f.HoldsValidAt != nil
		})).Return([]*domain.Booking{
			{ID: 5, BookingDate: date, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
		}, nil)
		courts.On("CreateBlock", mock.Anything, mock.MatchedBy(func(b *domain.CourtBlock) bool {
			return b.StartTime == types.TimeString("11:00") && b.Source == domain.BlockManual
		})).Return(nil)

		resp, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
			UserID: managerID, CourtID: 20, Date: "2026-06-01", StartTime: "11:00", EndTime: "12:00", Reason: "ремонт",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(30), resp.ID)
		assert.Equal(t, "2026-06-01", resp.Date)
	})

	t.Run("outside court hours", func(t *testing.T) {
		svc, venues, courts, _ := newTestService()
		courts.On("GetByID", mock.Anything, int64(20)).Return(testCourt(), nil)
		venues.On("GetByID", mock.Anything, int64(10)).Return(testVenue(), nil)

		_, err := svc.CreateBlock(context.Background(), &models.CreateBlockRequest{
			UserID: managerID, CourtID: 20, Date: "2026-06-01", StartTime: "21:00", EndTime: "23:00",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestDeleteBlock(t *testing.T) {
	t.Run("external block is protected", func(t *testing.T) {
		svc, venues, courts, _ := newTestService()
		courts.On("GetBlock", mock.Anything, int64(30)).Return(&domain.CourtBlock{ID: 30, CourtID: 20, Source: domain.BlockExternal}, nil)
		courts.On("GetByID", mock.Anything, int64(20)).Return(testCourt(), nil)
		venues.On("GetByID", mock.Anything, int64(10)).Return(testVenue(), nil)

		assert.ErrorIs(t, svc.DeleteBlock(context.Background(), 30, managerID), ErrExternalBlock)
	})

	t.Run("manual block", func(t *testing.T) {
		svc, venues, courts, _ := newTestService()
		courts.On("GetBlock", mock.Anything, int64(30)).Return(&domain.CourtBlock{ID: 30, CourtID: 20, Source: domain.BlockManual}, nil)
		courts.On("GetByID", mock.Anything, int64(20)).Return(testCourt(), nil)
		venues.On("GetByID", mock.Anything, int64(10)).Return(testVenue(), nil)
		courts.On("DeleteBlock", mock.Anything, int64(30)).Return(nil)

		assert.NoError(t, svc.DeleteBlock(context.Background(), 30, managerID))
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, courts, _ := newTestService()
		courts.On("GetBlock", mock.Anything, int64(31)).Return(nil, courtRepo.ErrBlockNotFound)

		assert.ErrorIs(t, svc.DeleteBlock(context.Background(), 31, managerID), ErrBlockNotFound)
	})
}
