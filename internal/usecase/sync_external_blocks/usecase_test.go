package sync_external_blocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/fieldsync"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
)

type mockCourtRepo struct{ mock.Mock }

func (m *mockCourtRepo) ListSynced(ctx context.Context) ([]*domain.Court, error) {
	args := m.Called(ctx)
	if courts, ok := args.Get(0).([]*domain.Court); ok {
		return courts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCourtRepo) UpsertExternalBlock(ctx context.Context, block *domain.CourtBlock) error {
	return m.Called(ctx, block).Error(0)
}

func (m *mockCourtRepo) DeleteStaleExternalBlocks(ctx context.Context, courtID int64, from, to time.Time, keep []string) (int64, error) {
	args := m.Called(ctx, courtID, from, to, keep)
	return args.Get(0).(int64), args.Error(1)
}

type mockClient struct{ mock.Mock }

func (m *mockClient) ListReservations(ctx context.Context, fieldRef string, from, to time.Time) ([]fieldsync.Reservation, error) {
	args := m.Called(ctx, fieldRef, from, to)
	if r, ok := args.Get(0).([]fieldsync.Reservation); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

var (
	testNow  = time.Date(2026, 6, 1, 14, 30, 0, 0, time.UTC)
	fromDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	toDate   = time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC)
)

func newUseCase(repo *mockCourtRepo, client *mockClient) *UseCase {
	uc := NewUseCase(repo, client, passthroughTx{}, Settings{DaysAhead: 7, Location: time.UTC}, logger.Nop())
	uc.timeProvider = fixedTime{now: testNow}
	return uc
}

func syncedCourt(id int64, ref string) *domain.Court {
	return &domain.Court{ID: id, VenueID: 1, IsActive: true, ExternalRef: ptr.Ptr(ref)}
}

func TestExecute_MirrorsReservations(t *testing.T) {
	repo := &mockCourtRepo{}
	client := &mockClient{}
	ctx := context.Background()

	repo.On("ListSynced", ctx).Return([]*domain.Court{syncedCourt(3, "field-a")}, nil)
	client.On("ListReservations", ctx, "field-a", fromDate, toDate).Return([]fieldsync.Reservation{
		{ID: "r1", Date: "2026-06-02", StartTime: "10:00", EndTime: "11:30", Status: "confirmed"},
		{ID: "r2", Date: "2026-06-03", StartTime: "20:00", EndTime: "24:00", Status: "confirmed"},
		{ID: "r3", Date: "2026-06-03", StartTime: "12:00", EndTime: "13:00", Status: fieldsync.StatusCancelled},
		{ID: "r4", Date: "2026-06-03", StartTime: "13:00", EndTime: "12:00", Status: "confirmed"},
		{ID: "r5", Date: "2026-07-30", StartTime: "10:00", EndTime: "11:00", Status: "confirmed"},
		{ID: "r6", Date: "2026-06-08", StartTime: "10:00", EndTime: "11:00", Status: "confirmed"},
	}, nil)
	repo.On("UpsertExternalBlock", ctx, mock.MatchedBy(func(b *domain.CourtBlock) bool {
		return *b.ExternalID == "r1" && b.StartTime == "10:00" && b.EndTime == "11:30" &&
			b.Source == domain.BlockExternal && b.BlockDate.Equal(time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC))
	})).Return(nil).Once()
	repo.On("UpsertExternalBlock", ctx, mock.MatchedBy(func(b *domain.CourtBlock) bool {
		return *b.ExternalID == "r2" && b.EndTime == "24:00"
	})).Return(nil).Once()
	repo.On("DeleteStaleExternalBlocks", ctx, int64(3), fromDate, toDate, []string{"r1", "r2"}).Return(int64(1), nil)

	result, err := newUseCase(repo, client).Execute(ctx)
	require.NoError(t, err)

	assert.Equal(t, &Result{Courts: 1, Upserted: 2, Removed: 1, Skipped: 4}, result)
	repo.AssertExpectations(t)
}

func TestExecute_EmptyProviderRemovesAllExternalBlocks(t *testing.T) {
	repo := &mockCourtRepo{}
	client := &mockClient{}
	ctx := context.Background()

	repo.On("ListSynced", ctx).Return([]*domain.Court{syncedCourt(3, "field-a")}, nil)
	client.On("ListReservations", ctx, "field-a", fromDate, toDate).Return([]fieldsync.Reservation{}, nil)
	repo.On("DeleteStaleExternalBlocks", ctx, int64(3), fromDate, toDate, []string{}).Return(int64(4), nil)

	result, err := newUseCase(repo, client).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Removed)
	repo.AssertNotCalled(t, "UpsertExternalBlock", mock.Anything, mock.Anything)
}

func TestExecute_FailingCourtIsSkipped(t *testing.T) {
	repo := &mockCourtRepo{}
	client := &mockClient{}
	ctx := context.Background()

	repo.On("ListSynced", ctx).Return([]*domain.Court{syncedCourt(3, "field-a"), syncedCourt(4, "field-b")}, nil)
	client.On("ListReservations", ctx, "field-a", fromDate, toDate).Return(nil, fieldsync.ErrFieldNotFound)
	client.On("ListReservations", ctx, "field-b", fromDate, toDate).Return([]fieldsync.Reservation{
		{ID: "b1", Date: "2026-06-05", StartTime: "09:00", EndTime: "10:00", Status: "confirmed"},
	}, nil)
	repo.On("UpsertExternalBlock", ctx, mock.Anything).Return(nil)
	repo.On("DeleteStaleExternalBlocks", ctx, int64(4), fromDate, toDate, []string{"b1"}).Return(int64(0), nil)

	result, err := newUseCase(repo, client).Execute(ctx)
	assert.ErrorIs(t, err, ErrCourtSyncFailed)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Upserted)
	repo.AssertNotCalled(t, "DeleteStaleExternalBlocks", mock.Anything, int64(3), mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_UpsertErrorKeepsStaleBlocks(t *testing.T) {
	repo := &mockCourtRepo{}
	client := &mockClient{}
	ctx := context.Background()

	repo.On("ListSynced", ctx).Return([]*domain.Court{syncedCourt(3, "field-a")}, nil)
	client.On("ListReservations", ctx, "field-a", fromDate, toDate).Return([]fieldsync.Reservation{
		{ID: "r1", Date: "2026-06-02", StartTime: "10:00", EndTime: "11:00", Status: "confirmed"},
	}, nil)
	repo.On("UpsertExternalBlock", ctx, mock.Anything).Return(errors.New("db down"))

	result, err := newUseCase(repo, client).Execute(ctx)
	assert.ErrorIs(t, err, ErrCourtSyncFailed)
	assert.Equal(t, 0, result.Upserted)
	repo.AssertNotCalled(t, "DeleteStaleExternalBlocks", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_ListSyncedError(t *testing.T) {
	repo := &mockCourtRepo{}
	repo.On("ListSynced", mock.Anything).Return(nil, errors.New("db down"))

	_, err := newUseCase(repo, &mockClient{}).Execute(context.Background())
	assert.ErrorIs(t, err, ErrInternal)
}
