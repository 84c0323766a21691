package court

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(dbmetrics.Wrap(db, nil)), mock
}

func TestRepository_GetByID_ReadsMidnightClose(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("close_time::text")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(courtColumns).
			AddRow(3, 1, "Court A", "padel", "08:00:00", "24:00:00", 90, 2500, nil, true, now, now))

	c, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, domain.SportPadel, c.Sport)
	assert.Equal(t, types.MustTimeString("24:00"), c.CloseTime)
	assert.Equal(t, 16*60, c.OperatingMinutes())
	assert.Nil(t, c.ExternalRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("FROM courts").WillReturnRows(sqlmock.NewRows(courtColumns))

	_, err := repo.GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, ErrCourtNotFound)
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO courts")).
		WithArgs(int64(1), "Court A", domain.SportTennis, "07:00:00", "22:00:00", 60, int64(1000), nil, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(5, now, now))

	c, err := repo.Create(context.Background(), &domain.Court{
		VenueID:             1,
		Name:                "Court A",
		Sport:               domain.SportTennis,
		OpenTime:            types.MustTimeString("07:00"),
		CloseTime:           types.MustTimeString("22:00"),
		SlotDurationMinutes: 60,
		BasePrice:           1000,
		IsActive:            true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByVenue_OnlyActive(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM courts WHERE venue_id = $1 AND is_active = $2 ORDER BY name ASC, id ASC")).
		WithArgs(int64(1), true).
		WillReturnRows(sqlmock.NewRows(courtColumns).
			AddRow(1, 1, "A", "tennis", "08:00:00", "22:00:00", 60, 1000, "ext-1", true, now, now).
			AddRow(2, 1, "B", "tennis", "08:00:00", "22:00:00", 60, 1000, nil, true, now, now))

	courts, err := repo.ListByVenue(context.Background(), 1, true)
	require.NoError(t, err)
	require.Len(t, courts, 2)
	assert.Equal(t, "ext-1", ptr.Value(courts[0].ExternalRef))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListSynced(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE external_ref IS NOT NULL AND is_active = $1")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows(courtColumns))

	courts, err := repo.ListSynced(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("UPDATE courts").WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	err := repo.Update(context.Background(), &domain.Court{
		ID:        9,
		Sport:     domain.SportTennis,
		OpenTime:  types.MustTimeString("08:00"),
		CloseTime: types.MustTimeString("22:00"),
	})
	assert.ErrorIs(t, err, ErrCourtNotFound)
}

func TestRepository_ListBlocks(t *testing.T) {
	repo, mock := newRepo(t)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM court_blocks WHERE court_id = $1 AND block_date >= $2 AND block_date <= $3")).
		WithArgs(int64(1), day, day).
		WillReturnRows(sqlmock.NewRows(blockColumns).
			AddRow(7, 1, day, "10:00:00", "12:00:00", "Турнир", "manual", nil, day))

	blocks, err := repo.ListBlocks(context.Background(), 1, day, day)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.True(t, blocks[0].Overlaps(types.MustTimeString("11:00"), types.MustTimeString("11:30")))
	assert.False(t, blocks[0].IsExternal())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpsertExternalBlock(t *testing.T) {
	repo, mock := newRepo(t)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (court_id, external_id) DO UPDATE")).
		WithArgs(int64(1), day, "09:00:00", "10:00:00", "sync", domain.BlockExternal, "ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertExternalBlock(context.Background(), &domain.CourtBlock{
		CourtID:    1,
		BlockDate:  day,
		StartTime:  types.MustTimeString("09:00"),
		EndTime:    types.MustTimeString("10:00"),
		Reason:     "sync",
		ExternalID: ptr.Ptr("ev-1"),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteStaleExternalBlocks(t *testing.T) {
	repo, mock := newRepo(t)
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 14)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM court_blocks WHERE court_id = $1 AND source = $2 AND block_date >= $3 AND block_date <= $4 AND external_id NOT IN ($5,$6)")).
		WithArgs(int64(1), domain.BlockExternal, from, to, "ev-1", "ev-2").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteStaleExternalBlocks(context.Background(), 1, from, to, []string{"ev-1", "ev-2"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteBlock_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec("DELETE FROM court_blocks").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteBlock(context.Background(), 1)
	assert.ErrorIs(t, err, ErrBlockNotFound)
}
