package get_available_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

func testCourt() *domain.Court {
	return &domain.Court{
		ID:                  3,
		VenueID:             1,
		Name:                "Корт 1",
		Sport:               domain.SportPadel,
		OpenTime:            "08:00",
		CloseTime:           "12:00",
		SlotDurationMinutes: 60,
		BasePrice:           2000,
		IsActive:            true,
	}
}

func activeBooking(start string, minutes int) *domain.Booking {
	return &domain.Booking{
		CourtID:         3,
		StartTime:       types.MustTimeString(start),
		DurationMinutes: minutes,
		Status:          domain.StatusConfirmed,
	}
}

func statuses(slots []domain.Slot) []domain.SlotStatus {
	result := make([]domain.SlotStatus, len(slots))
	for i, s := range slots {
		result[i] = s.Status
	}
	return result
}

func TestGenerateGrid(t *testing.T) {
	tests := []struct {
		name     string
		open     string
		close    string
		duration int
		want     []types.TimeString
	}{
		{
			name: "hourly", open: "08:00", close: "11:00", duration: 60,
			want: []types.TimeString{"08:00", "09:00", "10:00"},
		},
		{
			name: "last slot does not fit", open: "08:00", close: "10:30", duration: 60,
			want: []types.TimeString{"08:00", "09:00"},
		},
		{
			name: "until midnight", open: "22:00", close: "24:00", duration: 30,
			want: []types.TimeString{"22:00", "22:30", "23:00", "23:30"},
		},
		{
			name: "slot longer than day", open: "08:00", close: "09:00", duration: 90,
			want: []types.TimeString{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			court := testCourt()
			court.OpenTime = types.MustTimeString(tt.open)
			court.CloseTime = types.MustTimeString(tt.close)
			court.SlotDurationMinutes = tt.duration

			grid, err := generateGrid(court)
			require.NoError(t, err)
			assert.Equal(t, tt.want, grid)
		})
	}
}

func TestBuildSlots_Statuses(t *testing.T) {
	court := testCourt()
	grid, err := generateGrid(court)
	require.NoError(t, err)

	date := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	bookings := []*domain.Booking{
		activeBooking("09:00", 60),
		// граничит с 09:00-10:00 только концом, но занимает 10:00-11:00
		activeBooking("10:00", 60),
	}
	blocks := []*domain.CourtBlock{
		{CourtID: 3, StartTime: "10:30", EndTime: "11:30"},
	}

	slots, err := buildSlots(court, grid, date, now, 30, bookings, blocks, nil)
	require.NoError(t, err)

	assert.Equal(t, []domain.SlotStatus{
		domain.SlotAvailable,
		domain.SlotBooked,
		domain.SlotBlocked,
		domain.SlotBlocked,
	}, statuses(slots))
	assert.Equal(t, types.TimeString("09:00"), slots[0].EndTime)
	assert.Equal(t, 60, slots[0].DurationMinutes)
}

func TestBuildSlots_TouchingIntervalsDoNotOverlap(t *testing.T) {
	court := testCourt()
	grid, _ := generateGrid(court)

	date := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	bookings := []*domain.Booking{activeBooking("07:00", 60)}
	blocks := []*domain.CourtBlock{{CourtID: 3, StartTime: "12:00", EndTime: "13:00"}}

	slots, err := buildSlots(court, grid, date, now, 0, bookings, blocks, nil)
	require.NoError(t, err)
	for _, s := range slots {
		assert.Equal(t, domain.SlotAvailable, s.Status, s.StartTime)
	}
}

func TestBuildSlots_InactiveBookingsIgnored(t *testing.T) {
	court := testCourt()
	grid, _ := generateGrid(court)

	date := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	cancelled := activeBooking("08:00", 60)
	cancelled.Status = domain.StatusCancelledByUser

	slots, err := buildSlots(court, grid, date, now, 0, []*domain.Booking{cancelled}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotAvailable, slots[0].Status)
}

func TestBuildSlots_PastAndMinNotice(t *testing.T) {
	court := testCourt()
	grid, _ := generateGrid(court)

	today := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	// 09:40 + 30 минут = 10:10, слоты до 10:00 включительно уже past
	now := time.Date(2026, 6, 1, 9, 40, 0, 0, time.UTC)

	slots, err := buildSlots(court, grid, today, now, 30, []*domain.Booking{activeBooking("08:00", 60)}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []domain.SlotStatus{
		domain.SlotBooked, // booked важнее past
		domain.SlotPast,
		domain.SlotPast,
		domain.SlotAvailable,
	}, statuses(slots))

	yesterday := today.AddDate(0, 0, -1)
	slots, err = buildSlots(court, grid, yesterday, now, 0, nil, nil, nil)
	require.NoError(t, err)
	for _, s := range slots {
		assert.Equal(t, domain.SlotPast, s.Status)
	}
}

func TestBuildSlots_Prices(t *testing.T) {
	court := testCourt()
	grid, _ := generateGrid(court)

	// 2026-06-02 вторник
	date := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	rules := []*domain.DynamicPrice{
		{ID: 1, CourtID: 3, DayOfWeek: ptr.Ptr(int(time.Tuesday)), StartTime: "08:00", EndTime: "10:00", Price: 3000},
		{ID: 2, CourtID: 3, SpecificDate: ptr.Ptr(date), StartTime: "09:00", EndTime: "10:00", Price: 5000},
		{ID: 3, CourtID: 3, DayOfWeek: ptr.Ptr(int(time.Tuesday)), StartTime: "08:00", EndTime: "09:00", Price: 3500},
	}

	slots, err := buildSlots(court, grid, date, now, 0, nil, nil, rules)
	require.NoError(t, err)

	prices := make([]int64, len(slots))
	for i, s := range slots {
		prices[i] = s.Price
	}
	assert.Equal(t, []int64{3500, 5000, 2000, 2000}, prices)
}

func TestValidateDate(t *testing.T) {
	now := time.Date(2026, 6, 1, 23, 0, 0, 0, time.UTC)

	assert.NoError(t, validateDate(now.AddDate(0, 0, 30), now, 30))
	assert.ErrorIs(t, validateDate(now.AddDate(0, 0, 31), now, 30), ErrDateTooFarInFuture)
	assert.NoError(t, validateDate(now.AddDate(1, 0, 0), now, 0))
	assert.NoError(t, validateDate(now.AddDate(0, 0, -3), now, 30))
}
