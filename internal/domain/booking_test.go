package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-CourtBooking/pkg/types"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                   string
		aStart, aEnd, bS, bEnd string
		want                   bool
	}{
		{name: "inside", aStart: "10:00", aEnd: "12:00", bS: "10:30", bEnd: "11:00", want: true},
		{name: "partial", aStart: "11:20", aEnd: "11:40", bS: "11:30", bEnd: "12:00", want: true},
		{name: "touching before", aStart: "11:00", aEnd: "11:30", bS: "11:30", bEnd: "12:00"},
		{name: "touching after", aStart: "12:00", aEnd: "12:30", bS: "11:30", bEnd: "12:00"},
		{name: "disjoint", aStart: "08:00", aEnd: "09:00", bS: "10:00", bEnd: "11:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(types.TimeString(tt.aStart), types.TimeString(tt.aEnd), types.TimeString(tt.bS), types.TimeString(tt.bEnd))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBooking_StatusHelpers(t *testing.T) {
	b := &Booking{Status: StatusPending, StartTime: "10:00", DurationMinutes: 90}
	assert.True(t, b.IsActive())
	assert.True(t, b.CanBeCancelled())
	assert.False(t, b.CountsAsRevenue())
	assert.Equal(t, types.TimeString("11:30"), b.EndTime())

	b.Status = StatusExpired
	assert.False(t, b.IsActive())
	assert.False(t, b.CanBeCancelled())

	b.Status = StatusCompleted
	assert.True(t, b.IsActive())
	assert.True(t, b.CountsAsRevenue())
}

func TestBooking_StartsAt(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	b := &Booking{BookingDate: time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC), StartTime: "18:30"}
	assert.Equal(t, time.Date(2025, 10, 18, 18, 30, 0, 0, loc), b.StartsAt(loc))
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("no_show")
	assert.NoError(t, err)
	assert.Equal(t, StatusNoShow, s)

	_, err = ParseBookingStatus("in_progress")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDateIn_KeepsCalendarDay(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	tokyo := time.FixedZone("UTC+9", 9*60*60)

	parsed, _ := time.Parse(DateFormat, "2026-06-10")

	for _, loc := range []*time.Location{newYork, tokyo, time.UTC} {
		got := DateIn(parsed, loc)
		assert.Equal(t, "2026-06-10", got.Format(DateFormat), loc.String())
		assert.Equal(t, loc, got.Location())
		assert.Zero(t, got.Hour())
	}
}
