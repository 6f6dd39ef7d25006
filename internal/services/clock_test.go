package services

import (
	"testing"
	"time"

	"github.com/jaytnw/motel-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestShiftOf(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)
	cases := []struct {
		hour, min int
		want      models.ShiftID
	}{
		{6, 0, models.Shift1},
		{13, 59, models.Shift1},
		{14, 0, models.Shift2},
		{20, 59, models.Shift2},
		{21, 0, models.Shift3},
		{0, 0, models.Shift3},
		{5, 59, models.Shift3},
	}

	for _, tc := range cases {
		ts := time.Date(2024, 5, 10, tc.hour, tc.min, 0, 0, loc)
		assert.Equal(t, tc.want, ShiftOf(ts), "%02d:%02d", tc.hour, tc.min)
	}
}

func TestBusinessDay(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)

	assert.Equal(t, "2024-05-09", BusinessDay(time.Date(2024, 5, 10, 5, 59, 59, 0, loc)))
	assert.Equal(t, "2024-05-10", BusinessDay(time.Date(2024, 5, 10, 6, 0, 0, 0, loc)))
	assert.Equal(t, "2024-05-10", BusinessDay(time.Date(2024, 5, 10, 23, 30, 0, 0, loc)))
	assert.Equal(t, "2024-02-29", BusinessDay(time.Date(2024, 3, 1, 2, 0, 0, 0, loc)))
	assert.Equal(t, "2023-12-31", BusinessDay(time.Date(2024, 1, 1, 0, 15, 0, 0, loc)))
}

func TestClock_StampUsesMotelLocation(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)
	// 08:30 UTC is 03:30 in the motel, still the previous business day.
	fixed := time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)
	clock := NewClock(loc, func() time.Time { return fixed })

	stamp := clock.Stamp()

	assert.Equal(t, fixed.UnixMilli(), stamp.Ms)
	assert.Equal(t, "2024-05-09", stamp.BusinessDay)
	assert.Equal(t, models.Shift3, stamp.ShiftID)
	assert.Equal(t, 3, clock.At(stamp.Ms).Hour())
	assert.Equal(t, "2024-05-01", clock.DayOrToday("2024-05-01"))
	assert.Equal(t, "2024-05-09", clock.DayOrToday(""))
}
