package services

import (
	"time"

	"github.com/jaytnw/motel-service/internal/models"
)

// businessDayStartHour is when a new business day (and SHIFT_1) begins.
const businessDayStartHour = 6

// BusinessDay returns the YYYY-MM-DD label of t in t's location.
// Times before 06:00 belong to the previous calendar date.
func BusinessDay(t time.Time) string {
	if t.Hour() < businessDayStartHour {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format("2006-01-02")
}

// ShiftOf maps t to SHIFT_1 [06,14), SHIFT_2 [14,21) or SHIFT_3.
func ShiftOf(t time.Time) models.ShiftID {
	h := t.Hour()
	switch {
	case h >= businessDayStartHour && h < 14:
		return models.Shift1
	case h >= 14 && h < 21:
		return models.Shift2
	default:
		return models.Shift3
	}
}

type ShiftInfo struct {
	ID    models.ShiftID `json:"id"`
	Label string         `json:"label"`
}

var ShiftLabels = []ShiftInfo{
	{ID: models.Shift1, Label: "Turno 1 (6am-2pm)"},
	{ID: models.Shift2, Label: "Turno 2 (2pm-9pm)"},
	{ID: models.Shift3, Label: "Turno 3 (9pm-6am)"},
}

// Clock reads the current time in the motel's timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func NewClock(loc *time.Location, now func() time.Time) *Clock {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Clock{loc: loc, now: now}
}

func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// At converts a stored millisecond timestamp into motel-local time.
func (c *Clock) At(ms int64) time.Time {
	return time.UnixMilli(ms).In(c.loc)
}

// Stamp is the moment a write happens, with its accounting coordinates.
type Stamp struct {
	Ms          int64
	BusinessDay string
	ShiftID     models.ShiftID
}

func (c *Clock) Stamp() Stamp {
	now := c.Now()
	return Stamp{
		Ms:          now.UnixMilli(),
		BusinessDay: BusinessDay(now),
		ShiftID:     ShiftOf(now),
	}
}

// DayOrToday returns day when set, else the current business day.
func (c *Clock) DayOrToday(day string) string {
	if day != "" {
		return day
	}
	return BusinessDay(c.Now())
}
