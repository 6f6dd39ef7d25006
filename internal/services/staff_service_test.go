package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jaytnw/motel-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.staff.SaveStaff(ctx, SaveStaffRequest{UserRole: "RECEPTION", Name: "Rosa", Area: "Aseo"})
	requireAppError(t, err, "Solo ADMIN")

	err = f.staff.SaveStaff(ctx, SaveStaffRequest{UserRole: "ADMIN", Name: "Rosa"})
	requireAppError(t, err, "Area requerida")

	require.NoError(t, f.staff.SaveStaff(ctx, SaveStaffRequest{UserRole: "ADMIN", Name: "Rosa", Area: "Aseo"}))
	require.NoError(t, f.staff.SaveStaff(ctx, SaveStaffRequest{UserRole: "ADMIN", Name: "Ana", Area: "Recepcion"}))

	staff, err := f.staff.GetStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, "Rosa", staff[0].Name)
	assert.True(t, staff[0].Active)
	assert.Equal(t, models.StaffTypePayroll, staff[0].Type)
	_, err = uuid.Parse(staff[0].ID)
	assert.NoError(t, err)

	inactive := false
	require.NoError(t, f.staff.SaveStaff(ctx, SaveStaffRequest{UserRole: "ADMIN", ID: staff[0].ID, Name: "Rosa M", Area: "Aseo", Active: &inactive}))

	staff, err = f.staff.GetStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, "Rosa M", staff[0].Name)
	assert.False(t, staff[0].Active)
}

func TestSaveSchedule_ReplacesWeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.staff.SaveSchedule(ctx, SaveScheduleRequest{UserRole: "RECEPTION", WeekStart: "2024-05-06"})
	requireAppError(t, err, "Solo el administrador puede guardar el calendario")

	_, err = f.staff.SaveSchedule(ctx, SaveScheduleRequest{UserRole: "ADMIN"})
	requireAppError(t, err, "Semana requerida")

	res, err := f.staff.SaveSchedule(ctx, SaveScheduleRequest{
		UserRole:  "ADMIN",
		WeekStart: "2024-05-06",
		Entries: []ScheduleEntryInput{
			{ShiftID: "SHIFT_1", Area: "Aseo", PersonName: "Rosa", DayOfWeek: "LUN"},
			{ShiftID: "SHIFT_2", Area: "Recepcion", PersonName: "Ana", DayOfWeek: "LUN", Type: "extra"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, &SaveScheduleResult{Saved: 2, WeekStart: "2024-05-06"}, res)

	res, err = f.staff.SaveSchedule(ctx, SaveScheduleRequest{
		UserRole:  "ADMIN",
		WeekStart: "2024-05-06",
		Entries:   []ScheduleEntryInput{{ShiftID: "SHIFT_3", Area: "Recepcion", PersonName: "Luis", DayOfWeek: "MAR"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Saved)

	week, err := f.staff.GetSchedule(ctx, "2024-05-06")
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, "Luis", week[0].PersonName)
	assert.Equal(t, models.StaffTypePayroll, week[0].Type)
}

func TestSetDailyGoal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.staff.SetDailyGoal(ctx, "MAID", 100)
	requireAppError(t, err, "Solo ADMIN")

	goal, err := f.staff.SetDailyGoal(ctx, "ADMIN", 750000)
	require.NoError(t, err)
	assert.Equal(t, int64(750000), goal)

	value, err := f.settings.Get(ctx, models.SettingDailyGoal, "0")
	require.NoError(t, err)
	assert.Equal(t, "750000", value)
}
