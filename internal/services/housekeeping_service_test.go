package services

import (
	"context"
	"testing"
	"time"

	"github.com/jaytnw/motel-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaidFinish_Contaminated(t *testing.T) {
	f := newFixture(t)
	checkout := f.nowMs() - (30 * time.Minute).Milliseconds()
	f.store.SeedRooms(models.Room{RoomID: "101", Category: "Junior", State: models.RoomDirty, LastCheckoutMs: checkout})
	ctx := context.Background()

	res, err := f.housekeeping.MaidFinish(ctx, MaidFinishRequest{RoomID: "101", MaidName: "Rosa", ResultState: "CONTAMINATED"})
	require.NoError(t, err)
	assert.Equal(t, int64(30), res.DirtyMins)

	room := f.room(t, "101")
	assert.Equal(t, models.RoomContaminated, room.State)
	assert.Equal(t, f.nowMs(), room.ContaminatedSinceMs)
	assert.Equal(t, "Rosa", room.LastMaidName)
	assert.True(t, room.LastMaidContaminated)

	logs := f.store.MaidLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionFinish, logs[0].Action)
	assert.Equal(t, string(models.RoomContaminated), logs[0].State)

	history := f.store.StateHistory()
	require.Len(t, history, 1)
	meta, ok := history[0].Meta().(models.MaidFinishMeta)
	require.True(t, ok)
	assert.Equal(t, "Rosa", meta.MaidName)
	assert.True(t, meta.Contaminated)

	f.advance(10 * time.Minute)
	require.NoError(t, f.rooms.ClearContaminated(ctx, "101", "Ana"))
	room = f.room(t, "101")
	assert.Equal(t, models.RoomAvailable, room.State)
	assert.Zero(t, room.ContaminatedSinceMs)

	err = f.rooms.ClearContaminated(ctx, "101", "Ana")
	requireAppError(t, err, "Solo si esta CONTAMINADA")
}

func TestMaidFinish_DefaultsToAvailable(t *testing.T) {
	f := newFixture(t)
	f.store.SeedRooms(models.Room{RoomID: "101", Category: "Junior", State: models.RoomDirty})

	res, err := f.housekeeping.MaidFinish(context.Background(), MaidFinishRequest{RoomID: "101", MaidName: "Rosa"})
	require.NoError(t, err)
	assert.Zero(t, res.DirtyMins)

	room := f.room(t, "101")
	assert.Equal(t, models.RoomAvailable, room.State)
	assert.False(t, room.LastMaidContaminated)
	assert.Zero(t, room.ContaminatedSinceMs)
}

func TestMaidFinish_Rejections(t *testing.T) {
	f := newFixture(t)
	f.store.SeedRooms(models.Room{RoomID: "101", Category: "Junior", State: models.RoomOccupied})
	ctx := context.Background()

	_, err := f.housekeeping.MaidFinish(ctx, MaidFinishRequest{RoomID: "101", MaidName: "Rosa"})
	requireAppError(t, err, "Hab debe estar SUCIA")

	_, err = f.housekeeping.MaidFinish(ctx, MaidFinishRequest{RoomID: "101", MaidName: "Rosa", ResultState: "OCCUPIED"})
	requireAppError(t, err, "Estado invalido")

	assert.Empty(t, f.store.MaidLogs())
	assert.Equal(t, models.RoomOccupied, f.room(t, "101").State)
}

func TestMaidLogActionAndExit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.housekeeping.MaidLogAction(ctx, MaidActionRequest{MaidName: " ", RoomID: "101"})
	requireAppError(t, err, "Nombre requerido")

	require.NoError(t, f.housekeeping.MaidLogAction(ctx, MaidActionRequest{MaidName: "Rosa", RoomID: "101", Action: "ENTRY"}))
	f.advance(20 * time.Minute)
	exitMs, err := f.housekeeping.MaidMarkExit(ctx, "Rosa", "101")
	require.NoError(t, err)
	assert.Equal(t, f.nowMs(), exitMs)

	logs, err := f.housekeeping.GetMaidLog(ctx, "")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "ENTRY", logs[0].Action)
	assert.Equal(t, exitMs, logs[0].ExitMs)
}

func TestMaidPanel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := f.nowMs()
	minute := time.Minute.Milliseconds()
	f.store.SeedRooms(
		models.Room{RoomID: "103", Category: "Junior", State: models.RoomDirty, LastCheckoutMs: now - 10*minute},
		models.Room{RoomID: "101", Category: "Junior", State: models.RoomDirty, LastCheckoutMs: now - 40*minute},
		models.Room{RoomID: "102", Category: "Presidencial", State: models.RoomDirty, LastCheckoutMs: now - 25*minute},
		models.Room{RoomID: "104", Category: "Junior", State: models.RoomAvailable},
		models.Room{RoomID: "105", Category: "Junior", State: models.RoomContaminated, StateSinceMs: now - 15*minute},
	)

	_, err := f.auth.Login(ctx, LoginRequest{UserName: "Rosa", UserRole: "MAID"})
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = f.auth.Login(ctx, LoginRequest{UserName: "Rosa", UserRole: "MAID"})
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, LoginRequest{UserName: "Luz", UserRole: "MAID"})
	require.NoError(t, err)

	_, err = f.housekeeping.MaidFinish(ctx, MaidFinishRequest{RoomID: "102", MaidName: "Rosa"})
	require.NoError(t, err)

	panel, err := f.housekeeping.MaidPanel(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", panel.BizDay)
	assert.Equal(t, models.Shift1, panel.ServerShift)

	require.Len(t, panel.ActiveMaids, 2)
	assert.Equal(t, "Rosa", panel.ActiveMaids[0].UserName)
	assert.Equal(t, now, panel.ActiveMaids[0].LoginMs)
	assert.Equal(t, "Luz", panel.ActiveMaids[1].UserName)

	require.Len(t, panel.DirtyRooms, 2)
	assert.Equal(t, "101", panel.DirtyRooms[0].RoomID)
	assert.Equal(t, int64(41), panel.DirtyRooms[0].WaitingMins)
	assert.Equal(t, "103", panel.DirtyRooms[1].RoomID)

	require.Len(t, panel.ContaminatedRooms, 1)
	assert.Equal(t, now-15*minute, panel.ContaminatedRooms[0].ContaminatedSinceMs)
	assert.Equal(t, int64(16), panel.ContaminatedRooms[0].WaitingMins)

	require.Len(t, panel.ShiftReport[models.Shift1], 1)
	stat := panel.ShiftReport[models.Shift1][0]
	assert.Equal(t, "Rosa", stat.MaidName)
	assert.Equal(t, 1, stat.TotalRooms)
	assert.Equal(t, int64(26), stat.AvgMins)
	assert.Empty(t, panel.ShiftReport[models.Shift2])
	assert.Len(t, panel.MaidLogs, 1)
}

func TestShiftReport_UnknownShiftCountsAsFirst(t *testing.T) {
	history := []models.StateHistory{
		{ShiftID: "", UserName: "Rosa", FromState: models.RoomDirty, ToState: models.RoomAvailable, MetaJSON: `{"dirtyMins":10}`},
		{ShiftID: models.Shift3, UserName: "Luz", FromState: models.RoomDirty, ToState: models.RoomContaminated, MetaJSON: `{"maidName":"Luz","dirtyMins":20}`},
		{ShiftID: models.Shift3, UserName: "Luz", FromState: models.RoomDirty, ToState: models.RoomAvailable, MetaJSON: `{"maidName":"Luz","dirtyMins":31}`},
		{ShiftID: models.Shift1, UserName: "Ana", FromState: models.RoomAvailable, ToState: models.RoomOccupied},
	}

	report := shiftReport(history)
	require.Len(t, report[models.Shift1], 1)
	assert.Equal(t, "Rosa", report[models.Shift1][0].MaidName)

	require.Len(t, report[models.Shift3], 1)
	luz := report[models.Shift3][0]
	assert.Equal(t, 2, luz.TotalRooms)
	assert.Equal(t, 1, luz.Contaminated)
	assert.Equal(t, int64(26), luz.AvgMins)
}
