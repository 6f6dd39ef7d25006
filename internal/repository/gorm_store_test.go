package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jaytnw/motel-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupGormStore(t *testing.T) (sqlmock.Sqlmock, Store) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return mock, NewGormStore(conn)
}

func TestGormStore_GetRoom(t *testing.T) {
	mock, store := setupGormStore(t)

	rows := sqlmock.NewRows([]string{"room_id", "floor", "category", "state", "due_ms"}).
		AddRow("101", 1, "Junior", "OCCUPIED", int64(1700000000000))
	mock.ExpectQuery(`SELECT \* FROM "rooms" WHERE room_id = \$1`).WillReturnRows(rows)

	room, err := store.GetRoom(context.Background(), "101")

	require.NoError(t, err)
	assert.Equal(t, "101", room.RoomID)
	assert.Equal(t, models.RoomOccupied, room.State)
	assert.Equal(t, int64(1700000000000), room.DueMs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_GetRoom_NotFound(t *testing.T) {
	mock, store := setupGormStore(t)

	mock.ExpectQuery(`SELECT \* FROM "rooms" WHERE room_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}))

	room, err := store.GetRoom(context.Background(), "999")

	assert.Nil(t, room)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_TransitionRoom(t *testing.T) {
	mock, store := setupGormStore(t)

	mock.ExpectExec(`UPDATE "rooms" SET .* WHERE room_id = \$\d+ AND state = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.TransitionRoom(context.Background(), "101", models.RoomAvailable, Fields{"state": models.RoomOccupied})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_TransitionRoom_Conflict(t *testing.T) {
	mock, store := setupGormStore(t)

	mock.ExpectExec(`UPDATE "rooms" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.TransitionRoom(context.Background(), "101", models.RoomAvailable, Fields{"state": models.RoomOccupied})

	assert.ErrorIs(t, err, ErrStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_InsertSale(t *testing.T) {
	mock, store := setupGormStore(t)

	mock.ExpectQuery(`INSERT INTO "sales"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	sale := &models.Sale{TsMs: 1, BusinessDay: "2024-05-01", ShiftID: models.Shift1, Type: models.SaleTypeSale, Total: 120000}
	err := store.InsertSale(context.Background(), sale)

	require.NoError(t, err)
	assert.Equal(t, int64(7), sale.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListSales_MonthPrefix(t *testing.T) {
	mock, store := setupGormStore(t)

	rows := sqlmock.NewRows([]string{"id", "business_day", "type", "total"}).
		AddRow(1, "2024-05-01", "SALE", 50000).
		AddRow(2, "2024-05-02", "REFUND", -10000)
	mock.ExpectQuery(`SELECT \* FROM "sales" WHERE business_day LIKE \$1 ORDER BY ts_ms`).
		WithArgs("2024-05%").
		WillReturnRows(rows)

	sales, err := store.ListSales(context.Background(), SalesQuery{DayFilter: DayFilter{MonthPrefix: "2024-05"}})

	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, models.SaleTypeRefund, sales[1].Type)
	assert.Equal(t, int64(-10000), sales[1].Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_FirstShiftLogin_None(t *testing.T) {
	mock, store := setupGormStore(t)

	mock.ExpectQuery(`SELECT \* FROM "shift_log" WHERE business_day = \$1 AND shift_id = \$2 AND user_role = \$3 AND action = \$4`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.FirstShiftLogin(context.Background(), "2024-05-01", models.Shift1, models.RoleReception)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListSettings(t *testing.T) {
	mock, store := setupGormStore(t)

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("ADMIN_CODE", "1234").
		AddRow("DAILY_GOAL", "500000")
	mock.ExpectQuery(`SELECT \* FROM "settings"`).WillReturnRows(rows)

	settings, err := store.ListSettings(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ADMIN_CODE": "1234", "DAILY_GOAL": "500000"}, settings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UpsertSetting(t *testing.T) {
	mock, store := setupGormStore(t)

	mock.ExpectExec(`INSERT INTO "settings" .* ON CONFLICT \("key"\) DO UPDATE SET "value"="excluded"."value"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpsertSetting(context.Background(), "DAILY_GOAL", "800000")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ReplaceSchedule(t *testing.T) {
	mock, store := setupGormStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "schedule" WHERE week_start = \$1`).
		WithArgs("2024-05-06").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`INSERT INTO "schedule"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := store.ReplaceSchedule(context.Background(), "2024-05-06", []models.ScheduleEntry{
		{WeekStart: "2024-05-06", ShiftID: models.Shift1, Area: "Recepcion", PersonName: "Ana", Type: models.StaffTypePayroll},
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ReplaceSchedule_RollsBackOnDeleteError(t *testing.T) {
	mock, store := setupGormStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "schedule"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.ReplaceSchedule(context.Background(), "2024-05-06", nil)

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
