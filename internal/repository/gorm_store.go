package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jaytnw/motel-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStore struct {
	conn *gorm.DB
}

func NewGormStore(conn *gorm.DB) Store {
	return &gormStore{
		conn: conn,
	}
}

// AutoMigrate creates or updates every table the service writes to.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.Room{},
		&models.Sale{},
		&models.TaxiExpense{},
		&models.Loan{},
		&models.ExtraStaff{},
		&models.ShiftClose{},
		&models.StateHistory{},
		&models.MaidLog{},
		&models.ShiftLog{},
		&models.LoginFailure{},
		&models.Maintenance{},
		&models.ShiftNote{},
		&models.Staff{},
		&models.ScheduleEntry{},
		&models.Setting{},
		&models.ReceptionPin{},
	)
}

func (r *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := r.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func applyDayFilter(q *gorm.DB, f DayFilter) *gorm.DB {
	if f.BusinessDay != "" {
		q = q.Where("business_day = ?", f.BusinessDay)
	}
	if f.ShiftID != "" {
		q = q.Where("shift_id = ?", f.ShiftID)
	}
	if f.MonthPrefix != "" {
		q = q.Where("business_day LIKE ?", f.MonthPrefix+"%")
	}
	return q
}

// Rooms

func (r *gormStore) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.conn.WithContext(ctx).
		Order("floor").
		Order("room_id").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *gormStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	err := r.conn.WithContext(ctx).
		Where("room_id = ?", roomID).
		Take(&room).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

func (r *gormStore) UpdateRoom(ctx context.Context, roomID string, fields Fields) error {
	return r.conn.WithContext(ctx).
		Model(&models.Room{}).
		Where("room_id = ?", roomID).
		Updates(map[string]any(fields)).Error
}

func (r *gormStore) TransitionRoom(ctx context.Context, roomID string, expected models.RoomState, fields Fields) error {
	result := r.conn.WithContext(ctx).
		Model(&models.Room{}).
		Where("room_id = ? AND state = ?", roomID, expected).
		Updates(map[string]any(fields))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

// Ledger

func (r *gormStore) InsertSale(ctx context.Context, sale *models.Sale) error {
	return r.conn.WithContext(ctx).Create(sale).Error
}

func (r *gormStore) ListSales(ctx context.Context, q SalesQuery) ([]models.Sale, error) {
	db := applyDayFilter(r.conn.WithContext(ctx), q.DayFilter)
	if q.RoomID != "" {
		db = db.Where("room_id = ?", q.RoomID)
	}
	if q.Type != "" {
		db = db.Where("type = ?", q.Type)
	}
	if q.Newest {
		db = db.Order("ts_ms DESC")
	} else {
		db = db.Order("ts_ms")
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	var sales []models.Sale
	if err := db.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *gormStore) InsertTaxiExpense(ctx context.Context, t *models.TaxiExpense) error {
	return r.conn.WithContext(ctx).Create(t).Error
}

func (r *gormStore) ListTaxiExpenses(ctx context.Context, f DayFilter) ([]models.TaxiExpense, error) {
	var rows []models.TaxiExpense
	err := applyDayFilter(r.conn.WithContext(ctx), f).Order("ts_ms").Find(&rows).Error
	return rows, err
}

func (r *gormStore) InsertLoan(ctx context.Context, l *models.Loan) error {
	return r.conn.WithContext(ctx).Create(l).Error
}

func (r *gormStore) ListLoans(ctx context.Context, f DayFilter) ([]models.Loan, error) {
	var rows []models.Loan
	err := applyDayFilter(r.conn.WithContext(ctx), f).Order("ts_ms").Find(&rows).Error
	return rows, err
}

func (r *gormStore) InsertExtraStaff(ctx context.Context, e *models.ExtraStaff) error {
	return r.conn.WithContext(ctx).Create(e).Error
}

func (r *gormStore) LatestActiveExtraStaff(ctx context.Context, personName string) (*models.ExtraStaff, error) {
	var row models.ExtraStaff
	err := r.conn.WithContext(ctx).
		Where("person_name = ? AND active = ?", personName, true).
		Order("ts_ms DESC").
		Take(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}

func (r *gormStore) UpdateExtraStaff(ctx context.Context, id int64, fields Fields) error {
	return r.conn.WithContext(ctx).
		Model(&models.ExtraStaff{}).
		Where("id = ?", id).
		Updates(map[string]any(fields)).Error
}

func (r *gormStore) ListExtraStaff(ctx context.Context, f DayFilter) ([]models.ExtraStaff, error) {
	var rows []models.ExtraStaff
	err := applyDayFilter(r.conn.WithContext(ctx), f).Order("ts_ms").Find(&rows).Error
	return rows, err
}

func (r *gormStore) InsertShiftNote(ctx context.Context, n *models.ShiftNote) error {
	return r.conn.WithContext(ctx).Create(n).Error
}

func (r *gormStore) ListShiftNotes(ctx context.Context, businessDay string, limit int) ([]models.ShiftNote, error) {
	db := r.conn.WithContext(ctx).Order("ts_ms DESC")
	if businessDay != "" {
		db = db.Where("business_day = ?", businessDay)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	var rows []models.ShiftNote
	err := db.Find(&rows).Error
	return rows, err
}

func (r *gormStore) InsertShiftClose(ctx context.Context, c *models.ShiftClose) error {
	return r.conn.WithContext(ctx).Create(c).Error
}

// Audit

func (r *gormStore) InsertStateHistory(ctx context.Context, h *models.StateHistory) error {
	return r.conn.WithContext(ctx).Create(h).Error
}

func (r *gormStore) ListStateHistory(ctx context.Context, q HistoryQuery) ([]models.StateHistory, error) {
	db := r.conn.WithContext(ctx)
	if q.BusinessDay != "" {
		db = db.Where("business_day = ?", q.BusinessDay)
	}
	if q.RoomID != "" {
		db = db.Where("room_id = ?", q.RoomID)
	}
	if q.Newest {
		db = db.Order("ts_ms DESC")
	} else {
		db = db.Order("ts_ms")
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	var rows []models.StateHistory
	err := db.Find(&rows).Error
	return rows, err
}

func (r *gormStore) InsertMaidLog(ctx context.Context, m *models.MaidLog) error {
	return r.conn.WithContext(ctx).Create(m).Error
}

func (r *gormStore) CloseMaidLogs(ctx context.Context, maidName, roomID, businessDay string, exitMs int64) error {
	return r.conn.WithContext(ctx).
		Model(&models.MaidLog{}).
		Where("maid_name = ? AND room_id = ? AND business_day = ? AND exit_ms = 0", maidName, roomID, businessDay).
		Update("exit_ms", exitMs).Error
}

func (r *gormStore) ListMaidLogs(ctx context.Context, businessDay string) ([]models.MaidLog, error) {
	var rows []models.MaidLog
	err := r.conn.WithContext(ctx).
		Where("business_day = ?", businessDay).
		Order("ts_ms").
		Find(&rows).Error
	return rows, err
}

func (r *gormStore) InsertShiftLog(ctx context.Context, l *models.ShiftLog) error {
	return r.conn.WithContext(ctx).Create(l).Error
}

func (r *gormStore) FirstShiftLogin(ctx context.Context, businessDay string, shift models.ShiftID, role models.Role) (*models.ShiftLog, error) {
	var row models.ShiftLog
	err := r.conn.WithContext(ctx).
		Where("business_day = ? AND shift_id = ? AND user_role = ? AND action = ?", businessDay, shift, role, models.ActionLogin).
		Order("ts_ms").
		Take(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}

func (r *gormStore) ListShiftLogs(ctx context.Context, q ShiftLogQuery) ([]models.ShiftLog, error) {
	db := r.conn.WithContext(ctx)
	if q.BusinessDay != "" {
		db = db.Where("business_day = ?", q.BusinessDay)
	}
	if q.ShiftID != "" {
		db = db.Where("shift_id = ?", q.ShiftID)
	}
	if q.UserRole != "" {
		db = db.Where("user_role = ?", q.UserRole)
	}
	if len(q.Actions) > 0 {
		db = db.Where("action IN ?", q.Actions)
	}
	var rows []models.ShiftLog
	err := db.Order("ts_ms").Find(&rows).Error
	return rows, err
}

func (r *gormStore) InsertLoginFailure(ctx context.Context, f *models.LoginFailure) error {
	return r.conn.WithContext(ctx).Create(f).Error
}

func (r *gormStore) ListLoginFailures(ctx context.Context, userName string, role models.Role, sinceMs int64) ([]models.LoginFailure, error) {
	var rows []models.LoginFailure
	err := r.conn.WithContext(ctx).
		Where("user_name = ? AND user_role = ? AND ts_ms > ?", userName, role, sinceMs).
		Order("ts_ms DESC").
		Find(&rows).Error
	return rows, err
}

func (r *gormStore) InsertMaintenance(ctx context.Context, m *models.Maintenance) error {
	return r.conn.WithContext(ctx).Create(m).Error
}

// Staff

func (r *gormStore) ListStaff(ctx context.Context) ([]models.Staff, error) {
	var rows []models.Staff
	err := r.conn.WithContext(ctx).Order("area").Order("name").Find(&rows).Error
	return rows, err
}

func (r *gormStore) InsertStaff(ctx context.Context, s *models.Staff) error {
	return r.conn.WithContext(ctx).Create(s).Error
}

func (r *gormStore) UpdateStaff(ctx context.Context, id string, fields Fields) error {
	return r.conn.WithContext(ctx).
		Model(&models.Staff{}).
		Where("id = ?", id).
		Updates(map[string]any(fields)).Error
}

func (r *gormStore) ListSchedule(ctx context.Context, weekStart string) ([]models.ScheduleEntry, error) {
	db := r.conn.WithContext(ctx)
	if weekStart != "" {
		db = db.Where("week_start = ?", weekStart)
	}
	var rows []models.ScheduleEntry
	err := db.Order("shift_id").Order("area").Find(&rows).Error
	return rows, err
}

func (r *gormStore) ReplaceSchedule(ctx context.Context, weekStart string, entries []models.ScheduleEntry) error {
	return r.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("week_start = ?", weekStart).Delete(&models.ScheduleEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

// Settings

func (r *gormStore) ListSettings(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	if err := r.conn.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, s := range rows {
		out[s.Key] = s.Value
	}
	return out, nil
}

func (r *gormStore) UpsertSetting(ctx context.Context, key, value string) error {
	return r.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&models.Setting{Key: key, Value: value}).Error
}

func (r *gormStore) GetReceptionPin(ctx context.Context, userName string) (*models.ReceptionPin, error) {
	var row models.ReceptionPin
	err := r.conn.WithContext(ctx).Where("user_name = ?", userName).Take(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}

func (r *gormStore) UpsertReceptionPin(ctx context.Context, userName, pin string) error {
	return r.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"pin", "updated_at"}),
		}).
		Create(&models.ReceptionPin{UserName: userName, Pin: pin, UpdatedAt: time.Now()}).Error
}

func (r *gormStore) ListReceptionPins(ctx context.Context) ([]models.ReceptionPin, error) {
	var rows []models.ReceptionPin
	err := r.conn.WithContext(ctx).Order("user_name").Find(&rows).Error
	return rows, err
}
