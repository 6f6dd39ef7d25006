package repository

import (
	"context"
	"errors"

	"github.com/jaytnw/motel-service/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrStateConflict = errors.New("room state changed concurrently")
)

// Fields is a column -> value patch for conditional and unconditional updates.
type Fields map[string]any

// DayFilter narrows ledger rows by business day, shift or year-month prefix. Empty fields are ignored.
type DayFilter struct {
	BusinessDay string
	ShiftID     models.ShiftID
	MonthPrefix string
}

type SalesQuery struct {
	DayFilter
	RoomID string
	Type   models.SaleType
	Limit  int
	Newest bool
}

type HistoryQuery struct {
	BusinessDay string
	RoomID      string
	Limit       int
	Newest      bool
}

type ShiftLogQuery struct {
	BusinessDay string
	ShiftID     models.ShiftID
	UserRole    models.Role
	Actions     []string
}

type RoomRepository interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	UpdateRoom(ctx context.Context, roomID string, fields Fields) error
	// TransitionRoom applies fields only while the room is still in expected state.
	// It returns ErrStateConflict when no row matched.
	TransitionRoom(ctx context.Context, roomID string, expected models.RoomState, fields Fields) error
}

type LedgerRepository interface {
	InsertSale(ctx context.Context, sale *models.Sale) error
	ListSales(ctx context.Context, q SalesQuery) ([]models.Sale, error)
	InsertTaxiExpense(ctx context.Context, t *models.TaxiExpense) error
	ListTaxiExpenses(ctx context.Context, f DayFilter) ([]models.TaxiExpense, error)
	InsertLoan(ctx context.Context, l *models.Loan) error
	ListLoans(ctx context.Context, f DayFilter) ([]models.Loan, error)
	InsertExtraStaff(ctx context.Context, e *models.ExtraStaff) error
	LatestActiveExtraStaff(ctx context.Context, personName string) (*models.ExtraStaff, error)
	UpdateExtraStaff(ctx context.Context, id int64, fields Fields) error
	ListExtraStaff(ctx context.Context, f DayFilter) ([]models.ExtraStaff, error)
	InsertShiftNote(ctx context.Context, n *models.ShiftNote) error
	ListShiftNotes(ctx context.Context, businessDay string, limit int) ([]models.ShiftNote, error)
	InsertShiftClose(ctx context.Context, c *models.ShiftClose) error
}

type AuditRepository interface {
	InsertStateHistory(ctx context.Context, h *models.StateHistory) error
	ListStateHistory(ctx context.Context, q HistoryQuery) ([]models.StateHistory, error)
	InsertMaidLog(ctx context.Context, m *models.MaidLog) error
	CloseMaidLogs(ctx context.Context, maidName, roomID, businessDay string, exitMs int64) error
	ListMaidLogs(ctx context.Context, businessDay string) ([]models.MaidLog, error)
	InsertShiftLog(ctx context.Context, l *models.ShiftLog) error
	FirstShiftLogin(ctx context.Context, businessDay string, shift models.ShiftID, role models.Role) (*models.ShiftLog, error)
	ListShiftLogs(ctx context.Context, q ShiftLogQuery) ([]models.ShiftLog, error)
	InsertLoginFailure(ctx context.Context, f *models.LoginFailure) error
	ListLoginFailures(ctx context.Context, userName string, role models.Role, sinceMs int64) ([]models.LoginFailure, error)
	InsertMaintenance(ctx context.Context, m *models.Maintenance) error
}

type StaffRepository interface {
	ListStaff(ctx context.Context) ([]models.Staff, error)
	InsertStaff(ctx context.Context, s *models.Staff) error
	UpdateStaff(ctx context.Context, id string, fields Fields) error
	ListSchedule(ctx context.Context, weekStart string) ([]models.ScheduleEntry, error)
	// ReplaceSchedule drops every row of weekStart and inserts entries.
	ReplaceSchedule(ctx context.Context, weekStart string, entries []models.ScheduleEntry) error
}

type SettingsRepository interface {
	ListSettings(ctx context.Context) (map[string]string, error)
	UpsertSetting(ctx context.Context, key, value string) error
	GetReceptionPin(ctx context.Context, userName string) (*models.ReceptionPin, error)
	UpsertReceptionPin(ctx context.Context, userName, pin string) error
	ListReceptionPins(ctx context.Context) ([]models.ReceptionPin, error)
}

// Store is the full persistence surface of the service.
type Store interface {
	RoomRepository
	LedgerRepository
	AuditRepository
	StaffRepository
	SettingsRepository
	Ping(ctx context.Context) error
}
