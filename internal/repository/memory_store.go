package repository

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jaytnw/motel-service/internal/models"
)

// MemoryStore keeps every table in process memory. It backs local runs and tests.
type MemoryStore struct {
	mu sync.RWMutex

	nextID        int64
	rooms         map[string]*models.Room
	sales         []models.Sale
	taxi          []models.TaxiExpense
	loans         []models.Loan
	extraStaff    []models.ExtraStaff
	shiftNotes    []models.ShiftNote
	shiftCloses   []models.ShiftClose
	stateHistory  []models.StateHistory
	maidLogs      []models.MaidLog
	shiftLogs     []models.ShiftLog
	loginFailures []models.LoginFailure
	maintenance   []models.Maintenance
	staff         []models.Staff
	schedule      []models.ScheduleEntry
	settings      map[string]string
	pins          map[string]models.ReceptionPin
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]*models.Room),
		settings: make(map[string]string),
		pins:     make(map[string]models.ReceptionPin),
	}
}

// SeedRooms inserts or replaces rooms.
func (s *MemoryStore) SeedRooms(rooms ...models.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rooms {
		r := r
		s.rooms[r.RoomID] = &r
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

// patch applies column-keyed fields to dst through its json tags, which mirror the columns.
func patch(dst any, fields Fields) error {
	raw, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	current := map[string]any{}
	if err := json.Unmarshal(raw, &current); err != nil {
		return err
	}
	for k, v := range fields {
		current[k] = v
	}
	raw, err = json.Marshal(current)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func matchDay(f DayFilter, day string, shift models.ShiftID) bool {
	if f.BusinessDay != "" && day != f.BusinessDay {
		return false
	}
	if f.ShiftID != "" && shift != f.ShiftID {
		return false
	}
	if f.MonthPrefix != "" && !strings.HasPrefix(day, f.MonthPrefix) {
		return false
	}
	return true
}

func limitSlice[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Rooms

func (s *MemoryStore) ListRooms(context.Context) ([]models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Floor != out[j].Floor {
			return out[i].Floor < out[j].Floor
		}
		return out[i].RoomID < out[j].RoomID
	})
	return out, nil
}

func (s *MemoryStore) GetRoom(_ context.Context, roomID string) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	room := *r
	return &room, nil
}

func (s *MemoryStore) UpdateRoom(_ context.Context, roomID string, fields Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	r.UpdatedAt = time.Now()
	return patch(r, fields)
}

func (s *MemoryStore) TransitionRoom(_ context.Context, roomID string, expected models.RoomState, fields Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok || r.State != expected {
		return ErrStateConflict
	}
	r.UpdatedAt = time.Now()
	return patch(r, fields)
}

// Ledger

func (s *MemoryStore) InsertSale(_ context.Context, sale *models.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale.ID = s.id()
	s.sales = append(s.sales, *sale)
	return nil
}

func (s *MemoryStore) ListSales(_ context.Context, q SalesQuery) ([]models.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Sale{}
	for _, r := range s.sales {
		if !matchDay(q.DayFilter, r.BusinessDay, r.ShiftID) {
			continue
		}
		if q.RoomID != "" && r.RoomID != q.RoomID {
			continue
		}
		if q.Type != "" && r.Type != q.Type {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Newest {
			return out[i].TsMs > out[j].TsMs
		}
		return out[i].TsMs < out[j].TsMs
	})
	return limitSlice(out, q.Limit), nil
}

func (s *MemoryStore) InsertTaxiExpense(_ context.Context, t *models.TaxiExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	s.taxi = append(s.taxi, *t)
	return nil
}

func (s *MemoryStore) ListTaxiExpenses(_ context.Context, f DayFilter) ([]models.TaxiExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.TaxiExpense{}
	for _, r := range s.taxi {
		if matchDay(f, r.BusinessDay, r.ShiftID) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TsMs < out[j].TsMs })
	return out, nil
}

func (s *MemoryStore) InsertLoan(_ context.Context, l *models.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.id()
	s.loans = append(s.loans, *l)
	return nil
}

func (s *MemoryStore) ListLoans(_ context.Context, f DayFilter) ([]models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Loan{}
	for _, r := range s.loans {
		if matchDay(f, r.BusinessDay, r.ShiftID) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TsMs < out[j].TsMs })
	return out, nil
}

func (s *MemoryStore) InsertExtraStaff(_ context.Context, e *models.ExtraStaff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.extraStaff = append(s.extraStaff, *e)
	return nil
}

func (s *MemoryStore) LatestActiveExtraStaff(_ context.Context, personName string) (*models.ExtraStaff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.ExtraStaff
	for i := range s.extraStaff {
		r := &s.extraStaff[i]
		if r.PersonName != personName || !r.Active {
			continue
		}
		if found == nil || r.TsMs >= found.TsMs {
			found = r
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	row := *found
	return &row, nil
}

func (s *MemoryStore) UpdateExtraStaff(_ context.Context, id int64, fields Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.extraStaff {
		if s.extraStaff[i].ID == id {
			return patch(&s.extraStaff[i], fields)
		}
	}
	return nil
}

func (s *MemoryStore) ListExtraStaff(_ context.Context, f DayFilter) ([]models.ExtraStaff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.ExtraStaff{}
	for _, r := range s.extraStaff {
		if matchDay(f, r.BusinessDay, r.ShiftID) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TsMs < out[j].TsMs })
	return out, nil
}

func (s *MemoryStore) InsertShiftNote(_ context.Context, n *models.ShiftNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = s.id()
	s.shiftNotes = append(s.shiftNotes, *n)
	return nil
}

func (s *MemoryStore) ListShiftNotes(_ context.Context, businessDay string, limit int) ([]models.ShiftNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.ShiftNote{}
	for _, r := range s.shiftNotes {
		if businessDay == "" || r.BusinessDay == businessDay {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TsMs > out[j].TsMs })
	return limitSlice(out, limit), nil
}

func (s *MemoryStore) InsertShiftClose(_ context.Context, c *models.ShiftClose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	s.shiftCloses = append(s.shiftCloses, *c)
	return nil
}

// Audit

func (s *MemoryStore) InsertStateHistory(_ context.Context, h *models.StateHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.id()
	s.stateHistory = append(s.stateHistory, *h)
	return nil
}

func (s *MemoryStore) ListStateHistory(_ context.Context, q HistoryQuery) ([]models.StateHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.StateHistory{}
	for _, r := range s.stateHistory {
		if q.BusinessDay != "" && r.BusinessDay != q.BusinessDay {
			continue
		}
		if q.RoomID != "" && r.RoomID != q.RoomID {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Newest {
			return out[i].TsMs > out[j].TsMs
		}
		return out[i].TsMs < out[j].TsMs
	})
	return limitSlice(out, q.Limit), nil
}

func (s *MemoryStore) InsertMaidLog(_ context.Context, m *models.MaidLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id()
	s.maidLogs = append(s.maidLogs, *m)
	return nil
}

func (s *MemoryStore) CloseMaidLogs(_ context.Context, maidName, roomID, businessDay string, exitMs int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.maidLogs {
		m := &s.maidLogs[i]
		if m.MaidName == maidName && m.RoomID == roomID && m.BusinessDay == businessDay && m.ExitMs == 0 {
			m.ExitMs = exitMs
		}
	}
	return nil
}

func (s *MemoryStore) ListMaidLogs(_ context.Context, businessDay string) ([]models.MaidLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.MaidLog{}
	for _, r := range s.maidLogs {
		if r.BusinessDay == businessDay {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) InsertShiftLog(_ context.Context, l *models.ShiftLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.id()
	s.shiftLogs = append(s.shiftLogs, *l)
	return nil
}

func (s *MemoryStore) FirstShiftLogin(_ context.Context, businessDay string, shift models.ShiftID, role models.Role) (*models.ShiftLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.ShiftLog
	for i := range s.shiftLogs {
		r := &s.shiftLogs[i]
		if r.BusinessDay != businessDay || r.ShiftID != shift || r.UserRole != role || r.Action != models.ActionLogin {
			continue
		}
		if found == nil || r.TsMs < found.TsMs {
			found = r
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	row := *found
	return &row, nil
}

func (s *MemoryStore) ListShiftLogs(_ context.Context, q ShiftLogQuery) ([]models.ShiftLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.ShiftLog{}
	for _, r := range s.shiftLogs {
		if q.BusinessDay != "" && r.BusinessDay != q.BusinessDay {
			continue
		}
		if q.ShiftID != "" && r.ShiftID != q.ShiftID {
			continue
		}
		if q.UserRole != "" && r.UserRole != q.UserRole {
			continue
		}
		if len(q.Actions) > 0 && !contains(q.Actions, r.Action) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func (s *MemoryStore) InsertLoginFailure(_ context.Context, f *models.LoginFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = s.id()
	s.loginFailures = append(s.loginFailures, *f)
	return nil
}

func (s *MemoryStore) ListLoginFailures(_ context.Context, userName string, role models.Role, sinceMs int64) ([]models.LoginFailure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.LoginFailure{}
	for _, r := range s.loginFailures {
		if r.UserName == userName && r.UserRole == role && r.TsMs > sinceMs {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TsMs > out[j].TsMs })
	return out, nil
}

func (s *MemoryStore) InsertMaintenance(_ context.Context, m *models.Maintenance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id()
	s.maintenance = append(s.maintenance, *m)
	return nil
}

// Staff

func (s *MemoryStore) ListStaff(context.Context) ([]models.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.Staff(nil), s.staff...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Area != out[j].Area {
			return out[i].Area < out[j].Area
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *MemoryStore) InsertStaff(_ context.Context, st *models.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff = append(s.staff, *st)
	return nil
}

func (s *MemoryStore) UpdateStaff(_ context.Context, id string, fields Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.staff {
		if s.staff[i].ID == id {
			return patch(&s.staff[i], fields)
		}
	}
	return nil
}

func (s *MemoryStore) ListSchedule(_ context.Context, weekStart string) ([]models.ScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.ScheduleEntry{}
	for _, r := range s.schedule {
		if weekStart == "" || r.WeekStart == weekStart {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ShiftID != out[j].ShiftID {
			return out[i].ShiftID < out[j].ShiftID
		}
		return out[i].Area < out[j].Area
	})
	return out, nil
}

func (s *MemoryStore) ReplaceSchedule(_ context.Context, weekStart string, entries []models.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.schedule[:0]
	for _, r := range s.schedule {
		if r.WeekStart != weekStart {
			kept = append(kept, r)
		}
	}
	s.schedule = kept
	for _, e := range entries {
		e.ID = s.id()
		s.schedule = append(s.schedule, e)
	}
	return nil
}

// Settings

func (s *MemoryStore) ListSettings(context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) UpsertSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

func (s *MemoryStore) GetReceptionPin(_ context.Context, userName string) (*models.ReceptionPin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pins[userName]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) UpsertReceptionPin(_ context.Context, userName, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pins[userName] = models.ReceptionPin{UserName: userName, Pin: pin, UpdatedAt: time.Now()}
	return nil
}

func (s *MemoryStore) ListReceptionPins(context.Context) ([]models.ReceptionPin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ReceptionPin, 0, len(s.pins))
	for _, p := range s.pins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out, nil
}

// Snapshot accessors for inspection in tests and debugging.

func (s *MemoryStore) Sales() []models.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Sale(nil), s.sales...)
}

func (s *MemoryStore) StateHistory() []models.StateHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.StateHistory(nil), s.stateHistory...)
}

func (s *MemoryStore) MaidLogs() []models.MaidLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MaidLog(nil), s.maidLogs...)
}

func (s *MemoryStore) ShiftLogs() []models.ShiftLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ShiftLog(nil), s.shiftLogs...)
}

func (s *MemoryStore) LoginFailures() []models.LoginFailure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.LoginFailure(nil), s.loginFailures...)
}

func (s *MemoryStore) ShiftCloses() []models.ShiftClose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ShiftClose(nil), s.shiftCloses...)
}

func (s *MemoryStore) Maintenance() []models.Maintenance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Maintenance(nil), s.maintenance...)
}

func (s *MemoryStore) ExtraStaffRows() []models.ExtraStaff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ExtraStaff(nil), s.extraStaff...)
}

var _ Store = (*MemoryStore)(nil)
