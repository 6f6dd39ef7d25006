package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jaytnw/motel-service/internal/models"
	"github.com/sony/gobreaker"
)

// restStore talks to a PostgREST-compatible endpoint (/rest/v1/<table>).
type restStore struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker
}

func NewRestStore(baseURL, serviceKey string, timeout time.Duration, cb *gobreaker.CircuitBreaker) Store {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/rest/v1").
		SetTimeout(timeout).
		SetHeader("apikey", serviceKey).
		SetAuthToken(serviceKey).
		SetHeader("Content-Type", "application/json")

	return &restStore{
		client: client,
		cb:     cb,
	}
}

type restQuery struct {
	table  string
	params url.Values
	orders []string
}

func from(table string) *restQuery {
	return &restQuery{table: table, params: url.Values{}}
}

func (q *restQuery) eq(col string, v any) *restQuery {
	q.params.Add(col, "eq."+fmt.Sprint(v))
	return q
}

func (q *restQuery) gt(col string, v any) *restQuery {
	q.params.Add(col, "gt."+fmt.Sprint(v))
	return q
}

func (q *restQuery) like(col, pattern string) *restQuery {
	q.params.Add(col, "like."+pattern)
	return q
}

func (q *restQuery) in(col string, values []string) *restQuery {
	q.params.Add(col, "in.("+strings.Join(values, ",")+")")
	return q
}

func (q *restQuery) order(col string, desc bool) *restQuery {
	if desc {
		q.orders = append(q.orders, col+".desc")
	} else {
		q.orders = append(q.orders, col+".asc")
	}
	return q
}

func (q *restQuery) limit(n int) *restQuery {
	if n > 0 {
		q.params.Set("limit", fmt.Sprint(n))
	}
	return q
}

func (q *restQuery) dayFilter(f DayFilter) *restQuery {
	if f.BusinessDay != "" {
		q.eq("business_day", f.BusinessDay)
	}
	if f.ShiftID != "" {
		q.eq("shift_id", f.ShiftID)
	}
	if f.MonthPrefix != "" {
		q.like("business_day", f.MonthPrefix+"*")
	}
	return q
}

func (q *restQuery) values() url.Values {
	v := url.Values{}
	for k, vals := range q.params {
		v[k] = append([]string(nil), vals...)
	}
	if len(q.orders) > 0 {
		v.Set("order", strings.Join(q.orders, ","))
	}
	return v
}

func (s *restStore) do(req func() (*resty.Response, error)) ([]byte, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		resp, err := req()
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("store %s %s: %s: %s", resp.Request.Method, resp.Request.URL, resp.Status(), resp.String())
		}
		return resp.Body(), nil
	})
	if err != nil {
		return nil, err
	}
	body, _ := out.([]byte)
	return body, nil
}

func (s *restStore) selectInto(ctx context.Context, q *restQuery, dest any) error {
	params := q.values()
	params.Set("select", "*")
	body, err := s.do(func() (*resty.Response, error) {
		return s.client.R().
			SetContext(ctx).
			SetQueryParamsFromValues(params).
			Get("/" + q.table)
	})
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, dest)
}

func (s *restStore) insert(ctx context.Context, table string, row any) error {
	_, err := s.do(func() (*resty.Response, error) {
		return s.client.R().
			SetContext(ctx).
			SetHeader("Prefer", "return=minimal").
			SetBody(row).
			Post("/" + table)
	})
	return err
}

// update patches matching rows and reports how many changed.
func (s *restStore) update(ctx context.Context, q *restQuery, fields Fields) (int, error) {
	body, err := s.do(func() (*resty.Response, error) {
		return s.client.R().
			SetContext(ctx).
			SetHeader("Prefer", "return=representation").
			SetQueryParamsFromValues(q.values()).
			SetBody(map[string]any(fields)).
			Patch("/" + q.table)
	})
	if err != nil {
		return 0, err
	}
	var rows []json.RawMessage
	if len(body) > 0 {
		if err := json.Unmarshal(body, &rows); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func (s *restStore) upsert(ctx context.Context, table, conflict string, row any) error {
	_, err := s.do(func() (*resty.Response, error) {
		return s.client.R().
			SetContext(ctx).
			SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
			SetQueryParam("on_conflict", conflict).
			SetBody(row).
			Post("/" + table)
	})
	return err
}

func (s *restStore) delete(ctx context.Context, q *restQuery) error {
	_, err := s.do(func() (*resty.Response, error) {
		return s.client.R().
			SetContext(ctx).
			SetQueryParamsFromValues(q.values()).
			Delete("/" + q.table)
	})
	return err
}

func (s *restStore) Ping(ctx context.Context) error {
	var rows []models.Setting
	return s.selectInto(ctx, from("settings").limit(1), &rows)
}

// Rooms

func (s *restStore) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := s.selectInto(ctx, from("rooms").order("floor", false).order("room_id", false), &rooms)
	return rooms, err
}

func (s *restStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var rooms []models.Room
	if err := s.selectInto(ctx, from("rooms").eq("room_id", roomID).limit(1), &rooms); err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, ErrNotFound
	}
	return &rooms[0], nil
}

func (s *restStore) UpdateRoom(ctx context.Context, roomID string, fields Fields) error {
	_, err := s.update(ctx, from("rooms").eq("room_id", roomID), touched(fields))
	return err
}

func (s *restStore) TransitionRoom(ctx context.Context, roomID string, expected models.RoomState, fields Fields) error {
	n, err := s.update(ctx, from("rooms").eq("room_id", roomID).eq("state", expected), touched(fields))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStateConflict
	}
	return nil
}

// touched returns a copy of fields with updated_at set.
func touched(fields Fields) Fields {
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["updated_at"] = time.Now().UTC()
	return out
}

// Ledger

func (s *restStore) InsertSale(ctx context.Context, sale *models.Sale) error {
	return s.insert(ctx, "sales", sale)
}

func (s *restStore) ListSales(ctx context.Context, q SalesQuery) ([]models.Sale, error) {
	rq := from("sales").dayFilter(q.DayFilter)
	if q.RoomID != "" {
		rq.eq("room_id", q.RoomID)
	}
	if q.Type != "" {
		rq.eq("type", q.Type)
	}
	rq.order("ts_ms", q.Newest).limit(q.Limit)

	var sales []models.Sale
	err := s.selectInto(ctx, rq, &sales)
	return sales, err
}

func (s *restStore) InsertTaxiExpense(ctx context.Context, t *models.TaxiExpense) error {
	return s.insert(ctx, "taxi_expenses", t)
}

func (s *restStore) ListTaxiExpenses(ctx context.Context, f DayFilter) ([]models.TaxiExpense, error) {
	var rows []models.TaxiExpense
	err := s.selectInto(ctx, from("taxi_expenses").dayFilter(f).order("ts_ms", false), &rows)
	return rows, err
}

func (s *restStore) InsertLoan(ctx context.Context, l *models.Loan) error {
	return s.insert(ctx, "loans", l)
}

func (s *restStore) ListLoans(ctx context.Context, f DayFilter) ([]models.Loan, error) {
	var rows []models.Loan
	err := s.selectInto(ctx, from("loans").dayFilter(f).order("ts_ms", false), &rows)
	return rows, err
}

func (s *restStore) InsertExtraStaff(ctx context.Context, e *models.ExtraStaff) error {
	return s.insert(ctx, "extra_staff", e)
}

func (s *restStore) LatestActiveExtraStaff(ctx context.Context, personName string) (*models.ExtraStaff, error) {
	var rows []models.ExtraStaff
	q := from("extra_staff").eq("person_name", personName).eq("active", true).order("ts_ms", true).limit(1)
	if err := s.selectInto(ctx, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *restStore) UpdateExtraStaff(ctx context.Context, id int64, fields Fields) error {
	_, err := s.update(ctx, from("extra_staff").eq("id", id), fields)
	return err
}

func (s *restStore) ListExtraStaff(ctx context.Context, f DayFilter) ([]models.ExtraStaff, error) {
	var rows []models.ExtraStaff
	err := s.selectInto(ctx, from("extra_staff").dayFilter(f).order("ts_ms", false), &rows)
	return rows, err
}

func (s *restStore) InsertShiftNote(ctx context.Context, n *models.ShiftNote) error {
	return s.insert(ctx, "shift_notes", n)
}

func (s *restStore) ListShiftNotes(ctx context.Context, businessDay string, limit int) ([]models.ShiftNote, error) {
	q := from("shift_notes")
	if businessDay != "" {
		q.eq("business_day", businessDay)
	}
	var rows []models.ShiftNote
	err := s.selectInto(ctx, q.order("ts_ms", true).limit(limit), &rows)
	return rows, err
}

func (s *restStore) InsertShiftClose(ctx context.Context, c *models.ShiftClose) error {
	return s.insert(ctx, "shift_close", c)
}

// Audit

func (s *restStore) InsertStateHistory(ctx context.Context, h *models.StateHistory) error {
	return s.insert(ctx, "state_history", h)
}

func (s *restStore) ListStateHistory(ctx context.Context, q HistoryQuery) ([]models.StateHistory, error) {
	rq := from("state_history")
	if q.BusinessDay != "" {
		rq.eq("business_day", q.BusinessDay)
	}
	if q.RoomID != "" {
		rq.eq("room_id", q.RoomID)
	}
	var rows []models.StateHistory
	err := s.selectInto(ctx, rq.order("ts_ms", q.Newest).limit(q.Limit), &rows)
	return rows, err
}

func (s *restStore) InsertMaidLog(ctx context.Context, m *models.MaidLog) error {
	return s.insert(ctx, "maid_log", m)
}

func (s *restStore) CloseMaidLogs(ctx context.Context, maidName, roomID, businessDay string, exitMs int64) error {
	q := from("maid_log").
		eq("maid_name", maidName).
		eq("room_id", roomID).
		eq("business_day", businessDay).
		eq("exit_ms", 0)
	_, err := s.update(ctx, q, Fields{"exit_ms": exitMs})
	return err
}

func (s *restStore) ListMaidLogs(ctx context.Context, businessDay string) ([]models.MaidLog, error) {
	var rows []models.MaidLog
	err := s.selectInto(ctx, from("maid_log").eq("business_day", businessDay).order("ts_ms", false), &rows)
	return rows, err
}

func (s *restStore) InsertShiftLog(ctx context.Context, l *models.ShiftLog) error {
	return s.insert(ctx, "shift_log", l)
}

func (s *restStore) FirstShiftLogin(ctx context.Context, businessDay string, shift models.ShiftID, role models.Role) (*models.ShiftLog, error) {
	q := from("shift_log").
		eq("business_day", businessDay).
		eq("shift_id", shift).
		eq("user_role", role).
		eq("action", models.ActionLogin).
		order("ts_ms", false).
		limit(1)
	var rows []models.ShiftLog
	if err := s.selectInto(ctx, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *restStore) ListShiftLogs(ctx context.Context, q ShiftLogQuery) ([]models.ShiftLog, error) {
	rq := from("shift_log")
	if q.BusinessDay != "" {
		rq.eq("business_day", q.BusinessDay)
	}
	if q.ShiftID != "" {
		rq.eq("shift_id", q.ShiftID)
	}
	if q.UserRole != "" {
		rq.eq("user_role", q.UserRole)
	}
	if len(q.Actions) > 0 {
		rq.in("action", q.Actions)
	}
	var rows []models.ShiftLog
	err := s.selectInto(ctx, rq.order("ts_ms", false), &rows)
	return rows, err
}

func (s *restStore) InsertLoginFailure(ctx context.Context, f *models.LoginFailure) error {
	return s.insert(ctx, "login_failures", f)
}

func (s *restStore) ListLoginFailures(ctx context.Context, userName string, role models.Role, sinceMs int64) ([]models.LoginFailure, error) {
	q := from("login_failures").
		eq("user_name", userName).
		eq("user_role", role).
		gt("ts_ms", sinceMs).
		order("ts_ms", true)
	var rows []models.LoginFailure
	err := s.selectInto(ctx, q, &rows)
	return rows, err
}

func (s *restStore) InsertMaintenance(ctx context.Context, m *models.Maintenance) error {
	return s.insert(ctx, "maintenance", m)
}

// Staff

func (s *restStore) ListStaff(ctx context.Context) ([]models.Staff, error) {
	var rows []models.Staff
	err := s.selectInto(ctx, from("staff").order("area", false).order("name", false), &rows)
	return rows, err
}

func (s *restStore) InsertStaff(ctx context.Context, st *models.Staff) error {
	return s.insert(ctx, "staff", st)
}

func (s *restStore) UpdateStaff(ctx context.Context, id string, fields Fields) error {
	_, err := s.update(ctx, from("staff").eq("id", id), fields)
	return err
}

func (s *restStore) ListSchedule(ctx context.Context, weekStart string) ([]models.ScheduleEntry, error) {
	q := from("schedule")
	if weekStart != "" {
		q.eq("week_start", weekStart)
	}
	var rows []models.ScheduleEntry
	err := s.selectInto(ctx, q.order("shift_id", false).order("area", false), &rows)
	return rows, err
}

func (s *restStore) ReplaceSchedule(ctx context.Context, weekStart string, entries []models.ScheduleEntry) error {
	if err := s.delete(ctx, from("schedule").eq("week_start", weekStart)); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return s.insert(ctx, "schedule", entries)
}

// Settings

func (s *restStore) ListSettings(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	if err := s.selectInto(ctx, from("settings"), &rows); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func (s *restStore) UpsertSetting(ctx context.Context, key, value string) error {
	return s.upsert(ctx, "settings", "key", models.Setting{Key: key, Value: value})
}

func (s *restStore) GetReceptionPin(ctx context.Context, userName string) (*models.ReceptionPin, error) {
	var rows []models.ReceptionPin
	if err := s.selectInto(ctx, from("reception_pins").eq("user_name", userName).limit(1), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *restStore) UpsertReceptionPin(ctx context.Context, userName, pin string) error {
	row := models.ReceptionPin{UserName: userName, Pin: pin, UpdatedAt: time.Now().UTC()}
	return s.upsert(ctx, "reception_pins", "user_name", row)
}

func (s *restStore) ListReceptionPins(ctx context.Context) ([]models.ReceptionPin, error) {
	var rows []models.ReceptionPin
	err := s.selectInto(ctx, from("reception_pins").order("user_name", false), &rows)
	return rows, err
}
