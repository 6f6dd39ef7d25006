package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jaytnw/motel-service/internal/config"
	"github.com/jaytnw/motel-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

type fakePostgREST struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(r *http.Request) (int, string)
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	f.mu.Unlock()

	status, out := http.StatusOK, "[]"
	if f.respond != nil {
		status, out = f.respond(r)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(out))
}

func setupRestStore(t *testing.T, respond func(r *http.Request) (int, string)) (*fakePostgREST, Store) {
	fake := &fakePostgREST{respond: respond}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cb := config.NewCircuitBreaker("store-test", time.Second, zap.NewNop())
	return fake, NewRestStore(srv.URL+"/", "service-key", 2*time.Second, cb)
}

func TestRestStore_GetRoom(t *testing.T) {
	fake, store := setupRestStore(t, func(r *http.Request) (int, string) {
		return http.StatusOK, `[{"room_id":"101","floor":1,"category":"Junior","state":"DIRTY","last_checkout_ms":42}]`
	})

	room, err := store.GetRoom(context.Background(), "101")

	require.NoError(t, err)
	assert.Equal(t, models.RoomDirty, room.State)
	assert.Equal(t, int64(42), room.LastCheckoutMs)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/rest/v1/rooms", req.Path)
	assert.Equal(t, "eq.101", req.Query.Get("room_id"))
	assert.Equal(t, "*", req.Query.Get("select"))
	assert.Equal(t, "1", req.Query.Get("limit"))
	assert.Equal(t, "service-key", req.Header.Get("apikey"))
	assert.Equal(t, "Bearer service-key", req.Header.Get("Authorization"))
}

func TestRestStore_GetRoom_NotFound(t *testing.T) {
	_, store := setupRestStore(t, nil)

	_, err := store.GetRoom(context.Background(), "404")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestStore_TransitionRoom(t *testing.T) {
	fake, store := setupRestStore(t, func(r *http.Request) (int, string) {
		return http.StatusOK, `[{"room_id":"101"}]`
	})

	err := store.TransitionRoom(context.Background(), "101", models.RoomOccupied, Fields{"state": models.RoomDirty, "people": 0})

	require.NoError(t, err)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "eq.101", req.Query.Get("room_id"))
	assert.Equal(t, "eq.OCCUPIED", req.Query.Get("state"))
	assert.Equal(t, "return=representation", req.Header.Get("Prefer"))
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	stamp, ok := body["updated_at"].(string)
	require.True(t, ok, "updated_at missing: %s", req.Body)
	_, err = time.Parse(time.RFC3339Nano, stamp)
	assert.NoError(t, err)
	delete(body, "updated_at")
	assert.Equal(t, map[string]any{"state": "DIRTY", "people": 0.0}, body)
}

func TestRestStore_UpdateRoom_StampsUpdatedAt(t *testing.T) {
	fake, store := setupRestStore(t, func(r *http.Request) (int, string) {
		return http.StatusOK, `[{"room_id":"101"}]`
	})
	fields := Fields{"alarm_silenced_ms": 5}

	require.NoError(t, store.UpdateRoom(context.Background(), "101", fields))

	assert.Contains(t, fake.requests[0].Body, `"updated_at":`)
	assert.Contains(t, fake.requests[0].Body, `"alarm_silenced_ms":5`)
	assert.NotContains(t, fields, "updated_at")
}

func TestRestStore_TransitionRoom_Conflict(t *testing.T) {
	_, store := setupRestStore(t, nil)

	err := store.TransitionRoom(context.Background(), "101", models.RoomAvailable, Fields{"state": models.RoomOccupied})

	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestRestStore_ListSales_Filters(t *testing.T) {
	fake, store := setupRestStore(t, nil)

	_, err := store.ListSales(context.Background(), SalesQuery{
		DayFilter: DayFilter{MonthPrefix: "2024-05"},
		RoomID:    "203",
		Newest:    true,
		Limit:     20,
	})

	require.NoError(t, err)
	q := fake.requests[0].Query
	assert.Equal(t, "like.2024-05*", q.Get("business_day"))
	assert.Equal(t, "eq.203", q.Get("room_id"))
	assert.Equal(t, "ts_ms.desc", q.Get("order"))
	assert.Equal(t, "20", q.Get("limit"))
}

func TestRestStore_ListShiftLogs_ActionsIn(t *testing.T) {
	fake, store := setupRestStore(t, nil)

	_, err := store.ListShiftLogs(context.Background(), ShiftLogQuery{
		BusinessDay: "2024-05-01",
		Actions:     []string{models.ActionLogin, models.ActionRelogin},
	})

	require.NoError(t, err)
	assert.Equal(t, "in.(LOGIN,RELOGIN)", fake.requests[0].Query.Get("action"))
}

func TestRestStore_UpsertSetting(t *testing.T) {
	fake, store := setupRestStore(t, func(r *http.Request) (int, string) {
		return http.StatusCreated, ""
	})

	err := store.UpsertSetting(context.Background(), models.SettingDailyGoal, "700000")

	require.NoError(t, err)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "key", req.Query.Get("on_conflict"))
	assert.Contains(t, req.Header.Get("Prefer"), "resolution=merge-duplicates")
	assert.JSONEq(t, `{"key":"DAILY_GOAL","value":"700000"}`, req.Body)
}

func TestRestStore_ReplaceSchedule(t *testing.T) {
	fake, store := setupRestStore(t, func(r *http.Request) (int, string) {
		if r.Method == http.MethodPost {
			return http.StatusCreated, ""
		}
		return http.StatusNoContent, ""
	})

	err := store.ReplaceSchedule(context.Background(), "2024-05-06", []models.ScheduleEntry{
		{WeekStart: "2024-05-06", ShiftID: models.Shift2, Area: "Aseo", PersonName: "Luz"},
	})

	require.NoError(t, err)
	require.Len(t, fake.requests, 2)
	assert.Equal(t, http.MethodDelete, fake.requests[0].Method)
	assert.Equal(t, "eq.2024-05-06", fake.requests[0].Query.Get("week_start"))
	assert.Equal(t, http.MethodPost, fake.requests[1].Method)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.requests[1].Body), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Luz", rows[0]["person_name"])
	assert.NotContains(t, rows[0], "id")
}

func TestRestStore_ErrorStatus(t *testing.T) {
	_, store := setupRestStore(t, func(r *http.Request) (int, string) {
		return http.StatusInternalServerError, `{"message":"boom"}`
	})

	_, err := store.ListRooms(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}
