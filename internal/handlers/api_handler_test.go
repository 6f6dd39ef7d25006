package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jaytnw/motel-service/internal/apperr"
	"github.com/jaytnw/motel-service/internal/metrics"
	"github.com/jaytnw/motel-service/internal/models"
	"github.com/jaytnw/motel-service/internal/repository"
	"github.com/jaytnw/motel-service/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testZone = time.FixedZone("COT", -5*3600)

type apiFixture struct {
	app      *fiber.App
	store    *repository.MemoryStore
	registry *prometheus.Registry
}

func newServices(store *repository.MemoryStore) Services {
	logger := zap.NewNop()
	now := time.Date(2024, 5, 10, 10, 0, 0, 0, testZone)
	clock := services.NewClock(testZone, func() time.Time { return now })
	settings := services.NewSettingsService(store, nil, logger)
	events := services.NoopPublisher()
	accounting := services.NewAccountingService(store, settings, clock, 3000, logger)
	return Services{
		Rooms:        services.NewRoomService(store, settings, services.DefaultPricing(), clock, events, logger),
		Auth:         services.NewAuthService(store, settings, clock, "2206", logger),
		Accounting:   accounting,
		Housekeeping: services.NewHousekeepingService(store, clock, events, logger),
		Staff:        services.NewStaffService(store, settings, clock, logger),
	}
}

func newAPIFixture(t *testing.T, svc *Services) *apiFixture {
	t.Helper()
	f := &apiFixture{
		store:    repository.NewMemoryStore(),
		registry: prometheus.NewRegistry(),
	}
	f.store.SeedRooms(
		models.Room{RoomID: "101", Floor: 1, Category: "Junior", State: models.RoomAvailable},
		models.Room{RoomID: "102", Floor: 1, Category: "Junior", State: models.RoomAvailable},
	)
	if svc == nil {
		s := newServices(f.store)
		svc = &s
	}
	h := NewAPIHandler(*svc, metrics.NewRecorder(f.registry), zap.NewNop())

	f.app = fiber.New()
	f.app.All("/api", h.Handle)
	return f
}

func (f *apiFixture) post(t *testing.T, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return f.do(t, req)
}

func (f *apiFixture) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// requestCount reads motel_api_requests_total for one fn/status pair.
func (f *apiFixture) requestCount(t *testing.T, fn, status string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "motel_api_requests_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["fn"] == fn && labels["status"] == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestAPIHandler_RegistersEveryOperation(t *testing.T) {
	h := NewAPIHandler(Services{}, nil, zap.NewNop())
	for _, op := range Operations() {
		assert.Contains(t, h.ops, op, "missing handler for %s", op)
	}
	assert.Len(t, h.ops, len(Operations()))
}

func TestAPIHandler_CheckInFlattensResult(t *testing.T) {
	f := newAPIFixture(t, nil)

	status, body := f.post(t, `{"fn":"checkIn","userName":"Ana","roomId":"101","durationHrs":"6","people":2,"payMethod":"efectivo","paidWith":150000}`)

	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "101", body["roomId"])
	assert.EqualValues(t, 120000, body["total"])
	assert.EqualValues(t, 30000, body["change"])

	room, err := f.store.GetRoom(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, models.RoomOccupied, room.State)
}

func TestAPIHandler_WrapsListResults(t *testing.T) {
	f := newAPIFixture(t, nil)

	status, body := f.post(t, `{"fn":"getRooms"}`)

	require.Equal(t, http.StatusOK, status)
	rooms, ok := body["rooms"].([]any)
	require.True(t, ok, "rooms should be an array: %v", body)
	assert.Len(t, rooms, 2)
}

func TestAPIHandler_QueryStringOnGet(t *testing.T) {
	f := newAPIFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api?fn=roomHistory&roomId=101&limit=5", nil)
	status, body := f.do(t, req)

	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "101", body["roomId"])
}

func TestAPIHandler_FnInQueryWinsOverBody(t *testing.T) {
	f := newAPIFixture(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api?fn=getRooms", strings.NewReader(`{"fn":"nope"}`))
	status, body := f.do(t, req)

	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "rooms")
}

func TestAPIHandler_UnknownOperation(t *testing.T) {
	f := newAPIFixture(t, nil)

	status, body := f.post(t, `{"fn":"launchRocket"}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "Funcion desconocida: launchRocket", body["error"])
	assert.Equal(t, 1.0, f.requestCount(t, unknownOperation, "400"))
}

func TestAPIHandler_InvalidJSON(t *testing.T) {
	f := newAPIFixture(t, nil)

	status, body := f.post(t, `{"fn":`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "JSON invalido", body["error"])
}

func TestAPIHandler_ValidationError(t *testing.T) {
	f := newAPIFixture(t, nil)

	status, body := f.post(t, `{"fn":"checkIn","userName":"Ana","roomId":"101","durationHrs":5}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "Duracion invalida (3/6/8/12)", body["error"])
}

func TestAPIHandler_FractionalHoursRejected(t *testing.T) {
	f := newAPIFixture(t, nil)
	ctx := context.Background()

	status, body := f.post(t, `{"fn":"checkIn","userName":"Ana","roomId":"101","durationHrs":3.5}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Duracion invalida (3/6/8/12)", body["error"])
	room, err := f.store.GetRoom(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, room.State)
	assert.Empty(t, f.store.Sales())

	status, body = f.post(t, `{"fn":"checkIn","userName":"Ana","roomId":"101","durationHrs":3}`)
	require.Equal(t, http.StatusOK, status, body)
	dueMs := body["dueMs"]

	status, body = f.post(t, `{"fn":"extendTime","userName":"Ana","roomId":"101","extraHrs":"1.5"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Horas extra invalidas (1-6)", body["error"])
	assert.Len(t, f.store.Sales(), 1)

	room, err = f.store.GetRoom(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, dueMs, float64(room.DueMs))
}

func TestAPIHandler_FractionalAmountRejected(t *testing.T) {
	f := newAPIFixture(t, nil)

	status, body := f.post(t, `{"fn":"checkIn","userName":"Ana","roomId":"101","durationHrs":6,"paidWith":150000.5}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Monto invalido: paidWith", body["error"])

	status, body = f.post(t, `{"fn":"addLoan","userName":"Ana","borrowerName":"Luis","amount":"2000.75"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Monto invalido: amount", body["error"])
}

type failingRooms struct {
	services.RoomService
}

func (failingRooms) GetRooms(context.Context) ([]models.RoomDTO, error) {
	return nil, errors.New("connection reset")
}

func TestAPIHandler_InternalError(t *testing.T) {
	svc := Services{Rooms: failingRooms{}}
	f := newAPIFixture(t, &svc)

	status, body := f.post(t, `{"fn":"getRooms"}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "connection reset", body["error"])
	assert.Equal(t, 1.0, f.requestCount(t, "getRooms", "500"))
}

type unreachableStaff struct {
	services.StaffService
}

func (unreachableStaff) GetStaff(context.Context) ([]models.StaffDTO, error) {
	return nil, apperr.Internal("Error al leer personal", errors.New("dial tcp 10.0.0.5:5432: i/o timeout"))
}

func TestAPIHandler_InternalErrorCarriesCause(t *testing.T) {
	svc := Services{Staff: unreachableStaff{}}
	f := newAPIFixture(t, &svc)

	status, body := f.post(t, `{"fn":"getStaff"}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Error al leer personal: dial tcp 10.0.0.5:5432: i/o timeout", body["error"])
}

func TestAPIHandler_Options(t *testing.T) {
	f := newAPIFixture(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api", nil)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,POST,OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))
}

func TestAPIHandler_SetDisabledReadsEnabledFlag(t *testing.T) {
	f := newAPIFixture(t, nil)

	status, body := f.post(t, `{"fn":"setDisabled","userRole":"ADMIN","userName":"Jefe","roomId":"102","enabled":true,"reason":"Plomeria"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["disabled"])

	status, body = f.post(t, `{"fn":"setDisabled","userRole":"ADMIN","userName":"Jefe","roomId":"102","disabled":false}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, false, body["disabled"])
}

func TestAPIHandler_SaveScheduleDecodesEntries(t *testing.T) {
	f := newAPIFixture(t, nil)

	status, body := f.post(t, `{"fn":"saveSchedule","userRole":"ADMIN","weekStart":"2024-05-06",
		"entries":[{"shiftId":"SHIFT_1","area":"RECEPCION","personName":"Ana","dayOfWeek":"LUN","type":"TURNO"}]}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 1, body["saved"])

	status, body = f.post(t, `{"fn":"saveSchedule","userRole":"ADMIN","weekStart":"2024-05-06","entries":"not-a-list"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Entradas invalidas", body["error"])
}

func TestAPIHandler_LoginReturnsSession(t *testing.T) {
	f := newAPIFixture(t, nil)

	status, body := f.post(t, `{"fn":"login","userName":"Jefe","userRole":"ADMIN","adminCode":2206}`)

	require.Equal(t, http.StatusOK, status, body)
	session, ok := body["session"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Jefe", session["userName"])
}
