package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jaytnw/motel-service/internal/apperr"
	"github.com/jaytnw/motel-service/internal/models"
	"github.com/jaytnw/motel-service/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var motelZone = time.FixedZone("COT", -5*3600)

// fixture wires every service over one memory store and a hand-driven clock.
type fixture struct {
	now    time.Time
	store  *repository.MemoryStore
	clock  *Clock
	events *recordingPublisher

	settings     SettingsService
	rooms        RoomService
	auth         AuthService
	accounting   AccountingService
	housekeeping HousekeepingService
	staff        StaffService
	reports      ReportService
}

// newFixture starts the clock at 2024-05-10 10:00 motel time (SHIFT_1).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		now:    time.Date(2024, 5, 10, 10, 0, 0, 0, motelZone),
		store:  repository.NewMemoryStore(),
		events: &recordingPublisher{},
	}
	logger := zap.NewNop()
	f.clock = NewClock(motelZone, func() time.Time { return f.now })
	f.settings = NewSettingsService(f.store, nil, logger)
	f.rooms = NewRoomService(f.store, f.settings, DefaultPricing(), f.clock, f.events, logger)
	f.auth = NewAuthService(f.store, f.settings, f.clock, "2206", logger)
	f.accounting = NewAccountingService(f.store, f.settings, f.clock, 3000, logger)
	f.housekeeping = NewHousekeepingService(f.store, f.clock, f.events, logger)
	f.staff = NewStaffService(f.store, f.settings, f.clock, logger)
	f.reports = NewReportService(f.accounting, logger)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) nowMs() int64 {
	return f.now.UnixMilli()
}

func (f *fixture) room(t *testing.T, roomID string) *models.Room {
	t.Helper()
	room, err := f.store.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	return room
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.RoomEvent
}

func (p *recordingPublisher) PublishRoomEvent(_ context.Context, event models.RoomEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) all() []models.RoomEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.RoomEvent(nil), p.events...)
}

// requireAppError asserts err is an *apperr.AppError with the given message and returns it.
func requireAppError(t *testing.T, err error, message string) *apperr.AppError {
	t.Helper()
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	require.Equal(t, message, ae.Message)
	return ae
}
