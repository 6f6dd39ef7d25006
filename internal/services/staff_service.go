package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jaytnw/motel-service/internal/apperr"
	"github.com/jaytnw/motel-service/internal/models"
	"github.com/jaytnw/motel-service/internal/repository"
	"go.uber.org/zap"
)

type SaveStaffRequest struct {
	UserRole string
	ID       string
	Name     string
	Area     string
	Active   *bool
}

type ScheduleEntryInput struct {
	ShiftID    string `json:"shiftId"`
	Area       string `json:"area"`
	PersonName string `json:"personName"`
	DayOfWeek  string `json:"dayOfWeek"`
	Type       string `json:"type"`
}

type SaveScheduleRequest struct {
	UserRole  string
	WeekStart string
	Entries   []ScheduleEntryInput
}

type SaveScheduleResult struct {
	Saved     int    `json:"saved"`
	WeekStart string `json:"weekStart"`
}

type StaffService interface {
	GetStaff(ctx context.Context) ([]models.StaffDTO, error)
	SaveStaff(ctx context.Context, req SaveStaffRequest) error
	GetSchedule(ctx context.Context, weekStart string) ([]models.ScheduleDTO, error)
	SaveSchedule(ctx context.Context, req SaveScheduleRequest) (*SaveScheduleResult, error)
	SetDailyGoal(ctx context.Context, actorRole string, goal int64) (int64, error)
}

type staffService struct {
	store    repository.Store
	settings SettingsService
	clock    *Clock
	logger   *zap.Logger
}

func NewStaffService(store repository.Store, settings SettingsService, clock *Clock, logger *zap.Logger) StaffService {
	return &staffService{
		store:    store,
		settings: settings,
		clock:    clock,
		logger:   logger,
	}
}

func (s *staffService) GetStaff(ctx context.Context) ([]models.StaffDTO, error) {
	rows, err := s.store.ListStaff(ctx)
	if err != nil {
		return nil, storeError("leer personal", err)
	}
	staff := make([]models.StaffDTO, 0, len(rows))
	for _, r := range rows {
		staff = append(staff, models.ToStaffDTO(r))
	}
	return staff, nil
}

func (s *staffService) SaveStaff(ctx context.Context, req SaveStaffRequest) error {
	if err := requireAdmin(req.UserRole, "Solo ADMIN"); err != nil {
		return err
	}
	name := strings.TrimSpace(req.Name)
	area := strings.TrimSpace(req.Area)
	id := strings.TrimSpace(req.ID)
	active := req.Active == nil || *req.Active
	if name == "" {
		return apperr.Validation("Nombre requerido")
	}
	if area == "" {
		return apperr.Validation("Area requerida")
	}

	if id != "" {
		if err := s.store.UpdateStaff(ctx, id, repository.Fields{"name": name, "area": area, "active": active}); err != nil {
			return storeError("guardar personal", err)
		}
		return nil
	}

	row := &models.Staff{
		ID:        uuid.NewString(),
		Name:      name,
		Area:      area,
		Type:      models.StaffTypePayroll,
		Active:    active,
		CreatedMs: s.clock.Now().UnixMilli(),
	}
	if err := s.store.InsertStaff(ctx, row); err != nil {
		return storeError("guardar personal", err)
	}
	return nil
}

func (s *staffService) GetSchedule(ctx context.Context, weekStart string) ([]models.ScheduleDTO, error) {
	rows, err := s.store.ListSchedule(ctx, strings.TrimSpace(weekStart))
	if err != nil {
		return nil, storeError("leer calendario", err)
	}
	schedule := make([]models.ScheduleDTO, 0, len(rows))
	for _, r := range rows {
		schedule = append(schedule, models.ToScheduleDTO(r))
	}
	return schedule, nil
}

// SaveSchedule replaces the whole week.
func (s *staffService) SaveSchedule(ctx context.Context, req SaveScheduleRequest) (*SaveScheduleResult, error) {
	if err := requireAdmin(req.UserRole, "Solo el administrador puede guardar el calendario"); err != nil {
		return nil, err
	}
	weekStart := strings.TrimSpace(req.WeekStart)
	if weekStart == "" {
		return nil, apperr.Validation("Semana requerida")
	}

	rows := make([]models.ScheduleEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entryType := e.Type
		if entryType == "" {
			entryType = models.StaffTypePayroll
		}
		rows = append(rows, models.ScheduleEntry{
			WeekStart:  weekStart,
			ShiftID:    models.ShiftID(e.ShiftID),
			Area:       e.Area,
			PersonName: e.PersonName,
			DayOfWeek:  e.DayOfWeek,
			Type:       entryType,
		})
	}

	if err := s.store.ReplaceSchedule(ctx, weekStart, rows); err != nil {
		return nil, storeError("guardar calendario", err)
	}

	s.logger.Info("schedule saved", zap.String("week_start", weekStart), zap.Int("entries", len(rows)))
	return &SaveScheduleResult{Saved: len(rows), WeekStart: weekStart}, nil
}

func (s *staffService) SetDailyGoal(ctx context.Context, actorRole string, goal int64) (int64, error) {
	if err := requireAdmin(actorRole, "Solo ADMIN"); err != nil {
		return 0, err
	}
	if err := s.settings.Set(ctx, models.SettingDailyGoal, strconv.FormatInt(goal, 10)); err != nil {
		return 0, err
	}
	return goal, nil
}
