package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jaytnw/motel-service/internal/apperr"
	"github.com/jaytnw/motel-service/internal/models"
	"github.com/jaytnw/motel-service/internal/repository"
	"go.uber.org/zap"
)

const (
	failureWindow   = 10 * time.Minute
	lockoutDuration = 5 * time.Minute
	maxFailures     = 3
)

var adminPinPattern = regexp.MustCompile(`^\d{4,}$`)

type LoginRequest struct {
	UserName  string
	UserRole  string
	AdminCode string
	UserPin   string
}

type Session struct {
	UserName    string         `json:"userName"`
	UserRole    models.Role    `json:"userRole"`
	ShiftID     models.ShiftID `json:"shiftId"`
	BusinessDay string         `json:"businessDay"`
	ServerNowMs int64          `json:"serverNowMs"`
}

type PinStatus struct {
	UserName string `json:"userName"`
	HasPin   bool   `json:"hasPin"`
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	SetReceptionPin(ctx context.Context, actorRole, targetName, pin string) error
	GetReceptionPins(ctx context.Context, actorRole string) ([]PinStatus, error)
	ChangeAdminPin(ctx context.Context, actorRole, currentPin, newPin string) error
}

type authService struct {
	store            repository.Store
	settings         SettingsService
	clock            *Clock
	defaultAdminCode string
	logger           *zap.Logger
}

func NewAuthService(store repository.Store, settings SettingsService, clock *Clock, defaultAdminCode string, logger *zap.Logger) AuthService {
	return &authService{
		store:            store,
		settings:         settings,
		clock:            clock,
		defaultAdminCode: defaultAdminCode,
		logger:           logger,
	}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	userName := strings.TrimSpace(req.UserName)
	role := models.Role(strings.ToUpper(strings.TrimSpace(req.UserRole)))
	if userName == "" {
		return nil, apperr.Validation("Nombre requerido")
	}
	if role == "" {
		return nil, apperr.Validation("Rol requerido")
	}

	st := s.clock.Stamp()
	if err := s.checkLockout(ctx, userName, role, st.Ms); err != nil {
		return nil, err
	}

	action := models.ActionLogin
	switch role {
	case models.RoleAdmin:
		expected, err := s.adminCode(ctx)
		if err != nil {
			return nil, err
		}
		if req.AdminCode != expected {
			return nil, s.rejectLogin(ctx, userName, role, st.Ms, "PIN de administrador incorrecto.")
		}

	case models.RoleReception:
		storedPin, err := s.receptionPin(ctx, userName)
		if err != nil {
			return nil, err
		}
		if storedPin != "" && req.UserPin != storedPin {
			return nil, s.rejectLogin(ctx, userName, role, st.Ms, "PIN incorrecto.")
		}

		first, err := s.store.FirstShiftLogin(ctx, st.BusinessDay, st.ShiftID, models.RoleReception)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return nil, storeError("leer turno", err)
		case !strings.EqualFold(first.UserName, userName):
			return nil, apperr.Validation("Este turno ya tiene recepcionista: " + first.UserName)
		default:
			action = models.ActionRelogin
		}

	case models.RoleMaid:

	default:
		return nil, apperr.Validation("Rol desconocido")
	}

	entry := &models.ShiftLog{
		TsMs:        st.Ms,
		BusinessDay: st.BusinessDay,
		ShiftID:     st.ShiftID,
		UserRole:    role,
		UserName:    userName,
		Action:      action,
	}
	if err := s.store.InsertShiftLog(ctx, entry); err != nil {
		return nil, storeError("registrar ingreso", err)
	}

	s.logger.Info("login",
		zap.String("user", userName),
		zap.String("role", string(role)),
		zap.String("shift", string(st.ShiftID)),
		zap.String("action", action),
	)

	return &Session{
		UserName:    userName,
		UserRole:    role,
		ShiftID:     st.ShiftID,
		BusinessDay: st.BusinessDay,
		ServerNowMs: st.Ms,
	}, nil
}

// checkLockout blocks a user with maxFailures failures inside failureWindow until
// lockoutDuration has passed since the most recent one.
func (s *authService) checkLockout(ctx context.Context, userName string, role models.Role, nowMs int64) error {
	since := nowMs - failureWindow.Milliseconds()
	fails, err := s.store.ListLoginFailures(ctx, strings.ToLower(userName), role, since)
	if err != nil {
		return storeError("leer intentos", err)
	}
	if len(fails) < maxFailures {
		return nil
	}

	remaining := fails[0].TsMs + lockoutDuration.Milliseconds() - nowMs
	if remaining <= 0 {
		return nil
	}
	minute := time.Minute.Milliseconds()
	wait := (remaining + minute - 1) / minute
	return apperr.Validation(fmt.Sprintf("Demasiados intentos. Espera %d minuto(s).", wait))
}

func (s *authService) rejectLogin(ctx context.Context, userName string, role models.Role, nowMs int64, message string) error {
	failure := &models.LoginFailure{
		TsMs:     nowMs,
		UserName: strings.ToLower(userName),
		UserRole: role,
	}
	if err := s.store.InsertLoginFailure(ctx, failure); err != nil {
		s.logger.Error("failed to record login failure", zap.String("user", userName), zap.Error(err))
	}
	s.logger.Warn("login rejected", zap.String("user", userName), zap.String("role", string(role)))
	return apperr.Validation(message)
}

func (s *authService) adminCode(ctx context.Context) (string, error) {
	return s.settings.Get(ctx, models.SettingAdminCode, s.defaultAdminCode)
}

func (s *authService) receptionPin(ctx context.Context, userName string) (string, error) {
	row, err := s.store.GetReceptionPin(ctx, userName)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", storeError("leer PIN", err)
	}
	return row.Pin, nil
}

func (s *authService) SetReceptionPin(ctx context.Context, actorRole, targetName, pin string) error {
	if err := requireAdmin(actorRole, "Solo ADMIN"); err != nil {
		return err
	}
	targetName = strings.TrimSpace(targetName)
	if targetName == "" {
		return apperr.Validation("Nombre requerido")
	}
	if err := s.store.UpsertReceptionPin(ctx, targetName, strings.TrimSpace(pin)); err != nil {
		return storeError("guardar PIN", err)
	}
	return nil
}

func (s *authService) GetReceptionPins(ctx context.Context, actorRole string) ([]PinStatus, error) {
	if err := requireAdmin(actorRole, "Solo ADMIN"); err != nil {
		return nil, err
	}
	rows, err := s.store.ListReceptionPins(ctx)
	if err != nil {
		return nil, storeError("leer PINs", err)
	}
	pins := make([]PinStatus, 0, len(rows))
	for _, r := range rows {
		pins = append(pins, PinStatus{UserName: r.UserName, HasPin: strings.TrimSpace(r.Pin) != ""})
	}
	return pins, nil
}

func (s *authService) ChangeAdminPin(ctx context.Context, actorRole, currentPin, newPin string) error {
	if err := requireAdmin(actorRole, "Solo ADMIN"); err != nil {
		return err
	}
	expected, err := s.adminCode(ctx)
	if err != nil {
		return err
	}
	if currentPin != expected {
		return apperr.Validation("PIN actual incorrecto")
	}
	if !adminPinPattern.MatchString(newPin) {
		return apperr.Validation("PIN invalido")
	}
	return s.settings.Set(ctx, models.SettingAdminCode, newPin)
}
