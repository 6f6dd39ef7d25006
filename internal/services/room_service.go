package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jaytnw/motel-service/internal/apperr"
	"github.com/jaytnw/motel-service/internal/models"
	"github.com/jaytnw/motel-service/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultHistoryLimit = 30

type CheckInRequest struct {
	UserName     string
	RoomID       string
	DurationHrs  int
	People       int
	ArrivalType  string
	ArrivalPlate string
	PayMethod    string
	PaidWith     int64
}

type CheckInResult struct {
	RoomID    string `json:"roomId"`
	Total     int64  `json:"total"`
	Change    int64  `json:"change"`
	CheckInMs int64  `json:"checkInMs"`
	DueMs     int64  `json:"dueMs"`
}

type CheckOutRequest struct {
	UserName    string
	RoomID      string
	CheckoutObs string
}

type CheckOutResult struct {
	RoomID     string `json:"roomId"`
	CheckoutMs int64  `json:"checkoutMs"`
}

type ExtendRequest struct {
	UserName string
	RoomID   string
	ExtraHrs int
}

type ExtendResult struct {
	RoomID    string `json:"roomId"`
	ExtraCost int64  `json:"extraCost"`
	NewDueMs  int64  `json:"newDueMs"`
}

type MinorNoteRequest struct {
	UserName string
	UserRole string
	RoomID   string
	Enabled  bool
	Text     string
}

type DisableRequest struct {
	UserName string
	UserRole string
	RoomID   string
	Disable  bool
	Reason   string
}

type BootstrapResult struct {
	Settings       map[string]string `json:"settings"`
	Rooms          []models.RoomDTO  `json:"rooms"`
	MasterPricing  PricingTable      `json:"masterPricing"`
	ServerNowMs    int64             `json:"serverNowMs"`
	BusinessDay    string            `json:"businessDay"`
	CurrentShiftID models.ShiftID    `json:"currentShiftId"`
	Shifts         []ShiftInfo       `json:"shifts"`
}

type RoomHistoryResult struct {
	RoomID       string                   `json:"roomId"`
	StateHistory []models.StateHistoryDTO `json:"stateHistory"`
	SalesHistory []models.SaleDTO         `json:"salesHistory"`
}

type RoomService interface {
	Bootstrap(ctx context.Context) (*BootstrapResult, error)
	GetRooms(ctx context.Context) ([]models.RoomDTO, error)
	CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResult, error)
	CheckOut(ctx context.Context, req CheckOutRequest) (*CheckOutResult, error)
	ExtendTime(ctx context.Context, req ExtendRequest) (*ExtendResult, error)
	SilenceAlarm(ctx context.Context, roomID string) error
	ClearContaminated(ctx context.Context, roomID, userName string) error
	SetMinorNote(ctx context.Context, req MinorNoteRequest) error
	SetDisabled(ctx context.Context, req DisableRequest) (bool, error)
	RoomHistory(ctx context.Context, roomID string, limit int) (*RoomHistoryResult, error)
}

type roomService struct {
	store    repository.Store
	settings SettingsService
	pricing  PricingTable
	clock    *Clock
	events   EventPublisher
	logger   *zap.Logger
}

func NewRoomService(store repository.Store, settings SettingsService, pricing PricingTable, clock *Clock, events EventPublisher, logger *zap.Logger) RoomService {
	if events == nil {
		events = NoopPublisher()
	}
	return &roomService{
		store:    store,
		settings: settings,
		pricing:  pricing,
		clock:    clock,
		events:   events,
		logger:   logger,
	}
}

func (s *roomService) Bootstrap(ctx context.Context) (*BootstrapResult, error) {
	now := s.clock.Now()

	var (
		settings map[string]string
		rooms    []models.Room
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		settings, err = s.settings.All(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rooms, err = s.store.ListRooms(gctx)
		if err != nil {
			return storeError("leer habitaciones", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &BootstrapResult{
		Settings:       settings,
		Rooms:          models.ToRoomDTOs(rooms),
		MasterPricing:  s.pricing,
		ServerNowMs:    now.UnixMilli(),
		BusinessDay:    BusinessDay(now),
		CurrentShiftID: ShiftOf(now),
		Shifts:         ShiftLabels,
	}, nil
}

func (s *roomService) GetRooms(ctx context.Context) ([]models.RoomDTO, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, storeError("leer habitaciones", err)
	}
	return models.ToRoomDTOs(rooms), nil
}

func (s *roomService) CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResult, error) {
	userName := strings.TrimSpace(req.UserName)
	roomID := strings.TrimSpace(req.RoomID)
	if userName == "" {
		return nil, apperr.Validation("Nombre requerido")
	}
	if roomID == "" {
		return nil, apperr.Validation("roomId requerido")
	}
	if !validStayDuration(req.DurationHrs) {
		return nil, apperr.Validation("Duracion invalida (3/6/8/12)")
	}

	room, err := loadRoom(ctx, s.store, roomID, "Habitacion no existe: "+roomID)
	if err != nil {
		return nil, err
	}
	if room.Disabled {
		return nil, apperr.Validation("Habitacion deshabilitada")
	}
	if room.State != models.RoomAvailable {
		return nil, apperr.Validation(fmt.Sprintf("Hab %s no esta disponible (estado: %s)", roomID, room.State))
	}

	st := s.clock.Stamp()
	cfg := s.pricing.For(room.Category)

	people := req.People
	if people == 0 {
		people = cfg.Included
	}
	people = max(1, people)

	basePrice := CalcPrice(req.DurationHrs, cfg)
	extraPeople := max(0, people-cfg.Included)
	extraPeopleValue := int64(extraPeople) * cfg.ExtraPerson
	total := basePrice + extraPeopleValue
	dueMs := st.Ms + int64(req.DurationHrs)*time.Hour.Milliseconds()

	arrivalType := strings.ToUpper(strings.TrimSpace(req.ArrivalType))
	if arrivalType == "" {
		arrivalType = models.ArrivalWalk
	}
	arrivalPlate := ""
	if arrivalType == models.ArrivalCar {
		arrivalPlate = strings.ToUpper(strings.TrimSpace(req.ArrivalPlate))
	}
	payMethod := strings.ToUpper(strings.TrimSpace(req.PayMethod))
	if payMethod == "" {
		payMethod = models.PayCash
	}
	var change int64
	if payMethod == models.PayCash && req.PaidWith >= total {
		change = req.PaidWith - total
	}

	err = s.store.TransitionRoom(ctx, roomID, models.RoomAvailable, repository.Fields{
		"state":                     models.RoomOccupied,
		"state_since_ms":            st.Ms,
		"people":                    people,
		"check_in_ms":               st.Ms,
		"due_ms":                    dueMs,
		"arrival_type":              arrivalType,
		"arrival_plate":             arrivalPlate,
		"alarm_silenced_ms":         0,
		"alarm_silenced_for_due_ms": 0,
		"checkout_obs":              "",
		"contaminated_since_ms":     0,
	})
	if err != nil {
		return nil, transitionError(roomID, err)
	}

	sale := &models.Sale{
		TsMs:             st.Ms,
		BusinessDay:      st.BusinessDay,
		ShiftID:          st.ShiftID,
		UserRole:         models.RoleReception,
		UserName:         userName,
		Type:             models.SaleTypeSale,
		RoomID:           roomID,
		Category:         room.Category,
		DurationHrs:      req.DurationHrs,
		BasePrice:        basePrice,
		People:           people,
		IncludedPeople:   cfg.Included,
		ExtraPeople:      extraPeople,
		ExtraPeopleValue: extraPeopleValue,
		Total:            total,
		ArrivalType:      arrivalType,
		ArrivalPlate:     arrivalPlate,
		PayMethod:        payMethod,
		PaidWith:         req.PaidWith,
		ChangeGiven:      change,
		CheckInMs:        st.Ms,
		DueMs:            dueMs,
	}
	if err := s.store.InsertSale(ctx, sale); err != nil {
		return nil, storeError("registrar venta", err)
	}

	history := &models.StateHistory{
		TsMs:        st.Ms,
		BusinessDay: st.BusinessDay,
		ShiftID:     st.ShiftID,
		UserRole:    models.RoleReception,
		UserName:    userName,
		RoomID:      roomID,
		FromState:   models.RoomAvailable,
		ToState:     models.RoomOccupied,
		People:      people,
		MetaJSON: models.EncodeMeta(models.CheckInMeta{
			DurationHrs:  req.DurationHrs,
			BasePrice:    basePrice,
			Total:        total,
			DueMs:        dueMs,
			ArrivalType:  arrivalType,
			ArrivalPlate: arrivalPlate,
			PayMethod:    payMethod,
			PaidWith:     req.PaidWith,
			ChangeGiven:  change,
			CheckInMs:    st.Ms,
		}),
	}
	if err := s.store.InsertStateHistory(ctx, history); err != nil {
		return nil, storeError("registrar historial", err)
	}

	s.logger.Info("check-in",
		zap.String("room_id", roomID),
		zap.Int("duration_hrs", req.DurationHrs),
		zap.Int64("total", total),
	)
	publishTransition(ctx, s.events, s.logger, roomEvent(roomID, models.RoomAvailable, models.RoomOccupied, userName, st))

	return &CheckInResult{
		RoomID:    roomID,
		Total:     total,
		Change:    change,
		CheckInMs: st.Ms,
		DueMs:     dueMs,
	}, nil
}

func (s *roomService) CheckOut(ctx context.Context, req CheckOutRequest) (*CheckOutResult, error) {
	userName := strings.TrimSpace(req.UserName)
	roomID := strings.TrimSpace(req.RoomID)
	obs := strings.TrimSpace(req.CheckoutObs)
	if roomID == "" {
		return nil, apperr.Validation("roomId requerido")
	}

	room, err := loadRoom(ctx, s.store, roomID, "Habitacion no existe")
	if err != nil {
		return nil, err
	}
	if room.State != models.RoomOccupied {
		return nil, apperr.Validation("Solo checkout si esta OCUPADA")
	}

	st := s.clock.Stamp()
	err = s.store.TransitionRoom(ctx, roomID, models.RoomOccupied, repository.Fields{
		"state":                     models.RoomDirty,
		"state_since_ms":            st.Ms,
		"people":                    0,
		"due_ms":                    0,
		"last_checkout_ms":          st.Ms,
		"arrival_type":              "",
		"arrival_plate":             "",
		"alarm_silenced_ms":         0,
		"alarm_silenced_for_due_ms": 0,
		"checkout_obs":              obs,
		"contaminated_since_ms":     0,
	})
	if err != nil {
		return nil, transitionError(roomID, err)
	}

	history := &models.StateHistory{
		TsMs:        st.Ms,
		BusinessDay: st.BusinessDay,
		ShiftID:     st.ShiftID,
		UserRole:    models.RoleReception,
		UserName:    userName,
		RoomID:      roomID,
		FromState:   models.RoomOccupied,
		ToState:     models.RoomDirty,
		MetaJSON:    models.EncodeMeta(models.CheckOutMeta{LastCheckoutMs: st.Ms, CheckoutObs: obs}),
	}
	if err := s.store.InsertStateHistory(ctx, history); err != nil {
		return nil, storeError("registrar historial", err)
	}

	publishTransition(ctx, s.events, s.logger, roomEvent(roomID, models.RoomOccupied, models.RoomDirty, userName, st))

	return &CheckOutResult{RoomID: roomID, CheckoutMs: st.Ms}, nil
}

func (s *roomService) ExtendTime(ctx context.Context, req ExtendRequest) (*ExtendResult, error) {
	userName := strings.TrimSpace(req.UserName)
	roomID := strings.TrimSpace(req.RoomID)
	if !validExtension(req.ExtraHrs) {
		return nil, apperr.Validation("Horas extra invalidas (1-6)")
	}

	room, err := loadRoom(ctx, s.store, roomID, "Habitacion no existe")
	if err != nil {
		return nil, err
	}
	if room.State != models.RoomOccupied {
		return nil, apperr.Validation("Solo si esta OCUPADA")
	}

	st := s.clock.Stamp()
	cfg := s.pricing.For(room.Category)
	extraCost := int64(req.ExtraHrs) * cfg.ExtraHour
	baseDue := room.DueMs
	if baseDue == 0 {
		baseDue = st.Ms
	}
	newDueMs := baseDue + int64(req.ExtraHrs)*time.Hour.Milliseconds()

	err = s.store.TransitionRoom(ctx, roomID, models.RoomOccupied, repository.Fields{
		"due_ms":                    newDueMs,
		"alarm_silenced_ms":         0,
		"alarm_silenced_for_due_ms": 0,
	})
	if err != nil {
		return nil, transitionError(roomID, err)
	}

	sale := &models.Sale{
		TsMs:            st.Ms,
		BusinessDay:     st.BusinessDay,
		ShiftID:         st.ShiftID,
		UserRole:        models.RoleReception,
		UserName:        userName,
		Type:            models.SaleTypeExtension,
		RoomID:          roomID,
		Category:        room.Category,
		DurationHrs:     req.ExtraHrs,
		BasePrice:       extraCost,
		People:          room.People,
		ExtraHours:      req.ExtraHrs,
		ExtraHoursValue: extraCost,
		Total:           extraCost,
		PayMethod:       models.PayCash,
		CheckInMs:       room.CheckInMs,
		DueMs:           newDueMs,
	}
	if err := s.store.InsertSale(ctx, sale); err != nil {
		return nil, storeError("registrar venta", err)
	}

	return &ExtendResult{RoomID: roomID, ExtraCost: extraCost, NewDueMs: newDueMs}, nil
}

// SilenceAlarm records the due time it silenced so a later extension re-arms the alarm.
func (s *roomService) SilenceAlarm(ctx context.Context, roomID string) error {
	roomID = strings.TrimSpace(roomID)
	room, err := loadRoom(ctx, s.store, roomID, "Habitacion no existe")
	if err != nil {
		return err
	}

	err = s.store.UpdateRoom(ctx, roomID, repository.Fields{
		"alarm_silenced_ms":         s.clock.Now().UnixMilli(),
		"alarm_silenced_for_due_ms": room.DueMs,
	})
	if err != nil {
		return storeError("actualizar habitacion", err)
	}
	return nil
}

func (s *roomService) ClearContaminated(ctx context.Context, roomID, userName string) error {
	roomID = strings.TrimSpace(roomID)
	room, err := loadRoom(ctx, s.store, roomID, "Habitacion no existe")
	if err != nil {
		return err
	}
	if room.State != models.RoomContaminated {
		return apperr.Validation("Solo si esta CONTAMINADA")
	}

	st := s.clock.Stamp()
	err = s.store.TransitionRoom(ctx, roomID, models.RoomContaminated, repository.Fields{
		"state":                 models.RoomAvailable,
		"state_since_ms":        st.Ms,
		"contaminated_since_ms": 0,
	})
	if err != nil {
		return transitionError(roomID, err)
	}

	history := &models.StateHistory{
		TsMs:        st.Ms,
		BusinessDay: st.BusinessDay,
		ShiftID:     st.ShiftID,
		UserRole:    models.RoleReception,
		UserName:    userName,
		RoomID:      roomID,
		FromState:   models.RoomContaminated,
		ToState:     models.RoomAvailable,
		MetaJSON:    models.EncodeMeta(models.ClearContaminatedMeta{Action: "clearContaminated"}),
	}
	if err := s.store.InsertStateHistory(ctx, history); err != nil {
		return storeError("registrar historial", err)
	}

	publishTransition(ctx, s.events, s.logger, roomEvent(roomID, models.RoomContaminated, models.RoomAvailable, userName, st))
	return nil
}

func (s *roomService) SetMinorNote(ctx context.Context, req MinorNoteRequest) error {
	roomID := strings.TrimSpace(req.RoomID)
	text := strings.TrimSpace(req.Text)
	if _, err := loadRoom(ctx, s.store, roomID, "Habitacion no existe"); err != nil {
		return err
	}

	st := s.clock.Stamp()
	fields := repository.Fields{"note_minor": req.Enabled, "note_minor_date_ms": 0, "note_minor_text": ""}
	entry := &models.Maintenance{
		TsMs:        st.Ms,
		BusinessDay: st.BusinessDay,
		ShiftID:     st.ShiftID,
		UserRole:    models.RoleReception,
		UserName:    req.UserName,
		RoomID:      roomID,
		Type:        models.MaintenanceResolveMinor,
		Text:        "RESUELTO",
	}
	if role := strings.TrimSpace(req.UserRole); role != "" {
		entry.UserRole = models.Role(role)
	}
	if req.Enabled {
		fields["note_minor_date_ms"] = st.Ms
		fields["note_minor_text"] = text
		entry.Type = models.MaintenanceMinor
		entry.Text = text
	}

	if err := s.store.UpdateRoom(ctx, roomID, fields); err != nil {
		return storeError("actualizar habitacion", err)
	}
	if err := s.store.InsertMaintenance(ctx, entry); err != nil {
		return storeError("registrar mantenimiento", err)
	}
	return nil
}

func (s *roomService) SetDisabled(ctx context.Context, req DisableRequest) (bool, error) {
	if err := requireAdmin(req.UserRole, "Solo ADMIN"); err != nil {
		return false, err
	}
	roomID := strings.TrimSpace(req.RoomID)
	reason := strings.TrimSpace(req.Reason)
	if req.Disable && len([]rune(reason)) < 3 {
		return false, apperr.Validation("Motivo obligatorio")
	}
	if _, err := loadRoom(ctx, s.store, roomID, "Habitacion no existe"); err != nil {
		return false, err
	}

	st := s.clock.Stamp()
	userName := req.UserName
	if userName == "" {
		userName = string(models.RoleAdmin)
	}
	fields := repository.Fields{"disabled": req.Disable, "disabled_date_ms": 0, "disabled_reason": ""}
	entry := &models.Maintenance{
		TsMs:        st.Ms,
		BusinessDay: st.BusinessDay,
		ShiftID:     st.ShiftID,
		UserRole:    models.RoleAdmin,
		UserName:    userName,
		RoomID:      roomID,
		Type:        models.MaintenanceEnable,
		Text:        "HABILITADA",
	}
	if req.Disable {
		fields["disabled_date_ms"] = st.Ms
		fields["disabled_reason"] = reason
		entry.Type = models.MaintenanceDisable
		entry.Text = reason
	}

	if err := s.store.UpdateRoom(ctx, roomID, fields); err != nil {
		return false, storeError("actualizar habitacion", err)
	}
	if err := s.store.InsertMaintenance(ctx, entry); err != nil {
		return false, storeError("registrar mantenimiento", err)
	}

	s.logger.Info("room availability changed", zap.String("room_id", roomID), zap.Bool("disabled", req.Disable))
	return req.Disable, nil
}

func (s *roomService) RoomHistory(ctx context.Context, roomID string, limit int) (*RoomHistoryResult, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, apperr.Validation("roomId requerido")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var (
		history []models.StateHistory
		sales   []models.Sale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = s.store.ListStateHistory(gctx, repository.HistoryQuery{RoomID: roomID, Limit: limit, Newest: true})
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.store.ListSales(gctx, repository.SalesQuery{RoomID: roomID, Type: models.SaleTypeSale, Limit: limit, Newest: true})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError("leer historial", err)
	}

	result := &RoomHistoryResult{
		RoomID:       roomID,
		StateHistory: make([]models.StateHistoryDTO, 0, len(history)),
		SalesHistory: make([]models.SaleDTO, 0, len(sales)),
	}
	for _, h := range history {
		result.StateHistory = append(result.StateHistory, models.ToStateHistoryDTO(h))
	}
	for _, sale := range sales {
		result.SalesHistory = append(result.SalesHistory, models.ToSaleDTO(sale))
	}
	return result, nil
}
