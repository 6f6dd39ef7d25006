package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jaytnw/motel-service/internal/apperr"
	"github.com/jaytnw/motel-service/internal/models"
	"github.com/jaytnw/motel-service/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type MaidFinishRequest struct {
	RoomID      string
	MaidName    string
	ResultState string
}

type MaidFinishResult struct {
	RoomID    string `json:"roomId"`
	DirtyMins int64  `json:"dirtyMins"`
}

type MaidActionRequest struct {
	MaidName string
	RoomID   string
	Action   string
	State    string
	Note     string
}

type ActiveMaid struct {
	UserName string `json:"userName"`
	LoginMs  int64  `json:"loginMs"`
}

type DirtyRoom struct {
	RoomID         string `json:"roomId"`
	Category       string `json:"category"`
	LastCheckoutMs int64  `json:"lastCheckoutMs"`
	WaitingMins    int64  `json:"waitingMins"`
}

type ContaminatedRoom struct {
	RoomID              string `json:"roomId"`
	Category            string `json:"category"`
	ContaminatedSinceMs int64  `json:"contaminatedSinceMs"`
	WaitingMins         int64  `json:"waitingMins"`
}

type MaidShiftStat struct {
	MaidName     string `json:"maidName"`
	TotalRooms   int    `json:"totalRooms"`
	Contaminated int    `json:"contaminated"`
	AvgMins      int64  `json:"avgMins"`
}

type MaidPanel struct {
	BizDay            string                             `json:"bizDay"`
	ServerShift       models.ShiftID                     `json:"serverShift"`
	ActiveMaids       []ActiveMaid                       `json:"activeMaids"`
	DirtyRooms        []DirtyRoom                        `json:"dirtyRooms"`
	ContaminatedRooms []ContaminatedRoom                 `json:"contaminatedRooms"`
	ShiftReport       map[models.ShiftID][]MaidShiftStat `json:"shiftReport"`
	ServerNowMs       int64                              `json:"serverNowMs"`
	MaidLogs          []models.MaidLogDTO                `json:"maidLogs"`
}

type HousekeepingService interface {
	MaidFinish(ctx context.Context, req MaidFinishRequest) (*MaidFinishResult, error)
	MaidLogAction(ctx context.Context, req MaidActionRequest) error
	MaidMarkExit(ctx context.Context, maidName, roomID string) (int64, error)
	GetMaidLog(ctx context.Context, businessDay string) ([]models.MaidLogDTO, error)
	MaidPanel(ctx context.Context, businessDay string) (*MaidPanel, error)
}

type housekeepingService struct {
	store  repository.Store
	clock  *Clock
	events EventPublisher
	logger *zap.Logger
}

func NewHousekeepingService(store repository.Store, clock *Clock, events EventPublisher, logger *zap.Logger) HousekeepingService {
	if events == nil {
		events = NoopPublisher()
	}
	return &housekeepingService{
		store:  store,
		clock:  clock,
		events: events,
		logger: logger,
	}
}

func minutesBetween(fromMs, toMs int64) int64 {
	return int64(math.Round(float64(toMs-fromMs) / float64(time.Minute.Milliseconds())))
}

func (s *housekeepingService) MaidFinish(ctx context.Context, req MaidFinishRequest) (*MaidFinishResult, error) {
	roomID := strings.TrimSpace(req.RoomID)
	maidName := strings.TrimSpace(req.MaidName)
	result := models.RoomState(req.ResultState)
	if result == "" {
		result = models.RoomAvailable
	}
	if result != models.RoomAvailable && result != models.RoomContaminated {
		return nil, apperr.Validation("Estado invalido")
	}

	room, err := loadRoom(ctx, s.store, roomID, "Habitacion no existe")
	if err != nil {
		return nil, err
	}
	if room.State != models.RoomDirty {
		return nil, apperr.Validation("Hab debe estar SUCIA")
	}

	st := s.clock.Stamp()
	contaminated := result == models.RoomContaminated
	var dirtyMins int64
	if room.LastCheckoutMs != 0 {
		dirtyMins = max(0, minutesBetween(room.LastCheckoutMs, st.Ms))
	}
	var contaminatedSince int64
	if contaminated {
		contaminatedSince = st.Ms
	}

	err = s.store.TransitionRoom(ctx, roomID, models.RoomDirty, repository.Fields{
		"state":                  result,
		"state_since_ms":         st.Ms,
		"last_maid_name":         maidName,
		"last_maid_done_ms":      st.Ms,
		"last_maid_contaminated": contaminated,
		"contaminated_since_ms":  contaminatedSince,
	})
	if err != nil {
		return nil, transitionError(roomID, err)
	}

	history := &models.StateHistory{
		TsMs:        st.Ms,
		BusinessDay: st.BusinessDay,
		ShiftID:     st.ShiftID,
		UserRole:    models.RoleMaid,
		UserName:    maidName,
		RoomID:      roomID,
		FromState:   models.RoomDirty,
		ToState:     result,
		MetaJSON: models.EncodeMeta(models.MaidFinishMeta{
			MaidName:       maidName,
			LastCheckoutMs: room.LastCheckoutMs,
			MaidDoneMs:     st.Ms,
			DirtyMins:      dirtyMins,
			Contaminated:   contaminated,
		}),
	}
	if err := s.store.InsertStateHistory(ctx, history); err != nil {
		return nil, storeError("registrar historial", err)
	}

	logEntry := &models.MaidLog{
		TsMs:        st.Ms,
		BusinessDay: st.BusinessDay,
		ShiftID:     st.ShiftID,
		MaidName:    maidName,
		RoomID:      roomID,
		Action:      models.ActionFinish,
		State:       string(result),
		ExitMs:      st.Ms,
	}
	if err := s.store.InsertMaidLog(ctx, logEntry); err != nil {
		return nil, storeError("registrar bitacora", err)
	}

	publishTransition(ctx, s.events, s.logger, roomEvent(roomID, models.RoomDirty, result, maidName, st))

	return &MaidFinishResult{RoomID: roomID, DirtyMins: dirtyMins}, nil
}

func (s *housekeepingService) MaidLogAction(ctx context.Context, req MaidActionRequest) error {
	maidName := strings.TrimSpace(req.MaidName)
	if maidName == "" {
		return apperr.Validation("Nombre requerido")
	}

	st := s.clock.Stamp()
	entry := &models.MaidLog{
		TsMs:        st.Ms,
		BusinessDay: st.BusinessDay,
		ShiftID:     st.ShiftID,
		MaidName:    maidName,
		RoomID:      req.RoomID,
		Action:      req.Action,
		State:       req.State,
		Note:        req.Note,
	}
	if err := s.store.InsertMaidLog(ctx, entry); err != nil {
		return storeError("registrar bitacora", err)
	}
	return nil
}

// MaidMarkExit closes every open log row of the maid for the room today.
func (s *housekeepingService) MaidMarkExit(ctx context.Context, maidName, roomID string) (int64, error) {
	st := s.clock.Stamp()
	err := s.store.CloseMaidLogs(ctx, strings.TrimSpace(maidName), strings.TrimSpace(roomID), st.BusinessDay, st.Ms)
	if err != nil {
		return 0, storeError("registrar salida", err)
	}
	return st.Ms, nil
}

func (s *housekeepingService) GetMaidLog(ctx context.Context, businessDay string) ([]models.MaidLogDTO, error) {
	logs, err := s.store.ListMaidLogs(ctx, s.clock.DayOrToday(businessDay))
	if err != nil {
		return nil, storeError("leer bitacora", err)
	}
	return models.ToMaidLogDTOs(logs), nil
}

func (s *housekeepingService) MaidPanel(ctx context.Context, businessDay string) (*MaidPanel, error) {
	now := s.clock.Now()
	nowMs := now.UnixMilli()
	day := s.clock.DayOrToday(businessDay)
	shift := ShiftOf(now)

	var (
		rooms    []models.Room
		history  []models.StateHistory
		maidLogs []models.MaidLog
		logins   []models.ShiftLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rooms, err = s.store.ListRooms(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.store.ListStateHistory(gctx, repository.HistoryQuery{BusinessDay: day})
		return err
	})
	g.Go(func() error {
		var err error
		maidLogs, err = s.store.ListMaidLogs(gctx, day)
		return err
	})
	g.Go(func() error {
		var err error
		logins, err = s.store.ListShiftLogs(gctx, repository.ShiftLogQuery{
			BusinessDay: day,
			ShiftID:     shift,
			UserRole:    models.RoleMaid,
			Actions:     []string{models.ActionLogin, models.ActionRelogin},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError("leer panel de camareras", err)
	}

	sort.SliceStable(rooms, func(i, j int) bool { return rooms[i].RoomID < rooms[j].RoomID })

	return &MaidPanel{
		BizDay:            day,
		ServerShift:       shift,
		ActiveMaids:       activeMaids(logins),
		DirtyRooms:        dirtyRooms(rooms, nowMs),
		ContaminatedRooms: contaminatedRooms(rooms, nowMs),
		ShiftReport:       shiftReport(history),
		ServerNowMs:       nowMs,
		MaidLogs:          models.ToMaidLogDTOs(maidLogs),
	}, nil
}

// activeMaids keeps each maid's earliest login, in order of first appearance.
func activeMaids(logins []models.ShiftLog) []ActiveMaid {
	out := []ActiveMaid{}
	index := map[string]int{}
	for _, l := range logins {
		i, ok := index[l.UserName]
		if !ok {
			index[l.UserName] = len(out)
			out = append(out, ActiveMaid{UserName: l.UserName, LoginMs: l.TsMs})
			continue
		}
		if l.TsMs < out[i].LoginMs {
			out[i].LoginMs = l.TsMs
		}
	}
	return out
}

func dirtyRooms(rooms []models.Room, nowMs int64) []DirtyRoom {
	out := []DirtyRoom{}
	for _, r := range rooms {
		if r.State != models.RoomDirty {
			continue
		}
		var waiting int64
		if r.LastCheckoutMs != 0 {
			waiting = minutesBetween(r.LastCheckoutMs, nowMs)
		}
		out = append(out, DirtyRoom{
			RoomID:         r.RoomID,
			Category:       r.Category,
			LastCheckoutMs: r.LastCheckoutMs,
			WaitingMins:    waiting,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WaitingMins > out[j].WaitingMins })
	return out
}

func contaminatedRooms(rooms []models.Room, nowMs int64) []ContaminatedRoom {
	out := []ContaminatedRoom{}
	for _, r := range rooms {
		if r.State != models.RoomContaminated {
			continue
		}
		since := r.ContaminatedSinceMs
		if since == 0 {
			since = r.StateSinceMs
		}
		var waiting int64
		if since != 0 {
			waiting = minutesBetween(since, nowMs)
		}
		out = append(out, ContaminatedRoom{
			RoomID:              r.RoomID,
			Category:            r.Category,
			ContaminatedSinceMs: since,
			WaitingMins:         waiting,
		})
	}
	return out
}

type maidTally struct {
	name         string
	rooms        int
	contaminated int
	totalMins    int64
}

// shiftReport replays the day's cleaning transitions and credits each to the maid that did it.
// Rows with an unknown shift id are counted under SHIFT_1.
func shiftReport(history []models.StateHistory) map[models.ShiftID][]MaidShiftStat {
	tallies := map[models.ShiftID][]*maidTally{}
	index := map[models.ShiftID]map[string]*maidTally{}
	for _, sid := range models.Shifts {
		index[sid] = map[string]*maidTally{}
	}

	for _, h := range history {
		if h.FromState != models.RoomDirty {
			continue
		}
		if h.ToState != models.RoomAvailable && h.ToState != models.RoomContaminated {
			continue
		}

		var dirtyMins int64
		maidName := ""
		if meta, ok := h.Meta().(models.MaidFinishMeta); ok {
			maidName = meta.MaidName
			dirtyMins = meta.DirtyMins
		}
		if maidName == "" {
			maidName = h.UserName
		}
		if maidName == "" {
			continue
		}

		sid := h.ShiftID
		if !sid.Valid() {
			sid = models.Shift1
		}
		t, ok := index[sid][maidName]
		if !ok {
			t = &maidTally{name: maidName}
			index[sid][maidName] = t
			tallies[sid] = append(tallies[sid], t)
		}
		t.rooms++
		t.totalMins += dirtyMins
		if h.ToState == models.RoomContaminated {
			t.contaminated++
		}
	}

	report := make(map[models.ShiftID][]MaidShiftStat, len(models.Shifts))
	for _, sid := range models.Shifts {
		stats := make([]MaidShiftStat, 0, len(tallies[sid]))
		for _, t := range tallies[sid] {
			var avg int64
			if t.rooms > 0 {
				avg = int64(math.Round(float64(t.totalMins) / float64(t.rooms)))
			}
			stats = append(stats, MaidShiftStat{
				MaidName:     t.name,
				TotalRooms:   t.rooms,
				Contaminated: t.contaminated,
				AvgMins:      avg,
			})
		}
		report[sid] = stats
	}
	return report
}
