package models

type StateHistory struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	TsMs        int64     `gorm:"column:ts_ms;not null;index" json:"ts_ms"`
	BusinessDay string    `gorm:"column:business_day;type:varchar(10);not null;index" json:"business_day"`
	ShiftID     ShiftID   `gorm:"column:shift_id;type:varchar(10);not null" json:"shift_id"`
	UserRole    Role      `gorm:"column:user_role;type:varchar(20);not null;default:''" json:"user_role"`
	UserName    string    `gorm:"column:user_name;not null;default:''" json:"user_name"`
	RoomID      string    `gorm:"column:room_id;type:varchar(20);not null;index" json:"room_id"`
	FromState   RoomState `gorm:"column:from_state;type:varchar(20);not null" json:"from_state"`
	ToState     RoomState `gorm:"column:to_state;type:varchar(20);not null" json:"to_state"`
	People      int       `gorm:"column:people;not null;default:0" json:"people"`
	MetaJSON    string    `gorm:"column:meta_json;type:text;not null;default:'{}'" json:"meta_json"`
}

func (StateHistory) TableName() string { return "state_history" }

// Meta decodes the stored blob into the typed metadata for this transition.
func (h StateHistory) Meta() TransitionMeta {
	return DecodeMeta(h.FromState, h.ToState, h.MetaJSON)
}

type StateHistoryDTO struct {
	TsMs        int64          `json:"tsMs"`
	BusinessDay string         `json:"businessDay"`
	FromState   RoomState      `json:"fromState"`
	ToState     RoomState      `json:"toState"`
	UserName    string         `json:"userName"`
	Meta        TransitionMeta `json:"meta"`
}

func ToStateHistoryDTO(h StateHistory) StateHistoryDTO {
	return StateHistoryDTO{
		TsMs:        h.TsMs,
		BusinessDay: h.BusinessDay,
		FromState:   h.FromState,
		ToState:     h.ToState,
		UserName:    h.UserName,
		Meta:        h.Meta(),
	}
}

type MaidLog struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	TsMs        int64   `gorm:"column:ts_ms;not null" json:"ts_ms"`
	BusinessDay string  `gorm:"column:business_day;type:varchar(10);not null;index" json:"business_day"`
	ShiftID     ShiftID `gorm:"column:shift_id;type:varchar(10);not null" json:"shift_id"`
	MaidName    string  `gorm:"column:maid_name;not null" json:"maid_name"`
	RoomID      string  `gorm:"column:room_id;type:varchar(20);not null;default:''" json:"room_id"`
	Action      string  `gorm:"column:action;type:varchar(30);not null;default:''" json:"action"`
	State       string  `gorm:"column:state;type:varchar(20);not null;default:''" json:"state"`
	Note        string  `gorm:"column:note;not null;default:''" json:"note"`
	ExitMs      int64   `gorm:"column:exit_ms;not null;default:0" json:"exit_ms"`
}

func (MaidLog) TableName() string { return "maid_log" }

type MaidLogDTO struct {
	TsMs        int64   `json:"tsMs"`
	BusinessDay string  `json:"businessDay"`
	ShiftID     ShiftID `json:"shiftId"`
	MaidName    string  `json:"maidName"`
	RoomID      string  `json:"roomId"`
	Action      string  `json:"action"`
	State       string  `json:"state"`
	Note        string  `json:"note"`
	ExitMs      int64   `json:"exitMs"`
}

func ToMaidLogDTO(m MaidLog) MaidLogDTO {
	return MaidLogDTO{
		TsMs:        m.TsMs,
		BusinessDay: m.BusinessDay,
		ShiftID:     m.ShiftID,
		MaidName:    m.MaidName,
		RoomID:      m.RoomID,
		Action:      m.Action,
		State:       m.State,
		Note:        m.Note,
		ExitMs:      m.ExitMs,
	}
}

func ToMaidLogDTOs(logs []MaidLog) []MaidLogDTO {
	out := make([]MaidLogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, ToMaidLogDTO(l))
	}
	return out
}

// ShiftLog is both the login audit trail and the one-receptionist-per-shift record.
type ShiftLog struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	TsMs        int64   `gorm:"column:ts_ms;not null" json:"ts_ms"`
	BusinessDay string  `gorm:"column:business_day;type:varchar(10);not null;index:idx_shift_log_day_shift" json:"business_day"`
	ShiftID     ShiftID `gorm:"column:shift_id;type:varchar(10);not null;index:idx_shift_log_day_shift" json:"shift_id"`
	UserRole    Role    `gorm:"column:user_role;type:varchar(20);not null" json:"user_role"`
	UserName    string  `gorm:"column:user_name;not null" json:"user_name"`
	Action      string  `gorm:"column:action;type:varchar(20);not null" json:"action"`
}

func (ShiftLog) TableName() string { return "shift_log" }

type LoginFailure struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	TsMs     int64  `gorm:"column:ts_ms;not null;index" json:"ts_ms"`
	UserName string `gorm:"column:user_name;not null;index" json:"user_name"`
	UserRole Role   `gorm:"column:user_role;type:varchar(20);not null" json:"user_role"`
	IP       string `gorm:"column:ip;not null;default:''" json:"ip"`
}

func (LoginFailure) TableName() string { return "login_failures" }

type Maintenance struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	TsMs        int64   `gorm:"column:ts_ms;not null" json:"ts_ms"`
	BusinessDay string  `gorm:"column:business_day;type:varchar(10);not null" json:"business_day"`
	ShiftID     ShiftID `gorm:"column:shift_id;type:varchar(10);not null" json:"shift_id"`
	UserRole    Role    `gorm:"column:user_role;type:varchar(20);not null;default:''" json:"user_role"`
	UserName    string  `gorm:"column:user_name;not null;default:''" json:"user_name"`
	RoomID      string  `gorm:"column:room_id;type:varchar(20);not null" json:"room_id"`
	Type        string  `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Text        string  `gorm:"column:text;not null;default:''" json:"text"`
}

func (Maintenance) TableName() string { return "maintenance" }

type ShiftNote struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	TsMs        int64   `gorm:"column:ts_ms;not null" json:"ts_ms"`
	BusinessDay string  `gorm:"column:business_day;type:varchar(10);not null;index" json:"business_day"`
	ShiftID     ShiftID `gorm:"column:shift_id;type:varchar(10);not null" json:"shift_id"`
	UserRole    Role    `gorm:"column:user_role;type:varchar(20);not null;default:''" json:"user_role"`
	UserName    string  `gorm:"column:user_name;not null;default:''" json:"user_name"`
	Note        string  `gorm:"column:note;type:text;not null;default:''" json:"note"`
}

func (ShiftNote) TableName() string { return "shift_notes" }

type ShiftNoteDTO struct {
	TsMs        int64   `json:"tsMs"`
	BusinessDay string  `json:"businessDay"`
	ShiftID     ShiftID `json:"shiftId"`
	UserRole    Role    `json:"userRole"`
	UserName    string  `json:"userName"`
	Note        string  `json:"note"`
}

func ToShiftNoteDTO(n ShiftNote) ShiftNoteDTO {
	return ShiftNoteDTO{
		TsMs:        n.TsMs,
		BusinessDay: n.BusinessDay,
		ShiftID:     n.ShiftID,
		UserRole:    n.UserRole,
		UserName:    n.UserName,
		Note:        n.Note,
	}
}
