package models

import "time"

type Staff struct {
	ID        string `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	Name      string `gorm:"column:name;not null" json:"name"`
	Area      string `gorm:"column:area;not null" json:"area"`
	Type      string `gorm:"column:type;type:varchar(20);not null;default:'nomina'" json:"type"`
	Active    bool   `gorm:"column:active;not null" json:"active"`
	CreatedMs int64  `gorm:"column:created_ms;not null;default:0" json:"created_ms"`
}

func (Staff) TableName() string { return "staff" }

type StaffDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Area   string `json:"area"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

func ToStaffDTO(s Staff) StaffDTO {
	return StaffDTO{ID: s.ID, Name: s.Name, Area: s.Area, Type: s.Type, Active: s.Active}
}

// ScheduleEntry is one cell of a weekly staffing plan. Rows are replaced per week.
type ScheduleEntry struct {
	ID         int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	WeekStart  string  `gorm:"column:week_start;type:varchar(10);not null;index" json:"week_start"`
	ShiftID    ShiftID `gorm:"column:shift_id;type:varchar(10);not null;default:''" json:"shift_id"`
	Area       string  `gorm:"column:area;not null;default:''" json:"area"`
	PersonName string  `gorm:"column:person_name;not null;default:''" json:"person_name"`
	DayOfWeek  string  `gorm:"column:day_of_week;type:varchar(10);not null;default:''" json:"day_of_week"`
	Type       string  `gorm:"column:type;type:varchar(20);not null;default:'nomina'" json:"type"`
}

func (ScheduleEntry) TableName() string { return "schedule" }

type ScheduleDTO struct {
	WeekStart  string  `json:"weekStart"`
	ShiftID    ShiftID `json:"shiftId"`
	Area       string  `json:"area"`
	PersonName string  `json:"personName"`
	DayOfWeek  string  `json:"dayOfWeek"`
	Type       string  `json:"type"`
}

func ToScheduleDTO(e ScheduleEntry) ScheduleDTO {
	return ScheduleDTO{
		WeekStart:  e.WeekStart,
		ShiftID:    e.ShiftID,
		Area:       e.Area,
		PersonName: e.PersonName,
		DayOfWeek:  e.DayOfWeek,
		Type:       e.Type,
	}
}

type Setting struct {
	Key   string `gorm:"column:key;primaryKey;type:varchar(64)" json:"key"`
	Value string `gorm:"column:value;not null;default:''" json:"value"`
}

func (Setting) TableName() string { return "settings" }

type ReceptionPin struct {
	UserName  string    `gorm:"column:user_name;primaryKey;type:varchar(100)" json:"user_name"`
	Pin       string    `gorm:"column:pin;not null;default:''" json:"pin"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ReceptionPin) TableName() string { return "reception_pins" }
