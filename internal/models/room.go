package models

import "time"

type Room struct {
	RoomID                string    `gorm:"column:room_id;primaryKey;type:varchar(20)" json:"room_id"`
	Floor                 int       `gorm:"column:floor;not null;default:0" json:"floor"`
	Category              string    `gorm:"column:category;type:varchar(50);not null;default:''" json:"category"`
	State                 RoomState `gorm:"column:state;type:varchar(20);not null;default:'AVAILABLE'" json:"state"`
	StateSinceMs          int64     `gorm:"column:state_since_ms;not null;default:0" json:"state_since_ms"`
	People                int       `gorm:"column:people;not null;default:0" json:"people"`
	CheckInMs             int64     `gorm:"column:check_in_ms;not null;default:0" json:"check_in_ms"`
	DueMs                 int64     `gorm:"column:due_ms;not null;default:0" json:"due_ms"`
	LastCheckoutMs        int64     `gorm:"column:last_checkout_ms;not null;default:0" json:"last_checkout_ms"`
	NoteMinor             bool      `gorm:"column:note_minor;not null;default:false" json:"note_minor"`
	NoteMinorText         string    `gorm:"column:note_minor_text;not null;default:''" json:"note_minor_text"`
	NoteMinorDateMs       int64     `gorm:"column:note_minor_date_ms;not null;default:0" json:"note_minor_date_ms"`
	Disabled              bool      `gorm:"column:disabled;not null;default:false" json:"disabled"`
	DisabledReason        string    `gorm:"column:disabled_reason;not null;default:''" json:"disabled_reason"`
	DisabledDateMs        int64     `gorm:"column:disabled_date_ms;not null;default:0" json:"disabled_date_ms"`
	ArrivalType           string    `gorm:"column:arrival_type;type:varchar(10);not null;default:''" json:"arrival_type"`
	ArrivalPlate          string    `gorm:"column:arrival_plate;type:varchar(20);not null;default:''" json:"arrival_plate"`
	AlarmSilencedMs       int64     `gorm:"column:alarm_silenced_ms;not null;default:0" json:"alarm_silenced_ms"`
	AlarmSilencedForDueMs int64     `gorm:"column:alarm_silenced_for_due_ms;not null;default:0" json:"alarm_silenced_for_due_ms"`
	CheckoutObs           string    `gorm:"column:checkout_obs;not null;default:''" json:"checkout_obs"`
	ContaminatedSinceMs   int64     `gorm:"column:contaminated_since_ms;not null;default:0" json:"contaminated_since_ms"`
	LastMaidName          string    `gorm:"column:last_maid_name;not null;default:''" json:"last_maid_name"`
	LastMaidDoneMs        int64     `gorm:"column:last_maid_done_ms;not null;default:0" json:"last_maid_done_ms"`
	LastMaidContaminated  bool      `gorm:"column:last_maid_contaminated;not null;default:false" json:"last_maid_contaminated"`
	UpdatedAt             time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Room) TableName() string { return "rooms" }

// RoomDTO is the client-facing room shape.
type RoomDTO struct {
	RoomID                string    `json:"roomId"`
	Floor                 int       `json:"floor"`
	Category              string    `json:"category"`
	State                 RoomState `json:"state"`
	StateSinceMs          int64     `json:"stateSinceMs"`
	People                int       `json:"people"`
	CheckInMs             int64     `json:"checkInMs"`
	DueMs                 int64     `json:"dueMs"`
	LastCheckoutMs        int64     `json:"lastCheckoutMs"`
	NoteMinor             bool      `json:"noteMinor"`
	NoteMinorText         string    `json:"noteMinorText"`
	Disabled              bool      `json:"disabled"`
	DisabledReason        string    `json:"disabledReason"`
	ArrivalType           string    `json:"arrivalType"`
	ArrivalPlate          string    `json:"arrivalPlate"`
	AlarmSilencedMs       int64     `json:"alarmSilencedMs"`
	AlarmSilencedForDueMs int64     `json:"alarmSilencedForDueMs"`
	CheckoutObs           string    `json:"checkoutObs"`
	ContaminatedSinceMs   int64     `json:"contaminatedSinceMs"`
}

func ToRoomDTO(r Room) RoomDTO {
	return RoomDTO{
		RoomID:                r.RoomID,
		Floor:                 r.Floor,
		Category:              r.Category,
		State:                 r.State,
		StateSinceMs:          r.StateSinceMs,
		People:                r.People,
		CheckInMs:             r.CheckInMs,
		DueMs:                 r.DueMs,
		LastCheckoutMs:        r.LastCheckoutMs,
		NoteMinor:             r.NoteMinor,
		NoteMinorText:         r.NoteMinorText,
		Disabled:              r.Disabled,
		DisabledReason:        r.DisabledReason,
		ArrivalType:           r.ArrivalType,
		ArrivalPlate:          r.ArrivalPlate,
		AlarmSilencedMs:       r.AlarmSilencedMs,
		AlarmSilencedForDueMs: r.AlarmSilencedForDueMs,
		CheckoutObs:           r.CheckoutObs,
		ContaminatedSinceMs:   r.ContaminatedSinceMs,
	}
}

func ToRoomDTOs(rooms []Room) []RoomDTO {
	out := make([]RoomDTO, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, ToRoomDTO(r))
	}
	return out
}

// RoomEvent is published after every successful state transition.
type RoomEvent struct {
	RoomID      string    `json:"roomId"`
	FromState   RoomState `json:"fromState"`
	ToState     RoomState `json:"toState"`
	UserName    string    `json:"userName"`
	TsMs        int64     `json:"tsMs"`
	BusinessDay string    `json:"businessDay"`
	ShiftID     ShiftID   `json:"shiftId"`
}
