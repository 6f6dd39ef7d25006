package models

import "encoding/json"

const (
	MetaKindCheckIn           = "checkIn"
	MetaKindCheckOut          = "checkOut"
	MetaKindMaidFinish        = "maidFinish"
	MetaKindClearContaminated = "clearContaminated"
	MetaKindGeneric           = "generic"
)

// TransitionMeta is the typed payload stored in state_history.meta_json.
type TransitionMeta interface {
	Kind() string
}

type CheckInMeta struct {
	DurationHrs  int    `json:"durationHrs"`
	BasePrice    int64  `json:"basePrice"`
	Total        int64  `json:"total"`
	DueMs        int64  `json:"dueMs"`
	ArrivalType  string `json:"arrivalType"`
	ArrivalPlate string `json:"arrivalPlate"`
	PayMethod    string `json:"payMethod"`
	PaidWith     int64  `json:"paidWith"`
	ChangeGiven  int64  `json:"changeGiven"`
	CheckInMs    int64  `json:"checkInMs"`
}

func (CheckInMeta) Kind() string { return MetaKindCheckIn }

type CheckOutMeta struct {
	LastCheckoutMs int64  `json:"lastCheckoutMs"`
	CheckoutObs    string `json:"checkoutObs"`
}

func (CheckOutMeta) Kind() string { return MetaKindCheckOut }

type MaidFinishMeta struct {
	MaidName       string `json:"maidName"`
	LastCheckoutMs int64  `json:"lastCheckoutMs"`
	MaidDoneMs     int64  `json:"maidDoneMs"`
	DirtyMins      int64  `json:"dirtyMins"`
	Contaminated   bool   `json:"contaminated"`
}

func (MaidFinishMeta) Kind() string { return MetaKindMaidFinish }

type ClearContaminatedMeta struct {
	Action string `json:"action"`
}

func (ClearContaminatedMeta) Kind() string { return MetaKindClearContaminated }

// GenericMeta holds blobs written for transitions without a typed shape, or unreadable ones.
type GenericMeta map[string]any

func (GenericMeta) Kind() string { return MetaKindGeneric }

// EncodeMeta serialises meta for storage. nil encodes as "{}".
func EncodeMeta(meta TransitionMeta) string {
	if meta == nil {
		return "{}"
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// DecodeMeta picks the typed shape from the transition and parses raw into it.
// Blobs carrying keys the typed shape does not know are kept whole as GenericMeta.
// Corrupt blobs decode to an empty GenericMeta.
func DecodeMeta(from, to RoomState, raw string) TransitionMeta {
	if raw == "" {
		raw = "{}"
	}
	generic := GenericMeta{}
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return GenericMeta{}
	}

	var typed TransitionMeta
	switch {
	case from == RoomAvailable && to == RoomOccupied:
		var m CheckInMeta
		if json.Unmarshal([]byte(raw), &m) == nil {
			typed = m
		}
	case from == RoomOccupied && to == RoomDirty:
		var m CheckOutMeta
		if json.Unmarshal([]byte(raw), &m) == nil {
			typed = m
		}
	case from == RoomDirty && (to == RoomAvailable || to == RoomContaminated):
		var m MaidFinishMeta
		if json.Unmarshal([]byte(raw), &m) == nil {
			typed = m
		}
	case from == RoomContaminated && to == RoomAvailable:
		var m ClearContaminatedMeta
		if json.Unmarshal([]byte(raw), &m) == nil {
			typed = m
		}
	}
	if typed == nil || !coversKeys(typed, generic) {
		return generic
	}
	return typed
}

// coversKeys reports whether every key of raw is a field of typed.
func coversKeys(typed TransitionMeta, raw GenericMeta) bool {
	b, err := json.Marshal(typed)
	if err != nil {
		return false
	}
	known := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &known); err != nil {
		return false
	}
	for k := range raw {
		if _, ok := known[k]; !ok {
			return false
		}
	}
	return true
}
