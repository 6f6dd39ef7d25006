package models

type RoomState string

const (
	RoomAvailable    RoomState = "AVAILABLE"
	RoomOccupied     RoomState = "OCCUPIED"
	RoomDirty        RoomState = "DIRTY"
	RoomContaminated RoomState = "CONTAMINATED"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleReception Role = "RECEPTION"
	RoleMaid      Role = "MAID"
)

type ShiftID string

const (
	Shift1 ShiftID = "SHIFT_1"
	Shift2 ShiftID = "SHIFT_2"
	Shift3 ShiftID = "SHIFT_3"
)

// Shifts in business-day order.
var Shifts = []ShiftID{Shift1, Shift2, Shift3}

func (s ShiftID) Valid() bool {
	return s == Shift1 || s == Shift2 || s == Shift3
}

type SaleType string

const (
	SaleTypeSale      SaleType = "SALE"
	SaleTypeExtension SaleType = "EXTENSION"
	SaleTypeRefund    SaleType = "REFUND"
)

const (
	PayCash  = "EFECTIVO"
	PayCard  = "TARJETA"
	PayNequi = "NEQUI"
)

const (
	ArrivalWalk = "WALK"
	ArrivalCar  = "CAR"
)

const (
	ActionLogin   = "LOGIN"
	ActionRelogin = "RELOGIN"
	ActionFinish  = "FINISH"
)

const (
	MaintenanceMinor        = "MINOR"
	MaintenanceResolveMinor = "RESOLVE_MINOR"
	MaintenanceDisable      = "DISABLE"
	MaintenanceEnable       = "ENABLE"
)

const (
	SettingAdminCode = "ADMIN_CODE"
	SettingDailyGoal = "DAILY_GOAL"
)

const StaffTypePayroll = "nomina"
