package models

type Sale struct {
	ID               int64    `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	TsMs             int64    `gorm:"column:ts_ms;not null;index" json:"ts_ms"`
	BusinessDay      string   `gorm:"column:business_day;type:varchar(10);not null;index:idx_sales_day_shift" json:"business_day"`
	ShiftID          ShiftID  `gorm:"column:shift_id;type:varchar(10);not null;index:idx_sales_day_shift" json:"shift_id"`
	UserRole         Role     `gorm:"column:user_role;type:varchar(20);not null;default:''" json:"user_role"`
	UserName         string   `gorm:"column:user_name;not null;default:''" json:"user_name"`
	Type             SaleType `gorm:"column:type;type:varchar(20);not null" json:"type"`
	RoomID           string   `gorm:"column:room_id;type:varchar(20);not null;default:'';index" json:"room_id"`
	Category         string   `gorm:"column:category;not null;default:''" json:"category"`
	DurationHrs      int      `gorm:"column:duration_hrs;not null;default:0" json:"duration_hrs"`
	BasePrice        int64    `gorm:"column:base_price;not null;default:0" json:"base_price"`
	People           int      `gorm:"column:people;not null;default:0" json:"people"`
	IncludedPeople   int      `gorm:"column:included_people;not null;default:0" json:"included_people"`
	ExtraPeople      int      `gorm:"column:extra_people;not null;default:0" json:"extra_people"`
	ExtraPeopleValue int64    `gorm:"column:extra_people_value;not null;default:0" json:"extra_people_value"`
	ExtraHours       int      `gorm:"column:extra_hours;not null;default:0" json:"extra_hours"`
	ExtraHoursValue  int64    `gorm:"column:extra_hours_value;not null;default:0" json:"extra_hours_value"`
	Total            int64    `gorm:"column:total;not null;default:0" json:"total"`
	ArrivalType      string   `gorm:"column:arrival_type;not null;default:''" json:"arrival_type"`
	ArrivalPlate     string   `gorm:"column:arrival_plate;not null;default:''" json:"arrival_plate"`
	PayMethod        string   `gorm:"column:pay_method;type:varchar(20);not null;default:''" json:"pay_method"`
	PaidWith         int64    `gorm:"column:paid_with;not null;default:0" json:"paid_with"`
	ChangeGiven      int64    `gorm:"column:change_given;not null;default:0" json:"change_given"`
	CheckInMs        int64    `gorm:"column:check_in_ms;not null;default:0" json:"check_in_ms"`
	DueMs            int64    `gorm:"column:due_ms;not null;default:0" json:"due_ms"`
	RefundReason     string   `gorm:"column:refund_reason;not null;default:''" json:"refund_reason"`
}

func (Sale) TableName() string { return "sales" }

// SaleDTO is the client-facing sale line used by metrics and room history.
type SaleDTO struct {
	TsMs         int64   `json:"tsMs"`
	BusinessDay  string  `json:"businessDay"`
	ShiftID      ShiftID `json:"shiftId"`
	RoomID       string  `json:"roomId"`
	Category     string  `json:"category"`
	DurationHrs  int     `json:"durationHrs"`
	People       int     `json:"people"`
	Total        int64   `json:"total"`
	ArrivalType  string  `json:"arrivalType"`
	ArrivalPlate string  `json:"arrivalPlate"`
	PayMethod    string  `json:"payMethod"`
	PaidWith     int64   `json:"paidWith"`
	Change       int64   `json:"change"`
	UserName     string  `json:"userName"`
	CheckInMs    int64   `json:"checkInMs"`
	DueMs        int64   `json:"dueMs"`
}

func ToSaleDTO(s Sale) SaleDTO {
	checkIn := s.CheckInMs
	if checkIn == 0 {
		checkIn = s.TsMs
	}
	return SaleDTO{
		TsMs:         s.TsMs,
		BusinessDay:  s.BusinessDay,
		ShiftID:      s.ShiftID,
		RoomID:       s.RoomID,
		Category:     s.Category,
		DurationHrs:  s.DurationHrs,
		People:       s.People,
		Total:        s.Total,
		ArrivalType:  s.ArrivalType,
		ArrivalPlate: s.ArrivalPlate,
		PayMethod:    s.PayMethod,
		PaidWith:     s.PaidWith,
		Change:       s.ChangeGiven,
		UserName:     s.UserName,
		CheckInMs:    checkIn,
		DueMs:        s.DueMs,
	}
}

type TaxiExpense struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	TsMs        int64   `gorm:"column:ts_ms;not null" json:"ts_ms"`
	BusinessDay string  `gorm:"column:business_day;type:varchar(10);not null;index" json:"business_day"`
	ShiftID     ShiftID `gorm:"column:shift_id;type:varchar(10);not null" json:"shift_id"`
	UserRole    Role    `gorm:"column:user_role;type:varchar(20);not null;default:''" json:"user_role"`
	UserName    string  `gorm:"column:user_name;not null;default:''" json:"user_name"`
	Amount      int64   `gorm:"column:amount;not null;default:0" json:"amount"`
	Note        string  `gorm:"column:note;not null;default:''" json:"note"`
}

func (TaxiExpense) TableName() string { return "taxi_expenses" }

type Loan struct {
	ID           int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	TsMs         int64   `gorm:"column:ts_ms;not null" json:"ts_ms"`
	BusinessDay  string  `gorm:"column:business_day;type:varchar(10);not null;index" json:"business_day"`
	ShiftID      ShiftID `gorm:"column:shift_id;type:varchar(10);not null" json:"shift_id"`
	UserName     string  `gorm:"column:user_name;not null;default:''" json:"user_name"`
	BorrowerName string  `gorm:"column:borrower_name;not null" json:"borrower_name"`
	Amount       int64   `gorm:"column:amount;not null;default:0" json:"amount"`
	Note         string  `gorm:"column:note;not null;default:''" json:"note"`
}

func (Loan) TableName() string { return "loans" }

type LoanDTO struct {
	TsMs         int64   `json:"tsMs"`
	BusinessDay  string  `json:"businessDay"`
	ShiftID      ShiftID `json:"shiftId"`
	UserName     string  `json:"userName"`
	BorrowerName string  `json:"borrowerName"`
	Amount       int64   `json:"amount"`
	Note         string  `json:"note"`
}

func ToLoanDTO(l Loan) LoanDTO {
	return LoanDTO{
		TsMs:         l.TsMs,
		BusinessDay:  l.BusinessDay,
		ShiftID:      l.ShiftID,
		UserName:     l.UserName,
		BorrowerName: l.BorrowerName,
		Amount:       l.Amount,
		Note:         l.Note,
	}
}

type ExtraStaff struct {
	ID           int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	TsMs         int64   `gorm:"column:ts_ms;not null" json:"ts_ms"`
	BusinessDay  string  `gorm:"column:business_day;type:varchar(10);not null;index" json:"business_day"`
	ShiftID      ShiftID `gorm:"column:shift_id;type:varchar(10);not null" json:"shift_id"`
	RegisteredBy string  `gorm:"column:registered_by;not null;default:''" json:"registered_by"`
	PersonName   string  `gorm:"column:person_name;not null;index" json:"person_name"`
	Area         string  `gorm:"column:area;not null;default:''" json:"area"`
	EntryMs      int64   `gorm:"column:entry_ms;not null;default:0" json:"entry_ms"`
	ExitMs       int64   `gorm:"column:exit_ms;not null;default:0" json:"exit_ms"`
	Payment      int64   `gorm:"column:payment;not null;default:0" json:"payment"`
	Active       bool    `gorm:"column:active;not null" json:"active"`
	PaidMs       int64   `gorm:"column:paid_ms;not null;default:0" json:"paid_ms"`
	PaidBy       string  `gorm:"column:paid_by;not null;default:''" json:"paid_by"`
}

func (ExtraStaff) TableName() string { return "extra_staff" }

type ExtraStaffDTO struct {
	TsMs        int64   `json:"tsMs"`
	BusinessDay string  `json:"businessDay"`
	ShiftID     ShiftID `json:"shiftId"`
	PersonName  string  `json:"personName"`
	Area        string  `json:"area"`
	EntryMs     int64   `json:"entryMs"`
	ExitMs      int64   `json:"exitMs"`
	Payment     int64   `json:"payment"`
	Active      bool    `json:"active"`
	PaidMs      int64   `json:"paidMs"`
	PaidBy      string  `json:"paidBy"`
}

func ToExtraStaffDTO(e ExtraStaff) ExtraStaffDTO {
	return ExtraStaffDTO{
		TsMs:        e.TsMs,
		BusinessDay: e.BusinessDay,
		ShiftID:     e.ShiftID,
		PersonName:  e.PersonName,
		Area:        e.Area,
		EntryMs:     e.EntryMs,
		ExitMs:      e.ExitMs,
		Payment:     e.Payment,
		Active:      e.Active,
		PaidMs:      e.PaidMs,
		PaidBy:      e.PaidBy,
	}
}

type ShiftClose struct {
	ID              int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	TsMs            int64   `gorm:"column:ts_ms;not null" json:"ts_ms"`
	BusinessDay     string  `gorm:"column:business_day;type:varchar(10);not null;index" json:"business_day"`
	ShiftID         ShiftID `gorm:"column:shift_id;type:varchar(10);not null" json:"shift_id"`
	UserName        string  `gorm:"column:user_name;not null;default:''" json:"user_name"`
	TotalSales      int64   `gorm:"column:total_sales;not null;default:0" json:"total_sales"`
	TotalRefunds    int64   `gorm:"column:total_refunds;not null;default:0" json:"total_refunds"`
	TotalTaxi       int64   `gorm:"column:total_taxi;not null;default:0" json:"total_taxi"`
	TotalLoans      int64   `gorm:"column:total_loans;not null;default:0" json:"total_loans"`
	TotalExtraStaff int64   `gorm:"column:total_extra_staff;not null;default:0" json:"total_extra_staff"`
	Net             int64   `gorm:"column:net;not null;default:0" json:"net"`
	RoomsSold       int     `gorm:"column:rooms_sold;not null;default:0" json:"rooms_sold"`
	People          int     `gorm:"column:people;not null;default:0" json:"people"`
	CashCount       int64   `gorm:"column:cash_count;not null;default:0" json:"cash_count"`
	Notes           string  `gorm:"column:notes;not null;default:''" json:"notes"`
	TotalEfectivo   int64   `gorm:"column:total_efectivo;not null;default:0" json:"total_efectivo"`
	TotalTarjeta    int64   `gorm:"column:total_tarjeta;not null;default:0" json:"total_tarjeta"`
	TotalNequi      int64   `gorm:"column:total_nequi;not null;default:0" json:"total_nequi"`
}

func (ShiftClose) TableName() string { return "shift_close" }
