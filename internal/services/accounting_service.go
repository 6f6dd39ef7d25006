package services

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jaytnw/motel-service/internal/apperr"
	"github.com/jaytnw/motel-service/internal/models"
	"github.com/jaytnw/motel-service/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shiftNotesLimit = 50

var yearMonthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

type RefundRequest struct {
	UserName string
	RoomID   string
	Amount   int64
	Reason   string
}

type RefundResult struct {
	RoomID string `json:"roomId"`
	Total  int64  `json:"total"`
}

type LoanRequest struct {
	UserName     string
	BorrowerName string
	Amount       int64
	Note         string
}

type ExtraStaffRequest struct {
	UserName   string
	PersonName string
	Area       string
	ShiftID    string
}

type ExtraStaffResult struct {
	PersonName string         `json:"personName"`
	Area       string         `json:"area"`
	ShiftID    models.ShiftID `json:"shiftId"`
}

type ExtraStaffCheckoutRequest struct {
	UserName   string
	PersonName string
	Payment    int64
	PaidBy     string
}

type ExtraStaffCheckoutResult struct {
	PersonName string `json:"personName"`
	Payment    int64  `json:"payment"`
	PaidBy     string `json:"paidBy"`
}

type ShiftNoteRequest struct {
	UserName string
	UserRole string
	Note     string
}

type CloseShiftRequest struct {
	UserName  string
	CashCount int64
	Notes     string
}

type ShiftSummary struct {
	BizDay          string         `json:"bizDay"`
	ShiftID         models.ShiftID `json:"shiftId"`
	TotalSales      int64          `json:"totalSales"`
	TotalRefunds    int64          `json:"totalRefunds"`
	TotalTaxi       int64          `json:"totalTaxi"`
	TotalLoans      int64          `json:"totalLoans"`
	TotalExtraStaff int64          `json:"totalExtraStaff"`
	Net             int64          `json:"net"`
	RoomsSold       int            `json:"roomsSold"`
	People          int            `json:"people"`
	TotalEfectivo   int64          `json:"totalEfectivo"`
	TotalTarjeta    int64          `json:"totalTarjeta"`
	TotalNequi      int64          `json:"totalNequi"`
}

type MetricsTotals struct {
	Sales          int64 `json:"sales"`
	Refunds        int64 `json:"refunds"`
	Taxi           int64 `json:"taxi"`
	Loans          int64 `json:"loans"`
	ExtraStaff     int64 `json:"extraStaff"`
	Net            int64 `json:"net"`
	ShiftNet       int64 `json:"shiftNet"`
	ShiftSales     int64 `json:"shiftSales"`
	ShiftRoomsSold int   `json:"shiftRoomsSold"`
	ShiftPeople    int   `json:"shiftPeople"`
	TotalEfectivo  int64 `json:"totalEfectivo"`
	TotalTarjeta   int64 `json:"totalTarjeta"`
	TotalNequi     int64 `json:"totalNequi"`
}

type HourBucket struct {
	Hour  int   `json:"hour"`
	Count int   `json:"count"`
	Sales int64 `json:"sales"`
}

type MetricsResult struct {
	BusinessDay   string                 `json:"businessDay"`
	Totals        MetricsTotals          `json:"totals"`
	HourBreakdown []HourBucket           `json:"hourBreakdown"`
	Loans         []models.LoanDTO       `json:"loans"`
	ExtraStaff    []models.ExtraStaffDTO `json:"extraStaff"`
	AllSalesList  []models.SaleDTO       `json:"allSalesList"`
	DailyGoal     int64                  `json:"dailyGoal"`
	GoalProgress  *int64                 `json:"goalProgress"`
}

type DayTotals struct {
	Day       string `json:"day,omitempty"`
	Sales     int64  `json:"sales"`
	Refunds   int64  `json:"refunds"`
	Taxi      int64  `json:"taxi"`
	Net       int64  `json:"net"`
	People    int    `json:"people"`
	RoomsSold int    `json:"roomsSold"`
}

type MonthMetricsResult struct {
	YearMonth   string      `json:"yearMonth"`
	MonthTotals DayTotals   `json:"monthTotals"`
	Days        []DayTotals `json:"days"`
}

type AccountingService interface {
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
	Taxi(ctx context.Context, userName string) error
	AddLoan(ctx context.Context, req LoanRequest) error
	GetLoans(ctx context.Context, businessDay string) ([]models.LoanDTO, error)
	RegisterExtraStaff(ctx context.Context, req ExtraStaffRequest) (*ExtraStaffResult, error)
	CheckoutExtraStaff(ctx context.Context, req ExtraStaffCheckoutRequest) (*ExtraStaffCheckoutResult, error)
	GetExtraStaff(ctx context.Context, businessDay string) ([]models.ExtraStaffDTO, error)
	AddShiftNote(ctx context.Context, req ShiftNoteRequest) error
	GetShiftNotes(ctx context.Context, businessDay string) ([]models.ShiftNoteDTO, error)
	CloseShift(ctx context.Context, req CloseShiftRequest) (*ShiftSummary, error)
	Metrics(ctx context.Context, businessDay, shiftID string) (*MetricsResult, error)
	MonthMetrics(ctx context.Context, yearMonth string) (*MonthMetricsResult, error)
}

type accountingService struct {
	store    repository.Store
	settings SettingsService
	clock    *Clock
	taxiFare int64
	logger   *zap.Logger
}

func NewAccountingService(store repository.Store, settings SettingsService, clock *Clock, taxiFare int64, logger *zap.Logger) AccountingService {
	return &accountingService{
		store:    store,
		settings: settings,
		clock:    clock,
		taxiFare: taxiFare,
		logger:   logger,
	}
}

func (s *accountingService) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	roomID := strings.TrimSpace(req.RoomID)
	reason := strings.TrimSpace(req.Reason)
	amount := max(1, req.Amount)
	if len([]rune(reason)) < 3 {
		return nil, apperr.Validation("Motivo obligatorio")
	}

	category := ""
	if roomID != "" {
		room, err := s.store.GetRoom(ctx, roomID)
		switch {
		case err == nil:
			category = room.Category
		case !errors.Is(err, repository.ErrNotFound):
			return nil, storeError("leer habitacion", err)
		}
	}

	st := s.clock.Stamp()
	sale := &models.Sale{
		TsMs:         st.Ms,
		BusinessDay:  st.BusinessDay,
		ShiftID:      st.ShiftID,
		UserRole:     models.RoleReception,
		UserName:     strings.TrimSpace(req.UserName),
		Type:         models.SaleTypeRefund,
		RoomID:       roomID,
		Category:     category,
		Total:        -amount,
		RefundReason: reason,
		PayMethod:    models.PayCash,
	}
	if err := s.store.InsertSale(ctx, sale); err != nil {
		return nil, storeError("registrar devolucion", err)
	}

	s.logger.Info("refund", zap.String("room_id", roomID), zap.Int64("amount", amount))
	return &RefundResult{RoomID: roomID, Total: -amount}, nil
}

func (s *accountingService) Taxi(ctx context.Context, userName string) error {
	st := s.clock.Stamp()
	expense := &models.TaxiExpense{
		TsMs:        st.Ms,
		BusinessDay: st.BusinessDay,
		ShiftID:     st.ShiftID,
		UserRole:    models.RoleReception,
		UserName:    strings.TrimSpace(userName),
		Amount:      s.taxiFare,
		Note:        "Taxi fijo",
	}
	if err := s.store.InsertTaxiExpense(ctx, expense); err != nil {
		return storeError("registrar taxi", err)
	}
	return nil
}

func (s *accountingService) AddLoan(ctx context.Context, req LoanRequest) error {
	borrower := strings.TrimSpace(req.BorrowerName)
	if borrower == "" {
		return apperr.Validation("Nombre requerido")
	}
	if req.Amount <= 0 {
		return apperr.Validation("Monto invalido")
	}

	st := s.clock.Stamp()
	loan := &models.Loan{
		TsMs:         st.Ms,
		BusinessDay:  st.BusinessDay,
		ShiftID:      st.ShiftID,
		UserName:     strings.TrimSpace(req.UserName),
		BorrowerName: borrower,
		Amount:       req.Amount,
		Note:         req.Note,
	}
	if err := s.store.InsertLoan(ctx, loan); err != nil {
		return storeError("registrar prestamo", err)
	}
	return nil
}

func (s *accountingService) GetLoans(ctx context.Context, businessDay string) ([]models.LoanDTO, error) {
	loans, err := s.store.ListLoans(ctx, repository.DayFilter{BusinessDay: s.clock.DayOrToday(businessDay)})
	if err != nil {
		return nil, storeError("leer prestamos", err)
	}
	return toLoanDTOs(loans), nil
}

func (s *accountingService) RegisterExtraStaff(ctx context.Context, req ExtraStaffRequest) (*ExtraStaffResult, error) {
	personName := strings.TrimSpace(req.PersonName)
	area := strings.TrimSpace(req.Area)
	if personName == "" {
		return nil, apperr.Validation("Nombre requerido")
	}
	if area == "" {
		return nil, apperr.Validation("Area requerida")
	}

	st := s.clock.Stamp()
	shift := models.ShiftID(strings.TrimSpace(req.ShiftID))
	if shift == "" {
		shift = st.ShiftID
	}

	row := &models.ExtraStaff{
		TsMs:         st.Ms,
		BusinessDay:  st.BusinessDay,
		ShiftID:      shift,
		RegisteredBy: req.UserName,
		PersonName:   personName,
		Area:         area,
		EntryMs:      st.Ms,
		Active:       true,
	}
	if err := s.store.InsertExtraStaff(ctx, row); err != nil {
		return nil, storeError("registrar personal extra", err)
	}
	return &ExtraStaffResult{PersonName: personName, Area: area, ShiftID: shift}, nil
}

func (s *accountingService) CheckoutExtraStaff(ctx context.Context, req ExtraStaffCheckoutRequest) (*ExtraStaffCheckoutResult, error) {
	personName := strings.TrimSpace(req.PersonName)
	paidBy := strings.TrimSpace(req.PaidBy)
	if paidBy == "" {
		paidBy = strings.TrimSpace(req.UserName)
	}
	if personName == "" {
		return nil, apperr.Validation("Nombre requerido")
	}
	if req.Payment <= 0 {
		return nil, apperr.Validation("Pago requerido")
	}

	row, err := s.store.LatestActiveExtraStaff(ctx, personName)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Validation(`No se encontro "` + personName + `" activo`)
	}
	if err != nil {
		return nil, storeError("leer personal extra", err)
	}

	now := s.clock.Now().UnixMilli()
	err = s.store.UpdateExtraStaff(ctx, row.ID, repository.Fields{
		"exit_ms": now,
		"payment": req.Payment,
		"active":  false,
		"paid_ms": now,
		"paid_by": paidBy,
	})
	if err != nil {
		return nil, storeError("pagar personal extra", err)
	}
	return &ExtraStaffCheckoutResult{PersonName: personName, Payment: req.Payment, PaidBy: paidBy}, nil
}

func (s *accountingService) GetExtraStaff(ctx context.Context, businessDay string) ([]models.ExtraStaffDTO, error) {
	rows, err := s.store.ListExtraStaff(ctx, repository.DayFilter{BusinessDay: s.clock.DayOrToday(businessDay)})
	if err != nil {
		return nil, storeError("leer personal extra", err)
	}
	return toExtraStaffDTOs(rows), nil
}

func (s *accountingService) AddShiftNote(ctx context.Context, req ShiftNoteRequest) error {
	st := s.clock.Stamp()
	note := &models.ShiftNote{
		TsMs:        st.Ms,
		BusinessDay: st.BusinessDay,
		ShiftID:     st.ShiftID,
		UserRole:    models.Role(req.UserRole),
		UserName:    req.UserName,
		Note:        req.Note,
	}
	if err := s.store.InsertShiftNote(ctx, note); err != nil {
		return storeError("guardar nota", err)
	}
	return nil
}

func (s *accountingService) GetShiftNotes(ctx context.Context, businessDay string) ([]models.ShiftNoteDTO, error) {
	rows, err := s.store.ListShiftNotes(ctx, s.clock.DayOrToday(businessDay), shiftNotesLimit)
	if err != nil {
		return nil, storeError("leer notas", err)
	}
	notes := make([]models.ShiftNoteDTO, 0, len(rows))
	for _, n := range rows {
		notes = append(notes, models.ToShiftNoteDTO(n))
	}
	return notes, nil
}

// ledger is one day's (or shift's) worth of money-moving rows.
type ledger struct {
	sales      []models.Sale
	taxi       []models.TaxiExpense
	loans      []models.Loan
	extraStaff []models.ExtraStaff
}

func (s *accountingService) loadLedger(ctx context.Context, f repository.DayFilter) (*ledger, error) {
	var l ledger
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		l.sales, err = s.store.ListSales(gctx, repository.SalesQuery{DayFilter: f})
		return err
	})
	g.Go(func() error {
		var err error
		l.taxi, err = s.store.ListTaxiExpenses(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		l.loans, err = s.store.ListLoans(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		l.extraStaff, err = s.store.ListExtraStaff(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError("leer movimientos", err)
	}
	return &l, nil
}

// summarize totals a ledger. net = sales + refunds - taxi - loans - extraStaff.
func summarize(l *ledger) ShiftSummary {
	var sum ShiftSummary
	for _, r := range l.sales {
		switch r.Type {
		case models.SaleTypeSale:
			sum.TotalSales += r.Total
			sum.RoomsSold++
			sum.People += r.People
			switch strings.ToUpper(r.PayMethod) {
			case models.PayCash:
				sum.TotalEfectivo += r.Total
			case models.PayCard:
				sum.TotalTarjeta += r.Total
			case models.PayNequi:
				sum.TotalNequi += r.Total
			}
		case models.SaleTypeRefund:
			sum.TotalRefunds += r.Total
		}
	}
	for _, t := range l.taxi {
		sum.TotalTaxi += t.Amount
	}
	for _, loan := range l.loans {
		sum.TotalLoans += loan.Amount
	}
	for _, e := range l.extraStaff {
		sum.TotalExtraStaff += e.Payment
	}
	sum.Net = sum.TotalSales + sum.TotalRefunds - sum.TotalTaxi - sum.TotalLoans - sum.TotalExtraStaff
	return sum
}

func (s *accountingService) CloseShift(ctx context.Context, req CloseShiftRequest) (*ShiftSummary, error) {
	st := s.clock.Stamp()
	l, err := s.loadLedger(ctx, repository.DayFilter{BusinessDay: st.BusinessDay, ShiftID: st.ShiftID})
	if err != nil {
		return nil, err
	}

	sum := summarize(l)
	sum.BizDay = st.BusinessDay
	sum.ShiftID = st.ShiftID

	row := &models.ShiftClose{
		TsMs:            st.Ms,
		BusinessDay:     st.BusinessDay,
		ShiftID:         st.ShiftID,
		UserName:        req.UserName,
		TotalSales:      sum.TotalSales,
		TotalRefunds:    sum.TotalRefunds,
		TotalTaxi:       sum.TotalTaxi,
		TotalLoans:      sum.TotalLoans,
		TotalExtraStaff: sum.TotalExtraStaff,
		Net:             sum.Net,
		RoomsSold:       sum.RoomsSold,
		People:          sum.People,
		CashCount:       req.CashCount,
		Notes:           req.Notes,
		TotalEfectivo:   sum.TotalEfectivo,
		TotalTarjeta:    sum.TotalTarjeta,
		TotalNequi:      sum.TotalNequi,
	}
	if err := s.store.InsertShiftClose(ctx, row); err != nil {
		return nil, storeError("cerrar turno", err)
	}

	s.logger.Info("shift closed",
		zap.String("business_day", st.BusinessDay),
		zap.String("shift", string(st.ShiftID)),
		zap.Int64("net", sum.Net),
	)
	return &sum, nil
}

func (s *accountingService) Metrics(ctx context.Context, businessDay, shiftID string) (*MetricsResult, error) {
	day := s.clock.DayOrToday(businessDay)
	shiftFilter := models.ShiftID(shiftID)

	var (
		l        *ledger
		settings map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		l, err = s.loadLedger(gctx, repository.DayFilter{BusinessDay: day})
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.settings.All(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dailyGoal, _ := strconv.ParseInt(strings.TrimSpace(settings[models.SettingDailyGoal]), 10, 64)
	sum := summarize(l)
	totals := MetricsTotals{
		Sales:         sum.TotalSales,
		Refunds:       sum.TotalRefunds,
		Taxi:          sum.TotalTaxi,
		Loans:         sum.TotalLoans,
		ExtraStaff:    sum.TotalExtraStaff,
		Net:           sum.Net,
		TotalEfectivo: sum.TotalEfectivo,
		TotalTarjeta:  sum.TotalTarjeta,
		TotalNequi:    sum.TotalNequi,
	}

	hours := make([]HourBucket, 24)
	for h := range hours {
		hours[h].Hour = h
	}
	salesList := make([]models.SaleDTO, 0, len(l.sales))
	for _, r := range l.sales {
		h := s.clock.At(r.TsMs).Hour()
		hours[h].Count++
		hours[h].Sales += r.Total

		if r.Type == models.SaleTypeSale {
			dto := models.ToSaleDTO(r)
			dto.PayMethod = strings.ToUpper(dto.PayMethod)
			salesList = append(salesList, dto)
		}
		if shiftFilter == "" || r.ShiftID == shiftFilter {
			totals.ShiftNet += r.Total
			if r.Type == models.SaleTypeSale {
				totals.ShiftSales += r.Total
				totals.ShiftRoomsSold++
				totals.ShiftPeople += r.People
			}
		}
	}
	for _, t := range l.taxi {
		if shiftFilter == "" || t.ShiftID == shiftFilter {
			totals.ShiftNet -= t.Amount
		}
	}
	sort.SliceStable(salesList, func(i, j int) bool { return salesList[i].TsMs < salesList[j].TsMs })

	var progress *int64
	if dailyGoal > 0 {
		p := int64(math.Round(float64(sum.TotalSales) / float64(dailyGoal) * 100))
		progress = &p
	}

	return &MetricsResult{
		BusinessDay:   day,
		Totals:        totals,
		HourBreakdown: hours,
		Loans:         toLoanDTOs(l.loans),
		ExtraStaff:    toExtraStaffDTOs(l.extraStaff),
		AllSalesList:  salesList,
		DailyGoal:     dailyGoal,
		GoalProgress:  progress,
	}, nil
}

func (s *accountingService) MonthMetrics(ctx context.Context, yearMonth string) (*MonthMetricsResult, error) {
	if !yearMonthPattern.MatchString(yearMonth) {
		return nil, apperr.Validation("yearMonth invalido. Formato: YYYY-MM")
	}
	filter := repository.DayFilter{MonthPrefix: yearMonth}

	var (
		sales []models.Sale
		taxi  []models.TaxiExpense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.store.ListSales(gctx, repository.SalesQuery{DayFilter: filter})
		return err
	})
	g.Go(func() error {
		var err error
		taxi, err = s.store.ListTaxiExpenses(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError("leer movimientos del mes", err)
	}

	byDay := map[string]*DayTotals{}
	entry := func(day string) *DayTotals {
		d, ok := byDay[day]
		if !ok {
			d = &DayTotals{Day: day}
			byDay[day] = d
		}
		return d
	}
	for _, r := range sales {
		d := entry(r.BusinessDay)
		switch r.Type {
		case models.SaleTypeSale:
			d.Sales += r.Total
			d.RoomsSold++
			d.People += r.People
		case models.SaleTypeRefund:
			d.Refunds += r.Total
		}
	}
	for _, t := range taxi {
		entry(t.BusinessDay).Taxi += t.Amount
	}

	result := &MonthMetricsResult{YearMonth: yearMonth, Days: make([]DayTotals, 0, len(byDay))}
	for _, d := range byDay {
		d.Net = d.Sales + d.Refunds - d.Taxi
		result.Days = append(result.Days, *d)
	}
	sort.Slice(result.Days, func(i, j int) bool { return result.Days[i].Day < result.Days[j].Day })

	for _, d := range result.Days {
		result.MonthTotals.Sales += d.Sales
		result.MonthTotals.Refunds += d.Refunds
		result.MonthTotals.Taxi += d.Taxi
		result.MonthTotals.Net += d.Net
		result.MonthTotals.People += d.People
		result.MonthTotals.RoomsSold += d.RoomsSold
	}
	return result, nil
}

func toLoanDTOs(rows []models.Loan) []models.LoanDTO {
	out := make([]models.LoanDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ToLoanDTO(r))
	}
	return out
}

func toExtraStaffDTOs(rows []models.ExtraStaff) []models.ExtraStaffDTO {
	out := make([]models.ExtraStaffDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ToExtraStaffDTO(r))
	}
	return out
}
