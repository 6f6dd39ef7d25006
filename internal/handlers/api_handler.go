package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jaytnw/motel-service/internal/apperr"
	"github.com/jaytnw/motel-service/internal/metrics"
	"github.com/jaytnw/motel-service/internal/services"
	"github.com/jaytnw/motel-service/internal/utils"
	"go.uber.org/zap"
)

const unknownOperation = "unknown"

// opFunc runs one operation. The returned value's fields are merged into the response envelope.
type opFunc func(ctx context.Context, p Params) (any, error)

// Services groups the domain services the API dispatches to.
type Services struct {
	Rooms        services.RoomService
	Auth         services.AuthService
	Accounting   services.AccountingService
	Housekeeping services.HousekeepingService
	Staff        services.StaffService
}

type APIHandler struct {
	svc      Services
	ops      map[Operation]opFunc
	recorder *metrics.Recorder
	logger   *zap.Logger
}

func NewAPIHandler(svc Services, recorder *metrics.Recorder, logger *zap.Logger) *APIHandler {
	h := &APIHandler{
		svc:      svc,
		recorder: recorder,
		logger:   logger,
	}
	h.ops = h.operationTable()
	return h
}

// Handle serves every method on /api.
func (h *APIHandler) Handle(c fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	if c.Method() == fiber.MethodOptions {
		c.Set(fiber.HeaderAccessControlAllowMethods, "GET,POST,OPTIONS")
		c.Set(fiber.HeaderAccessControlAllowHeaders, fiber.HeaderContentType)
		return c.SendStatus(fiber.StatusOK)
	}

	start := time.Now()
	p, err := parseParams(c)
	if err != nil {
		return h.fail(c, unknownOperation, start, err)
	}

	fn := operationName(c, p)
	op, ok := h.ops[Operation(fn)]
	if !ok {
		return h.fail(c, unknownOperation, start, apperr.Validation("Funcion desconocida: "+fn))
	}

	data, err := op(c.Context(), p)
	if err != nil {
		return h.fail(c, fn, start, err)
	}

	h.recorder.Observe(fn, fiber.StatusOK, time.Since(start))
	return utils.JSON(c, fiber.StatusOK, data)
}

func (h *APIHandler) fail(c fiber.Ctx, fn string, start time.Time, err error) error {
	status := fiber.StatusInternalServerError
	message := err.Error()
	if ae, ok := apperr.As(err); ok {
		status = ae.Status
		message = ae.Message
		if status >= fiber.StatusInternalServerError {
			message = ae.Error()
		}
	}
	if message == "" {
		message = "Error interno"
	}
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("api call failed", zap.String("fn", fn), zap.Error(err))
	}

	h.recorder.Observe(fn, status, time.Since(start))
	return utils.Error(c, status, message)
}

func (h *APIHandler) operationTable() map[Operation]opFunc {
	return map[Operation]opFunc{
		OpBootstrap: func(ctx context.Context, _ Params) (any, error) {
			return h.svc.Rooms.Bootstrap(ctx)
		},
		OpGetRooms: func(ctx context.Context, _ Params) (any, error) {
			rooms, err := h.svc.Rooms.GetRooms(ctx)
			return fiber.Map{"rooms": rooms}, err
		},
		OpLogin: func(ctx context.Context, p Params) (any, error) {
			session, err := h.svc.Auth.Login(ctx, services.LoginRequest{
				UserName:  p.String("userName"),
				UserRole:  p.String("userRole"),
				AdminCode: p.String("adminCode"),
				UserPin:   p.String("userPin"),
			})
			return fiber.Map{"session": session}, err
		},

		OpCheckIn: func(ctx context.Context, p Params) (any, error) {
			hrs, ok := p.Whole("durationHrs")
			if !ok {
				return nil, apperr.Validation("Duracion invalida (3/6/8/12)")
			}
			paidWith, err := amount(p, "paidWith")
			if err != nil {
				return nil, err
			}
			return h.svc.Rooms.CheckIn(ctx, services.CheckInRequest{
				UserName:     p.String("userName"),
				RoomID:       p.String("roomId"),
				DurationHrs:  int(hrs),
				People:       p.Int("people"),
				ArrivalType:  p.String("arrivalType"),
				ArrivalPlate: p.String("arrivalPlate"),
				PayMethod:    p.String("payMethod"),
				PaidWith:     paidWith,
			})
		},
		OpCheckOut: func(ctx context.Context, p Params) (any, error) {
			return h.svc.Rooms.CheckOut(ctx, services.CheckOutRequest{
				UserName:    p.String("userName"),
				RoomID:      p.String("roomId"),
				CheckoutObs: p.String("checkoutObs"),
			})
		},
		OpExtendTime: func(ctx context.Context, p Params) (any, error) {
			hrs, ok := p.Whole("extraHrs")
			if !ok {
				return nil, apperr.Validation("Horas extra invalidas (1-6)")
			}
			return h.svc.Rooms.ExtendTime(ctx, services.ExtendRequest{
				UserName: p.String("userName"),
				RoomID:   p.String("roomId"),
				ExtraHrs: int(hrs),
			})
		},
		OpSilenceAlarm: func(ctx context.Context, p Params) (any, error) {
			roomID := p.Trimmed("roomId")
			return fiber.Map{"roomId": roomID}, h.svc.Rooms.SilenceAlarm(ctx, roomID)
		},
		OpClearContaminated: func(ctx context.Context, p Params) (any, error) {
			roomID := p.Trimmed("roomId")
			return fiber.Map{"roomId": roomID}, h.svc.Rooms.ClearContaminated(ctx, roomID, p.String("userName"))
		},
		OpSetMinorNote: func(ctx context.Context, p Params) (any, error) {
			roomID := p.Trimmed("roomId")
			err := h.svc.Rooms.SetMinorNote(ctx, services.MinorNoteRequest{
				UserName: p.String("userName"),
				UserRole: p.String("userRole"),
				RoomID:   roomID,
				Enabled:  p.Bool("enabled"),
				Text:     p.String("text"),
			})
			return fiber.Map{"roomId": roomID}, err
		},
		OpSetDisabled: func(ctx context.Context, p Params) (any, error) {
			// Clients send the disable flag as "enabled"; "disabled" is accepted as well.
			disable := p.Bool("enabled")
			if p.Has("disabled") {
				disable = p.Bool("disabled")
			}
			roomID := p.Trimmed("roomId")
			disabled, err := h.svc.Rooms.SetDisabled(ctx, services.DisableRequest{
				UserName: p.String("userName"),
				UserRole: p.String("userRole"),
				RoomID:   roomID,
				Disable:  disable,
				Reason:   p.String("reason"),
			})
			return fiber.Map{"roomId": roomID, "disabled": disabled}, err
		},
		OpRoomHistory: func(ctx context.Context, p Params) (any, error) {
			return h.svc.Rooms.RoomHistory(ctx, p.String("roomId"), p.Int("limit"))
		},

		OpMaidFinish: func(ctx context.Context, p Params) (any, error) {
			return h.svc.Housekeeping.MaidFinish(ctx, services.MaidFinishRequest{
				RoomID:      p.String("roomId"),
				MaidName:    firstNonEmpty(p.Trimmed("maidName"), p.Trimmed("userName")),
				ResultState: p.String("resultState"),
			})
		},
		OpMaidLogAction: func(ctx context.Context, p Params) (any, error) {
			return fiber.Map{}, h.svc.Housekeeping.MaidLogAction(ctx, services.MaidActionRequest{
				MaidName: firstNonEmpty(p.Trimmed("maidName"), p.Trimmed("userName")),
				RoomID:   p.String("roomId"),
				Action:   p.String("action"),
				State:    p.String("state"),
				Note:     p.String("note"),
			})
		},
		OpMaidMarkExit: func(ctx context.Context, p Params) (any, error) {
			exitMs, err := h.svc.Housekeeping.MaidMarkExit(ctx, p.String("maidName"), p.String("roomId"))
			return fiber.Map{"exitMs": exitMs}, err
		},
		OpGetMaidLog: func(ctx context.Context, p Params) (any, error) {
			logs, err := h.svc.Housekeeping.GetMaidLog(ctx, p.Trimmed("businessDay"))
			return fiber.Map{"logs": logs}, err
		},
		OpMaidPanel: func(ctx context.Context, p Params) (any, error) {
			return h.svc.Housekeeping.MaidPanel(ctx, p.Trimmed("businessDay"))
		},

		OpRefund: func(ctx context.Context, p Params) (any, error) {
			value, err := amount(p, "amount")
			if err != nil {
				return nil, err
			}
			return h.svc.Accounting.Refund(ctx, services.RefundRequest{
				UserName: p.String("userName"),
				RoomID:   p.String("roomId"),
				Amount:   value,
				Reason:   p.String("refundReason"),
			})
		},
		OpTaxi: func(ctx context.Context, p Params) (any, error) {
			return fiber.Map{}, h.svc.Accounting.Taxi(ctx, p.String("userName"))
		},
		OpAddLoan: func(ctx context.Context, p Params) (any, error) {
			value, err := amount(p, "amount")
			if err != nil {
				return nil, err
			}
			return fiber.Map{}, h.svc.Accounting.AddLoan(ctx, services.LoanRequest{
				UserName:     p.String("userName"),
				BorrowerName: p.String("borrowerName"),
				Amount:       value,
				Note:         p.String("note"),
			})
		},
		OpGetLoans: func(ctx context.Context, p Params) (any, error) {
			loans, err := h.svc.Accounting.GetLoans(ctx, p.Trimmed("businessDay"))
			return fiber.Map{"loans": loans}, err
		},
		OpRegisterExtra: func(ctx context.Context, p Params) (any, error) {
			return h.svc.Accounting.RegisterExtraStaff(ctx, services.ExtraStaffRequest{
				UserName:   p.String("userName"),
				PersonName: p.String("personName"),
				Area:       p.String("area"),
				ShiftID:    p.String("shiftId"),
			})
		},
		OpCheckoutExtra: func(ctx context.Context, p Params) (any, error) {
			payment, err := amount(p, "payment")
			if err != nil {
				return nil, err
			}
			return h.svc.Accounting.CheckoutExtraStaff(ctx, services.ExtraStaffCheckoutRequest{
				UserName:   p.String("userName"),
				PersonName: p.String("personName"),
				Payment:    payment,
				PaidBy:     p.String("paidBy"),
			})
		},
		OpGetExtraStaff: func(ctx context.Context, p Params) (any, error) {
			staff, err := h.svc.Accounting.GetExtraStaff(ctx, p.Trimmed("businessDay"))
			return fiber.Map{"extraStaff": staff}, err
		},
		OpAddShiftNote: func(ctx context.Context, p Params) (any, error) {
			return fiber.Map{}, h.svc.Accounting.AddShiftNote(ctx, services.ShiftNoteRequest{
				UserName: p.String("userName"),
				UserRole: p.String("userRole"),
				Note:     p.String("note"),
			})
		},
		OpGetShiftNotes: func(ctx context.Context, p Params) (any, error) {
			notes, err := h.svc.Accounting.GetShiftNotes(ctx, p.Trimmed("businessDay"))
			return fiber.Map{"notes": notes}, err
		},
		OpCloseShift: func(ctx context.Context, p Params) (any, error) {
			cashCount, err := amount(p, "cashCount")
			if err != nil {
				return nil, err
			}
			summary, err := h.svc.Accounting.CloseShift(ctx, services.CloseShiftRequest{
				UserName:  p.String("userName"),
				CashCount: cashCount,
				Notes:     p.String("notes"),
			})
			return fiber.Map{"summary": summary}, err
		},
		OpMetrics: func(ctx context.Context, p Params) (any, error) {
			return h.svc.Accounting.Metrics(ctx, p.Trimmed("businessDay"), p.Trimmed("shiftId"))
		},
		OpMonthMetrics: func(ctx context.Context, p Params) (any, error) {
			return h.svc.Accounting.MonthMetrics(ctx, p.String("yearMonth"))
		},

		OpGetStaff: func(ctx context.Context, _ Params) (any, error) {
			staff, err := h.svc.Staff.GetStaff(ctx)
			return fiber.Map{"staff": staff}, err
		},
		OpSaveStaff: func(ctx context.Context, p Params) (any, error) {
			return fiber.Map{}, h.svc.Staff.SaveStaff(ctx, services.SaveStaffRequest{
				UserRole: p.String("userRole"),
				ID:       p.String("id"),
				Name:     p.String("name"),
				Area:     p.String("area"),
				Active:   p.OptionalBool("active"),
			})
		},
		OpGetSchedule: func(ctx context.Context, p Params) (any, error) {
			schedule, err := h.svc.Staff.GetSchedule(ctx, p.String("weekStart"))
			return fiber.Map{"schedule": schedule}, err
		},
		OpSaveSchedule: func(ctx context.Context, p Params) (any, error) {
			var entries []services.ScheduleEntryInput
			if err := p.Decode("entries", &entries); err != nil {
				return nil, apperr.Validation("Entradas invalidas")
			}
			return h.svc.Staff.SaveSchedule(ctx, services.SaveScheduleRequest{
				UserRole:  p.String("userRole"),
				WeekStart: p.String("weekStart"),
				Entries:   entries,
			})
		},
		OpSetDailyGoal: func(ctx context.Context, p Params) (any, error) {
			value, err := amount(p, "goal")
			if err != nil {
				return nil, err
			}
			goal, err := h.svc.Staff.SetDailyGoal(ctx, p.String("userRole"), value)
			return fiber.Map{"goal": goal}, err
		},

		OpSetReceptionPin: func(ctx context.Context, p Params) (any, error) {
			return fiber.Map{}, h.svc.Auth.SetReceptionPin(ctx, p.String("userRole"), p.String("targetName"), p.String("pin"))
		},
		OpGetReceptionPins: func(ctx context.Context, p Params) (any, error) {
			pins, err := h.svc.Auth.GetReceptionPins(ctx, p.String("userRole"))
			return fiber.Map{"pins": pins}, err
		},
		OpChangeAdminPin: func(ctx context.Context, p Params) (any, error) {
			return fiber.Map{}, h.svc.Auth.ChangeAdminPin(ctx, p.String("userRole"), p.String("currentPin"), p.String("newPin"))
		},
	}
}

// amount reads a peso value; pesos have no fractional unit.
func amount(p Params, key string) (int64, error) {
	v, ok := p.Whole(key)
	if !ok {
		return 0, apperr.Validation("Monto invalido: " + key)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
