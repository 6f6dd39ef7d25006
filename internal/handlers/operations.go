package handlers

// Operation is the value of the fn parameter that selects an /api call.
type Operation string

const (
	OpBootstrap         Operation = "bootstrap"
	OpGetRooms          Operation = "getRooms"
	OpLogin             Operation = "login"
	OpCheckIn           Operation = "checkIn"
	OpCheckOut          Operation = "checkOut"
	OpExtendTime        Operation = "extendTime"
	OpSilenceAlarm      Operation = "silenceAlarm"
	OpMaidFinish        Operation = "maidFinish"
	OpMaidLogAction     Operation = "maidLogAction"
	OpMaidMarkExit      Operation = "maidMarkExit"
	OpGetMaidLog        Operation = "getMaidLog"
	OpClearContaminated Operation = "clearContaminated"
	OpSetMinorNote      Operation = "setMinorNote"
	OpSetDisabled       Operation = "setDisabled"
	OpRefund            Operation = "refund"
	OpTaxi              Operation = "taxi"
	OpAddLoan           Operation = "addLoan"
	OpGetLoans          Operation = "getLoans"
	OpRegisterExtra     Operation = "registerExtraStaff"
	OpCheckoutExtra     Operation = "checkoutExtraStaff"
	OpGetExtraStaff     Operation = "getExtraStaff"
	OpAddShiftNote      Operation = "addShiftNote"
	OpGetShiftNotes     Operation = "getShiftNotes"
	OpCloseShift        Operation = "closeShift"
	OpMetrics           Operation = "metrics"
	OpMonthMetrics      Operation = "monthMetrics"
	OpMaidPanel         Operation = "maidPanel"
	OpGetStaff          Operation = "getStaff"
	OpSaveStaff         Operation = "saveStaff"
	OpGetSchedule       Operation = "getSchedule"
	OpSaveSchedule      Operation = "saveSchedule"
	OpSetDailyGoal      Operation = "setDailyGoal"
	OpSetReceptionPin   Operation = "setReceptionPin"
	OpGetReceptionPins  Operation = "getReceptionPins"
	OpChangeAdminPin    Operation = "changeAdminPin"
	OpRoomHistory       Operation = "roomHistory"
)

// Operations lists every operation the API accepts.
func Operations() []Operation {
	return []Operation{
		OpBootstrap, OpGetRooms, OpLogin,
		OpCheckIn, OpCheckOut, OpExtendTime, OpSilenceAlarm,
		OpMaidFinish, OpMaidLogAction, OpMaidMarkExit, OpGetMaidLog,
		OpClearContaminated, OpSetMinorNote, OpSetDisabled,
		OpRefund, OpTaxi, OpAddLoan, OpGetLoans,
		OpRegisterExtra, OpCheckoutExtra, OpGetExtraStaff,
		OpAddShiftNote, OpGetShiftNotes, OpCloseShift,
		OpMetrics, OpMonthMetrics, OpMaidPanel,
		OpGetStaff, OpSaveStaff, OpGetSchedule, OpSaveSchedule, OpSetDailyGoal,
		OpSetReceptionPin, OpGetReceptionPins, OpChangeAdminPin,
		OpRoomHistory,
	}
}
