package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/jaytnw/motel-service/internal/apperr"
	"github.com/jaytnw/motel-service/internal/services"
	"github.com/jaytnw/motel-service/internal/utils"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	service services.ReportService
	logger  *zap.Logger
}

func NewReportHandler(service services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{service: service, logger: logger}
}

// MonthWorkbook streams the month's sales report as an xlsx attachment.
func (h *ReportHandler) MonthWorkbook(c fiber.Ctx) error {
	yearMonth := c.Query("yearMonth")

	data, err := h.service.MonthWorkbook(c.Context(), yearMonth)
	if err != nil {
		if ae, ok := apperr.As(err); ok && ae.Status < fiber.StatusInternalServerError {
			return utils.Error(c, ae.Status, ae.Message)
		}
		h.logger.Error("month report failed", zap.String("yearMonth", yearMonth), zap.Error(err))
		return utils.Error(c, fiber.StatusInternalServerError, "No se pudo generar el reporte")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="ventas-`+yearMonth+`.xlsx"`)
	return c.Status(fiber.StatusOK).Send(data)
}
