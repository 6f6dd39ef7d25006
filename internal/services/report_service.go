package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const monthSheet = "Mes"

var monthHeaders = []string{"Dia", "Ventas", "Devoluciones", "Taxi", "Neto", "Personas", "Habitaciones"}

type ReportService interface {
	// MonthWorkbook renders monthMetrics for yearMonth as an .xlsx file.
	MonthWorkbook(ctx context.Context, yearMonth string) ([]byte, error)
}

type reportService struct {
	accounting AccountingService
	logger     *zap.Logger
}

func NewReportService(accounting AccountingService, logger *zap.Logger) ReportService {
	return &reportService{
		accounting: accounting,
		logger:     logger,
	}
}

func (s *reportService) MonthWorkbook(ctx context.Context, yearMonth string) ([]byte, error) {
	metrics, err := s.accounting.MonthMetrics(ctx, yearMonth)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", monthSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(monthSheet, "A1", &monthHeaders); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(monthSheet, "A1", "G1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	row := 2
	for _, d := range metrics.Days {
		values := []interface{}{d.Day, d.Sales, d.Refunds, d.Taxi, d.Net, d.People, d.RoomsSold}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(monthSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write day %s: %w", d.Day, err)
		}
		row++
	}

	t := metrics.MonthTotals
	totals := []interface{}{"Total", t.Sales, t.Refunds, t.Taxi, t.Net, t.People, t.RoomsSold}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(monthSheet, cell, &totals); err != nil {
		return nil, fmt.Errorf("write totals: %w", err)
	}
	if err := f.SetCellStyle(monthSheet, cell, fmt.Sprintf("G%d", row), bold); err != nil {
		return nil, fmt.Errorf("style totals: %w", err)
	}
	if err := f.SetColWidth(monthSheet, "A", "G", 14); err != nil {
		return nil, fmt.Errorf("set widths: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
