package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService 导出服务（Excel/CSV）
type ExportService struct {
	logRepo       *repository.ProductionLogRepository
	componentRepo *repository.ComponentRepository
	moldRepo      *repository.MoldRepository
}

// NewExportService 创建导出服务
func NewExportService(logRepo *repository.ProductionLogRepository, componentRepo *repository.ComponentRepository, moldRepo *repository.MoldRepository) *ExportService {
	return &ExportService{logRepo: logRepo, componentRepo: componentRepo, moldRepo: moldRepo}
}

var moldExportHeaders = []string{"编号", "描述", "状态", "位置类型", "位置", "制造商", "型腔数", "尺寸", "创建时间"}

// ExportMolds 导出模具清单Excel
func (s *ExportService) ExportMolds(ctx context.Context, filters map[string]string) (*excelize.File, string, error) {
	molds, err := s.moldRepo.List(ctx, filters)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Molds"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range moldExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, mold := range molds {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), mold.Code)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), mold.Description)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), mold.Status)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), mold.LocationType)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), mold.Location)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), mold.Manufacturer)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), mold.CavityCount)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), mold.Dimensions)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), mold.CreatedAt.Format("2006-01-02 15:04"))
	}

	filename := fmt.Sprintf("molds_%s.xlsx", time.Now().Format("20060102_150405"))
	return f, filename, nil
}

// ExportMoldsCSV 导出模具清单CSV
func (s *ExportService) ExportMoldsCSV(ctx context.Context, filters map[string]string) ([]byte, string, error) {
	molds, err := s.moldRepo.List(ctx, filters)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"code", "description", "status", "location_type", "location", "manufacturer", "cavity_count", "dimensions", "created_at"}); err != nil {
		return nil, "", err
	}
	for _, mold := range molds {
		record := []string{
			mold.Code,
			mold.Description,
			mold.Status,
			mold.LocationType,
			mold.Location,
			mold.Manufacturer,
			strconv.Itoa(mold.CavityCount),
			mold.Dimensions,
			mold.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("molds_%s.csv", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

var productionExportHeaders = []string{"记录ID", "良品数", "废品数", "合计", "废品原因", "记录时间"}

// ExportProductionLogs 导出零件生产记录Excel
func (s *ExportService) ExportProductionLogs(ctx context.Context, componentID string) (*excelize.File, string, error) {
	component, err := s.componentRepo.FindByID(ctx, componentID)
	if err != nil {
		return nil, "", err
	}
	logs, err := s.logRepo.ListByComponent(ctx, componentID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Production"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range productionExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	var totalGood, totalScrapped int
	for rowIdx, logEntry := range logs {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), logEntry.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), logEntry.GoodPieces)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), logEntry.ScrappedPieces)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), logEntry.TotalPieces())
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), logEntry.ScrapReason)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), logEntry.CreatedAt.Format("2006-01-02 15:04"))
		totalGood += logEntry.GoodPieces
		totalScrapped += logEntry.ScrappedPieces
	}

	// 汇总行
	sumRow := len(logs) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", sumRow), "合计")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", sumRow), totalGood)
	f.SetCellValue(sheet, fmt.Sprintf("C%d", sumRow), totalScrapped)
	f.SetCellValue(sheet, fmt.Sprintf("D%d", sumRow), totalGood+totalScrapped)

	filename := fmt.Sprintf("production_%s_%s.xlsx", component.Code, time.Now().Format("20060102_150405"))
	return f, filename, nil
}

// ExportProductionCSV 导出零件生产记录CSV
func (s *ExportService) ExportProductionCSV(ctx context.Context, componentID string) ([]byte, string, error) {
	component, err := s.componentRepo.FindByID(ctx, componentID)
	if err != nil {
		return nil, "", err
	}
	logs, err := s.logRepo.ListByComponent(ctx, componentID)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "good_pieces", "scrapped_pieces", "total", "scrap_reason", "created_at"}); err != nil {
		return nil, "", err
	}
	for _, logEntry := range logs {
		record := []string{
			logEntry.ID,
			strconv.Itoa(logEntry.GoodPieces),
			strconv.Itoa(logEntry.ScrappedPieces),
			strconv.Itoa(logEntry.TotalPieces()),
			logEntry.ScrapReason,
			logEntry.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("production_%s_%s.csv", component.Code, time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}
