package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hozymaister/Workshift-sub001/internal/repository"
	"github.com/Hozymaister/Workshift-sub001/pkg/interval"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写出
type ExportService interface {
	// ExportTimesheet 导出员工某月工时表
	ExportTimesheet(ctx context.Context, userID uint, month, year int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// 工时表列头
var timesheetHeaders = []string{"日期", "工作地点", "开始", "结束", "小时", "时长"}

// ═══════════════════════════════════════════════════════════
// ExportTimesheet 导出工时表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "工时表"
//   - 第 1 行标题：员工姓名 + 年月
//   - 第 2 行表头，其后每个班次一行（按开始时间升序）
//   - 末行合计，与报表使用同一取整规则

func (s *exportService) ExportTimesheet(ctx context.Context, userID uint, month, year int) (*bytes.Buffer, string, error) {
	worker, err := s.repo.Worker.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrWorkerNotFound
		}
		s.logger.Error("查询员工失败", zap.Uint("user_id", userID), zap.Error(err))
		return nil, "", err
	}

	total, err := sumMonth(ctx, s.repo, userID, month, year)
	if err != nil {
		logFailure(s.logger, "汇总工时失败", err, zap.Uint("user_id", userID))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "工时表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 24)
	f.SetColWidth(sheetName, "C", "D", 20)
	f.SetColWidth(sheetName, "E", "F", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s %04d-%02d 工时表", worker.Name, year, month))
	f.MergeCell(sheetName, "A1", cell(colName(len(timesheetHeaders)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range timesheetHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(timesheetHeaders)-1), 2), headerStyle)

	// 数据行
	row := 3
	for i := range total.shifts {
		sh := &total.shifts[i]
		hours := sh.EndTime.Sub(sh.StartTime).Hours()
		workplace := fmt.Sprintf("#%d", sh.WorkplaceID)
		if sh.Workplace != nil {
			workplace = sh.Workplace.Name
		}

		f.SetCellValue(sheetName, cell("A", row), sh.Date.Format("2006-01-02"))
		f.SetCellValue(sheetName, cell("B", row), workplace)
		f.SetCellValue(sheetName, cell("C", row), formatTime(sh.StartTime))
		f.SetCellValue(sheetName, cell("D", row), formatTime(sh.EndTime))
		f.SetCellValue(sheetName, cell("E", row), round2(hours))
		f.SetCellValue(sheetName, cell("F", row), interval.FormatDuration(hours))
		row++
	}

	// 合计行
	totalHours := float64(total.minutes) / 60
	f.SetCellValue(sheetName, cell("A", row), "合计")
	f.SetCellValue(sheetName, cell("E", row), round2(totalHours))
	f.SetCellValue(sheetName, cell("F", row), interval.FormatDuration(totalHours))

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("工时表_%s_%04d-%02d.xlsx", worker.Name, year, month)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
