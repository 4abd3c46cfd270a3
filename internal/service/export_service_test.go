package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestExportService_ExportTimesheet(t *testing.T) {
	f := newFixture(t)
	svc := NewExportService(f.repo, zap.NewNop())
	w := f.worker(t, "张三")

	f.shift(t, w, day(5, 9), day(5, 17))
	f.shift(t, w, day(4, 9), day(4, 12))
	f.shift(t, w, at(2024, 4, 1, 9, 0), at(2024, 4, 1, 17, 0)) // 4 月，不导出

	buf, filename, err := svc.ExportTimesheet(context.Background(), w.ID, 3, 2024)
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if !strings.HasSuffix(filename, "2024-03.xlsx") {
		t.Errorf("文件名错误: %s", filename)
	}

	xf, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("解析导出文件失败: %v", err)
	}
	defer xf.Close()

	rows, err := xf.GetRows("工时表")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	// 标题 + 表头 + 2 个班次 + 合计
	if len(rows) != 5 {
		t.Fatalf("期望 5 行，实际 %d: %v", len(rows), rows)
	}
	if rows[2][0] != "2024-03-04" || rows[3][0] != "2024-03-05" {
		t.Errorf("班次应按开始时间升序，实际 %v / %v", rows[2], rows[3])
	}
	if rows[2][1] != f.workplace.Name {
		t.Errorf("应导出工作地点名称，实际 %q", rows[2][1])
	}
	if rows[4][0] != "合计" || rows[4][5] != "11 h 0 m" {
		t.Errorf("合计行错误: %v", rows[4])
	}
}

func TestExportService_ExportTimesheet_Errors(t *testing.T) {
	f := newFixture(t)
	svc := NewExportService(f.repo, zap.NewNop())
	w := f.worker(t, "张三")
	ctx := context.Background()

	if _, _, err := svc.ExportTimesheet(ctx, 9999, 3, 2024); !errors.Is(err, ErrWorkerNotFound) {
		t.Errorf("期望 ErrWorkerNotFound，实际: %v", err)
	}
	if _, _, err := svc.ExportTimesheet(ctx, w.ID, 13, 2024); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("期望 ErrInvalidPeriod，实际: %v", err)
	}
}
