package handler

import "github.com/Hozymaister/Workshift-sub001/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Workplace *WorkplaceHandler
	Shift     *ShiftHandler
	Exchange  *ExchangeHandler
	Report    *ReportHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Workplace: NewWorkplaceHandler(svc.Workplace),
		Shift:     NewShiftHandler(svc.Shift),
		Exchange:  NewExchangeHandler(svc.Exchange),
		Report:    NewReportHandler(svc.Report),
		Export:    NewExportHandler(svc.Export),
	}
}
