package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hozymaister/Workshift-sub001/internal/dto"
	"github.com/Hozymaister/Workshift-sub001/internal/service"
	"github.com/Hozymaister/Workshift-sub001/pkg/response"
)

// ReportHandler 工时报表模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// GenerateReport 生成月度工时报表
// POST /api/v1/reports
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	var req dto.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actorID, ok := MustGetActorID(c)
	if !ok {
		return
	}
	userID, ok := resolveSubject(c, actorID, req.UserID)
	if !ok {
		return
	}

	report, err := h.reportSvc.Generate(c.Request.Context(), userID, req.Month, req.Year)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, report)
}

// ListReports 报表列表
// GET /api/v1/reports?user_id=
func (h *ReportHandler) ListReports(c *gin.Context) {
	var req dto.ReportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actorID, ok := MustGetActorID(c)
	if !ok {
		return
	}
	userID, ok := resolveSubject(c, actorID, req.UserID)
	if !ok {
		return
	}

	reports, err := h.reportSvc.ListReports(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": reports})
}

// GetReport 报表详情（员工只能查看本人报表）
// GET /api/v1/reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	id, ok := parseID(c, "id", "报表")
	if !ok {
		return
	}

	actorID, ok := MustGetActorID(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if _, ok := resolveSubject(c, actorID, &report.UserID); !ok {
		return
	}

	response.OK(c, report)
}
