package dto

// ── 报表模块 DTO ──

// GenerateReportRequest 生成工时报表请求
// UserID 为空时为当前用户生成；为他人生成需要管理员权限
type GenerateReportRequest struct {
	UserID *uint `json:"user_id"`
	Month  int   `json:"month" binding:"required"`
	Year   int   `json:"year"  binding:"required"`
}

// ReportListRequest 报表列表查询参数
type ReportListRequest struct {
	UserID *uint `form:"user_id"`
}

// TimesheetExportRequest 工时表导出参数
type TimesheetExportRequest struct {
	UserID *uint `form:"user_id"`
	Month  int   `form:"month" binding:"required"`
	Year   int   `form:"year"  binding:"required"`
}

// ReportResponse 工时报表响应
type ReportResponse struct {
	ID           uint     `json:"id"`
	UserID       uint     `json:"user_id"`
	Month        int      `json:"month"`
	Year         int      `json:"year"`
	TotalMinutes int64    `json:"total_minutes"`
	TotalHours   float64  `json:"total_hours"`
	Duration     string   `json:"duration"`
	ShiftCount   int      `json:"shift_count"`
	HourlyWage   *float64 `json:"hourly_wage,omitempty"`
	TotalPay     *float64 `json:"total_pay,omitempty"`
	GeneratedAt  string   `json:"generated_at"`
}
