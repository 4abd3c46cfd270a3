package dto

import "time"

// ── 班次模块 DTO ──

// CreateShiftRequest 创建班次请求
// StartTime/EndTime 为带时区偏移的 RFC3339 时间，Date 为调用方时区下的日历日
type CreateShiftRequest struct {
	WorkplaceID uint      `json:"workplace_id" binding:"required"`
	WorkerID    *uint     `json:"worker_id"`
	Date        string    `json:"date"         binding:"required,datetime=2006-01-02"`
	StartTime   time.Time `json:"start_time"   binding:"required"`
	EndTime     time.Time `json:"end_time"     binding:"required"`
	Notes       string    `json:"notes"        binding:"omitempty,max=2000"`
}

// UpdateShiftRequest 更新班次请求（字段均可选）
// Unassign=true 时清空员工，优先于 WorkerID
type UpdateShiftRequest struct {
	WorkplaceID *uint      `json:"workplace_id"`
	WorkerID    *uint      `json:"worker_id"`
	Unassign    bool       `json:"unassign"`
	Date        *string    `json:"date"       binding:"omitempty,datetime=2006-01-02"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Notes       *string    `json:"notes"      binding:"omitempty,max=2000"`
}

// ShiftListRequest 班次列表查询参数（日期区间为 [from, to)）
type ShiftListRequest struct {
	WorkplaceID    *uint  `form:"workplace_id"`
	WorkerID       *uint  `form:"worker_id"`
	From           string `form:"from"            binding:"omitempty,datetime=2006-01-02"`
	To             string `form:"to"              binding:"omitempty,datetime=2006-01-02"`
	UnassignedOnly bool   `form:"unassigned_only"`
	PaginationRequest
}

// WorkerShiftsRequest 员工班次查询参数
type WorkerShiftsRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
}

// ConflictCheckRequest 冲突检测查询参数
type ConflictCheckRequest struct {
	WorkerID       uint      `form:"worker_id"        binding:"required"`
	StartTime      time.Time `form:"start_time"       binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime        time.Time `form:"end_time"         binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	ExcludeShiftID *uint     `form:"exclude_shift_id"`
}

// ShiftResponse 班次信息响应
type ShiftResponse struct {
	ID          uint            `json:"id"`
	WorkplaceID uint            `json:"workplace_id"`
	Workplace   *WorkplaceBrief `json:"workplace,omitempty"`
	WorkerID    *uint           `json:"worker_id,omitempty"`
	Date        string          `json:"date"`
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time"`
	Hours       float64         `json:"hours"`
	Duration    string          `json:"duration"`
	Notes       string          `json:"notes,omitempty"`
	Version     int             `json:"version"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}
