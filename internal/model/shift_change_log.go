package model

import "time"

// 班次变更类型
const (
	ChangeTypeAdminModify = "admin_modify"
	ChangeTypeSwap        = "swap"
	ChangeTypePickup      = "pickup"
)

// ShiftChangeLog 班次变更记录表，对应 shift_change_logs（纯审计日志，只增不改）
type ShiftChangeLog struct {
	ID                uint      `gorm:"primaryKey;autoIncrement"           json:"id"`
	ShiftID           uint      `gorm:"not null;index"                     json:"shift_id"`
	ExchangeRequestID *uint     `json:"exchange_request_id,omitempty"`
	OriginalWorkerID  *uint     `json:"original_worker_id,omitempty"`
	NewWorkerID       *uint     `json:"new_worker_id,omitempty"`
	ChangeType        string    `gorm:"type:varchar(20);not null"          json:"change_type"`
	OperatorID        uint      `gorm:"not null"                           json:"operator_id"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (ShiftChangeLog) TableName() string { return "shift_change_logs" }

// AllModels 全部模型，测试环境 AutoMigrate 使用
func AllModels() []interface{} {
	return []interface{}{
		&Worker{},
		&Workplace{},
		&Shift{},
		&ExchangeRequest{},
		&Report{},
		&ShiftChangeLog{},
	}
}
