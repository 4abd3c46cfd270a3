package model

import "time"

// Report 工时报表，对应 reports（生成后不可修改）
// TotalMinutes 为精确值，TotalHours = TotalMinutes / 60 保留两位小数
type Report struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"           json:"id"`
	UserID       uint      `gorm:"not null;index"                     json:"user_id"`
	Month        int       `gorm:"not null"                           json:"month"`
	Year         int       `gorm:"not null"                           json:"year"`
	TotalMinutes int64     `gorm:"not null"                           json:"total_minutes"`
	TotalHours   float64   `gorm:"type:numeric(10,2);not null"        json:"total_hours"`
	ShiftCount   int       `gorm:"not null"                           json:"shift_count"`
	HourlyWage   *float64  `gorm:"type:numeric(10,2)"                 json:"hourly_wage,omitempty"`
	TotalPay     *float64  `gorm:"type:numeric(12,2)"                 json:"total_pay,omitempty"`
	GeneratedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"generated_at"`
}

// TableName 指定表名
func (Report) TableName() string { return "reports" }
