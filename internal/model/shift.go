package model

import "time"

// Shift 班次表，对应 shifts
// Date 为日历日（UTC 零点），StartTime/EndTime 以 UTC 存储
// WorkerID 为空表示未分配
type Shift struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"   json:"id"`
	WorkplaceID uint      `gorm:"not null;index"             json:"workplace_id"`
	WorkerID    *uint     `gorm:"index"                      json:"worker_id,omitempty"`
	Date        time.Time `gorm:"type:date;not null"         json:"date"`
	StartTime   time.Time `gorm:"not null"                   json:"start_time"`
	EndTime     time.Time `gorm:"not null"                   json:"end_time"`
	Notes       string    `gorm:"type:text"                  json:"notes,omitempty"`
	VersionedModel

	// 关联
	Workplace *Workplace `gorm:"foreignKey:WorkplaceID;references:ID" json:"workplace,omitempty"`
	Worker    *Worker    `gorm:"foreignKey:WorkerID;references:ID"    json:"worker,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

// OwnedBy 班次是否属于指定员工
func (s *Shift) OwnedBy(workerID uint) bool {
	return s.WorkerID != nil && *s.WorkerID == workerID
}
