package model

import "time"

// 换班申请状态；approved / rejected 为终态
const (
	ExchangeStatusPending  = "pending"
	ExchangeStatusApproved = "approved"
	ExchangeStatusRejected = "rejected"
)

// ExchangeRequest 换班申请表，对应 exchange_requests
// OfferedShiftID 非空为互换，为空为接班；RequesteeID 为空表示开放给所有人
type ExchangeRequest struct {
	ID             uint       `gorm:"primaryKey;autoIncrement"                    json:"id"`
	RequesterID    uint       `gorm:"not null;index"                              json:"requester_id"`
	RequesteeID    *uint      `gorm:"index"                                       json:"requestee_id,omitempty"`
	RequestShiftID uint       `gorm:"not null;index"                              json:"request_shift_id"`
	OfferedShiftID *uint      `gorm:"index"                                       json:"offered_shift_id,omitempty"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes          string     `gorm:"type:varchar(500)"                           json:"notes,omitempty"`
	RejectReason   string     `gorm:"type:varchar(500)"                           json:"reject_reason,omitempty"`
	ResolvedBy     *uint      `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	Version        int        `gorm:"not null;default:1"                          json:"version"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"          json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"          json:"updated_at"`

	// 关联
	RequestShift *Shift `gorm:"foreignKey:RequestShiftID;references:ID" json:"request_shift,omitempty"`
	OfferedShift *Shift `gorm:"foreignKey:OfferedShiftID;references:ID" json:"offered_shift,omitempty"`
}

// TableName 指定表名
func (ExchangeRequest) TableName() string { return "exchange_requests" }

// IsPending 是否待处理
func (r *ExchangeRequest) IsPending() bool { return r.Status == ExchangeStatusPending }

// IsOpen 未指定被申请人
func (r *ExchangeRequest) IsOpen() bool { return r.RequesteeID == nil }
