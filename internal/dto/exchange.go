package dto

// ── 换班模块 DTO ──

// ProposeExchangeRequest 发起换班申请
// OfferedShiftID 为空表示请人接班；RequesteeID 为空表示开放给所有人
type ProposeExchangeRequest struct {
	RequestShiftID uint   `json:"request_shift_id" binding:"required"`
	OfferedShiftID *uint  `json:"offered_shift_id"`
	RequesteeID    *uint  `json:"requestee_id"`
	Notes          string `json:"notes"            binding:"omitempty,max=500"`
}

// RejectExchangeRequest 拒绝 / 撤回换班申请
type RejectExchangeRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// PendingExchangeQuery 待处理申请查询参数
type PendingExchangeQuery struct {
	RequesteeID *uint `form:"requestee_id"`
	WorkplaceID *uint `form:"workplace_id"`
}

// ExchangeResponse 换班申请响应
type ExchangeResponse struct {
	ID           uint           `json:"id"`
	Kind         string         `json:"kind"` // swap | pickup
	RequesterID  uint           `json:"requester_id"`
	RequesteeID  *uint          `json:"requestee_id,omitempty"`
	RequestShift *ShiftResponse `json:"request_shift,omitempty"`
	OfferedShift *ShiftResponse `json:"offered_shift,omitempty"`
	Status       string         `json:"status"`
	Notes        string         `json:"notes,omitempty"`
	RejectReason string         `json:"reject_reason,omitempty"`
	ResolvedBy   *uint          `json:"resolved_by,omitempty"`
	ResolvedAt   *string        `json:"resolved_at,omitempty"`
	CreatedAt    string         `json:"created_at"`
}

// ReassignmentResponse 单个班次的员工变更
type ReassignmentResponse struct {
	ShiftID      uint  `json:"shift_id"`
	FromWorkerID *uint `json:"from_worker_id,omitempty"`
	ToWorkerID   uint  `json:"to_worker_id"`
}

// ApproveExchangeResponse 审批通过响应
type ApproveExchangeResponse struct {
	Exchange      ExchangeResponse       `json:"exchange"`
	Reassignments []ReassignmentResponse `json:"reassignments"`
}
