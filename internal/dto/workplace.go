package dto

// ── 工作地点模块 DTO ──

// CreateWorkplaceRequest 创建工作地点请求
type CreateWorkplaceRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	Category  string `json:"category"   binding:"omitempty,oneof=warehouse event club office other"`
	Address   string `json:"address"    binding:"omitempty,max=200"`
	Notes     string `json:"notes"      binding:"omitempty,max=2000"`
	ManagerID *uint  `json:"manager_id"`
}

// UpdateWorkplaceRequest 更新工作地点请求
type UpdateWorkplaceRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=2,max=100"`
	Category  *string `json:"category"   binding:"omitempty,oneof=warehouse event club office other"`
	Address   *string `json:"address"    binding:"omitempty,max=200"`
	Notes     *string `json:"notes"      binding:"omitempty,max=2000"`
	ManagerID *uint   `json:"manager_id"`
	IsActive  *bool   `json:"is_active"`
}

// WorkplaceListRequest 工作地点列表查询参数
type WorkplaceListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// WorkplaceResponse 工作地点信息响应
type WorkplaceResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Address   string `json:"address,omitempty"`
	Notes     string `json:"notes,omitempty"`
	ManagerID *uint  `json:"manager_id,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// WorkplaceBrief 工作地点简要信息
type WorkplaceBrief struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}
