package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hozymaister/Workshift-sub001/internal/dto"
	"github.com/Hozymaister/Workshift-sub001/internal/service"
	"github.com/Hozymaister/Workshift-sub001/pkg/response"
)

// WorkplaceHandler 工作地点模块 HTTP 处理器
type WorkplaceHandler struct {
	workplaceSvc service.WorkplaceService
}

// NewWorkplaceHandler 创建 WorkplaceHandler
func NewWorkplaceHandler(workplaceSvc service.WorkplaceService) *WorkplaceHandler {
	return &WorkplaceHandler{workplaceSvc: workplaceSvc}
}

// ListWorkplaces 获取工作地点列表
// GET /api/v1/workplaces
func (h *WorkplaceHandler) ListWorkplaces(c *gin.Context) {
	var req dto.WorkplaceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	workplaces, err := h.workplaceSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": workplaces})
}

// GetWorkplace 获取工作地点详情
// GET /api/v1/workplaces/:id
func (h *WorkplaceHandler) GetWorkplace(c *gin.Context) {
	id, ok := parseID(c, "id", "工作地点")
	if !ok {
		return
	}

	wp, err := h.workplaceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, wp)
}

// CreateWorkplace 创建工作地点
// POST /api/v1/workplaces
func (h *WorkplaceHandler) CreateWorkplace(c *gin.Context) {
	var req dto.CreateWorkplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetActorID(c)
	if !ok {
		return
	}

	wp, err := h.workplaceSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, wp)
}

// UpdateWorkplace 更新工作地点
// PUT /api/v1/workplaces/:id
func (h *WorkplaceHandler) UpdateWorkplace(c *gin.Context) {
	id, ok := parseID(c, "id", "工作地点")
	if !ok {
		return
	}

	var req dto.UpdateWorkplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetActorID(c)
	if !ok {
		return
	}

	wp, err := h.workplaceSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, wp)
}

// DeleteWorkplace 删除工作地点
// DELETE /api/v1/workplaces/:id
func (h *WorkplaceHandler) DeleteWorkplace(c *gin.Context) {
	id, ok := parseID(c, "id", "工作地点")
	if !ok {
		return
	}

	callerID, ok := MustGetActorID(c)
	if !ok {
		return
	}

	if err := h.workplaceSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
