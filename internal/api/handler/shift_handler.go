package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hozymaister/Workshift-sub001/internal/dto"
	"github.com/Hozymaister/Workshift-sub001/internal/service"
	"github.com/Hozymaister/Workshift-sub001/pkg/response"
)

// ShiftHandler 班次模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// ListShifts 分页查询班次
// GET /api/v1/shifts?workplace_id=&worker_id=&from=&to=&unassigned_only=&page=&page_size=
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	var req dto.ShiftListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	shifts, total, err := h.shiftSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKPage(c, shifts, total, req.GetPage(), req.GetPageSize())
}

// GetShift 获取班次详情
// GET /api/v1/shifts/:id
func (h *ShiftHandler) GetShift(c *gin.Context) {
	id, ok := parseID(c, "id", "班次")
	if !ok {
		return
	}

	shift, err := h.shiftSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, shift)
}

// CreateShift 创建班次
// POST /api/v1/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetActorID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, shift)
}

// UpdateShift 更新班次（部分字段）
// PATCH /api/v1/shifts/:id
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	id, ok := parseID(c, "id", "班次")
	if !ok {
		return
	}

	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetActorID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, shift)
}

// DeleteShift 删除班次
// DELETE /api/v1/shifts/:id
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	id, ok := parseID(c, "id", "班次")
	if !ok {
		return
	}

	callerID, ok := MustGetActorID(c)
	if !ok {
		return
	}

	if err := h.shiftSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// CheckConflicts 查询员工在给定时段内的冲突班次
// GET /api/v1/shifts/conflicts?worker_id=&start_time=&end_time=&exclude_shift_id=
func (h *ShiftHandler) CheckConflicts(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	conflicts, err := h.shiftSvc.FindConflicts(c.Request.Context(), req.WorkerID, req.StartTime, req.EndTime, req.ExcludeShiftID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"has_conflict": len(conflicts) > 0, "list": conflicts})
}

// ListWorkerShifts 查询员工的班次（员工只能看本人，管理员可看任何人）
// GET /api/v1/workers/:id/shifts?from=&to=
func (h *ShiftHandler) ListWorkerShifts(c *gin.Context) {
	workerID, ok := parseID(c, "id", "员工")
	if !ok {
		return
	}

	var req dto.WorkerShiftsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actorID, ok := MustGetActorID(c)
	if !ok {
		return
	}
	if workerID, ok = resolveSubject(c, actorID, &workerID); !ok {
		return
	}

	shifts, err := h.shiftSvc.ListForWorker(c.Request.Context(), workerID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}
