package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Hozymaister/Workshift-sub001/internal/dto"
	"github.com/Hozymaister/Workshift-sub001/internal/service"
	"github.com/Hozymaister/Workshift-sub001/pkg/response"
)

// ExchangeHandler 换班模块 HTTP 处理器
// 审批资格由 Service 层按操作人和策略判断，这里只传递操作人 ID
type ExchangeHandler struct {
	exchangeSvc service.ExchangeService
}

// NewExchangeHandler 创建 ExchangeHandler
func NewExchangeHandler(exchangeSvc service.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{exchangeSvc: exchangeSvc}
}

// ProposeExchange 发起换班申请
// POST /api/v1/exchanges
func (h *ExchangeHandler) ProposeExchange(c *gin.Context) {
	var req dto.ProposeExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	requesterID, ok := MustGetActorID(c)
	if !ok {
		return
	}

	exchange, err := h.exchangeSvc.Propose(c.Request.Context(), &req, requesterID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, exchange)
}

// ApproveExchange 审批通过
// POST /api/v1/exchanges/:id/approve
func (h *ExchangeHandler) ApproveExchange(c *gin.Context) {
	id, ok := parseID(c, "id", "换班申请")
	if !ok {
		return
	}

	actorID, ok := MustGetActorID(c)
	if !ok {
		return
	}

	result, err := h.exchangeSvc.Approve(c.Request.Context(), id, actorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// RejectExchange 拒绝或撤回
// POST /api/v1/exchanges/:id/reject
func (h *ExchangeHandler) RejectExchange(c *gin.Context) {
	id, ok := parseID(c, "id", "换班申请")
	if !ok {
		return
	}

	// 请求体可省略
	var req dto.RejectExchangeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
	}

	actorID, ok := MustGetActorID(c)
	if !ok {
		return
	}

	exchange, err := h.exchangeSvc.Reject(c.Request.Context(), id, actorID, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, exchange)
}

// GetExchange 获取换班申请详情
// GET /api/v1/exchanges/:id
func (h *ExchangeHandler) GetExchange(c *gin.Context) {
	id, ok := parseID(c, "id", "换班申请")
	if !ok {
		return
	}

	exchange, err := h.exchangeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, exchange)
}

// ListPending 待处理申请
// GET /api/v1/exchanges/pending?requestee_id=&workplace_id=
// 非管理员固定查看可由本人处理的申请
func (h *ExchangeHandler) ListPending(c *gin.Context) {
	var q dto.PendingExchangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	actorID, ok := MustGetActorID(c)
	if !ok {
		return
	}
	if !isAdmin(c) {
		q.RequesteeID = &actorID
	}

	list, err := h.exchangeSvc.ListPending(c.Request.Context(), &q)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListMine 我发起或收到的申请
// GET /api/v1/exchanges/mine
func (h *ExchangeHandler) ListMine(c *gin.Context) {
	actorID, ok := MustGetActorID(c)
	if !ok {
		return
	}

	list, err := h.exchangeSvc.ListForWorker(c.Request.Context(), actorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}
