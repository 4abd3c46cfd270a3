package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Hozymaister/Workshift-sub001/internal/service"
	pkgerrors "github.com/Hozymaister/Workshift-sub001/pkg/errors"
	"github.com/Hozymaister/Workshift-sub001/pkg/response"
)

// errorMapping 业务错误 → HTTP 状态码 + 业务码
type errorMapping struct {
	err    error
	status int
	code   int
}

// 按顺序匹配，第一个 errors.Is 命中的生效
var errorMappings = []errorMapping{
	// 排班 2xxxx
	{service.ErrInvalidInterval, http.StatusBadRequest, 20001},
	{service.ErrShiftDateMismatch, http.StatusBadRequest, 20002},
	{service.ErrSchedulingConflict, http.StatusConflict, 20003},
	{service.ErrShiftNotFound, http.StatusNotFound, 20004},
	{service.ErrWorkplaceNotFound, http.StatusNotFound, 20005},
	{service.ErrWorkerNotFound, http.StatusNotFound, 20006},
	{service.ErrReferencedByPendingExchange, http.StatusConflict, 20007},

	// 换班 21xxx
	{service.ErrNotOwner, http.StatusForbidden, 21001},
	{service.ErrShiftInPast, http.StatusBadRequest, 21002},
	{service.ErrInvalidTransition, http.StatusConflict, 21003},
	{service.ErrNotEligible, http.StatusForbidden, 21004},
	{service.ErrSameShift, http.StatusBadRequest, 21005},
	{service.ErrSelfExchange, http.StatusBadRequest, 21006},
	{service.ErrExchangeNotFound, http.StatusNotFound, 21007},

	// 报表 22xxx
	{service.ErrReportNotFound, http.StatusNotFound, 22001},
	{service.ErrInvalidPeriod, http.StatusBadRequest, 22002},
	{service.ErrExportGenerateFail, http.StatusInternalServerError, 22003},
}

// handleServiceError 统一处理业务层错误
func handleServiceError(c *gin.Context, err error) {
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		response.Conflict(c, 10006, "数据已被修改，请刷新后重试")
		return
	}

	var conflict *service.SchedulingConflictError
	if errors.As(err, &conflict) && len(conflict.ShiftIDs) > 0 {
		ids := make([]string, len(conflict.ShiftIDs))
		for i, id := range conflict.ShiftIDs {
			ids[i] = fmt.Sprint(id)
		}
		response.ConflictWithDetails(c, 20003, service.ErrSchedulingConflict.Error(),
			"conflicting_shift_ids="+strings.Join(ids, ","))
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.status == http.StatusInternalServerError {
				response.InternalError(c)
				return
			}
			response.Error(c, m.status, m.code, m.err.Error())
			return
		}
	}

	_ = c.Error(err)
	response.InternalError(c)
}
