package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Hozymaister/Workshift-sub001/pkg/interval"
)

// ── 排班模块业务错误 ──

var (
	ErrInvalidInterval             = interval.ErrInvalidInterval
	ErrSchedulingConflict          = errors.New("排班冲突：员工在该时间段已有班次")
	ErrShiftNotFound               = errors.New("班次不存在")
	ErrExchangeNotFound            = errors.New("换班申请不存在")
	ErrReportNotFound              = errors.New("报表不存在")
	ErrWorkplaceNotFound           = errors.New("工作地点不存在")
	ErrWorkerNotFound              = errors.New("员工不存在")
	ErrNotOwner                    = errors.New("班次不属于该员工")
	ErrShiftInPast                 = errors.New("班次已开始，不能发起或完成换班")
	ErrInvalidTransition           = errors.New("换班申请已处理，不能再变更状态")
	ErrReferencedByPendingExchange = errors.New("班次被待处理的换班申请引用，不能删除")
	ErrNotEligible                 = errors.New("无权处理该换班申请")
	ErrSameShift                   = errors.New("提供的班次不能与申请的班次相同")
	ErrSelfExchange                = errors.New("不能向自己发起换班")
	ErrShiftDateMismatch           = errors.New("班次日期与开始时间不一致")
	ErrInvalidPeriod               = errors.New("报表周期无效")
)

// SchedulingConflictError 携带冲突班次的排班冲突错误，errors.Is 可匹配 ErrSchedulingConflict
type SchedulingConflictError struct {
	WorkerID uint
	ShiftIDs []uint
}

func (e *SchedulingConflictError) Error() string {
	if len(e.ShiftIDs) == 0 {
		return fmt.Sprintf("%s（员工 %d）", ErrSchedulingConflict.Error(), e.WorkerID)
	}
	ids := make([]string, len(e.ShiftIDs))
	for i, id := range e.ShiftIDs {
		ids[i] = strconv.FormatUint(uint64(id), 10)
	}
	return fmt.Sprintf("%s（员工 %d，冲突班次 %s）", ErrSchedulingConflict.Error(), e.WorkerID, strings.Join(ids, ","))
}

func (e *SchedulingConflictError) Unwrap() error { return ErrSchedulingConflict }

// isRuleViolation 业务规则类错误不记录 Error 日志
func isRuleViolation(err error) bool {
	for _, target := range []error{
		ErrInvalidInterval, ErrSchedulingConflict, ErrShiftNotFound, ErrExchangeNotFound,
		ErrReportNotFound, ErrWorkplaceNotFound, ErrWorkerNotFound, ErrNotOwner,
		ErrShiftInPast, ErrInvalidTransition, ErrReferencedByPendingExchange, ErrNotEligible,
		ErrSameShift, ErrSelfExchange, ErrShiftDateMismatch, ErrInvalidPeriod,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// logFailure 基础设施错误记录 Error 日志，业务规则错误直接返回给调用方
func logFailure(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	if isRuleViolation(err) {
		return
	}
	logger.Error(msg, append(fields, zap.Error(err))...)
}
