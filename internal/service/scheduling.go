package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Hozymaister/Workshift-sub001/internal/dto"
	"github.com/Hozymaister/Workshift-sub001/internal/model"
	"github.com/Hozymaister/Workshift-sub001/internal/repository"
	pkgerrors "github.com/Hozymaister/Workshift-sub001/pkg/errors"
	"github.com/Hozymaister/Workshift-sub001/pkg/interval"
)

// ensureNoConflict 员工在 iv 内不得有其他有效班次；需在持有该员工行锁的事务中调用
func ensureNoConflict(ctx context.Context, repo *repository.Repository, workerID uint, iv interval.Interval, excludeIDs ...uint) error {
	conflicts, err := repo.Shift.FindOverlapping(ctx, workerID, iv.Start, iv.End, excludeIDs...)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}
	ids := make([]uint, len(conflicts))
	for i := range conflicts {
		ids[i] = conflicts[i].ID
	}
	return &SchedulingConflictError{WorkerID: workerID, ShiftIDs: ids}
}

// lockWorkers 对涉及的员工加锁；nil 表示未分配，跳过
func lockWorkers(ctx context.Context, repo *repository.Repository, ids ...*uint) error {
	var locked []uint
	for _, id := range ids {
		if id != nil {
			locked = append(locked, *id)
		}
	}
	if len(locked) == 0 {
		return nil
	}
	if _, err := repo.Worker.LockByIDs(ctx, locked...); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkerNotFound
		}
		return err
	}
	return nil
}

// lockShifts 按 id 升序锁定班次，返回与入参顺序一致的结果
func lockShifts(ctx context.Context, repo *repository.Repository, ids ...uint) ([]*model.Shift, error) {
	order := make([]int, len(ids))
	for i := range order {
		order[i] = i
	}
	// 插入排序：最多两个元素
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && ids[order[j]] < ids[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	out := make([]*model.Shift, len(ids))
	for _, idx := range order {
		shift, err := repo.Shift.GetByIDForUpdate(ctx, ids[idx])
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrShiftNotFound
			}
			return nil, err
		}
		out[idx] = shift
	}
	return out, nil
}

// translateWriteErr 将数据库约束错误转换为业务错误
func translateWriteErr(err error, workerID *uint) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.IsExclusionViolation(err):
		conflict := &SchedulingConflictError{}
		if workerID != nil {
			conflict.WorkerID = *workerID
		}
		return conflict
	case pkgerrors.IsForeignKeyViolation(err):
		switch pkgerrors.ConstraintName(err) {
		case "shifts_workplace_id_fkey":
			return ErrWorkplaceNotFound
		case "shifts_worker_id_fkey":
			return ErrWorkerNotFound
		}
		return ErrShiftNotFound
	}
	return err
}

func shiftInterval(s *model.Shift) interval.Interval {
	return interval.Interval{Start: s.StartTime, End: s.EndTime}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(dto.TimeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dto.DateLayout, s)
}

// parseDateRange 解析可选的 [from, to) 日期区间
func parseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var f, t *time.Time
	if from != "" {
		d, err := parseDate(from)
		if err != nil {
			return nil, nil, err
		}
		f = &d
	}
	if to != "" {
		d, err := parseDate(to)
		if err != nil {
			return nil, nil, err
		}
		t = &d
	}
	return f, t, nil
}

func toShiftResponse(s *model.Shift) *dto.ShiftResponse {
	hours := s.EndTime.Sub(s.StartTime).Hours()
	resp := &dto.ShiftResponse{
		ID:          s.ID,
		WorkplaceID: s.WorkplaceID,
		WorkerID:    s.WorkerID,
		Date:        s.Date.Format(dto.DateLayout),
		StartTime:   formatTime(s.StartTime),
		EndTime:     formatTime(s.EndTime),
		Hours:       hours,
		Duration:    interval.FormatDuration(hours),
		Notes:       s.Notes,
		Version:     s.Version,
		CreatedAt:   formatTime(s.CreatedAt),
		UpdatedAt:   formatTime(s.UpdatedAt),
	}
	if s.Workplace != nil {
		resp.Workplace = &dto.WorkplaceBrief{
			ID:       s.Workplace.ID,
			Name:     s.Workplace.Name,
			Category: s.Workplace.Category,
		}
	}
	return resp
}
