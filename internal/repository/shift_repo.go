package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Hozymaister/Workshift-sub001/internal/model"
	pkgerrors "github.com/Hozymaister/Workshift-sub001/pkg/errors"
)

// ShiftFilter 班次列表过滤条件；From/To 作用于 date，半开区间 [From, To)
type ShiftFilter struct {
	WorkplaceID    *uint
	WorkerID       *uint
	From           *time.Time
	To             *time.Time
	UnassignedOnly bool
}

// ShiftRepository 班次数据访问接口
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id uint) (*model.Shift, error)
	// GetByIDForUpdate 读取并锁定班次行，需在事务中调用
	GetByIDForUpdate(ctx context.Context, id uint) (*model.Shift, error)
	Update(ctx context.Context, shift *model.Shift) error
	Delete(ctx context.Context, shift *model.Shift, deletedBy uint) error
	List(ctx context.Context, filter ShiftFilter, offset, limit int) ([]model.Shift, int64, error)
	ListByWorker(ctx context.Context, workerID uint, from, to *time.Time) ([]model.Shift, error)
	// FindOverlapping 查找员工在 [start, end) 内有重叠的有效班次，排除 excludeIDs
	FindOverlapping(ctx context.Context, workerID uint, start, end time.Time, excludeIDs ...uint) ([]model.Shift, error)
	CountByWorkerAtWorkplace(ctx context.Context, workerID, workplaceID uint) (int64, error)
}

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo 创建 ShiftRepository 实例
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id uint) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("Workplace").
		Where("id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.Shift, error) {
	var shift model.Shift
	err := forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// Update 乐观锁更新：version 不匹配时返回 ErrOptimisticLock
func (r *shiftRepo) Update(ctx context.Context, shift *model.Shift) error {
	oldVersion := shift.Version
	result := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("id = ? AND version = ?", shift.ID, oldVersion).
		Updates(map[string]interface{}{
			"workplace_id": shift.WorkplaceID,
			"worker_id":    shift.WorkerID,
			"date":         shift.Date,
			"start_time":   shift.StartTime,
			"end_time":     shift.EndTime,
			"notes":        shift.Notes,
			"updated_by":   shift.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version = oldVersion + 1
	return nil
}

func (r *shiftRepo) Delete(ctx context.Context, shift *model.Shift, deletedBy uint) error {
	result := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("id = ? AND version = ?", shift.ID, shift.Version).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": time.Now().UTC(),
			"version":    shift.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *shiftRepo) List(ctx context.Context, filter ShiftFilter, offset, limit int) ([]model.Shift, int64, error) {
	var shifts []model.Shift
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Shift{})
	if filter.WorkplaceID != nil {
		db = db.Where("workplace_id = ?", *filter.WorkplaceID)
	}
	if filter.UnassignedOnly {
		db = db.Where("worker_id IS NULL")
	} else if filter.WorkerID != nil {
		db = db.Where("worker_id = ?", *filter.WorkerID)
	}
	if filter.From != nil {
		db = db.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("date < ?", *filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Workplace").
		Order("start_time ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&shifts).Error
	return shifts, total, err
}

func (r *shiftRepo) ListByWorker(ctx context.Context, workerID uint, from, to *time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	db := r.db.WithContext(ctx).
		Preload("Workplace").
		Where("worker_id = ?", workerID)
	if from != nil {
		db = db.Where("date >= ?", *from)
	}
	if to != nil {
		db = db.Where("date < ?", *to)
	}
	err := db.Order("start_time ASC, id ASC").Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) FindOverlapping(ctx context.Context, workerID uint, start, end time.Time, excludeIDs ...uint) ([]model.Shift, error) {
	var shifts []model.Shift
	db := r.db.WithContext(ctx).
		Where("worker_id = ? AND start_time < ? AND end_time > ?", workerID, end, start)
	if len(excludeIDs) > 0 {
		db = db.Where("id NOT IN ?", excludeIDs)
	}
	err := db.Order("start_time ASC, id ASC").Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) CountByWorkerAtWorkplace(ctx context.Context, workerID, workplaceID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("worker_id = ? AND workplace_id = ?", workerID, workplaceID).
		Count(&n).Error
	return n, err
}
