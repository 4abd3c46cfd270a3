package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Hozymaister/Workshift-sub001/internal/model"
)

// WorkplaceRepository 工作地点数据访问接口
type WorkplaceRepository interface {
	Create(ctx context.Context, wp *model.Workplace) error
	GetByID(ctx context.Context, id uint) (*model.Workplace, error)
	List(ctx context.Context, includeInactive bool) ([]model.Workplace, error)
	Update(ctx context.Context, wp *model.Workplace) error
	Delete(ctx context.Context, id uint, deletedBy uint) error
}

type workplaceRepo struct {
	db *gorm.DB
}

// NewWorkplaceRepo 创建 WorkplaceRepository 实例
func NewWorkplaceRepo(db *gorm.DB) WorkplaceRepository {
	return &workplaceRepo{db: db}
}

func (r *workplaceRepo) Create(ctx context.Context, wp *model.Workplace) error {
	return r.db.WithContext(ctx).Create(wp).Error
}

func (r *workplaceRepo) GetByID(ctx context.Context, id uint) (*model.Workplace, error) {
	var wp model.Workplace
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Where("id = ?", id).
		First(&wp).Error
	if err != nil {
		return nil, err
	}
	return &wp, nil
}

func (r *workplaceRepo) List(ctx context.Context, includeInactive bool) ([]model.Workplace, error) {
	var workplaces []model.Workplace
	db := r.db.WithContext(ctx)

	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}

	err := db.Order("category ASC, name ASC").Find(&workplaces).Error
	return workplaces, err
}

func (r *workplaceRepo) Update(ctx context.Context, wp *model.Workplace) error {
	return r.db.WithContext(ctx).
		Model(&model.Workplace{}).
		Where("id = ?", wp.ID).
		Updates(map[string]interface{}{
			"name":       wp.Name,
			"category":   wp.Category,
			"address":    wp.Address,
			"notes":      wp.Notes,
			"manager_id": wp.ManagerID,
			"is_active":  wp.IsActive,
			"updated_by": wp.UpdatedBy,
		}).Error
}

func (r *workplaceRepo) Delete(ctx context.Context, id uint, deletedBy uint) error {
	return r.db.WithContext(ctx).
		Model(&model.Workplace{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}
