package repository

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/Hozymaister/Workshift-sub001/internal/model"
)

// WorkerRepository 员工数据访问接口
type WorkerRepository interface {
	Create(ctx context.Context, w *model.Worker) error
	GetByID(ctx context.Context, id uint) (*model.Worker, error)
	List(ctx context.Context, includeInactive bool) ([]model.Worker, error)
	// LockByIDs 按 id 升序对员工行加排他锁，同一员工的排班写操作因此串行化
	LockByIDs(ctx context.Context, ids ...uint) ([]model.Worker, error)
}

type workerRepo struct {
	db *gorm.DB
}

// NewWorkerRepo 创建 WorkerRepository 实例
func NewWorkerRepo(db *gorm.DB) WorkerRepository {
	return &workerRepo{db: db}
}

func (r *workerRepo) Create(ctx context.Context, w *model.Worker) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *workerRepo) GetByID(ctx context.Context, id uint) (*model.Worker, error) {
	var w model.Worker
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *workerRepo) List(ctx context.Context, includeInactive bool) ([]model.Worker, error) {
	var workers []model.Worker
	db := r.db.WithContext(ctx)
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("name ASC, id ASC").Find(&workers).Error
	return workers, err
}

func (r *workerRepo) LockByIDs(ctx context.Context, ids ...uint) ([]model.Worker, error) {
	ids = uniqueSorted(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var workers []model.Worker
	err := forUpdate(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&workers).Error
	if err != nil {
		return nil, err
	}
	if len(workers) != len(ids) {
		return workers, gorm.ErrRecordNotFound
	}
	return workers, nil
}

// uniqueSorted 去重并升序，保证所有事务按相同顺序加锁
func uniqueSorted(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
