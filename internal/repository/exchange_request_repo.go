package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Hozymaister/Workshift-sub001/internal/model"
	pkgerrors "github.com/Hozymaister/Workshift-sub001/pkg/errors"
)

// ExchangeFilter 待处理申请过滤条件
type ExchangeFilter struct {
	RequesteeID *uint // 指定被申请人，或开放式申请
	WorkplaceID *uint // 申请班次所在地点
}

// ExchangeRequestRepository 换班申请数据访问接口
type ExchangeRequestRepository interface {
	Create(ctx context.Context, req *model.ExchangeRequest) error
	GetByID(ctx context.Context, id uint) (*model.ExchangeRequest, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*model.ExchangeRequest, error)
	Update(ctx context.Context, req *model.ExchangeRequest) error
	ListPending(ctx context.Context, filter ExchangeFilter) ([]model.ExchangeRequest, error)
	ListByWorker(ctx context.Context, workerID uint) ([]model.ExchangeRequest, error)
	// ListPendingByShiftForUpdate 引用该班次（申请方或提供方）的待处理申请，按 id 升序加锁
	ListPendingByShiftForUpdate(ctx context.Context, shiftID uint) ([]model.ExchangeRequest, error)
}

type exchangeRequestRepo struct {
	db *gorm.DB
}

// NewExchangeRequestRepo 创建 ExchangeRequestRepository 实例
func NewExchangeRequestRepo(db *gorm.DB) ExchangeRequestRepository {
	return &exchangeRequestRepo{db: db}
}

func (r *exchangeRequestRepo) Create(ctx context.Context, req *model.ExchangeRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *exchangeRequestRepo) GetByID(ctx context.Context, id uint) (*model.ExchangeRequest, error) {
	var req model.ExchangeRequest
	err := r.db.WithContext(ctx).
		Preload("RequestShift").
		Preload("OfferedShift").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *exchangeRequestRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.ExchangeRequest, error) {
	var req model.ExchangeRequest
	err := forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Update 乐观锁更新状态字段
func (r *exchangeRequestRepo) Update(ctx context.Context, req *model.ExchangeRequest) error {
	oldVersion := req.Version
	result := r.db.WithContext(ctx).
		Model(&model.ExchangeRequest{}).
		Where("id = ? AND version = ?", req.ID, oldVersion).
		Updates(map[string]interface{}{
			"status":        req.Status,
			"reject_reason": req.RejectReason,
			"resolved_by":   req.ResolvedBy,
			"resolved_at":   req.ResolvedAt,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version = oldVersion + 1
	return nil
}

func (r *exchangeRequestRepo) ListPending(ctx context.Context, filter ExchangeFilter) ([]model.ExchangeRequest, error) {
	var reqs []model.ExchangeRequest
	db := r.db.WithContext(ctx).
		Preload("RequestShift").
		Preload("OfferedShift").
		Where("exchange_requests.status = ?", model.ExchangeStatusPending)

	if filter.RequesteeID != nil {
		db = db.Where("(exchange_requests.requestee_id = ? OR exchange_requests.requestee_id IS NULL) AND exchange_requests.requester_id <> ?",
			*filter.RequesteeID, *filter.RequesteeID)
	}
	if filter.WorkplaceID != nil {
		db = db.Joins("JOIN shifts ON shifts.id = exchange_requests.request_shift_id").
			Where("shifts.workplace_id = ?", *filter.WorkplaceID)
	}

	err := db.Order("exchange_requests.created_at ASC, exchange_requests.id ASC").Find(&reqs).Error
	return reqs, err
}

func (r *exchangeRequestRepo) ListByWorker(ctx context.Context, workerID uint) ([]model.ExchangeRequest, error) {
	var reqs []model.ExchangeRequest
	err := r.db.WithContext(ctx).
		Preload("RequestShift").
		Preload("OfferedShift").
		Where("requester_id = ? OR requestee_id = ?", workerID, workerID).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *exchangeRequestRepo) ListPendingByShiftForUpdate(ctx context.Context, shiftID uint) ([]model.ExchangeRequest, error) {
	var reqs []model.ExchangeRequest
	err := forUpdate(r.db.WithContext(ctx)).
		Where("status = ? AND (request_shift_id = ? OR offered_shift_id = ?)", model.ExchangeStatusPending, shiftID, shiftID).
		Order("id ASC").
		Find(&reqs).Error
	return reqs, err
}
