package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hozymaister/Workshift-sub001/internal/dto"
	"github.com/Hozymaister/Workshift-sub001/internal/model"
	"github.com/Hozymaister/Workshift-sub001/internal/repository"
)

// WorkplaceService 工作地点业务接口
type WorkplaceService interface {
	Create(ctx context.Context, req *dto.CreateWorkplaceRequest, callerID uint) (*dto.WorkplaceResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.WorkplaceResponse, error)
	List(ctx context.Context, req *dto.WorkplaceListRequest) ([]dto.WorkplaceResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateWorkplaceRequest, callerID uint) (*dto.WorkplaceResponse, error)
	Delete(ctx context.Context, id uint, callerID uint) error
}

type workplaceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWorkplaceService 创建 WorkplaceService 实例
func NewWorkplaceService(repo *repository.Repository, logger *zap.Logger) WorkplaceService {
	return &workplaceService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *workplaceService) Create(ctx context.Context, req *dto.CreateWorkplaceRequest, callerID uint) (*dto.WorkplaceResponse, error) {
	if err := s.checkManager(ctx, req.ManagerID); err != nil {
		return nil, err
	}

	wp := &model.Workplace{
		Name:      req.Name,
		Category:  req.Category,
		Address:   req.Address,
		Notes:     req.Notes,
		ManagerID: req.ManagerID,
		IsActive:  true,
	}
	if wp.Category == "" {
		wp.Category = model.CategoryOther
	}
	wp.CreatedBy = &callerID
	wp.UpdatedBy = &callerID

	if err := s.repo.Workplace.Create(ctx, wp); err != nil {
		s.logger.Error("创建工作地点失败", zap.Error(err))
		return nil, err
	}

	return toWorkplaceResponse(wp), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *workplaceService) GetByID(ctx context.Context, id uint) (*dto.WorkplaceResponse, error) {
	wp, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWorkplaceResponse(wp), nil
}

// ────────────────────── List ──────────────────────

func (s *workplaceService) List(ctx context.Context, req *dto.WorkplaceListRequest) ([]dto.WorkplaceResponse, error) {
	workplaces, err := s.repo.Workplace.List(ctx, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出工作地点失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.WorkplaceResponse, 0, len(workplaces))
	for i := range workplaces {
		result = append(result, *toWorkplaceResponse(&workplaces[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *workplaceService) Update(ctx context.Context, id uint, req *dto.UpdateWorkplaceRequest, callerID uint) (*dto.WorkplaceResponse, error) {
	wp, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		wp.Name = *req.Name
	}
	if req.Category != nil {
		wp.Category = *req.Category
	}
	if req.Address != nil {
		wp.Address = *req.Address
	}
	if req.Notes != nil {
		wp.Notes = *req.Notes
	}
	if req.ManagerID != nil {
		if err := s.checkManager(ctx, req.ManagerID); err != nil {
			return nil, err
		}
		wp.ManagerID = req.ManagerID
	}
	if req.IsActive != nil {
		wp.IsActive = *req.IsActive
	}
	wp.UpdatedBy = &callerID

	if err := s.repo.Workplace.Update(ctx, wp); err != nil {
		s.logger.Error("更新工作地点失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	return toWorkplaceResponse(wp), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 软删除工作地点；已排的班次保留原 workplace_id
func (s *workplaceService) Delete(ctx context.Context, id uint, callerID uint) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Workplace.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除工作地点失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *workplaceService) load(ctx context.Context, id uint) (*model.Workplace, error) {
	wp, err := s.repo.Workplace.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkplaceNotFound
		}
		s.logger.Error("查询工作地点失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return wp, nil
}

func (s *workplaceService) checkManager(ctx context.Context, managerID *uint) error {
	if managerID == nil {
		return nil
	}
	if _, err := s.repo.Worker.GetByID(ctx, *managerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkerNotFound
		}
		s.logger.Error("查询负责人失败", zap.Uint("manager_id", *managerID), zap.Error(err))
		return err
	}
	return nil
}

func toWorkplaceResponse(wp *model.Workplace) *dto.WorkplaceResponse {
	return &dto.WorkplaceResponse{
		ID:        wp.ID,
		Name:      wp.Name,
		Category:  wp.Category,
		Address:   wp.Address,
		Notes:     wp.Notes,
		ManagerID: wp.ManagerID,
		IsActive:  wp.IsActive,
		CreatedAt: formatTime(wp.CreatedAt),
		UpdatedAt: formatTime(wp.UpdatedAt),
	}
}
