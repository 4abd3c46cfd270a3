package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hozymaister/Workshift-sub001/config"
	"github.com/Hozymaister/Workshift-sub001/internal/dto"
	"github.com/Hozymaister/Workshift-sub001/internal/model"
	"github.com/Hozymaister/Workshift-sub001/internal/repository"
	pkgerrors "github.com/Hozymaister/Workshift-sub001/pkg/errors"
	"github.com/Hozymaister/Workshift-sub001/pkg/events"
	"github.com/Hozymaister/Workshift-sub001/pkg/interval"
)

// ShiftService 班次业务接口
type ShiftService interface {
	Create(ctx context.Context, req *dto.CreateShiftRequest, callerID uint) (*dto.ShiftResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.ShiftResponse, error)
	List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, int64, error)
	ListForWorker(ctx context.Context, workerID uint, req *dto.WorkerShiftsRequest) ([]dto.ShiftResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateShiftRequest, callerID uint) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, id uint, callerID uint) error
	FindConflicts(ctx context.Context, workerID uint, start, end time.Time, excludeShiftID *uint) ([]dto.ShiftResponse, error)
}

type shiftService struct {
	policy    config.SchedulingConfig
	repo      *repository.Repository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(policy config.SchedulingConfig, repo *repository.Repository, publisher events.Publisher, logger *zap.Logger) ShiftService {
	return &shiftService{
		policy:    policy,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest, callerID uint) (*dto.ShiftResponse, error) {
	iv, err := interval.New(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil || !interval.DateOf(req.StartTime).Equal(date) {
		return nil, ErrShiftDateMismatch
	}

	shift := &model.Shift{
		WorkplaceID: req.WorkplaceID,
		WorkerID:    req.WorkerID,
		Date:        date,
		StartTime:   iv.Start.UTC(),
		EndTime:     iv.End.UTC(),
		Notes:       req.Notes,
	}
	shift.Version = 1
	shift.CreatedBy = &callerID
	shift.UpdatedBy = &callerID

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		wp, err := txRepo.Workplace.GetByID(ctx, req.WorkplaceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkplaceNotFound
			}
			return err
		}
		shift.Workplace = wp

		if req.WorkerID != nil {
			if err := lockWorkers(ctx, txRepo, req.WorkerID); err != nil {
				return err
			}
			if err := ensureNoConflict(ctx, txRepo, *req.WorkerID, iv); err != nil {
				return err
			}
		}

		return translateWriteErr(txRepo.Shift.Create(ctx, shift), req.WorkerID)
	})
	if err != nil {
		logFailure(s.logger, "创建班次失败", err, zap.Uint("workplace_id", req.WorkplaceID))
		return nil, err
	}

	return toShiftResponse(shift), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *shiftService) GetByID(ctx context.Context, id uint) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return toShiftResponse(shift), nil
}

// ────────────────────── List ──────────────────────

func (s *shiftService) List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, int64, error) {
	from, to, err := parseDateRange(req.From, req.To)
	if err != nil {
		return nil, 0, ErrInvalidPeriod
	}

	filter := repository.ShiftFilter{
		WorkplaceID:    req.WorkplaceID,
		WorkerID:       req.WorkerID,
		From:           from,
		To:             to,
		UnassignedOnly: req.UnassignedOnly,
	}
	shifts, total, err := s.repo.Shift.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出班次失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, *toShiftResponse(&shifts[i]))
	}
	return result, total, nil
}

// ────────────────────── ListForWorker ──────────────────────

func (s *shiftService) ListForWorker(ctx context.Context, workerID uint, req *dto.WorkerShiftsRequest) ([]dto.ShiftResponse, error) {
	from, to, err := parseDateRange(req.From, req.To)
	if err != nil {
		return nil, ErrInvalidPeriod
	}

	shifts, err := s.repo.Shift.ListByWorker(ctx, workerID, from, to)
	if err != nil {
		s.logger.Error("列出员工班次失败", zap.Uint("worker_id", workerID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, *toShiftResponse(&shifts[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *shiftService) Update(ctx context.Context, id uint, req *dto.UpdateShiftRequest, callerID uint) (*dto.ShiftResponse, error) {
	var updated *model.Shift

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		locked, err := lockShifts(ctx, txRepo, id)
		if err != nil {
			return err
		}
		shift := locked[0]
		oldWorkerID := shift.WorkerID

		if req.WorkplaceID != nil && *req.WorkplaceID != shift.WorkplaceID {
			if _, err := txRepo.Workplace.GetByID(ctx, *req.WorkplaceID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrWorkplaceNotFound
				}
				return err
			}
			shift.WorkplaceID = *req.WorkplaceID
		}

		switch {
		case req.Unassign:
			shift.WorkerID = nil
		case req.WorkerID != nil:
			shift.WorkerID = req.WorkerID
		}

		// 日期校验以调用方传入的开始时间所在时区为准
		start := shift.StartTime
		if req.StartTime != nil {
			start = *req.StartTime
		}
		end := shift.EndTime
		if req.EndTime != nil {
			end = *req.EndTime
		}
		iv, err := interval.New(start, end)
		if err != nil {
			return err
		}
		date := shift.Date
		if req.Date != nil {
			if date, err = parseDate(*req.Date); err != nil {
				return ErrShiftDateMismatch
			}
		}
		if (req.Date != nil || req.StartTime != nil) && !interval.DateOf(start).Equal(date) {
			return ErrShiftDateMismatch
		}

		shift.Date = date
		shift.StartTime = iv.Start.UTC()
		shift.EndTime = iv.End.UTC()
		if req.Notes != nil {
			shift.Notes = *req.Notes
		}
		shift.UpdatedBy = &callerID

		if err := lockWorkers(ctx, txRepo, oldWorkerID, shift.WorkerID); err != nil {
			return err
		}
		if shift.WorkerID != nil {
			if err := ensureNoConflict(ctx, txRepo, *shift.WorkerID, iv, shift.ID); err != nil {
				return err
			}
		}

		if err := txRepo.Shift.Update(ctx, shift); err != nil {
			return translateWriteErr(err, shift.WorkerID)
		}

		if !sameWorker(oldWorkerID, shift.WorkerID) {
			log := &model.ShiftChangeLog{
				ShiftID:          shift.ID,
				OriginalWorkerID: oldWorkerID,
				NewWorkerID:      shift.WorkerID,
				ChangeType:       model.ChangeTypeAdminModify,
				OperatorID:       callerID,
			}
			if err := txRepo.ChangeLog.Create(ctx, log); err != nil {
				return err
			}
		}

		updated = shift
		return nil
	})
	if err != nil {
		logFailure(s.logger, "更新班次失败", err, zap.Uint("id", id))
		return nil, err
	}

	if wp, err := s.repo.Workplace.GetByID(ctx, updated.WorkplaceID); err == nil {
		updated.Workplace = wp
	}
	return toShiftResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

func (s *shiftService) Delete(ctx context.Context, id uint, callerID uint) error {
	var cancelled []model.ExchangeRequest

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		// 加锁顺序：换班申请 → 班次
		refs, err := txRepo.Exchange.ListPendingByShiftForUpdate(ctx, id)
		if err != nil {
			return err
		}
		locked, err := lockShifts(ctx, txRepo, id)
		if err != nil {
			return err
		}
		shift := locked[0]

		// 锁定班次前有新申请提交，让调用方重试
		again, err := txRepo.Exchange.ListPendingByShiftForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if len(again) != len(refs) {
			return pkgerrors.ErrOptimisticLock
		}

		if len(refs) > 0 {
			if s.policy.DeleteReferencedShift != config.DeletePolicyCascadeReject {
				return ErrReferencedByPendingExchange
			}
			now := s.now().UTC()
			for i := range refs {
				ref := &refs[i]
				ref.Status = model.ExchangeStatusRejected
				ref.RejectReason = "班次已被删除"
				ref.ResolvedBy = &callerID
				ref.ResolvedAt = &now
				if err := txRepo.Exchange.Update(ctx, ref); err != nil {
					return err
				}
			}
			cancelled = refs
		}

		return txRepo.Shift.Delete(ctx, shift, callerID)
	})
	if err != nil {
		logFailure(s.logger, "删除班次失败", err, zap.Uint("id", id))
		return err
	}

	for i := range cancelled {
		publishExchangeEvent(ctx, s.publisher, s.logger, events.TypeExchangeRejected, &cancelled[i], callerID, s.now())
	}
	return nil
}

// ────────────────────── FindConflicts ──────────────────────

func (s *shiftService) FindConflicts(ctx context.Context, workerID uint, start, end time.Time, excludeShiftID *uint) ([]dto.ShiftResponse, error) {
	iv, err := interval.New(start, end)
	if err != nil {
		return nil, err
	}

	var exclude []uint
	if excludeShiftID != nil {
		exclude = append(exclude, *excludeShiftID)
	}
	shifts, err := s.repo.Shift.FindOverlapping(ctx, workerID, iv.Start.UTC(), iv.End.UTC(), exclude...)
	if err != nil {
		s.logger.Error("查询冲突班次失败", zap.Uint("worker_id", workerID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, *toShiftResponse(&shifts[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

func sameWorker(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
