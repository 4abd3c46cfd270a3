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
	"github.com/Hozymaister/Workshift-sub001/pkg/events"
)

// ExchangeService 换班申请业务接口
// 状态机：pending → approved | rejected，终态不可再变更
type ExchangeService interface {
	Propose(ctx context.Context, req *dto.ProposeExchangeRequest, requesterID uint) (*dto.ExchangeResponse, error)
	Approve(ctx context.Context, id uint, actorID uint) (*dto.ApproveExchangeResponse, error)
	Reject(ctx context.Context, id uint, actorID uint, reason string) (*dto.ExchangeResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.ExchangeResponse, error)
	ListPending(ctx context.Context, q *dto.PendingExchangeQuery) ([]dto.ExchangeResponse, error)
	ListForWorker(ctx context.Context, workerID uint) ([]dto.ExchangeResponse, error)
}

type exchangeService struct {
	policy    config.SchedulingConfig
	repo      *repository.Repository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewExchangeService 创建 ExchangeService 实例
func NewExchangeService(policy config.SchedulingConfig, repo *repository.Repository, publisher events.Publisher, logger *zap.Logger) ExchangeService {
	return &exchangeService{
		policy:    policy,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ── 审批结果 ──

// reassignment 单个班次的员工变更
type reassignment struct {
	shift *model.Shift
	from  *uint
	to    uint
}

// exchangeOutcome 审批通过后需要执行的变更：互换或接班
type exchangeOutcome interface {
	changeType() string
	reassignments() []reassignment
	// touchedShiftIDs 冲突检测时需排除的班次
	touchedShiftIDs() []uint
}

// swapOutcome 两个班次互换员工
type swapOutcome struct {
	request     *model.Shift
	offered     *model.Shift
	requesterID uint
	partnerID   uint
}

func (o swapOutcome) changeType() string { return model.ChangeTypeSwap }

func (o swapOutcome) reassignments() []reassignment {
	return []reassignment{
		{shift: o.request, from: o.request.WorkerID, to: o.partnerID},
		{shift: o.offered, from: o.offered.WorkerID, to: o.requesterID},
	}
}

func (o swapOutcome) touchedShiftIDs() []uint { return []uint{o.request.ID, o.offered.ID} }

// pickupOutcome 申请班次转给接班人
type pickupOutcome struct {
	shift   *model.Shift
	takerID uint
}

func (o pickupOutcome) changeType() string { return model.ChangeTypePickup }

func (o pickupOutcome) reassignments() []reassignment {
	return []reassignment{{shift: o.shift, from: o.shift.WorkerID, to: o.takerID}}
}

func (o pickupOutcome) touchedShiftIDs() []uint { return []uint{o.shift.ID} }

// ────────────────────── Propose ──────────────────────

func (s *exchangeService) Propose(ctx context.Context, req *dto.ProposeExchangeRequest, requesterID uint) (*dto.ExchangeResponse, error) {
	if req.RequesteeID != nil && *req.RequesteeID == requesterID {
		return nil, ErrSelfExchange
	}
	if req.OfferedShiftID != nil && *req.OfferedShiftID == req.RequestShiftID {
		return nil, ErrSameShift
	}

	exchange := &model.ExchangeRequest{
		RequesterID:    requesterID,
		RequesteeID:    req.RequesteeID,
		RequestShiftID: req.RequestShiftID,
		OfferedShiftID: req.OfferedShiftID,
		Status:         model.ExchangeStatusPending,
		Notes:          req.Notes,
		Version:        1,
	}

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := s.ensureWorkers(ctx, txRepo, &requesterID, req.RequesteeID); err != nil {
			return err
		}

		ids := []uint{req.RequestShiftID}
		if req.OfferedShiftID != nil {
			ids = append(ids, *req.OfferedShiftID)
		}
		shifts, err := lockShifts(ctx, txRepo, ids...)
		if err != nil {
			return err
		}

		now := s.now()
		request := shifts[0]
		if !request.OwnedBy(requesterID) {
			return ErrNotOwner
		}
		if !request.StartTime.After(now) {
			return ErrShiftInPast
		}

		if len(shifts) == 2 {
			offered := shifts[1]
			if !offered.StartTime.After(now) {
				return ErrShiftInPast
			}
			if err := checkOfferedOwner(offered, requesterID, req.RequesteeID); err != nil {
				return err
			}
		}

		return txRepo.Exchange.Create(ctx, exchange)
	})
	if err != nil {
		logFailure(s.logger, "发起换班申请失败", err, zap.Uint("requester_id", requesterID))
		return nil, err
	}

	publishExchangeEvent(ctx, s.publisher, s.logger, events.TypeExchangeProposed, exchange, requesterID, s.now())
	return s.GetByID(ctx, exchange.ID)
}

// ────────────────────── Approve ──────────────────────

func (s *exchangeService) Approve(ctx context.Context, id uint, actorID uint) (*dto.ApproveExchangeResponse, error) {
	var (
		exchange *model.ExchangeRequest
		applied  []reassignment
	)

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		// 加锁顺序：换班申请 → 班次（id 升序）→ 员工（id 升序）
		req, err := txRepo.Exchange.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExchangeNotFound
			}
			return err
		}
		if !req.IsPending() {
			return ErrInvalidTransition
		}

		actor, err := txRepo.Worker.GetByID(ctx, actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkerNotFound
			}
			return err
		}
		if actorID == req.RequesterID {
			return ErrNotEligible
		}

		ids := []uint{req.RequestShiftID}
		if req.OfferedShiftID != nil {
			ids = append(ids, *req.OfferedShiftID)
		}
		shifts, err := lockShifts(ctx, txRepo, ids...)
		if err != nil {
			return err
		}

		var outcome exchangeOutcome

		// 提交申请后班次可能已被管理员改派或已开始
		now := s.now()
		request := shifts[0]
		if !request.OwnedBy(req.RequesterID) {
			return ErrNotOwner
		}
		if !request.StartTime.After(now) {
			return ErrShiftInPast
		}

		if err := s.checkEligible(ctx, txRepo, req, request, actor); err != nil {
			return err
		}

		if len(shifts) == 2 {
			offered := shifts[1]
			if !offered.StartTime.After(now) {
				return ErrShiftInPast
			}
			if err := checkOfferedOwner(offered, req.RequesterID, req.RequesteeID); err != nil {
				return err
			}
			// 开放式互换由非管理员审批时，审批人必须是提供班次的持有人
			if !actor.IsAdmin() && !offered.OwnedBy(actorID) {
				return ErrNotOwner
			}
			outcome = swapOutcome{
				request:     request,
				offered:     offered,
				requesterID: req.RequesterID,
				partnerID:   *offered.WorkerID,
			}
		} else {
			takerID := actorID
			if actor.IsAdmin() && req.RequesteeID != nil {
				takerID = *req.RequesteeID
			}
			outcome = pickupOutcome{shift: request, takerID: takerID}
		}

		if applied, err = s.applyOutcome(ctx, txRepo, req, outcome, actorID); err != nil {
			return err
		}

		resolvedAt := now.UTC()
		req.Status = model.ExchangeStatusApproved
		req.ResolvedBy = &actorID
		req.ResolvedAt = &resolvedAt
		if err := txRepo.Exchange.Update(ctx, req); err != nil {
			return err
		}

		exchange = req
		return nil
	})
	if err != nil {
		logFailure(s.logger, "审批换班申请失败", err, zap.Uint("id", id), zap.Uint("actor_id", actorID))
		return nil, err
	}

	publishExchangeEvent(ctx, s.publisher, s.logger, events.TypeExchangeApproved, exchange, actorID, s.now())

	resp, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := &dto.ApproveExchangeResponse{Exchange: *resp}
	for _, r := range applied {
		result.Reassignments = append(result.Reassignments, dto.ReassignmentResponse{
			ShiftID:      r.shift.ID,
			FromWorkerID: r.from,
			ToWorkerID:   r.to,
		})
	}
	return result, nil
}

// applyOutcome 先校验全部新分配，再逐个写入；任一步失败由外层事务整体回滚
// 返回的变更记录在写入前生成，from 为原持有人
func (s *exchangeService) applyOutcome(ctx context.Context, txRepo *repository.Repository, req *model.ExchangeRequest, outcome exchangeOutcome, actorID uint) ([]reassignment, error) {
	changes := outcome.reassignments()

	workerIDs := make([]*uint, 0, len(changes)*2)
	for i := range changes {
		workerIDs = append(workerIDs, changes[i].from, &changes[i].to)
	}
	if err := lockWorkers(ctx, txRepo, workerIDs...); err != nil {
		return nil, err
	}

	exclude := outcome.touchedShiftIDs()
	for _, c := range changes {
		if err := ensureNoConflict(ctx, txRepo, c.to, shiftInterval(c.shift), exclude...); err != nil {
			return nil, err
		}
	}

	for _, c := range changes {
		to := c.to
		c.shift.WorkerID = &to
		c.shift.UpdatedBy = &actorID
		if err := txRepo.Shift.Update(ctx, c.shift); err != nil {
			return nil, translateWriteErr(err, &to)
		}
		log := &model.ShiftChangeLog{
			ShiftID:           c.shift.ID,
			ExchangeRequestID: &req.ID,
			OriginalWorkerID:  c.from,
			NewWorkerID:       &to,
			ChangeType:        outcome.changeType(),
			OperatorID:        actorID,
		}
		if err := txRepo.ChangeLog.Create(ctx, log); err != nil {
			return nil, err
		}
	}
	return changes, nil
}

// checkEligible 审批人资格：管理员总是可以；指定了被申请人时只能由其审批；
// 开放式申请按 open_offer_approvers 策略判断
func (s *exchangeService) checkEligible(ctx context.Context, txRepo *repository.Repository, req *model.ExchangeRequest, request *model.Shift, actor *model.Worker) error {
	if actor.IsAdmin() {
		return nil
	}
	if req.RequesteeID != nil {
		if *req.RequesteeID != actor.ID {
			return ErrNotEligible
		}
		return nil
	}

	switch s.policy.OpenOfferApprovers {
	case config.OpenOfferAnyWorker:
		return nil
	case config.OpenOfferAdminOnly:
		return ErrNotEligible
	default:
		n, err := txRepo.Shift.CountByWorkerAtWorkplace(ctx, actor.ID, request.WorkplaceID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotEligible
		}
		return nil
	}
}

// ────────────────────── Reject ──────────────────────

func (s *exchangeService) Reject(ctx context.Context, id uint, actorID uint, reason string) (*dto.ExchangeResponse, error) {
	var exchange *model.ExchangeRequest

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		req, err := txRepo.Exchange.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExchangeNotFound
			}
			return err
		}
		if !req.IsPending() {
			return ErrInvalidTransition
		}

		actor, err := txRepo.Worker.GetByID(ctx, actorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkerNotFound
			}
			return err
		}
		isRequestee := req.RequesteeID != nil && *req.RequesteeID == actorID
		if !actor.IsAdmin() && actorID != req.RequesterID && !isRequestee {
			return ErrNotEligible
		}

		resolvedAt := s.now().UTC()
		req.Status = model.ExchangeStatusRejected
		req.RejectReason = reason
		req.ResolvedBy = &actorID
		req.ResolvedAt = &resolvedAt
		if err := txRepo.Exchange.Update(ctx, req); err != nil {
			return err
		}

		exchange = req
		return nil
	})
	if err != nil {
		logFailure(s.logger, "拒绝换班申请失败", err, zap.Uint("id", id), zap.Uint("actor_id", actorID))
		return nil, err
	}

	publishExchangeEvent(ctx, s.publisher, s.logger, events.TypeExchangeRejected, exchange, actorID, s.now())
	return s.GetByID(ctx, id)
}

// ────────────────────── Queries ──────────────────────

func (s *exchangeService) GetByID(ctx context.Context, id uint) (*dto.ExchangeResponse, error) {
	req, err := s.repo.Exchange.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExchangeNotFound
		}
		s.logger.Error("查询换班申请失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return toExchangeResponse(req), nil
}

func (s *exchangeService) ListPending(ctx context.Context, q *dto.PendingExchangeQuery) ([]dto.ExchangeResponse, error) {
	reqs, err := s.repo.Exchange.ListPending(ctx, repository.ExchangeFilter{
		RequesteeID: q.RequesteeID,
		WorkplaceID: q.WorkplaceID,
	})
	if err != nil {
		s.logger.Error("列出待处理换班申请失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ExchangeResponse, 0, len(reqs))
	for i := range reqs {
		result = append(result, *toExchangeResponse(&reqs[i]))
	}
	return result, nil
}

func (s *exchangeService) ListForWorker(ctx context.Context, workerID uint) ([]dto.ExchangeResponse, error) {
	reqs, err := s.repo.Exchange.ListByWorker(ctx, workerID)
	if err != nil {
		s.logger.Error("列出员工换班申请失败", zap.Uint("worker_id", workerID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ExchangeResponse, 0, len(reqs))
	for i := range reqs {
		result = append(result, *toExchangeResponse(&reqs[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

// ensureWorkers 校验员工存在；nil 跳过
func (s *exchangeService) ensureWorkers(ctx context.Context, txRepo *repository.Repository, ids ...*uint) error {
	for _, id := range ids {
		if id == nil {
			continue
		}
		if _, err := txRepo.Worker.GetByID(ctx, *id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkerNotFound
			}
			return err
		}
	}
	return nil
}

// checkOfferedOwner 提供的班次属于换班对象：指定了被申请人时属于被申请人，否则属于申请人以外的员工
func checkOfferedOwner(offered *model.Shift, requesterID uint, requesteeID *uint) error {
	if offered.WorkerID == nil || offered.OwnedBy(requesterID) {
		return ErrNotOwner
	}
	if requesteeID != nil && !offered.OwnedBy(*requesteeID) {
		return ErrNotOwner
	}
	return nil
}

// publishExchangeEvent 事务提交后投递事件；失败只记录日志
func publishExchangeEvent(ctx context.Context, publisher events.Publisher, logger *zap.Logger, eventType string, req *model.ExchangeRequest, actorID uint, at time.Time) {
	e := events.NewEvent(eventType, at)
	e.ExchangeID = req.ID
	e.RequesterID = req.RequesterID
	e.RequesteeID = req.RequesteeID
	e.RequestShiftID = req.RequestShiftID
	e.OfferedShiftID = req.OfferedShiftID
	e.ActorID = actorID

	if err := publisher.Publish(ctx, e); err != nil {
		logger.Warn("投递换班事件失败",
			zap.String("type", eventType),
			zap.Uint("exchange_id", req.ID),
			zap.Error(err),
		)
	}
}

func exchangeKind(req *model.ExchangeRequest) string {
	if req.OfferedShiftID != nil {
		return model.ChangeTypeSwap
	}
	return model.ChangeTypePickup
}

func toExchangeResponse(req *model.ExchangeRequest) *dto.ExchangeResponse {
	resp := &dto.ExchangeResponse{
		ID:           req.ID,
		Kind:         exchangeKind(req),
		RequesterID:  req.RequesterID,
		RequesteeID:  req.RequesteeID,
		Status:       req.Status,
		Notes:        req.Notes,
		RejectReason: req.RejectReason,
		ResolvedBy:   req.ResolvedBy,
		ResolvedAt:   formatTimePtr(req.ResolvedAt),
		CreatedAt:    formatTime(req.CreatedAt),
	}
	if req.RequestShift != nil {
		resp.RequestShift = toShiftResponse(req.RequestShift)
	}
	if req.OfferedShift != nil {
		resp.OfferedShift = toShiftResponse(req.OfferedShift)
	}
	return resp
}
