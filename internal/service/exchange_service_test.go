package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/Hozymaister/Workshift-sub001/config"
	"github.com/Hozymaister/Workshift-sub001/internal/dto"
	"github.com/Hozymaister/Workshift-sub001/internal/model"
	"github.com/Hozymaister/Workshift-sub001/internal/testutil"
	"github.com/Hozymaister/Workshift-sub001/pkg/events"
)

func propose(t *testing.T, svc ExchangeService, requesterID, shiftID uint, offered, requestee *uint) *dto.ExchangeResponse {
	t.Helper()
	resp, err := svc.Propose(context.Background(), &dto.ProposeExchangeRequest{
		RequestShiftID: shiftID,
		OfferedShiftID: offered,
		RequesteeID:    requestee,
	}, requesterID)
	if err != nil {
		t.Fatalf("发起换班申请应成功: %v", err)
	}
	return resp
}

// ── Propose 测试 ──

func TestExchangeService_Propose_Validation(t *testing.T) {
	f := newFixture(t)
	svc := f.exchangeService()
	a := f.worker(t, "张三")
	b := f.worker(t, "李四")
	c := f.worker(t, "王五")
	ctx := context.Background()

	sa := f.shift(t, a, day(4, 9), day(4, 17))
	sb := f.shift(t, b, day(5, 9), day(5, 17))
	sc := f.shift(t, c, day(6, 9), day(6, 17))
	past := f.shift(t, a, testNow.Add(-4*time.Hour), testNow.Add(-time.Hour))

	tests := []struct {
		name    string
		req     dto.ProposeExchangeRequest
		actor   uint
		wantErr error
	}{
		{"班次不存在", dto.ProposeExchangeRequest{RequestShiftID: 9999}, a.ID, ErrShiftNotFound},
		{"非本人班次", dto.ProposeExchangeRequest{RequestShiftID: sb.ID}, a.ID, ErrNotOwner},
		{"班次已开始", dto.ProposeExchangeRequest{RequestShiftID: past.ID}, a.ID, ErrShiftInPast},
		{"向自己申请", dto.ProposeExchangeRequest{RequestShiftID: sa.ID, RequesteeID: &a.ID}, a.ID, ErrSelfExchange},
		{"同一班次互换", dto.ProposeExchangeRequest{RequestShiftID: sa.ID, OfferedShiftID: &sa.ID}, a.ID, ErrSameShift},
		{"被申请人不存在", dto.ProposeExchangeRequest{RequestShiftID: sa.ID, RequesteeID: testutil.Ptr[uint](9999)}, a.ID, ErrWorkerNotFound},
		{"提供班次不属于被申请人", dto.ProposeExchangeRequest{RequestShiftID: sa.ID, OfferedShiftID: &sc.ID, RequesteeID: &b.ID}, a.ID, ErrNotOwner},
		{"提供班次已开始", dto.ProposeExchangeRequest{RequestShiftID: sa.ID, OfferedShiftID: &past.ID}, a.ID, ErrShiftInPast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Propose(ctx, &tt.req, tt.actor); !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
		})
	}

	t.Run("定向互换成功", func(t *testing.T) {
		resp := propose(t, svc, a.ID, sa.ID, &sb.ID, &b.ID)
		if resp.Status != model.ExchangeStatusPending || resp.Kind != model.ChangeTypeSwap {
			t.Errorf("期望 pending 的 swap 申请，实际 %s / %s", resp.Status, resp.Kind)
		}
		if resp.RequestShift == nil || resp.OfferedShift == nil {
			t.Error("响应应包含两个班次")
		}
	})
}

// ── Approve 测试 ──

// 直接接班：A 请人接班，B 审批后 X 归 B，再次审批失败
func TestExchangeService_Approve_Pickup(t *testing.T) {
	f := newFixture(t)
	svc := f.exchangeService()
	a := f.worker(t, "张三")
	b := f.worker(t, "李四")
	ctx := context.Background()

	x := f.shift(t, a, day(4, 9), day(4, 17))
	f.shift(t, b, day(5, 9), day(5, 17)) // B 在同一工作地点有班次，满足默认审批资格

	req := propose(t, svc, a.ID, x.ID, nil, nil)

	resp, err := svc.Approve(ctx, req.ID, b.ID)
	if err != nil {
		t.Fatalf("审批应成功: %v", err)
	}
	if resp.Exchange.Status != model.ExchangeStatusApproved {
		t.Errorf("期望 approved，实际 %s", resp.Exchange.Status)
	}
	if got := ownerOf(f.reload(t, x.ID)); got != b.ID {
		t.Errorf("班次 X 应归 B(%d)，实际 %d", b.ID, got)
	}
	if len(resp.Reassignments) != 1 {
		t.Fatalf("期望 1 条变更，实际 %d", len(resp.Reassignments))
	}
	r := resp.Reassignments[0]
	if r.FromWorkerID == nil || *r.FromWorkerID != a.ID || r.ToWorkerID != b.ID {
		t.Errorf("变更记录应为 %d → %d，实际 %+v", a.ID, b.ID, r)
	}

	logs, err := f.repo.ChangeLog.ListByShift(ctx, x.ID)
	if err != nil {
		t.Fatalf("读取变更记录失败: %v", err)
	}
	if len(logs) != 1 || logs[0].ChangeType != model.ChangeTypePickup || logs[0].ExchangeRequestID == nil {
		t.Errorf("期望 1 条关联申请的 pickup 记录，实际 %+v", logs)
	}

	if _, err := svc.Approve(ctx, req.ID, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("二次审批期望 ErrInvalidTransition，实际: %v", err)
	}
	if _, err := svc.Reject(ctx, req.ID, a.ID, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("已通过的申请拒绝期望 ErrInvalidTransition，实际: %v", err)
	}

	types := f.publisher.types()
	if len(types) != 2 || types[0] != events.TypeExchangeProposed || types[1] != events.TypeExchangeApproved {
		t.Errorf("事件序列错误: %v", types)
	}
	f.assertNoOverlap(t)
}

func TestExchangeService_Approve_Swap(t *testing.T) {
	f := newFixture(t)
	svc := f.exchangeService()
	a := f.worker(t, "张三")
	b := f.worker(t, "李四")
	ctx := context.Background()

	x := f.shift(t, a, day(4, 9), day(4, 17))
	y := f.shift(t, b, day(5, 9), day(5, 17))
	req := propose(t, svc, a.ID, x.ID, &y.ID, &b.ID)

	resp, err := svc.Approve(ctx, req.ID, b.ID)
	if err != nil {
		t.Fatalf("互换审批应成功: %v", err)
	}
	if ownerOf(f.reload(t, x.ID)) != b.ID || ownerOf(f.reload(t, y.ID)) != a.ID {
		t.Error("两个班次的员工应互换")
	}
	if len(resp.Reassignments) != 2 {
		t.Errorf("期望 2 条变更，实际 %d", len(resp.Reassignments))
	}
	f.assertNoOverlap(t)
}

// 互换会导致审批人重复排班：失败且申请与班次均保持不变
func TestExchangeService_Approve_SwapConflictLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	svc := f.exchangeService()
	a := f.worker(t, "张三")
	b := f.worker(t, "李四")
	ctx := context.Background()

	x := f.shift(t, a, day(4, 9), day(4, 17))
	y := f.shift(t, b, day(5, 9), day(5, 17))
	f.shift(t, b, day(4, 12), day(4, 20)) // B 在 X 的时段已有班次

	req := propose(t, svc, a.ID, x.ID, &y.ID, &b.ID)

	_, err := svc.Approve(ctx, req.ID, b.ID)
	if !errors.Is(err, ErrSchedulingConflict) {
		t.Fatalf("期望 ErrSchedulingConflict，实际: %v", err)
	}

	got, err := svc.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("查询申请失败: %v", err)
	}
	if got.Status != model.ExchangeStatusPending {
		t.Errorf("申请应保持 pending，实际 %s", got.Status)
	}
	if ownerOf(f.reload(t, x.ID)) != a.ID || ownerOf(f.reload(t, y.ID)) != b.ID {
		t.Error("两个班次应保持原员工")
	}
	f.assertNoOverlap(t)
}

// 第二次写班次时注入故障：整个审批回滚
func TestExchangeService_Approve_AtomicUnderWriteFailure(t *testing.T) {
	f := newFixture(t)
	svc := f.exchangeService()
	a := f.worker(t, "张三")
	b := f.worker(t, "李四")
	ctx := context.Background()

	x := f.shift(t, a, day(4, 9), day(4, 17))
	y := f.shift(t, b, day(5, 9), day(5, 17))
	req := propose(t, svc, a.ID, x.ID, &y.ID, &b.ID)

	errInjected := errors.New("注入故障")
	var shiftWrites int
	err := f.db.Callback().Update().Before("gorm:update").Register("test:fail_second_shift_write", func(tx *gorm.DB) {
		if tx.Statement.Table != "shifts" {
			return
		}
		shiftWrites++
		if shiftWrites == 2 {
			tx.AddError(errInjected)
		}
	})
	if err != nil {
		t.Fatalf("注册回调失败: %v", err)
	}

	if _, err := svc.Approve(ctx, req.ID, b.ID); !errors.Is(err, errInjected) {
		t.Fatalf("期望注入的错误，实际: %v", err)
	}
	if shiftWrites != 2 {
		t.Fatalf("期望在第 2 次写班次时失败，实际写入 %d 次", shiftWrites)
	}

	if ownerOf(f.reload(t, x.ID)) != a.ID || ownerOf(f.reload(t, y.ID)) != b.ID {
		t.Error("故障后两个班次都应保持原员工")
	}
	got, err := svc.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("查询申请失败: %v", err)
	}
	if got.Status != model.ExchangeStatusPending {
		t.Errorf("故障后申请应保持 pending，实际 %s", got.Status)
	}
	logs, _ := f.repo.ChangeLog.ListByShift(ctx, x.ID)
	if len(logs) != 0 {
		t.Errorf("故障后不应留下变更记录，实际 %d 条", len(logs))
	}
	if types := f.publisher.types(); len(types) != 1 {
		t.Errorf("失败的审批不应投递事件，实际 %v", types)
	}
}

func TestExchangeService_Approve_Eligibility(t *testing.T) {
	tests := []struct {
		name      string
		policy    string
		atSameWP  bool
		wantErr   error
		wantOwner string
	}{
		{"任意员工", config.OpenOfferAnyWorker, false, nil, "approver"},
		{"同地点员工", config.OpenOfferSameWorkplace, true, nil, "approver"},
		{"非同地点员工", config.OpenOfferSameWorkplace, false, ErrNotEligible, "requester"},
		{"仅管理员", config.OpenOfferAdminOnly, true, ErrNotEligible, "requester"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.policy.OpenOfferApprovers = tt.policy
			svc := f.exchangeService()
			a := f.worker(t, "张三")
			b := f.worker(t, "李四")

			x := f.shift(t, a, day(4, 9), day(4, 17))
			if tt.atSameWP {
				f.shift(t, b, day(10, 9), day(10, 17))
			}
			req := propose(t, svc, a.ID, x.ID, nil, nil)

			_, err := svc.Approve(context.Background(), req.ID, b.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("期望 %v，实际: %v", tt.wantErr, err)
			}
			want := a.ID
			if tt.wantOwner == "approver" {
				want = b.ID
			}
			if got := ownerOf(f.reload(t, x.ID)); got != want {
				t.Errorf("班次应归 %d，实际 %d", want, got)
			}
		})
	}
}

func TestExchangeService_Approve_Permissions(t *testing.T) {
	f := newFixture(t)
	svc := f.exchangeService()
	admin := f.admin(t)
	a := f.worker(t, "张三")
	b := f.worker(t, "李四")
	c := f.worker(t, "王五")
	ctx := context.Background()

	x := f.shift(t, a, day(4, 9), day(4, 17))
	f.shift(t, c, day(10, 9), day(10, 17))
	req := propose(t, svc, a.ID, x.ID, nil, &b.ID)

	if _, err := svc.Approve(ctx, req.ID, a.ID); !errors.Is(err, ErrNotEligible) {
		t.Errorf("申请人不能审批自己的申请，实际: %v", err)
	}
	if _, err := svc.Approve(ctx, req.ID, c.ID); !errors.Is(err, ErrNotEligible) {
		t.Errorf("定向申请只能由被申请人审批，实际: %v", err)
	}
	if _, err := svc.Approve(ctx, 9999, b.ID); !errors.Is(err, ErrExchangeNotFound) {
		t.Errorf("期望 ErrExchangeNotFound，实际: %v", err)
	}

	// 管理员代为审批时班次转给被申请人
	resp, err := svc.Approve(ctx, req.ID, admin.ID)
	if err != nil {
		t.Fatalf("管理员审批应成功: %v", err)
	}
	if got := ownerOf(f.reload(t, x.ID)); got != b.ID {
		t.Errorf("班次应归被申请人 %d，实际 %d", b.ID, got)
	}
	if resp.Exchange.ResolvedBy == nil || *resp.Exchange.ResolvedBy != admin.ID {
		t.Error("resolved_by 应为管理员")
	}
}

func TestExchangeService_Approve_OwnershipRechecked(t *testing.T) {
	f := newFixture(t)
	svc := f.exchangeService()
	admin := f.admin(t)
	a := f.worker(t, "张三")
	b := f.worker(t, "李四")
	c := f.worker(t, "王五")
	ctx := context.Background()

	x := f.shift(t, a, day(4, 9), day(4, 17))
	req := propose(t, svc, a.ID, x.ID, nil, &b.ID)

	// 提交申请后管理员把班次改派给 C
	if _, err := f.shiftService().Update(ctx, x.ID, &dto.UpdateShiftRequest{WorkerID: &c.ID}, admin.ID); err != nil {
		t.Fatalf("改派应成功: %v", err)
	}

	if _, err := svc.Approve(ctx, req.ID, b.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("班次易主后审批期望 ErrNotOwner，实际: %v", err)
	}
	if got := ownerOf(f.reload(t, x.ID)); got != c.ID {
		t.Errorf("班次应保持归 C，实际 %d", got)
	}
}

func TestExchangeService_Approve_Concurrent(t *testing.T) {
	f := newFixture(t)
	f.policy.OpenOfferApprovers = config.OpenOfferAnyWorker
	svc := f.exchangeService()
	a := f.worker(t, "张三")

	x := f.shift(t, a, day(4, 9), day(4, 17))
	req := propose(t, svc, a.ID, x.ID, nil, nil)

	const n = 4
	approvers := make([]*model.Worker, n)
	for i := range approvers {
		approvers[i] = f.worker(t, "候选人")
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		blocked int
	)
	for _, w := range approvers {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.Approve(context.Background(), req.ID, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrInvalidTransition):
				blocked++
			default:
				t.Errorf("意外错误: %v", err)
			}
		}(w.ID)
	}
	wg.Wait()

	if ok != 1 || blocked != n-1 {
		t.Errorf("期望恰好 1 次审批成功，实际成功 %d / 拒绝 %d", ok, blocked)
	}
	logs, err := f.repo.ChangeLog.ListByShift(context.Background(), x.ID)
	if err != nil {
		t.Fatalf("读取变更记录失败: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("期望 1 条变更记录，实际 %d", len(logs))
	}
}

// ── Reject 测试 ──

func TestExchangeService_Reject(t *testing.T) {
	f := newFixture(t)
	svc := f.exchangeService()
	a := f.worker(t, "张三")
	b := f.worker(t, "李四")
	c := f.worker(t, "王五")
	ctx := context.Background()

	x := f.shift(t, a, day(4, 9), day(4, 17))
	req := propose(t, svc, a.ID, x.ID, nil, &b.ID)

	if _, err := svc.Reject(ctx, req.ID, c.ID, ""); !errors.Is(err, ErrNotEligible) {
		t.Errorf("无关员工拒绝期望 ErrNotEligible，实际: %v", err)
	}

	resp, err := svc.Reject(ctx, req.ID, b.ID, "那天有课")
	if err != nil {
		t.Fatalf("被申请人拒绝应成功: %v", err)
	}
	if resp.Status != model.ExchangeStatusRejected || resp.RejectReason != "那天有课" {
		t.Errorf("期望 rejected 并记录原因，实际 %s / %q", resp.Status, resp.RejectReason)
	}
	if got := ownerOf(f.reload(t, x.ID)); got != a.ID {
		t.Errorf("拒绝不应改动班次，实际归 %d", got)
	}

	if _, err := svc.Approve(ctx, req.ID, b.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("已拒绝的申请审批期望 ErrInvalidTransition，实际: %v", err)
	}
	if _, err := svc.Reject(ctx, req.ID, b.ID, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("重复拒绝期望 ErrInvalidTransition，实际: %v", err)
	}
}

func TestExchangeService_Reject_RequesterWithdraws(t *testing.T) {
	f := newFixture(t)
	svc := f.exchangeService()
	a := f.worker(t, "张三")

	x := f.shift(t, a, day(4, 9), day(4, 17))
	req := propose(t, svc, a.ID, x.ID, nil, nil)

	resp, err := svc.Reject(context.Background(), req.ID, a.ID, "")
	if err != nil {
		t.Fatalf("申请人撤回应成功: %v", err)
	}
	if resp.Status != model.ExchangeStatusRejected {
		t.Errorf("期望 rejected，实际 %s", resp.Status)
	}
}

// ── 查询测试 ──

func TestExchangeService_ListPending(t *testing.T) {
	f := newFixture(t)
	svc := f.exchangeService()
	a := f.worker(t, "张三")
	b := f.worker(t, "李四")
	c := f.worker(t, "王五")
	ctx := context.Background()

	x1 := f.shift(t, a, day(4, 9), day(4, 17))
	x2 := f.shift(t, a, day(5, 9), day(5, 17))
	x3 := f.shift(t, a, day(6, 9), day(6, 17))
	propose(t, svc, a.ID, x1.ID, nil, &b.ID)
	propose(t, svc, a.ID, x2.ID, nil, &c.ID)
	propose(t, svc, a.ID, x3.ID, nil, nil)

	all, err := svc.ListPending(ctx, &dto.PendingExchangeQuery{})
	if err != nil {
		t.Fatalf("列出待处理申请应成功: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("期望 3 条，实际 %d", len(all))
	}

	forB, err := svc.ListPending(ctx, &dto.PendingExchangeQuery{RequesteeID: &b.ID})
	if err != nil {
		t.Fatalf("按被申请人列出应成功: %v", err)
	}
	if len(forB) != 2 {
		t.Errorf("B 应看到定向给自己的和开放的共 2 条，实际 %d", len(forB))
	}

	mine, err := svc.ListForWorker(ctx, a.ID)
	if err != nil {
		t.Fatalf("列出我的申请应成功: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("A 应有 3 条申请，实际 %d", len(mine))
	}
}

func TestExchangeService_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("队列不可用")
	svc := f.exchangeService()
	a := f.worker(t, "张三")
	x := f.shift(t, a, day(4, 9), day(4, 17))

	if _, err := svc.Propose(context.Background(), &dto.ProposeExchangeRequest{RequestShiftID: x.ID}, a.ID); err != nil {
		t.Errorf("事件投递失败不应影响申请: %v", err)
	}
}
