package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hozymaister/Workshift-sub001/config"
	"github.com/Hozymaister/Workshift-sub001/internal/model"
	"github.com/Hozymaister/Workshift-sub001/internal/repository"
	"github.com/Hozymaister/Workshift-sub001/internal/testutil"
	"github.com/Hozymaister/Workshift-sub001/pkg/events"
)

// ── 测试辅助 ──

// 测试中的"当前时间"；班次均安排在其之后
var testNow = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// day 返回 2024-03 某日某时（UTC）
func day(d, hour int) time.Time {
	return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
}

// recordingPublisher 记录投递的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	repo      *repository.Repository
	publisher *recordingPublisher
	policy    config.SchedulingConfig
	workplace *model.Workplace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	return &fixture{
		db:        db,
		repo:      repository.NewRepository(db),
		publisher: &recordingPublisher{},
		policy: config.SchedulingConfig{
			OpenOfferApprovers:    config.OpenOfferSameWorkplace,
			DeleteReferencedShift: config.DeletePolicyBlock,
			ReportRegeneration:    config.ReportSnapshot,
		},
		workplace: testutil.CreateWorkplace(t, db, "中央仓库"),
	}
}

func (f *fixture) shiftService() *shiftService {
	svc := NewShiftService(f.policy, f.repo, f.publisher, zap.NewNop()).(*shiftService)
	svc.now = fixedNow
	return svc
}

func (f *fixture) exchangeService() *exchangeService {
	svc := NewExchangeService(f.policy, f.repo, f.publisher, zap.NewNop()).(*exchangeService)
	svc.now = fixedNow
	return svc
}

func (f *fixture) reportService() *reportService {
	svc := NewReportService(f.policy, f.repo, zap.NewNop()).(*reportService)
	svc.now = fixedNow
	return svc
}

func (f *fixture) worker(t *testing.T, name string) *model.Worker {
	t.Helper()
	return testutil.CreateWorker(t, f.db, name, model.RoleWorker, nil)
}

func (f *fixture) admin(t *testing.T) *model.Worker {
	t.Helper()
	return testutil.CreateWorker(t, f.db, "管理员", model.RoleAdmin, nil)
}

// shift 在默认工作地点为 owner 写入班次；owner 为 nil 表示未分配
func (f *fixture) shift(t *testing.T, owner *model.Worker, start, end time.Time) *model.Shift {
	t.Helper()
	var workerID *uint
	if owner != nil {
		workerID = testutil.Ptr(owner.ID)
	}
	return testutil.CreateShift(t, f.db, f.workplace.ID, workerID, start, end)
}

// reload 读取班次当前状态
func (f *fixture) reload(t *testing.T, id uint) *model.Shift {
	t.Helper()
	s, err := f.repo.Shift.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("读取班次 %d 失败: %v", id, err)
	}
	return s
}

func ownerOf(s *model.Shift) uint {
	if s.WorkerID == nil {
		return 0
	}
	return *s.WorkerID
}

// assertNoOverlap 校验每个员工的班次两两不重叠
func (f *fixture) assertNoOverlap(t *testing.T) {
	t.Helper()
	var shifts []model.Shift
	if err := f.db.Where("worker_id IS NOT NULL").Order("worker_id, start_time").Find(&shifts).Error; err != nil {
		t.Fatalf("读取班次失败: %v", err)
	}
	for i := 1; i < len(shifts); i++ {
		prev, cur := shifts[i-1], shifts[i]
		if *prev.WorkerID == *cur.WorkerID && cur.StartTime.Before(prev.EndTime) {
			t.Errorf("员工 %d 的班次 %d 与 %d 重叠", *cur.WorkerID, prev.ID, cur.ID)
		}
	}
}
