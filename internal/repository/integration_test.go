//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Hozymaister/Workshift-sub001/internal/model"
	"github.com/Hozymaister/Workshift-sub001/internal/repository"
	"github.com/Hozymaister/Workshift-sub001/pkg/database"
	pkgerrors "github.com/Hozymaister/Workshift-sub001/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var pgDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=workshift password=workshift dbname=workshift_test sslmode=disable TimeZone=UTC"
	}

	var err error
	pgDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 使用正式迁移脚本建表，确保 EXCLUDE 约束生效
	sqlDB, err := pgDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if _, err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// setupPG 创建基础测试数据并返回清理函数
func setupPG(t *testing.T) (worker *model.Worker, wp *model.Workplace, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	worker = &model.Worker{Name: fmt.Sprintf("测试员工-%d", time.Now().UnixNano()), Role: model.RoleWorker, IsActive: true}
	if err := pgDB.WithContext(ctx).Create(worker).Error; err != nil {
		t.Fatalf("创建员工失败: %v", err)
	}
	wp = &model.Workplace{Name: "测试仓库", Category: model.CategoryWarehouse, IsActive: true}
	if err := pgDB.WithContext(ctx).Create(wp).Error; err != nil {
		t.Fatalf("创建地点失败: %v", err)
	}

	cleanup = func() {
		pgDB.Unscoped().Where("workplace_id = ?", wp.ID).Delete(&model.Shift{})
		pgDB.Unscoped().Where("id = ?", wp.ID).Delete(&model.Workplace{})
		pgDB.Where("id = ?", worker.ID).Delete(&model.Worker{})
	}
	return
}

func pgShift(wpID uint, workerID *uint, start, end time.Time) *model.Shift {
	s := &model.Shift{
		WorkplaceID: wpID,
		WorkerID:    workerID,
		Date:        time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:   start,
		EndTime:     end,
	}
	s.Version = 1
	return s
}

// ═══════════════════════════════════════════════════════════
// Test: EXCLUDE constraint
// ═══════════════════════════════════════════════════════════

func TestPG_ExclusionConstraint(t *testing.T) {
	worker, wp, cleanup := setupPG(t)
	defer cleanup()

	repo := repository.NewRepository(pgDB)
	ctx := context.Background()
	start := time.Date(2031, 1, 10, 9, 0, 0, 0, time.UTC)

	if err := repo.Shift.Create(ctx, pgShift(wp.ID, &worker.ID, start, start.Add(8*time.Hour))); err != nil {
		t.Fatalf("创建第一个班次失败: %v", err)
	}

	// 首尾相接允许
	if err := repo.Shift.Create(ctx, pgShift(wp.ID, &worker.ID, start.Add(8*time.Hour), start.Add(10*time.Hour))); err != nil {
		t.Fatalf("首尾相接的班次应允许: %v", err)
	}

	// 重叠被数据库拒绝
	err := repo.Shift.Create(ctx, pgShift(wp.ID, &worker.ID, start.Add(time.Hour), start.Add(2*time.Hour)))
	if !pkgerrors.IsExclusionViolation(err) {
		t.Fatalf("期望排他约束冲突 23P01，实际: %v", err)
	}

	// 未分配班次不受约束
	if err := repo.Shift.Create(ctx, pgShift(wp.ID, nil, start, start.Add(8*time.Hour))); err != nil {
		t.Errorf("未分配班次不应受约束: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction Rollback
// ═══════════════════════════════════════════════════════════

func TestPG_TransactionRollback(t *testing.T) {
	worker, wp, cleanup := setupPG(t)
	defer cleanup()

	repo := repository.NewRepository(pgDB)
	ctx := context.Background()
	start := time.Date(2031, 2, 1, 9, 0, 0, 0, time.UTC)

	var created *model.Shift
	boom := errors.New("模拟失败")
	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if _, err := txRepo.Worker.LockByIDs(ctx, worker.ID); err != nil {
			return err
		}
		created = pgShift(wp.ID, &worker.ID, start, start.Add(4*time.Hour))
		if err := txRepo.Shift.Create(ctx, created); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("期望事务返回模拟错误，实际: %v", err)
	}

	if _, err := repo.Shift.GetByID(ctx, created.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("回滚后班次不应存在，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Row lock serializes writers
// ═══════════════════════════════════════════════════════════

func TestPG_WorkerLockSerializes(t *testing.T) {
	worker, _, cleanup := setupPG(t)
	defer cleanup()

	repo := repository.NewRepository(pgDB)
	ctx := context.Background()

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan time.Time, 1)

	go func() {
		repo.Transaction(ctx, func(txRepo *repository.Repository) error {
			if _, err := txRepo.Worker.LockByIDs(ctx, worker.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()

	<-locked
	go func() {
		repo.Transaction(ctx, func(txRepo *repository.Repository) error {
			_, err := txRepo.Worker.LockByIDs(ctx, worker.ID)
			done <- time.Now()
			return err
		})
	}()

	time.Sleep(200 * time.Millisecond)
	releasedAt := time.Now()
	close(release)

	acquiredAt := <-done
	if acquiredAt.Before(releasedAt) {
		t.Error("第二个事务应在第一个事务释放锁之后才能获得锁")
	}
}
