// Package testutil 为仓储与业务层测试提供内存 SQLite 数据库和基础数据
package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Hozymaister/Workshift-sub001/internal/model"
)

// NewDB 创建已迁移的内存 SQLite 数据库
// 单连接：同一时刻只有一个事务能持有连接，并发写操作因此串行执行
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("打开 SQLite 失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层 sql.DB 失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("AutoMigrate 失败: %v", err)
	}
	return db
}

// CreateWorker 创建员工
func CreateWorker(t *testing.T, db *gorm.DB, name, role string, wage *float64) *model.Worker {
	t.Helper()
	w := &model.Worker{Name: name, Role: role, HourlyWage: wage, IsActive: true}
	if err := db.WithContext(context.Background()).Create(w).Error; err != nil {
		t.Fatalf("创建员工失败: %v", err)
	}
	return w
}

// CreateWorkplace 创建工作地点
func CreateWorkplace(t *testing.T, db *gorm.DB, name string) *model.Workplace {
	t.Helper()
	wp := &model.Workplace{Name: name, Category: model.CategoryWarehouse, IsActive: true}
	if err := db.WithContext(context.Background()).Create(wp).Error; err != nil {
		t.Fatalf("创建工作地点失败: %v", err)
	}
	return wp
}

// CreateShift 直接写入班次，不做业务校验
func CreateShift(t *testing.T, db *gorm.DB, workplaceID uint, workerID *uint, start, end time.Time) *model.Shift {
	t.Helper()
	start, end = start.UTC(), end.UTC()
	s := &model.Shift{
		WorkplaceID: workplaceID,
		WorkerID:    workerID,
		Date:        time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:   start,
		EndTime:     end,
	}
	s.Version = 1
	if err := db.WithContext(context.Background()).Create(s).Error; err != nil {
		t.Fatalf("创建班次失败: %v", err)
	}
	return s
}

// Ptr 取地址
func Ptr[T any](v T) *T { return &v }
