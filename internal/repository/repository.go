package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Worker    WorkerRepository
	Workplace WorkplaceRepository
	Shift     ShiftRepository
	Exchange  ExchangeRequestRepository
	Report    ReportRepository
	ChangeLog ShiftChangeLogRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:        db,
		Worker:    NewWorkerRepo(db),
		Workplace: NewWorkplaceRepo(db),
		Shift:     NewShiftRepo(db),
		Exchange:  NewExchangeRequestRepo(db),
		Report:    NewReportRepo(db),
		ChangeLog: NewShiftChangeLogRepo(db),
	}
}

// Transaction 在单个事务中执行 fn；fn 返回错误或 panic 时整体回滚
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// forUpdate 行级排他锁（SQLite 方言会忽略该子句）
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
