package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Hozymaister/Workshift-sub001/internal/model"
)

// ReportRepository 工时报表数据访问接口
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id uint) (*model.Report, error)
	// GetLatestForPeriod 同一员工同一周期最近生成的报表
	GetLatestForPeriod(ctx context.Context, userID uint, month, year int) (*model.Report, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Report, error)
	// Replace 以新的汇总结果覆盖已有报表
	Replace(ctx context.Context, report *model.Report) error
}

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepo 创建 ReportRepository 实例
func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepo) GetByID(ctx context.Context, id uint) (*model.Report, error) {
	var report model.Report
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) GetLatestForPeriod(ctx context.Context, userID uint, month, year int) (*model.Report, error) {
	var report model.Report
	err := forUpdate(r.db.WithContext(ctx)).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Order("generated_at DESC, id DESC").
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) ListByUser(ctx context.Context, userID uint) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("year DESC, month DESC, generated_at DESC, id DESC").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepo) Replace(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ?", report.ID).
		Updates(map[string]interface{}{
			"total_minutes": report.TotalMinutes,
			"total_hours":   report.TotalHours,
			"shift_count":   report.ShiftCount,
			"hourly_wage":   report.HourlyWage,
			"total_pay":     report.TotalPay,
			"generated_at":  report.GeneratedAt,
		}).Error
}
