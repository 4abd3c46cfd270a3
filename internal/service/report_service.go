package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Hozymaister/Workshift-sub001/config"
	"github.com/Hozymaister/Workshift-sub001/internal/dto"
	"github.com/Hozymaister/Workshift-sub001/internal/model"
	"github.com/Hozymaister/Workshift-sub001/internal/repository"
	"github.com/Hozymaister/Workshift-sub001/pkg/interval"
)

// 报表允许的年份范围
const (
	minReportYear = 2000
	maxReportYear = 2100
)

// ReportService 工时报表业务接口
type ReportService interface {
	Generate(ctx context.Context, userID uint, month, year int) (*dto.ReportResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.ReportResponse, error)
	ListReports(ctx context.Context, userID uint) ([]dto.ReportResponse, error)
}

type reportService struct {
	policy config.SchedulingConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService 创建 ReportService 实例
func NewReportService(policy config.SchedulingConfig, repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{
		policy: policy,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// monthlyTotal 某员工某月的工时汇总
type monthlyTotal struct {
	shifts  []model.Shift
	minutes int64
}

// sumMonth 汇总 date 落在 [当月1日, 次月1日) 的班次；分钟数按 FormatDuration 的规则取整
func sumMonth(ctx context.Context, repo *repository.Repository, userID uint, month, year int) (*monthlyTotal, error) {
	if month < 1 || month > 12 || year < minReportYear || year > maxReportYear {
		return nil, ErrInvalidPeriod
	}

	from, to := interval.MonthRange(year, month)
	shifts, err := repo.Shift.ListByWorker(ctx, userID, &from, &to)
	if err != nil {
		return nil, err
	}

	var hours float64
	for i := range shifts {
		h, err := interval.Duration(shifts[i].StartTime, shifts[i].EndTime)
		if err != nil {
			return nil, err
		}
		hours += h
	}
	return &monthlyTotal{shifts: shifts, minutes: interval.RoundMinutes(hours)}, nil
}

// ────────────────────── Generate ──────────────────────

func (s *reportService) Generate(ctx context.Context, userID uint, month, year int) (*dto.ReportResponse, error) {
	var report *model.Report

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		worker, err := txRepo.Worker.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWorkerNotFound
			}
			return err
		}

		total, err := sumMonth(ctx, txRepo, userID, month, year)
		if err != nil {
			return err
		}

		report = &model.Report{
			UserID:       userID,
			Month:        month,
			Year:         year,
			TotalMinutes: total.minutes,
			TotalHours:   round2(float64(total.minutes) / 60),
			ShiftCount:   len(total.shifts),
			GeneratedAt:  s.now().UTC(),
		}
		if worker.HourlyWage != nil {
			wage := *worker.HourlyWage
			pay := round2(float64(total.minutes) * wage / 60)
			report.HourlyWage = &wage
			report.TotalPay = &pay
		}

		if s.policy.ReportRegeneration == config.ReportUpsert {
			prev, err := txRepo.Report.GetLatestForPeriod(ctx, userID, month, year)
			switch {
			case err == nil:
				report.ID = prev.ID
				return txRepo.Report.Replace(ctx, report)
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		return txRepo.Report.Create(ctx, report)
	})
	if err != nil {
		logFailure(s.logger, "生成报表失败", err,
			zap.Uint("user_id", userID),
			zap.Int("month", month),
			zap.Int("year", year),
		)
		return nil, err
	}

	s.logger.Info("报表已生成",
		zap.Uint("report_id", report.ID),
		zap.Uint("user_id", userID),
		zap.Int64("total_minutes", report.TotalMinutes),
	)
	return toReportResponse(report), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *reportService) GetByID(ctx context.Context, id uint) (*dto.ReportResponse, error) {
	report, err := s.repo.Report.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询报表失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return toReportResponse(report), nil
}

// ────────────────────── ListReports ──────────────────────

func (s *reportService) ListReports(ctx context.Context, userID uint) ([]dto.ReportResponse, error) {
	reports, err := s.repo.Report.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("列出报表失败", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, *toReportResponse(&reports[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toReportResponse(r *model.Report) *dto.ReportResponse {
	return &dto.ReportResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		Month:        r.Month,
		Year:         r.Year,
		TotalMinutes: r.TotalMinutes,
		TotalHours:   r.TotalHours,
		Duration:     interval.FormatDuration(float64(r.TotalMinutes) / 60),
		ShiftCount:   r.ShiftCount,
		HourlyWage:   r.HourlyWage,
		TotalPay:     r.TotalPay,
		GeneratedAt:  formatTime(r.GeneratedAt),
	}
}
