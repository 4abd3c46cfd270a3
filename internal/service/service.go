package service

import (
	"go.uber.org/zap"

	"github.com/Hozymaister/Workshift-sub001/config"
	"github.com/Hozymaister/Workshift-sub001/internal/repository"
	"github.com/Hozymaister/Workshift-sub001/pkg/events"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Workplace WorkplaceService
	Shift     ShiftService
	Exchange  ExchangeService
	Report    ReportService
	Export    ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	publisher events.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		Workplace: NewWorkplaceService(repo, logger),
		Shift:     NewShiftService(cfg.Scheduling, repo, publisher, logger),
		Exchange:  NewExchangeService(cfg.Scheduling, repo, publisher, logger),
		Report:    NewReportService(cfg.Scheduling, repo, logger),
		Export:    NewExportService(repo, logger),
	}
}
