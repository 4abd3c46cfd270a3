package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Hozymaister/Workshift-sub001/config"
	"github.com/Hozymaister/Workshift-sub001/internal/api/handler"
	"github.com/Hozymaister/Workshift-sub001/internal/api/middleware"
	"github.com/Hozymaister/Workshift-sub001/internal/api/router"
	"github.com/Hozymaister/Workshift-sub001/internal/repository"
	"github.com/Hozymaister/Workshift-sub001/internal/service"
	"github.com/Hozymaister/Workshift-sub001/pkg/database"
	"github.com/Hozymaister/Workshift-sub001/pkg/events"
	applogger "github.com/Hozymaister/Workshift-sub001/pkg/logger"
	"github.com/Hozymaister/Workshift-sub001/pkg/redis"
	"github.com/Hozymaister/Workshift-sub001/pkg/telemetry"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("WORKSHIFT_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("open_offer_approvers", cfg.Scheduling.OpenOfferApprovers),
		zap.String("delete_referenced_shift", cfg.Scheduling.DeleteReferencedShift),
		zap.String("report_regeneration", cfg.Scheduling.ReportRegeneration),
	)

	ctx := context.Background()

	// 3. 链路追踪
	shutdownTracer, err := telemetry.InitTracer(ctx, &cfg.Telemetry)
	if err != nil {
		logger.Fatal("初始化链路追踪失败", zap.Error(err))
	}

	// 4. 连接数据库并迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if _, err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，写接口不限流）
	var limiter middleware.RateLimiter
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，限流功能将不可用", zap.Error(err))
		rdb = nil
	} else {
		limiter = rdb
	}

	// 6. 换班事件投递（可选：初始化失败时只记录日志）
	publisher, err := events.NewPublisher(ctx, &cfg.Events)
	if err != nil {
		logger.Warn("事件投递初始化失败，换班事件将不会发送", zap.Error(err))
		publisher = events.NopPublisher{}
	}

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, publisher, logger)
	h := handler.NewHandler(svc)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, limiter, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      otelhttp.NewHandler(engine, cfg.Telemetry.ServiceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Warn("链路追踪关闭异常", zap.Error(err))
	}

	sqlDB.Close()

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
