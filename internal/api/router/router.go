package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Hozymaister/Workshift-sub001/config"
	"github.com/Hozymaister/Workshift-sub001/internal/api/handler"
	"github.com/Hozymaister/Workshift-sub001/internal/api/middleware"
	"github.com/Hozymaister/Workshift-sub001/internal/model"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时写接口不限流
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1（身份由网关注入） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.ActorAuth())

	adminOnly := middleware.RoleAuth(model.RoleAdmin)
	limited := middleware.RateLimit(limiter, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window, logger)

	// 工作地点模块
	workplaces := v1.Group("/workplaces")
	{
		workplaces.GET("", h.Workplace.ListWorkplaces)
		workplaces.GET("/:id", h.Workplace.GetWorkplace)
		workplaces.POST("", adminOnly, limited, h.Workplace.CreateWorkplace)
		workplaces.PUT("/:id", adminOnly, limited, h.Workplace.UpdateWorkplace)
		workplaces.DELETE("/:id", adminOnly, limited, h.Workplace.DeleteWorkplace)
	}

	// 班次模块
	shifts := v1.Group("/shifts")
	{
		shifts.GET("", h.Shift.ListShifts)
		shifts.GET("/conflicts", h.Shift.CheckConflicts)
		shifts.GET("/:id", h.Shift.GetShift)
		shifts.POST("", adminOnly, limited, h.Shift.CreateShift)
		shifts.PATCH("/:id", adminOnly, limited, h.Shift.UpdateShift)
		shifts.DELETE("/:id", adminOnly, limited, h.Shift.DeleteShift)
	}
	v1.GET("/workers/:id/shifts", h.Shift.ListWorkerShifts)

	// 换班模块（审批资格在 Service 层判断）
	exchanges := v1.Group("/exchanges")
	{
		exchanges.POST("", limited, h.Exchange.ProposeExchange)
		exchanges.GET("/pending", h.Exchange.ListPending)
		exchanges.GET("/mine", h.Exchange.ListMine)
		exchanges.GET("/:id", h.Exchange.GetExchange)
		exchanges.POST("/:id/approve", limited, h.Exchange.ApproveExchange)
		exchanges.POST("/:id/reject", limited, h.Exchange.RejectExchange)
	}

	// 报表模块
	reports := v1.Group("/reports")
	{
		reports.POST("", limited, h.Report.GenerateReport)
		reports.GET("", h.Report.ListReports)
		reports.GET("/:id", h.Report.GetReport)
	}

	// 导出模块
	v1.GET("/export/timesheet", h.Export.ExportTimesheet)

	return r
}
