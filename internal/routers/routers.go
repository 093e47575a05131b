package routers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GroupGuard/config"
	"github.com/Gopher0727/GroupGuard/internal/handlers"
	"github.com/Gopher0727/GroupGuard/internal/utils"
	"github.com/Gopher0727/GroupGuard/middleware/jwt"
	"github.com/Gopher0727/GroupGuard/pkg/middlewares"
)

// SetupRoutes 设置所有路由
func SetupRoutes(r *gin.Engine, cfg *config.Config,
	activityHandler *handlers.ActivityHandler,
	alertHandler *handlers.AlertHandler,
	groupHandler *handlers.GroupHandler,
	settingHandler *handlers.SettingHandler,
	tokenManager *jwt.TokenManager,
	pool *utils.WorkerPool,
) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// 注入 trace_id，贯穿请求内的结构化日志
	r.Use(middlewares.TraceMiddleware())

	// 全局限流中间件 (防止 QPS 过高)
	r.Use(middlewares.RateLimitMiddleware(2 * time.Second))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"Status": "OK",
		})
	})

	// 异步处理中间件
	// 将请求放入 Worker Pool 中排队执行
	r.Use(middlewares.AsyncMiddleware(pool))

	RegisterActivityRoutes(r, activityHandler, tokenManager)
	RegisterAlertRoutes(r, alertHandler, tokenManager)
	RegisterGroupRoutes(r, groupHandler, tokenManager)
	RegisterSettingRoutes(r, settingHandler, tokenManager)
}

// ActivityHandler 接口定义
func RegisterActivityRoutes(r *gin.Engine, activityHandler *handlers.ActivityHandler, tm *jwt.TokenManager) {
	activityGroup := r.Group("/api/v1/activities")
	activityGroup.Use(middlewares.AuthMiddleware(tm))
	{
		activityGroup.POST("", activityHandler.RecordActivity) // 上报活动
	}

	// 活动流水挂在群组路径下
	r.GET("/api/v1/groups/:id/activities", activityHandler.ListActivities)
}

// AlertHandler 接口定义
func RegisterAlertRoutes(r *gin.Engine, alertHandler *handlers.AlertHandler, tm *jwt.TokenManager) {
	alertGroup := r.Group("/api/v1/alerts")
	{
		alertGroup.GET("", alertHandler.ListUnresolved) // 查询未解决告警
	}
	alertGroup.Use(middlewares.AuthMiddleware(tm))
	{
		alertGroup.POST("/:id/resolve", alertHandler.ResolveAlert) // 标记已解决
	}
}

// GroupHandler 接口定义
func RegisterGroupRoutes(r *gin.Engine, groupHandler *handlers.GroupHandler, tm *jwt.TokenManager) {
	groupGroup := r.Group("/api/v1/groups")
	{
		groupGroup.GET("", groupHandler.ListGroups)                // 群组列表
		groupGroup.GET("/summary", groupHandler.GetSummary)        // 全量汇总
		groupGroup.GET("/:id/status", groupHandler.GetGroupStatus) // 群组风险状态
		groupGroup.GET("/:id/report", groupHandler.GetGroupReport) // 24 小时报告
	}
	groupGroup.Use(middlewares.AuthMiddleware(tm))
	{
		groupGroup.POST("", groupHandler.RegisterGroup)                         // 登记群组
		groupGroup.POST("/:id/scan", groupHandler.ScanGroup)                    // 立即扫描
		groupGroup.PUT("/:id/active", groupHandler.SetGroupActive)              // 启停监控
		groupGroup.POST("/:id/members", groupHandler.RegisterMember)            // 登记成员
		groupGroup.DELETE("/:id/members/:user_id", groupHandler.MarkMemberLeft) // 成员离开
	}
}

// SettingHandler 接口定义
func RegisterSettingRoutes(r *gin.Engine, settingHandler *handlers.SettingHandler, tm *jwt.TokenManager) {
	settingGroup := r.Group("/api/v1/settings")
	settingGroup.Use(middlewares.AuthMiddleware(tm))
	{
		settingGroup.POST("", settingHandler.RegisterOwner)                   // 注册所有者
		settingGroup.GET("/:owner_id", settingHandler.GetOwnerSetting)        // 查询设置
		settingGroup.PUT("/:owner_id/alerts", settingHandler.SetAlertEnabled) // 告警开关
	}
}
