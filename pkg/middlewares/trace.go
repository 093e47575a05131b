package middlewares

import (
	"github.com/gin-gonic/gin"

	logger "github.com/Gopher0727/GroupGuard/middleware/log"
)

// TraceMiddleware 为每个请求注入 trace_id
// 优先复用上游传入的 X-Trace-ID，便于跨服务关联日志
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		ctx := logger.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Trace-ID", logger.GetTraceID(ctx))
		c.Next()
	}
}
