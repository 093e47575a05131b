package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GroupGuard/internal/utils"
)

// AsyncMiddleware 异步处理中间件
// 将请求的处理逻辑提交到 Worker Pool 中执行，控制并发处理的请求数量。
// 主 Goroutine 阻塞等待任务完成，对客户端仍然是同步的 Request-Response。
// 队列已满时降级为同步执行，上报通道不丢请求。
func AsyncMiddleware(pool *utils.WorkerPool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pool == nil {
			c.Next()
			return
		}

		done := make(chan struct{})

		// 闭包捕获 gin.Context；主 Goroutine 阻塞等待，
		// 同一时间只有一个 Goroutine 操作 c，因此是安全的
		task := func() {
			defer close(done)
			c.Next()
		}

		if !pool.Submit(task) {
			c.Next()
			return
		}

		<-done
	}
}
