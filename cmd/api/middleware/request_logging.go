package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"spacetravelling/cmd/internal/logger"
)

// SlowRequestLogging 은 threshold 보다 오래 걸린 요청을 warn 으로 남긴다.
// 대부분 page cache MISS 로 content API 를 직접 부른 경우다.
func SlowRequestLogging(threshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		elapsed := time.Since(start)
		if elapsed < threshold {
			return
		}
		logger.Log.Warnf(
			"slow_request method=%s path=%s status=%d duration_ms=%d page_cache=%s",
			method,
			path,
			c.Writer.Status(),
			elapsed.Milliseconds(),
			c.Writer.Header().Get(HeaderPageCache),
		)
	}
}
