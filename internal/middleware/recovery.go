package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/watermelon-notes/pkg/app"
	"github.com/haierkeys/watermelon-notes/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 创建带日志器的 Recovery 中间件（支持依赖注入）
func RecoveryWithLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		defer func() {
			if err := recover(); err != nil {
				var errorMsg string
				switch v := err.(type) {
				case error:
					errorMsg = v.Error()
				default:
					errorMsg = fmt.Sprintf("%v", v)
				}
				logger.Error("Recovered from panic",
					zap.String("router", path),
					zap.String("method", c.Request.Method),
					zap.String("query", query),
					zap.String("ip", c.ClientIP()),
					zap.String("traceId", GetTraceIDFromGin(c)),
					zap.String("panic_value", errorMsg),
					zap.String("stack", string(debug.Stack())),
				)

				app.NewResponse(c).ToResponse(code.ErrorServerInternal.WithDetails(errorMsg))
				c.Abort()
			}
		}()

		c.Next()
	}
}
