// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"ai-novel-api/pkg/errors"
	"ai-novel-api/pkg/logger"
)

// InternalErrorMessage panic 时返回给客户端的提示，细节只进日志
const InternalErrorMessage = "服务器内部错误"

// Recovery Panic 恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					fmt.Errorf("%v", r),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				c.Header("Access-Control-Allow-Origin", "*")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"code":    errors.CodeInternalError,
					"error":   InternalErrorMessage,
				})
			}
		}()

		c.Next()
	}
}
