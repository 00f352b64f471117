package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/anon-forum/pkg/logger"
)

// Recovery 捕获 panic，上报 sentry 并返回 500；进程继续服务
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(c.Request)
				hub.Scope().SetTag("request_id", GetRequestID(c))
				hub.RecoverWithContext(c.Request.Context(), rec)

				logger.With(
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", GetRequestID(c)),
				).Error("panic recovered",
					zap.String("panic", fmt.Sprint(rec)),
					zap.Stack("stack"),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
