package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/d60-Lab/anon-forum/internal/monitoring"
)

// Metrics 按路由模板统计请求量与耗时，跳过 /metrics 自身；需注册在 Recovery 外层
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		timer := prometheus.NewTimer(monitoring.HttpRequestDuration.WithLabelValues(c.Request.Method, route))
		monitoring.ActiveRequests.Inc()
		defer func() {
			monitoring.ActiveRequests.Dec()
			timer.ObserveDuration()
			monitoring.HttpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		}()

		c.Next()
	}
}
