package router

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/anon-forum/config"
	_ "github.com/d60-Lab/anon-forum/docs"
	"github.com/d60-Lab/anon-forum/internal/api/handler"
	"github.com/d60-Lab/anon-forum/internal/api/middleware"
	"github.com/d60-Lab/anon-forum/internal/service"
	"github.com/d60-Lab/anon-forum/internal/web"
)

const loginPath = "/login"

// Setup 组装 gin 引擎
func Setup(cfg *config.Config, h *handler.Handler, sessions service.SessionService) (*gin.Engine, error) {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	// Metrics 在 Recovery 外层，panic 请求也计入 500
	r.Use(middleware.RequestID(), middleware.Metrics(), middleware.Recovery())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	r.Use(
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
		middleware.Session(sessions, cfg.Session.CookieName),
		middleware.Logger(),
	)

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Server.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/", h.Index)
	r.GET(loginPath, h.LoginPage)
	r.POST(loginPath, h.Login)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.Register)

	auth := r.Group("/", middleware.RequireLogin(loginPath))
	{
		auth.POST("/post", h.CreatePost)
		auth.POST("/reply/:post_id", h.CreateReply)
		auth.GET("/delete_post/:post_id", h.DeletePost)
		auth.GET("/logout", h.Logout)
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/feed", h.FeedJSON)
	}

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, web.PageError, web.ErrorPage{
			Layout:  web.Layout{Title: "Ошибка", Identity: middleware.CurrentIdentity(c)},
			Message: "Страница не найдена.",
		})
	})
	return r, nil
}
