package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/anon-forum/internal/api/middleware"
	"github.com/d60-Lab/anon-forum/internal/service"
	"github.com/d60-Lab/anon-forum/internal/web"
	"github.com/d60-Lab/anon-forum/pkg/logger"
)

// Pinger 健康检查依赖，*sql.DB 满足该接口
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CookieOptions 会话 cookie 属性
type CookieOptions struct {
	Name   string
	Secure bool
}

// Handler 页面与 JSON 接口处理器
type Handler struct {
	authService    service.AuthService
	sessionService service.SessionService
	forumService   service.ForumService
	db             Pinger
	cookie         CookieOptions
}

func NewHandler(
	authService service.AuthService,
	sessionService service.SessionService,
	forumService service.ForumService,
	db Pinger,
	cookie CookieOptions,
) *Handler {
	return &Handler{
		authService:    authService,
		sessionService: sessionService,
		forumService:   forumService,
		db:             db,
		cookie:         cookie,
	}
}

func (h *Handler) layout(c *gin.Context, title string) web.Layout {
	return web.Layout{Title: title, Identity: middleware.CurrentIdentity(c)}
}

// renderError 记录、上报并渲染错误页
func (h *Handler) renderError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		sentry.CaptureException(err)
	}
	_ = c.Error(err)
	msg := "Что-то пошло не так. Попробуйте позже."
	if status == http.StatusNotFound {
		msg = "Страница не найдена."
	}
	c.HTML(status, web.PageError, web.ErrorPage{Layout: h.layout(c, "Ошибка"), Message: msg})
}

func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}

// safeNext 只允许站内相对路径
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
