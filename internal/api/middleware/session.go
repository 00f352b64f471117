package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/anon-forum/internal/identity"
	"github.com/d60-Lab/anon-forum/internal/service"
)

const identityKey = "identity"

// Session 每个请求解析 cookie 中的令牌，结果放入 gin 上下文与 request context
func Session(sessions service.SessionService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identity.Anonymous
		if token, err := c.Cookie(cookieName); err == nil {
			id = sessions.Resolve(c.Request.Context(), token)
		}
		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(identity.NewContext(c.Request.Context(), id))
		c.Next()
	}
}

// RequireLogin 匿名请求跳转登录页，并记录登录后返回的地址
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c).IsAuthenticated() {
			c.Next()
			return
		}
		target := loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// CurrentIdentity 当前请求身份
func CurrentIdentity(c *gin.Context) identity.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(identity.Identity); ok {
			return id
		}
	}
	return identity.FromContext(c.Request.Context())
}
