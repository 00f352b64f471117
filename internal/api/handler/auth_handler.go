package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/anon-forum/internal/api/middleware"
	"github.com/d60-Lab/anon-forum/internal/monitoring"
	"github.com/d60-Lab/anon-forum/internal/service"
	"github.com/d60-Lab/anon-forum/internal/web"
)

const (
	msgInvalidCredentials = "Неверный логин или пароль."
	msgCredentialsEmpty   = "Логин и пароль обязательны."
	msgCredentialsTooLong = "Логин не длиннее 50 символов, пароль не длиннее 72 байт."
	msgDuplicateUsername  = "Пользователь с таким именем уже существует."
)

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type registerForm struct {
	Username string `form:"username" binding:"required,max=50"`
	Password string `form:"password" binding:"required,max=72"`
}

// LoginPage GET /login
func (h *Handler) LoginPage(c *gin.Context) {
	if middleware.CurrentIdentity(c).IsAuthenticated() {
		redirectHome(c)
		return
	}
	c.HTML(http.StatusOK, web.PageLogin, web.FormPage{Layout: h.layout(c, "Вход"), Next: c.Query("next")})
}

// Login POST /login；未知用户与密码错误返回同样的页面
func (h *Handler) Login(c *gin.Context) {
	if middleware.CurrentIdentity(c).IsAuthenticated() {
		redirectHome(c)
		return
	}
	var form loginForm
	_ = c.ShouldBind(&form)

	user, err := h.authService.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.renderError(c, http.StatusInternalServerError, err)
			return
		}
		monitoring.Event("login_failed")
		c.HTML(http.StatusOK, web.PageLogin, web.FormPage{
			Layout:   h.layout(c, "Вход"),
			Error:    msgInvalidCredentials,
			Username: form.Username,
			Next:     c.Query("next"),
		})
		return
	}

	issued, err := h.sessionService.Login(c.Request.Context(), user.ID)
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}
	h.setSessionCookie(c, issued.Token, int(time.Until(issued.ExpiresAt).Seconds()))
	monitoring.Event("login_ok")
	c.Redirect(http.StatusFound, safeNext(c.Query("next")))
}

// RegisterPage GET /register
func (h *Handler) RegisterPage(c *gin.Context) {
	if middleware.CurrentIdentity(c).IsAuthenticated() {
		redirectHome(c)
		return
	}
	c.HTML(http.StatusOK, web.PageRegister, web.FormPage{Layout: h.layout(c, "Регистрация")})
}

// Register POST /register，成功后跳转登录页
func (h *Handler) Register(c *gin.Context) {
	if middleware.CurrentIdentity(c).IsAuthenticated() {
		redirectHome(c)
		return
	}
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderRegisterError(c, form.Username, bindingMessage(err))
		return
	}

	_, err := h.authService.Register(c.Request.Context(), form.Username, form.Password)
	switch {
	case err == nil:
		monitoring.Event("registered")
		c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, service.ErrDuplicateUsername):
		h.renderRegisterError(c, form.Username, msgDuplicateUsername)
	case errors.Is(err, service.ErrValidationEmpty):
		h.renderRegisterError(c, form.Username, msgCredentialsEmpty)
	case errors.Is(err, service.ErrUsernameTooLong), errors.Is(err, service.ErrPasswordTooLong):
		h.renderRegisterError(c, form.Username, msgCredentialsTooLong)
	default:
		h.renderError(c, http.StatusInternalServerError, err)
	}
}

// Logout GET /logout
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil {
		if err := h.sessionService.Logout(c.Request.Context(), token); err != nil {
			// cookie 仍会被清除
			_ = c.Error(err)
		}
	}
	h.setSessionCookie(c, "", -1)
	redirectHome(c)
}

func (h *Handler) renderRegisterError(c *gin.Context, username, msg string) {
	c.HTML(http.StatusOK, web.PageRegister, web.FormPage{
		Layout:   h.layout(c, "Регистрация"),
		Error:    msg,
		Username: username,
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

// bindingMessage 将校验错误转换为表单提示
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "max" {
				return msgCredentialsTooLong
			}
		}
	}
	return msgCredentialsEmpty
}
