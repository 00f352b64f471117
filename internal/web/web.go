// Package web 提供页面模板与模板所需的视图数据，业务层只传入普通数据。
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/d60-Lab/anon-forum/internal/identity"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	PageIndex    = "index.tmpl"
	PageLogin    = "login.tmpl"
	PageRegister = "register.tmpl"
	PageError    = "error.tmpl"
)

// Templates 解析全部页面模板
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"formatTime": formatTime,
		"year":       func() int { return time.Now().UTC().Year() },
	}).ParseFS(templateFS, "templates/*.tmpl")
}

func formatTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// Layout 每个页面都需要的数据
type Layout struct {
	Title    string
	Identity identity.Identity
}

type ReplyView struct {
	Content   string
	Author    string
	CreatedAt time.Time
}

type PostView struct {
	ID        uint
	Content   string
	Author    string
	CreatedAt time.Time
	CanDelete bool
	Replies   []ReplyView
}

type FeedPage struct {
	Layout
	Posts []PostView
}

// FormPage 登录 / 注册表单
type FormPage struct {
	Layout
	Error    string
	Username string
	Next     string
}

type ErrorPage struct {
	Layout
	Message string
}
