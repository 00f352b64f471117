// Package identity 描述一次请求的操作者：匿名或已认证用户。
package identity

import "context"

// Identity 请求级身份；UserID 为 0 表示匿名
type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Anonymous 未登录身份
var Anonymous = Identity{}

func (i Identity) IsAuthenticated() bool { return i.UserID != 0 }

type ctxKey struct{}

// NewContext 返回携带 id 的 context
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext 取出身份，没有时返回 Anonymous
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(ctxKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
