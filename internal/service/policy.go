package service

import (
	"github.com/d60-Lab/anon-forum/internal/identity"
	"github.com/d60-Lab/anon-forum/internal/model"
)

// CanDelete 管理员或作者本人可以删除帖子
func CanDelete(actor identity.Identity, post *model.Post) bool {
	if !actor.IsAuthenticated() || post == nil {
		return false
	}
	return actor.IsAdmin || actor.UserID == post.UserID
}
