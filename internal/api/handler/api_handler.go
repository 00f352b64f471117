package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/anon-forum/internal/api/middleware"
	"github.com/d60-Lab/anon-forum/pkg/response"
)

type replyItem struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type feedItem struct {
	ID        uint        `json:"id"`
	Content   string      `json:"content"`
	Author    string      `json:"author"`
	CreatedAt time.Time   `json:"created_at"`
	CanDelete bool        `json:"can_delete"`
	Replies   []replyItem `json:"replies"`
}

// FeedJSON 帖子流 JSON
// @Summary 帖子流
// @Description 帖子按创建时间倒序，回复按创建时间正序；can_delete 针对当前会话
// @Tags 论坛
// @Produce json
// @Success 200 {object} response.Response{data=[]feedItem}
// @Failure 500 {object} response.Response
// @Router /api/v1/feed [get]
func (h *Handler) FeedJSON(c *gin.Context) {
	posts, err := h.forumService.ListFeed(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	views := toPostViews(middleware.CurrentIdentity(c), posts)
	items := make([]feedItem, 0, len(views))
	for i, v := range views {
		item := feedItem{
			ID:        v.ID,
			Content:   v.Content,
			Author:    v.Author,
			CreatedAt: v.CreatedAt,
			CanDelete: v.CanDelete,
			Replies:   make([]replyItem, 0, len(v.Replies)),
		}
		for j, r := range v.Replies {
			item.Replies = append(item.Replies, replyItem{
				ID:        posts[i].Replies[j].ID,
				Content:   r.Content,
				Author:    r.Author,
				CreatedAt: r.CreatedAt,
			})
		}
		items = append(items, item)
	}
	response.Success(c, items)
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		response.ServiceUnavailable(c, "database unavailable")
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}
