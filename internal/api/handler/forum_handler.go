package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/anon-forum/internal/api/middleware"
	"github.com/d60-Lab/anon-forum/internal/identity"
	"github.com/d60-Lab/anon-forum/internal/model"
	"github.com/d60-Lab/anon-forum/internal/monitoring"
	"github.com/d60-Lab/anon-forum/internal/service"
	"github.com/d60-Lab/anon-forum/internal/web"
)

type contentForm struct {
	Content string `form:"content"`
}

// Index GET / 渲染帖子流
func (h *Handler) Index(c *gin.Context) {
	posts, err := h.forumService.ListFeed(c.Request.Context())
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}
	actor := middleware.CurrentIdentity(c)
	c.HTML(http.StatusOK, web.PageIndex, web.FeedPage{
		Layout: h.layout(c, "Главная"),
		Posts:  toPostViews(actor, posts),
	})
}

// CreatePost POST /post；空内容静默忽略
func (h *Handler) CreatePost(c *gin.Context) {
	var form contentForm
	_ = c.ShouldBind(&form)

	actor := middleware.CurrentIdentity(c)
	_, err := h.forumService.CreatePost(c.Request.Context(), actor.UserID, form.Content)
	switch {
	case err == nil:
		monitoring.Event("post_created")
	case errors.Is(err, service.ErrValidationEmpty):
	default:
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}
	redirectHome(c)
}

// CreateReply POST /reply/:post_id；帖子不存在或内容为空时直接跳回首页
func (h *Handler) CreateReply(c *gin.Context) {
	postID, ok := parseID(c, "post_id")
	if !ok {
		h.renderError(c, http.StatusNotFound, errors.New("malformed post id"))
		return
	}
	var form contentForm
	_ = c.ShouldBind(&form)

	actor := middleware.CurrentIdentity(c)
	_, err := h.forumService.CreateReply(c.Request.Context(), actor.UserID, postID, form.Content)
	switch {
	case err == nil:
		monitoring.Event("reply_created")
	case errors.Is(err, service.ErrValidationEmpty), errors.Is(err, service.ErrPostNotFound):
	default:
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}
	redirectHome(c)
}

// DeletePost GET /delete_post/:post_id；无权限或不存在时不做任何事
func (h *Handler) DeletePost(c *gin.Context) {
	postID, ok := parseID(c, "post_id")
	if !ok {
		h.renderError(c, http.StatusNotFound, errors.New("malformed post id"))
		return
	}
	err := h.forumService.DeletePost(c.Request.Context(), middleware.CurrentIdentity(c), postID)
	switch {
	case err == nil:
		monitoring.Event("post_deleted")
	case errors.Is(err, service.ErrPermissionDenied):
		monitoring.Event("delete_denied")
	case errors.Is(err, service.ErrPostNotFound):
	default:
		h.renderError(c, http.StatusInternalServerError, err)
		return
	}
	redirectHome(c)
}

func toPostViews(actor identity.Identity, posts []*model.Post) []web.PostView {
	views := make([]web.PostView, 0, len(posts))
	for _, p := range posts {
		v := web.PostView{
			ID:        p.ID,
			Content:   p.Content,
			Author:    p.Author.Username,
			CreatedAt: p.CreatedAt,
			CanDelete: service.CanDelete(actor, p),
			Replies:   make([]web.ReplyView, 0, len(p.Replies)),
		}
		for _, r := range p.Replies {
			v.Replies = append(v.Replies, web.ReplyView{Content: r.Content, Author: r.Author.Username, CreatedAt: r.CreatedAt})
		}
		views = append(views, v)
	}
	return views
}
