package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/anon-forum/internal/identity"
	"github.com/d60-Lab/anon-forum/internal/model"
	"github.com/d60-Lab/anon-forum/internal/repository"
	"github.com/d60-Lab/anon-forum/pkg/logger"
)

// ForumService 内容存储：帖子与回复的生命周期
type ForumService interface {
	// CreatePost 内容为空或全空白时返回 ErrValidationEmpty，调用方可静默忽略
	CreatePost(ctx context.Context, authorID uint, content string) (*model.Post, error)
	CreateReply(ctx context.Context, authorID, postID uint, content string) (*model.Reply, error)
	// DeletePost 先做权限判断，再级联删除
	DeletePost(ctx context.Context, actor identity.Identity, postID uint) error
	ListFeed(ctx context.Context) ([]*model.Post, error)
}

type forumService struct {
	posts   repository.PostRepository
	replies repository.ReplyRepository
}

func NewForumService(posts repository.PostRepository, replies repository.ReplyRepository) ForumService {
	return &forumService{posts: posts, replies: replies}
}

func (s *forumService) CreatePost(ctx context.Context, authorID uint, content string) (*model.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrValidationEmpty
	}
	p := &model.Post{Content: content, UserID: authorID}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

func (s *forumService) CreateReply(ctx context.Context, authorID, postID uint, content string) (*model.Reply, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrValidationEmpty
	}
	r := &model.Reply{Content: content, PostID: postID, UserID: authorID}
	if err := s.replies.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("create reply: %w", err)
	}
	return r, nil
}

func (s *forumService) DeletePost(ctx context.Context, actor identity.Identity, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("load post: %w", err)
	}
	if !CanDelete(actor, post) {
		return ErrPermissionDenied
	}
	if err := s.posts.DeleteCascade(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	logger.Info("post deleted",
		zap.Uint("post_id", postID),
		zap.Uint("author_id", post.UserID),
		zap.Uint("actor_id", actor.UserID),
		zap.Bool("by_admin", actor.IsAdmin && actor.UserID != post.UserID),
	)
	return nil
}

func (s *forumService) ListFeed(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.posts.ListFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}
	return posts, nil
}
