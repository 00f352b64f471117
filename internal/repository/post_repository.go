package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/anon-forum/internal/model"
)

// PostRepository 帖子存储
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id uint) (*model.Post, error)
	// DeleteCascade 同一事务内锁定帖子，先删回复再删帖子；帖子不存在返回 ErrNotFound
	DeleteCascade(ctx context.Context, id uint) error
	// ListFeed 帖子按创建时间倒序，回复按创建时间正序
	ListFeed(ctx context.Context) ([]*model.Post, error)
	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(post).Error
	})
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *postRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先锁父帖，与回复创建的 FOR SHARE 互斥；sqlite 驱动忽略该子句
		var post model.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&post, id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Reply{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *postRepository) ListFeed(ctx context.Context) ([]*model.Post, error) {
	var posts []*model.Post
	// 读放在事务里，三次查询看到同一快照
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Preload("Author").
			Preload("Replies", func(db *gorm.DB) *gorm.DB {
				return db.Order("replies.created_at ASC, replies.id ASC")
			}).
			Preload("Replies.Author").
			Order("posts.created_at DESC, posts.id DESC").
			Find(&posts).Error
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Count(&count).Error
	return count, err
}
