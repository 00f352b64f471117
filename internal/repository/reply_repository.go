package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/anon-forum/internal/model"
)

// ReplyRepository 回复存储；回复只随父帖级联删除
type ReplyRepository interface {
	// Create 父帖不存在时返回 ErrNotFound
	Create(ctx context.Context, reply *model.Reply) error
	ListByPost(ctx context.Context, postID uint) ([]*model.Reply, error)
}

type replyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository { return &replyRepository{db: db} }

func (r *replyRepository) Create(ctx context.Context, reply *model.Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// FOR SHARE 阻止并发删除父帖；sqlite 驱动忽略该子句
		var parent model.Post
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Select("id").
			First(&parent, reply.PostID).Error; err != nil {
			return translate(err)
		}
		return tx.Omit(clause.Associations).Create(reply).Error
	})
}

func (r *replyRepository) ListByPost(ctx context.Context, postID uint) ([]*model.Reply, error) {
	var res []*model.Reply
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&res).Error
	return res, err
}
