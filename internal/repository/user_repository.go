package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/anon-forum/internal/model"
)

// UserRepository 用户凭据存储
type UserRepository interface {
	// Create 在事务内检查用户名并插入；用户名已存在时返回 ErrDuplicate
	Create(ctx context.Context, user *model.User) error

	GetByID(ctx context.Context, id uint) (*model.User, error)

	// GetByUsername 大小写敏感的精确匹配
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&model.User{}).Where("username = ?", user.Username).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrDuplicate
		}
		// 并发注册时由唯一索引兜底，TranslateError 转为 ErrDuplicatedKey
		return translate(tx.Create(user).Error)
	})
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
