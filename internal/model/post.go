package model

import "time"

// Post 顶层帖子，删除时级联删除其回复
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_post_user"`
	Author    User      `json:"author" gorm:"foreignKey:UserID"`
	Replies   []Reply   `json:"replies" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_post_created"`
}

func (Post) TableName() string { return "posts" }
