package model

import "time"

// Reply 挂在唯一一个 Post 下的回复
type Reply struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	PostID    uint      `json:"post_id" gorm:"not null;index:idx_reply_post"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_reply_user"`
	Author    User      `json:"author" gorm:"foreignKey:UserID"`
	CreatedAt time.Time `json:"created_at"`
}

func (Reply) TableName() string { return "replies" }
