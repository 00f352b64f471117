package model

import "time"

// User 论坛用户；PasswordHash 为 bcrypt 结果，从不保存明文
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(50);uniqueIndex:ux_users_username;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(128);not null"`
	IsAdmin      bool      `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }
