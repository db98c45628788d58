package domain

import "time"

// User 表示注册用户的业务实体。
// 用户是资源层级的根：User 拥有 Inbox，Inbox 拥有 Message。
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"type:varchar(64);index;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(120);not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(128);not null"` // 不返回给前端
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserUpdate 定义用户部分更新的字段。
// nil 表示不修改该字段；密码在服务层完成哈希后写入 PasswordHash。
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
}
