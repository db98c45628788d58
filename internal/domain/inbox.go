package domain

import "time"

// Inbox 表示属于某个用户的收件箱。
// 同一用户下收件箱名称唯一（复合唯一索引 user_id + name）；
// URL 由服务端根据基础地址派生，从不信任客户端输入。
type Inbox struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(64);not null;uniqueIndex:idx_inboxes_user_name"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_inboxes_user_name;index"`
	URL       string    `json:"url" gorm:"type:varchar(128)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InboxUpdate 定义收件箱部分更新的字段。
type InboxUpdate struct {
	Name *string
}
