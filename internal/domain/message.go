package domain

import "time"

// Message 表示投递到某个收件箱的一条消息。
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Subject   string    `json:"subject" gorm:"type:varchar(255)"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	IsRead    bool      `json:"is_read" gorm:"default:false;index"`
	InboxID   string    `json:"inbox_id" gorm:"type:varchar(36);index;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
