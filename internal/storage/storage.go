package storage

import (
	"errors"

	"inboxhub/backend/internal/domain"
)

var (
	// ErrUserNotFound 用户不存在错误
	ErrUserNotFound = errors.New("user not found")
	// ErrInboxNotFound 收件箱不存在错误
	ErrInboxNotFound = errors.New("inbox not found")
	// ErrMessageNotFound 消息不存在错误
	ErrMessageNotFound = errors.New("message not found")
	// ErrDuplicateEmail 邮箱地址已被注册错误（由唯一索引裁决，而非先查后插）
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrDuplicateInboxName 同一用户下收件箱名称重复错误
	ErrDuplicateInboxName = errors.New("inbox already exists")
)

// UserRepository 定义用户数据存取操作。
type UserRepository interface {
	CreateUser(user *domain.User) error
	GetUserByID(id string) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	UpdateUser(id string, update domain.UserUpdate) (*domain.User, error)
	DeleteUser(id string) error // 级联删除用户的全部收件箱及其消息
}

// InboxRepository 定义收件箱数据存取操作。
type InboxRepository interface {
	CreateInbox(inbox *domain.Inbox) error
	GetInbox(id string) (*domain.Inbox, error)
	ListInboxesByUserID(userID string) ([]domain.Inbox, error)
	UpdateInbox(id string, update domain.InboxUpdate) (*domain.Inbox, error)
	DeleteInbox(id string) error // 级联删除收件箱内全部消息
}

// MessageRepository 定义消息数据存取操作。
type MessageRepository interface {
	CreateMessage(message *domain.Message) error
	GetMessage(inboxID, messageID string) (*domain.Message, error)
	ListMessagesByInboxID(inboxID string) ([]domain.Message, error)
	MarkMessageRead(inboxID, messageID string) error
	DeleteMessage(inboxID, messageID string) error
}

// Store 聚合所有存储接口。
// 每个方法都是一个原子操作：实现内部要么整体提交，要么整体回滚。
type Store interface {
	UserRepository
	InboxRepository
	MessageRepository

	Health() error
	Close() error
}
