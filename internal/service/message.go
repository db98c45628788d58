package service

import (
	"time"

	"github.com/google/uuid"

	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/storage"
)

// MessageService 封装消息相关业务操作。
type MessageService struct {
	store storage.Store
}

// NewMessageService 创建消息业务服务。
func NewMessageService(store storage.Store) *MessageService {
	return &MessageService{store: store}
}

// Create 向收件箱投递消息，新消息默认未读。
func (s *MessageService) Create(inboxID, subject, body string) (*domain.Message, error) {
	if _, err := s.store.GetInbox(inboxID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	message := &domain.Message{
		ID:        uuid.NewString(),
		Subject:   subject,
		Body:      body,
		IsRead:    false,
		InboxID:   inboxID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateMessage(message); err != nil {
		return nil, err
	}
	return message, nil
}

// Get 获取指定收件箱内的消息。
func (s *MessageService) Get(inboxID, messageID string) (*domain.Message, error) {
	return s.store.GetMessage(inboxID, messageID)
}

// ListByInbox 列出收件箱内的全部消息。
func (s *MessageService) ListByInbox(inboxID string) ([]domain.Message, error) {
	return s.store.ListMessagesByInboxID(inboxID)
}

// MarkRead 将消息标记为已读。
func (s *MessageService) MarkRead(inboxID, messageID string) error {
	return s.store.MarkMessageRead(inboxID, messageID)
}

// Delete 删除指定收件箱内的消息。
func (s *MessageService) Delete(inboxID, messageID string) error {
	return s.store.DeleteMessage(inboxID, messageID)
}
