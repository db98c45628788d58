package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/storage"
)

// InboxService 封装收件箱相关业务操作。
type InboxService struct {
	store   storage.Store
	baseURL string
}

// NewInboxService 创建收件箱业务服务。
// baseURL 用于派生收件箱公开 URL，末尾斜杠会被去掉。
func NewInboxService(store storage.Store, baseURL string) *InboxService {
	return &InboxService{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Create 为用户创建新收件箱。
// URL 始终由服务端派生为 {base}/inboxes/{id}，从不信任客户端输入，
// 并随插入语句一次写入，不存在补写 URL 的第二次提交。
func (s *InboxService) Create(userID, name string) (*domain.Inbox, error) {
	if _, err := s.store.GetUserByID(userID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	inbox := &domain.Inbox{
		ID:        id,
		Name:      name,
		UserID:    userID,
		URL:       fmt.Sprintf("%s/inboxes/%s", s.baseURL, id),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateInbox(inbox); err != nil {
		return nil, err
	}
	return inbox, nil
}

// Get 根据 ID 获取收件箱。
func (s *InboxService) Get(id string) (*domain.Inbox, error) {
	return s.store.GetInbox(id)
}

// ListByUser 列出用户的全部收件箱。
func (s *InboxService) ListByUser(userID string) ([]domain.Inbox, error) {
	return s.store.ListInboxesByUserID(userID)
}

// Update 更新收件箱字段，返回更新后的实体。
func (s *InboxService) Update(id string, name *string) (*domain.Inbox, error) {
	return s.store.UpdateInbox(id, domain.InboxUpdate{Name: name})
}

// Delete 删除收件箱，级联删除其消息。
func (s *InboxService) Delete(id string) error {
	return s.store.DeleteInbox(id)
}
