package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/storage"
)

// Store 基于内存的存储实现，用于开发环境和单元测试。
// 所有操作在同一把互斥锁内完成，唯一性判定与级联删除因此天然原子，
// 与 SQL 实现依赖唯一索引和事务达到的效果一致。
type Store struct {
	mu       sync.RWMutex
	users    map[string]*domain.User
	inboxes  map[string]*domain.Inbox
	messages map[string]*domain.Message
}

// NewStore 创建内存存储。
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		inboxes:  make(map[string]*domain.Inbox),
		messages: make(map[string]*domain.Message),
	}
}

// ========== User Repository ==========

// CreateUser 创建新用户，邮箱地址冲突时返回 ErrDuplicateEmail。
func (s *Store) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return storage.ErrDuplicateEmail
		}
	}

	cloned := *user
	s.users[user.ID] = &cloned
	return nil
}

// GetUserByID 根据 ID 获取用户。
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	cloned := *user
	return &cloned, nil
}

// GetUserByEmail 根据邮箱获取用户。
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			cloned := *user
			return &cloned, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

// UpdateUser 部分更新用户字段，返回更新后的实体。
func (s *Store) UpdateUser(id string, update domain.UserUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}

	if update.Email != nil {
		for otherID, other := range s.users {
			if otherID != id && strings.EqualFold(other.Email, *update.Email) {
				return nil, storage.ErrDuplicateEmail
			}
		}
		user.Email = *update.Email
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	user.UpdatedAt = time.Now().UTC()

	cloned := *user
	return &cloned, nil
}

// DeleteUser 删除用户，并级联删除其全部收件箱及消息。
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return storage.ErrUserNotFound
	}

	for inboxID, inbox := range s.inboxes {
		if inbox.UserID != id {
			continue
		}
		for messageID, message := range s.messages {
			if message.InboxID == inboxID {
				delete(s.messages, messageID)
			}
		}
		delete(s.inboxes, inboxID)
	}
	delete(s.users, id)
	return nil
}

// ========== Inbox Repository ==========

// CreateInbox 创建收件箱，同一用户下名称冲突时返回 ErrDuplicateInboxName。
func (s *Store) CreateInbox(inbox *domain.Inbox) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[inbox.UserID]; !ok {
		return storage.ErrUserNotFound
	}
	for _, existing := range s.inboxes {
		if existing.UserID == inbox.UserID && existing.Name == inbox.Name {
			return storage.ErrDuplicateInboxName
		}
	}

	cloned := *inbox
	s.inboxes[inbox.ID] = &cloned
	return nil
}

// GetInbox 根据 ID 获取收件箱。
func (s *Store) GetInbox(id string) (*domain.Inbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inbox, ok := s.inboxes[id]
	if !ok {
		return nil, storage.ErrInboxNotFound
	}

	cloned := *inbox
	return &cloned, nil
}

// ListInboxesByUserID 按用户 ID 列出收件箱，按创建时间升序。
func (s *Store) ListInboxesByUserID(userID string) ([]domain.Inbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[userID]; !ok {
		return nil, storage.ErrUserNotFound
	}

	result := make([]domain.Inbox, 0)
	for _, inbox := range s.inboxes {
		if inbox.UserID == userID {
			result = append(result, *inbox)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateInbox 部分更新收件箱字段，返回更新后的实体。
func (s *Store) UpdateInbox(id string, update domain.InboxUpdate) (*domain.Inbox, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inbox, ok := s.inboxes[id]
	if !ok {
		return nil, storage.ErrInboxNotFound
	}

	if update.Name != nil {
		for otherID, other := range s.inboxes {
			if otherID != id && other.UserID == inbox.UserID && other.Name == *update.Name {
				return nil, storage.ErrDuplicateInboxName
			}
		}
		inbox.Name = *update.Name
	}
	inbox.UpdatedAt = time.Now().UTC()

	cloned := *inbox
	return &cloned, nil
}

// DeleteInbox 删除收件箱，并级联删除其全部消息。
func (s *Store) DeleteInbox(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inboxes[id]; !ok {
		return storage.ErrInboxNotFound
	}

	for messageID, message := range s.messages {
		if message.InboxID == id {
			delete(s.messages, messageID)
		}
	}
	delete(s.inboxes, id)
	return nil
}

// ========== Message Repository ==========

// CreateMessage 在收件箱内创建消息。
func (s *Store) CreateMessage(message *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inboxes[message.InboxID]; !ok {
		return storage.ErrInboxNotFound
	}

	cloned := *message
	s.messages[message.ID] = &cloned
	return nil
}

// GetMessage 获取指定收件箱内的消息。
func (s *Store) GetMessage(inboxID, messageID string) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	message, ok := s.messages[messageID]
	if !ok || message.InboxID != inboxID {
		return nil, storage.ErrMessageNotFound
	}

	cloned := *message
	return &cloned, nil
}

// ListMessagesByInboxID 按收件箱 ID 列出消息，按创建时间升序。
func (s *Store) ListMessagesByInboxID(inboxID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.inboxes[inboxID]; !ok {
		return nil, storage.ErrInboxNotFound
	}

	result := make([]domain.Message, 0)
	for _, message := range s.messages {
		if message.InboxID == inboxID {
			result = append(result, *message)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// MarkMessageRead 将消息标记为已读。
func (s *Store) MarkMessageRead(inboxID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	message, ok := s.messages[messageID]
	if !ok || message.InboxID != inboxID {
		return storage.ErrMessageNotFound
	}

	message.IsRead = true
	message.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteMessage 删除指定收件箱内的消息。
func (s *Store) DeleteMessage(inboxID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	message, ok := s.messages[messageID]
	if !ok || message.InboxID != inboxID {
		return storage.ErrMessageNotFound
	}

	delete(s.messages, messageID)
	return nil
}

// Health 内存存储始终健康。
func (s *Store) Health() error { return nil }

// Close 内存存储无需释放资源。
func (s *Store) Close() error { return nil }
