package auth

import (
	"sync"
	"time"
)

// RevocationStore 记录被注销的会话 ID（令牌 jti）。
// 条目只需存活到对应令牌自然过期为止。
type RevocationStore interface {
	Revoke(sessionID string, until time.Time) error
	IsRevoked(sessionID string) (bool, error)
}

// MemoryRevocationStore 进程内吊销列表，用于开发环境和单元测试。
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewMemoryRevocationStore 创建内存吊销列表。
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		revoked: make(map[string]time.Time),
	}
}

// Revoke 记录会话吊销，重复吊销同一会话是幂等的。
func (s *MemoryRevocationStore) Revoke(sessionID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[sessionID] = until
	return nil
}

// IsRevoked 查询会话是否已被吊销，顺带清理已过期的条目。
func (s *MemoryRevocationStore) IsRevoked(sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[sessionID]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(s.revoked, sessionID)
		return false, nil
	}
	return true, nil
}
