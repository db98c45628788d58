package redis

import (
	"context"
	"time"
)

// 吊销键前缀；值无意义，存在即吊销。
const revokedKeyPrefix = "session:revoked:"

// RevocationStore 基于 Redis 的会话吊销列表。
// 键的 TTL 设为令牌剩余寿命，令牌自然过期后条目随之消失。
type RevocationStore struct {
	client *Client
}

// NewRevocationStore 创建 Redis 吊销列表。
func NewRevocationStore(client *Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// Revoke 记录会话吊销，重复吊销同一会话是幂等的。
func (s *RevocationStore) Revoke(sessionID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// 令牌已过期，无需记账
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return s.client.rdb.Set(ctx, revokedKeyPrefix+sessionID, 1, ttl).Err()
}

// IsRevoked 查询会话是否已被吊销。
func (s *RevocationStore) IsRevoked(sessionID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	n, err := s.client.rdb.Exists(ctx, revokedKeyPrefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
