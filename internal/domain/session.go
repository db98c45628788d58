package domain

import "time"

// SessionTTL 会话固定有效期：自签发起 24 小时，不滑动。
const SessionTTL = 24 * time.Hour

// Session 表示一次登录建立的认证会话。
// 会话本身不落库：令牌是签名的自包含凭证，服务端只记录被吊销的会话 ID。
type Session struct {
	ID        string    `json:"id"`      // 会话唯一标识（令牌 jti）
	UserID    string    `json:"user_id"` // 绑定的用户 ID
	Token     string    `json:"token"`   // 签名令牌
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity 表示从有效会话解析出的调用者身份。
type Identity struct {
	UserID    string
	SessionID string
}
