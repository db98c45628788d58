package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"inboxhub/backend/internal/auth/jwt"
	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/storage"
)

var (
	// ErrInvalidEmail 无效的邮箱格式
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrInvalidCredentials 凭证无效（用户不存在或密码错误，对外不区分）
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserInactive 用户已被禁用
	ErrUserInactive = errors.New("user is inactive")
	// ErrUnauthenticated 会话缺失、非法、过期或已注销
	ErrUnauthenticated = errors.New("unauthenticated")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Service 会话管理器：建立、校验和终止请求的认证身份。
type Service struct {
	users   storage.UserRepository
	tokens  *jwt.Manager
	revoked RevocationStore
}

// NewService 创建认证服务。
func NewService(users storage.UserRepository, tokens *jwt.Manager, revoked RevocationStore) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
	}
}

// Login 用邮箱和密码建立新会话。
// 用户不存在、密码不匹配、账户被禁用时统一返回 ErrInvalidCredentials，
// 不向调用方泄露具体原因。
func (s *Service) Login(email, password string) (*domain.Session, *domain.User, error) {
	user, err := s.users.GetUserByEmail(strings.ToLower(email))
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	token, sessionID, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue session: %w", err)
	}

	session := &domain.Session{
		ID:        sessionID,
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return session, user, nil
}

// Logout 注销会话。幂等：令牌缺失、非法或已过期都不算错误。
func (s *Service) Logout(token string) error {
	if token == "" {
		return nil
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		// 无效或过期的令牌本来就不可用，无需记账
		return nil
	}

	return s.revoked.Revoke(claims.ID, claims.ExpiresAt.Time)
}

// Resolve 从令牌解析调用者身份。
// 令牌缺失、非法、过期或已注销时返回 ErrUnauthenticated。
func (s *Service) Resolve(token string) (*domain.Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	revoked, err := s.revoked.IsRevoked(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session revocation: %w", err)
	}
	if revoked {
		return nil, ErrUnauthenticated
	}

	return &domain.Identity{
		UserID:    claims.UserID,
		SessionID: claims.ID,
	}, nil
}

// GetUserByID 根据身份取回用户实体（/account 使用）。
func (s *Service) GetUserByID(userID string) (*domain.User, error) {
	return s.users.GetUserByID(userID)
}

// ValidateEmail 验证邮箱格式。
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}
