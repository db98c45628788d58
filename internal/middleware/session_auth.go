package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inboxhub/backend/internal/auth"
	"inboxhub/backend/internal/domain"
)

// SessionCookieName 会话令牌的 Cookie 名称。
const SessionCookieName = "session_token"

// identityKey 身份在请求上下文中的键。
const identityKey = "identity"

// SessionAuth 会话认证中间件。
type SessionAuth struct {
	authService *auth.Service
	log         *zap.Logger
}

// NewSessionAuth 创建会话认证中间件。
func NewSessionAuth(authService *auth.Service, log *zap.Logger) *SessionAuth {
	return &SessionAuth{
		authService: authService,
		log:         log,
	}
}

// RequireAuth 要求有效会话，解析失败直接以 401 终止请求。
func (sa *SessionAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		identity, err := sa.authService.Resolve(token)
		if err != nil {
			if err != auth.ErrUnauthenticated {
				sa.log.Warn("session resolution failed",
					zap.String("ip", c.ClientIP()),
					zap.Error(err),
				)
			}
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// OptionalAuth 可选认证：有合法会话就挂上身份，否则放行。
func (sa *SessionAuth) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			c.Next()
			return
		}

		if identity, err := sa.authService.Resolve(token); err == nil {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

// ExtractToken 从请求中提取会话令牌。
// 优先读 Authorization: Bearer 头，其次读会话 Cookie。
func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	token, err := c.Cookie(SessionCookieName)
	if err == nil && token != "" {
		return token
	}
	return ""
}

// IdentityFrom 读取请求上下文中的身份。
func IdentityFrom(c *gin.Context) (*domain.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*domain.Identity)
	return identity, ok
}
