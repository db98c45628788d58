package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inboxhub/backend/internal/auth"
	"inboxhub/backend/internal/authz"
	"inboxhub/backend/internal/storage"
)

// 通用错误消息
const (
	MsgUsernameRequired = "Username is required"
	MsgEmailRequired    = "Email is required"
	MsgPasswordRequired = "Password is required"
	MsgNameRequired     = "Name is required"
	MsgBodyRequired     = "Body is required"
	MsgInvalidJSON      = "Invalid request body"

	MsgUserNotFound    = "User not found"
	MsgInboxNotFound   = "Inbox not found"
	MsgMessageNotFound = "Message not found"

	MsgEmailExists = "Email already exists"
	MsgInboxExists = "Inbox already exists"

	MsgUnauthorized       = "Unauthorized"
	MsgInvalidCredentials = "Invalid credentials"
	MsgAlreadyLoggedIn    = "Already logged in"
	MsgLogout             = "Logout"

	MsgInternalError = "Internal server error"
)

// 业务错误到响应消息的映射表。
var errorMessages = map[error]string{
	storage.ErrUserNotFound:       MsgUserNotFound,
	storage.ErrInboxNotFound:      MsgInboxNotFound,
	storage.ErrMessageNotFound:    MsgMessageNotFound,
	storage.ErrDuplicateEmail:     MsgEmailExists,
	storage.ErrDuplicateInboxName: MsgInboxExists,
	auth.ErrInvalidEmail:          "Invalid email format",
	auth.ErrInvalidCredentials:    MsgInvalidCredentials,
	auth.ErrUnauthenticated:       MsgUnauthorized,
	authz.ErrUnauthorized:         MsgUnauthorized,
}

// RespondError 将业务错误映射为 HTTP 响应。
// 校验与重复冲突 → 400，资源缺失 → 404，认证与授权失败 → 401，
// 其余一律视为存储故障：记录日志并返回通用 500。
func RespondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrDuplicateEmail),
		errors.Is(err, storage.ErrDuplicateInboxName),
		errors.Is(err, auth.ErrInvalidEmail):
		BadRequest(c, messageFor(err))

	case errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrInboxNotFound),
		errors.Is(err, storage.ErrMessageNotFound):
		NotFound(c, messageFor(err))

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, authz.ErrUnauthorized):
		Unauthorized(c, messageFor(err))

	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		InternalError(c)
	}
}

// messageFor 返回业务错误的响应消息。
func messageFor(err error) string {
	for sentinel, msg := range errorMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return err.Error()
}
