package authz

import (
	"errors"

	"inboxhub/backend/internal/domain"
)

// ErrUnauthorized 调用者无权操作目标资源。
// 对外与未认证共用 401，单一信号的契约保持不变。
var ErrUnauthorized = errors.New("unauthorized")

// Policy 所有权授权策略。
// 规则只有一条：身份 I 可以操作收件箱 B，当且仅当 B.UserID == I.UserID；
// 消息的访问沿所属收件箱的所有权传递，不做独立判定。
type Policy struct{}

// NewPolicy 创建授权策略。
func NewPolicy() *Policy {
	return &Policy{}
}

// AuthorizeInbox 判定身份是否可以操作目标收件箱。
// 拒绝时不返回任何资源内容。
func (p *Policy) AuthorizeInbox(identity *domain.Identity, inbox *domain.Inbox) error {
	if identity == nil || inbox == nil {
		return ErrUnauthorized
	}
	if inbox.UserID != identity.UserID {
		return ErrUnauthorized
	}
	return nil
}
