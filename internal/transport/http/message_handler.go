package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inboxhub/backend/internal/authz"
	"inboxhub/backend/internal/middleware"
	"inboxhub/backend/internal/monitoring"
	"inboxhub/backend/internal/service"
)

// MessageHandler 处理消息资源的 HTTP 请求。
// 消息的授权沿所属收件箱的所有权传递：读取类操作先对收件箱做
// 所有权判定；投递消息保持开放入口，任何调用者都可以写入。
type MessageHandler struct {
	inboxes  *service.InboxService
	messages *service.MessageService
	policy   *authz.Policy
	metrics  *monitoring.Metrics
	log      *zap.Logger
}

// NewMessageHandler 创建消息处理器。
func NewMessageHandler(
	inboxes *service.InboxService,
	messages *service.MessageService,
	policy *authz.Policy,
	metrics *monitoring.Metrics,
	log *zap.Logger,
) *MessageHandler {
	return &MessageHandler{
		inboxes:  inboxes,
		messages: messages,
		policy:   policy,
		metrics:  metrics,
		log:      log,
	}
}

// authorizeInboxAccess 对目标收件箱做所有权判定。
// 身份一律来自会话，不读取任何请求头中的用户标识。
func (h *MessageHandler) authorizeInboxAccess(c *gin.Context) bool {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		Unauthorized(c, MsgUnauthorized)
		return false
	}

	inbox, err := h.inboxes.Get(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, err)
		return false
	}

	if err := h.policy.AuthorizeInbox(identity, inbox); err != nil {
		RespondError(c, h.log, err)
		return false
	}
	return true
}

// List 列出收件箱内的消息，仅限所有者。
func (h *MessageHandler) List(c *gin.Context) {
	if !h.authorizeInboxAccess(c) {
		return
	}

	messages, err := h.messages.ListByInbox(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	OK(c, messages)
}

type createMessageRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Create 向收件箱投递消息，无需认证。
func (h *MessageHandler) Create(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidJSON)
		return
	}
	if req.Body == "" {
		BadRequest(c, MsgBodyRequired)
		return
	}

	message, err := h.messages.Create(c.Param("id"), req.Subject, req.Body)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	h.metrics.MessagesReceived.Inc()
	Created(c, message)
}

// Get 获取单条消息，仅限所有者。
func (h *MessageHandler) Get(c *gin.Context) {
	if !h.authorizeInboxAccess(c) {
		return
	}

	message, err := h.messages.Get(c.Param("id"), c.Param("mid"))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	OK(c, message)
}

// MarkRead 将消息标记为已读，仅限所有者。
func (h *MessageHandler) MarkRead(c *gin.Context) {
	if !h.authorizeInboxAccess(c) {
		return
	}

	if err := h.messages.MarkRead(c.Param("id"), c.Param("mid")); err != nil {
		RespondError(c, h.log, err)
		return
	}

	h.metrics.MessagesRead.Inc()
	message, err := h.messages.Get(c.Param("id"), c.Param("mid"))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	OK(c, message)
}

// Delete 删除消息，仅限所有者。
func (h *MessageHandler) Delete(c *gin.Context) {
	if !h.authorizeInboxAccess(c) {
		return
	}

	if err := h.messages.Delete(c.Param("id"), c.Param("mid")); err != nil {
		RespondError(c, h.log, err)
		return
	}
	NoContent(c)
}
