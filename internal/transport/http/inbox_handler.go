package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inboxhub/backend/internal/authz"
	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/middleware"
	"inboxhub/backend/internal/monitoring"
	"inboxhub/backend/internal/service"
)

// InboxHandler 处理收件箱资源的 HTTP 请求。
// 所有入口先解析身份，再按所有权策略授权，最后才触达存储。
type InboxHandler struct {
	inboxes *service.InboxService
	policy  *authz.Policy
	metrics *monitoring.Metrics
	log     *zap.Logger
}

// NewInboxHandler 创建收件箱处理器。
func NewInboxHandler(
	inboxes *service.InboxService,
	policy *authz.Policy,
	metrics *monitoring.Metrics,
	log *zap.Logger,
) *InboxHandler {
	return &InboxHandler{
		inboxes: inboxes,
		policy:  policy,
		metrics: metrics,
		log:     log,
	}
}

// authorizedInbox 加载收件箱并校验调用者的所有权。
// 收件箱不存在 → 404；非所有者 → 401，不返回资源内容。
func (h *InboxHandler) authorizedInbox(c *gin.Context) (*domain.Inbox, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		Unauthorized(c, MsgUnauthorized)
		return nil, false
	}

	inbox, err := h.inboxes.Get(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, err)
		return nil, false
	}

	if err := h.policy.AuthorizeInbox(identity, inbox); err != nil {
		RespondError(c, h.log, err)
		return nil, false
	}
	return inbox, true
}

// Get 获取收件箱，仅限所有者。
func (h *InboxHandler) Get(c *gin.Context) {
	inbox, ok := h.authorizedInbox(c)
	if !ok {
		return
	}
	OK(c, inbox)
}

type updateInboxRequest struct {
	Name string `json:"name"`
}

// Update 更新收件箱，仅限所有者。
func (h *InboxHandler) Update(c *gin.Context) {
	var req updateInboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidJSON)
		return
	}
	if req.Name == "" {
		BadRequest(c, MsgNameRequired)
		return
	}

	if _, ok := h.authorizedInbox(c); !ok {
		return
	}

	inbox, err := h.inboxes.Update(c.Param("id"), &req.Name)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	OK(c, inbox)
}

// Delete 删除收件箱及其消息，仅限所有者。
func (h *InboxHandler) Delete(c *gin.Context) {
	if _, ok := h.authorizedInbox(c); !ok {
		return
	}

	if err := h.inboxes.Delete(c.Param("id")); err != nil {
		RespondError(c, h.log, err)
		return
	}

	h.metrics.InboxesDeleted.Inc()
	NoContent(c)
}
