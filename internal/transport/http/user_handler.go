package httptransport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inboxhub/backend/internal/monitoring"
	"inboxhub/backend/internal/service"
)

// UserHandler 处理用户资源的 HTTP 请求。
//
// 按既有外部契约，用户的更新与删除不做调用者所有权校验；
// 该缺口在路由注册处保持可见（相关路由不挂认证中间件）。
type UserHandler struct {
	users   *service.UserService
	inboxes *service.InboxService
	metrics *monitoring.Metrics
	log     *zap.Logger
}

// NewUserHandler 创建用户处理器。
func NewUserHandler(
	users *service.UserService,
	inboxes *service.InboxService,
	metrics *monitoring.Metrics,
	log *zap.Logger,
) *UserHandler {
	return &UserHandler{
		users:   users,
		inboxes: inboxes,
		metrics: metrics,
		log:     log,
	}
}

type userRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create 创建新用户。
func (h *UserHandler) Create(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidJSON)
		return
	}
	if req.Username == "" {
		BadRequest(c, MsgUsernameRequired)
		return
	}
	if req.Email == "" {
		BadRequest(c, MsgEmailRequired)
		return
	}
	if req.Password == "" {
		BadRequest(c, MsgPasswordRequired)
		return
	}

	user, err := h.users.Create(service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	h.metrics.UsersRegistered.Inc()
	Created(c, user)
}

// Get 根据 ID 获取用户。
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	OK(c, user)
}

// Update 更新用户。契约要求三个字段全部给出。
func (h *UserHandler) Update(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidJSON)
		return
	}
	if req.Username == "" {
		BadRequest(c, MsgUsernameRequired)
		return
	}
	if req.Email == "" {
		BadRequest(c, MsgEmailRequired)
		return
	}
	if req.Password == "" {
		BadRequest(c, MsgPasswordRequired)
		return
	}

	user, err := h.users.Update(c.Param("id"), service.UpdateUserInput{
		Username: &req.Username,
		Email:    &req.Email,
		Password: &req.Password,
	})
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	OK(c, user)
}

// Delete 删除用户，级联删除其收件箱及消息。
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Param("id")); err != nil {
		RespondError(c, h.log, err)
		return
	}

	h.metrics.UsersDeleted.Inc()
	NoContent(c)
}

type createInboxRequest struct {
	Name string `json:"name"`
}

// ListInboxes 列出用户的全部收件箱。
func (h *UserHandler) ListInboxes(c *gin.Context) {
	inboxes, err := h.inboxes.ListByUser(c.Param("id"))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	OK(c, inboxes)
}

// CreateInbox 为用户创建新收件箱。
func (h *UserHandler) CreateInbox(c *gin.Context) {
	var req createInboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidJSON)
		return
	}
	if req.Name == "" {
		BadRequest(c, MsgNameRequired)
		return
	}

	inbox, err := h.inboxes.Create(c.Param("id"), req.Name)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	h.metrics.InboxesCreated.Inc()
	Created(c, inbox)
}
