package httptransport

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inboxhub/backend/internal/auth"
	"inboxhub/backend/internal/domain"
	"inboxhub/backend/internal/middleware"
	"inboxhub/backend/internal/monitoring"
	"inboxhub/backend/internal/service"
)

// AuthHandler 处理认证相关的 HTTP 请求。
type AuthHandler struct {
	authService *auth.Service
	users       *service.UserService
	metrics     *monitoring.Metrics
	sessionTTL  time.Duration
	log         *zap.Logger
}

// NewAuthHandler 创建认证处理器。
func NewAuthHandler(
	authService *auth.Service,
	users *service.UserService,
	metrics *monitoring.Metrics,
	sessionTTL time.Duration,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
		metrics:     metrics,
		sessionTTL:  sessionTTL,
		log:         log,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Register 注册新用户。已登录的调用者不能重复注册。
func (h *AuthHandler) Register(c *gin.Context) {
	if _, ok := middleware.IdentityFrom(c); ok {
		BadRequest(c, MsgAlreadyLoggedIn)
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidJSON)
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
	if req.Username == "" {
		BadRequest(c, MsgUsernameRequired)
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
	h.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)
	Created(c, user)
}

// Login 用邮箱和密码建立会话，签发令牌并写入会话 Cookie。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidJSON)
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

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		RespondError(c, h.log, err)
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.log.Info("user logged in", zap.String("user_id", user.ID))

	c.SetCookie(middleware.SessionCookieName, session.Token,
		int(h.sessionTTL.Seconds()), "/", "", false, true)
	OK(c, loginResponse{
		User:      *user,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout 注销当前会话并清除 Cookie。幂等：无会话时同样返回 200。
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if err := h.authService.Logout(token); err != nil {
		RespondError(c, h.log, err)
		return
	}

	if token != "" {
		h.metrics.SessionsEnds.Inc()
	}
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	Message(c, MsgLogout)
}

// Account 返回当前登录用户的信息。
func (h *AuthHandler) Account(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		Unauthorized(c, MsgUnauthorized)
		return
	}

	user, err := h.authService.GetUserByID(identity.UserID)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	OK(c, user)
}
