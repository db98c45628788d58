package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"inboxhub/backend/internal/auth"
	"inboxhub/backend/internal/authz"
	"inboxhub/backend/internal/config"
	"inboxhub/backend/internal/middleware"
	"inboxhub/backend/internal/monitoring"
	"inboxhub/backend/internal/service"
)

// RouterDependencies 路由器依赖项。
type RouterDependencies struct {
	Config         *config.Config
	AuthService    *auth.Service
	UserService    *service.UserService
	InboxService   *service.InboxService
	MessageService *service.MessageService
	Policy         *authz.Policy
	Metrics        *monitoring.Metrics
	Logger         *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	log := deps.Logger
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodySizeLimit(middleware.DefaultBodyLimit))
	router.Use(middleware.HTTPMetrics(deps.Metrics))

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// 允许所有来源时需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.UserService,
		deps.Metrics, deps.Config.Session.TTL, log)
	userHandler := NewUserHandler(deps.UserService, deps.InboxService, deps.Metrics, log)
	inboxHandler := NewInboxHandler(deps.InboxService, deps.Policy, deps.Metrics, log)
	messageHandler := NewMessageHandler(deps.InboxService, deps.MessageService,
		deps.Policy, deps.Metrics, log)

	sessionAuth := middleware.NewSessionAuth(deps.AuthService, log)
	// 登录和注册按 IP 限流，缓解口令爆破
	loginLimit := middleware.NewIPRateLimiter(rate.Every(time.Second), 10)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 认证
	router.POST("/register", loginLimit.Handler(), sessionAuth.OptionalAuth(), authHandler.Register)
	router.POST("/login", loginLimit.Handler(), authHandler.Login)
	router.GET("/logout", authHandler.Logout)
	router.GET("/account", sessionAuth.RequireAuth(), authHandler.Account)

	// 用户（更新与删除按既有契约不做所有权校验）
	router.POST("/users", userHandler.Create)
	router.GET("/users/:id", userHandler.Get)
	router.PUT("/users/:id", userHandler.Update)
	router.DELETE("/users/:id", userHandler.Delete)
	router.GET("/users/:id/inboxes", userHandler.ListInboxes)
	router.POST("/users/:id/inboxes", userHandler.CreateInbox)

	// 收件箱（仅所有者）
	router.GET("/inboxes/:id", sessionAuth.RequireAuth(), inboxHandler.Get)
	router.PUT("/inboxes/:id", sessionAuth.RequireAuth(), inboxHandler.Update)
	router.DELETE("/inboxes/:id", sessionAuth.RequireAuth(), inboxHandler.Delete)

	// 消息（投递开放，读取仅所有者）
	router.GET("/inboxes/:id/messages", sessionAuth.RequireAuth(), messageHandler.List)
	router.POST("/inboxes/:id/messages", messageHandler.Create)
	router.GET("/inboxes/:id/messages/:mid", sessionAuth.RequireAuth(), messageHandler.Get)
	router.PATCH("/inboxes/:id/messages/:mid/read", sessionAuth.RequireAuth(), messageHandler.MarkRead)
	router.DELETE("/inboxes/:id/messages/:mid", sessionAuth.RequireAuth(), messageHandler.Delete)

	return router
}
