package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"inboxhub/backend/internal/auth"
	jwtpkg "inboxhub/backend/internal/auth/jwt"
	"inboxhub/backend/internal/authz"
	"inboxhub/backend/internal/config"
	"inboxhub/backend/internal/logger"
	"inboxhub/backend/internal/monitoring"
	"inboxhub/backend/internal/service"
	"inboxhub/backend/internal/storage"
	"inboxhub/backend/internal/storage/memory"
	"inboxhub/backend/internal/storage/postgres"
	"inboxhub/backend/internal/storage/redis"
	sqlstore "inboxhub/backend/internal/storage/sql"
	httptransport "inboxhub/backend/internal/transport/http"
)

// main 是收件箱服务 HTTP API 的程序入口。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("starting inboxhub API server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
		zap.String("database", cfg.Database.Type),
	)

	// 初始化存储层
	store, err := newStore(cfg)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	// 会话吊销列表：默认进程内，启用 Redis 后跨实例生效
	var revocations auth.RevocationStore = auth.NewMemoryRevocationStore()
	healthExtras := make(map[string]monitoring.HealthPinger)
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(&cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		revocations = redis.NewRevocationStore(redisClient)
		healthExtras["redis"] = redisClient
		log.Info("using Redis session revocation store", zap.String("address", cfg.Redis.Address))
	}

	// 初始化认证与业务服务
	tokenManager := jwtpkg.NewManager(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.TTL)
	authService := auth.NewService(store, tokenManager, revocations)
	userService := service.NewUserService(store)
	inboxService := service.NewInboxService(store, cfg.Server.BaseURL)
	messageService := service.NewMessageService(store)
	policy := authz.NewPolicy()
	metrics := monitoring.NewMetrics()

	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:         cfg,
		AuthService:    authService,
		UserService:    userService,
		InboxService:   inboxService,
		MessageService: messageService,
		Policy:         policy,
		Metrics:        metrics,
		Logger:         log,
	})

	apiServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	opsServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.OpsPort),
		Handler:           monitoring.NewOpsHandler(store, healthExtras),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("API server listening", zap.String("addr", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		log.Info("ops server listening", zap.String("addr", opsServer.Addr))
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_ = opsServer.Shutdown(shutdownCtx)
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
	log.Info("server stopped")
}

// newStore 根据配置选择存储后端。
func newStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Database.Type {
	case "memory":
		return memory.NewStore(), nil
	case "pgx":
		return postgres.NewStore(&cfg.Database)
	default: // "mysql" 或 "postgres"，走 database/sql 实现
		return sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
	}
}
