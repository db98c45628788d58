package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数。
type ServerConfig struct {
	Host    string // 监听地址，默认 "0.0.0.0"
	Port    int    // API 监听端口，默认 8080
	OpsPort int    // 运维端口（健康检查与指标），默认 8081
	BaseURL string // 对外基础地址，用于派生收件箱 URL
}

// CORSConfig 定义跨域资源共享 (CORS) 配置。
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置。
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 控制台编码和详细堆栈
	File        string // 日志文件路径，留空只输出到标准输出
}

// DatabaseConfig 定义数据库连接配置。
type DatabaseConfig struct {
	Type            string        // "memory"、"mysql"、"postgres" 或 "pgx"
	DSN             string        // 数据库连接字符串
	MaxOpenConns    int           // 最大打开连接数，默认 25
	MaxIdleConns    int           // 最大空闲连接数，默认 5
	ConnMaxLifetime time.Duration // 连接最大生命周期，默认 5 分钟
}

// RedisConfig 定义 Redis 服务配置（会话吊销列表）。
type RedisConfig struct {
	Enabled  bool   // 是否启用 Redis，关闭时使用进程内吊销列表
	Address  string // Redis 服务地址，默认 "localhost:6379"
	Password string // Redis 认证密码，留空表示无密码
	DB       int    // Redis 数据库编号，默认 0
}

// SessionConfig 定义会话令牌配置。
type SessionConfig struct {
	Secret string        // 签名密钥，必须至少 32 字符
	Issuer string        // 签发者标识，默认 "inboxhub"
	TTL    time.Duration // 会话有效期，自签发起固定窗口，默认 24 小时
}

// Config 是系统核心配置的根结构体。
type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
}

// Load 从环境变量和 .env 文件加载系统配置。
//
// 加载优先级（从高到低）：系统环境变量 > .env 文件 > 默认值。
// 环境变量前缀: INBOXHUB_，例如 INBOXHUB_SERVER_PORT, INBOXHUB_SESSION_SECRET。
func Load() (*Config, error) {
	// .env 文件是可选的，加载失败静默跳过
	loadEnvFile()

	viper.SetEnvPrefix("inboxhub")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.ops_port", 8081)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.file", "")
	viper.SetDefault("database.type", "memory")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("session.secret", "")
	viper.SetDefault("session.issuer", "inboxhub")
	viper.SetDefault("session.ttl", "24h")

	cfg := &Config{
		Server: ServerConfig{
			Host:    viper.GetString("server.host"),
			Port:    viper.GetInt("server.port"),
			OpsPort: viper.GetInt("server.ops_port"),
			BaseURL: strings.TrimRight(viper.GetString("server.base_url"), "/"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitAndTrim(viper.GetString("cors.allowed_origins")),
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			File:        viper.GetString("log.file"),
		},
		Database: DatabaseConfig{
			Type:            viper.GetString("database.type"),
			DSN:             viper.GetString("database.dsn"),
			MaxOpenConns:    viper.GetInt("database.max_open_conns"),
			MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: viper.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("redis.enabled"),
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Session: SessionConfig{
			Secret: viper.GetString("session.secret"),
			Issuer: viper.GetString("session.issuer"),
			TTL:    viper.GetDuration("session.ttl"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate 校验配置的合法性。
func (c *Config) validate() error {
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("session secret must be at least 32 characters (set INBOXHUB_SESSION_SECRET)")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	switch c.Database.Type {
	case "memory", "mysql", "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Database.Type != "memory" && c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required for type %s", c.Database.Type)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}

// loadEnvFile 尝试从当前目录或父目录加载 .env 文件。
func loadEnvFile() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
		return
	}
	parent := filepath.Join("..", ".env")
	if _, err := os.Stat(parent); err == nil {
		_ = godotenv.Load(parent)
	}
}

// splitAndTrim 分割逗号列表并去除空白项。
func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
