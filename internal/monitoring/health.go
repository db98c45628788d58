package monitoring

import (
	"net/http"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inboxhub/backend/internal/storage"
)

// HealthPinger 可选的额外依赖健康探测（例如 Redis）。
type HealthPinger interface {
	Health() error
}

// NewOpsHandler 构建运维端点：/live、/ready 和 /metrics。
// 就绪检查依赖存储层连通性；存活检查限制协程数量防止泄漏失控。
func NewOpsHandler(store storage.Store, extras map[string]HealthPinger) http.Handler {
	health := healthcheck.NewHandler()

	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(500))
	health.AddReadinessCheck("database", func() error {
		return store.Health()
	})
	for name, pinger := range extras {
		p := pinger
		health.AddReadinessCheck(name, func() error {
			return p.Health()
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/live", health.LiveEndpoint)
	mux.HandleFunc("/ready", health.ReadyEndpoint)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
