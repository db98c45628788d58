package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 监控指标。
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 业务指标
	UsersRegistered  prometheus.Counter
	UsersDeleted     prometheus.Counter
	InboxesCreated   prometheus.Counter
	InboxesDeleted   prometheus.Counter
	MessagesReceived prometheus.Counter
	MessagesRead     prometheus.Counter

	// 认证指标
	LoginsTotal  *prometheus.CounterVec
	SessionsEnds prometheus.Counter

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
}

// NewMetrics 创建并注册监控指标。
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inboxhub_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inboxhub_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inboxhub_users_registered_total",
			Help: "Total number of users created",
		}),
		UsersDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inboxhub_users_deleted_total",
			Help: "Total number of users deleted",
		}),
		InboxesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inboxhub_inboxes_created_total",
			Help: "Total number of inboxes created",
		}),
		InboxesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inboxhub_inboxes_deleted_total",
			Help: "Total number of inboxes deleted",
		}),
		MessagesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inboxhub_messages_received_total",
			Help: "Total number of messages delivered to inboxes",
		}),
		MessagesRead: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inboxhub_messages_read_total",
			Help: "Total number of messages marked as read",
		}),

		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inboxhub_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		SessionsEnds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inboxhub_sessions_ended_total",
			Help: "Sessions terminated by logout",
		}),

		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inboxhub_errors_total",
			Help: "Errors by type",
		}, []string{"type"}),
	}
}

// RecordHTTPRequest 记录一次 HTTP 请求。
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError 记录一次错误。
func (m *Metrics) RecordError(errType string) {
	m.ErrorsTotal.WithLabelValues(errType).Inc()
}
