package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	chatConnectionsTotal prometheus.Counter
	chatMessagesSent     prometheus.Counter

	notificationsPublishedTotal  *prometheus.CounterVec
	notificationsSuppressedTotal *prometheus.CounterVec
	sseClientsActive             prometheus.Gauge

	uploadsTotal         *prometheus.CounterVec
	uploadsRejectedTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		chatConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_connections_total",
			Help: "Total number of websocket chat connections accepted.",
		})

		chatMessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Total number of chat messages persisted.",
		})

		notificationsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of notifications delivered to recipients.",
		}, []string{"type"})

		notificationsSuppressedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_suppressed_total",
			Help: "Total number of notifications dropped by recipient preferences.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sse_clients_active",
			Help: "Number of currently connected notification stream clients.",
		})

		uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Total number of media uploads stored.",
		}, []string{"kind"})

		uploadsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uploads_rejected_total",
			Help: "Total number of media uploads rejected.",
		}, []string{"reason"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			chatConnectionsTotal,
			chatMessagesSent,
			notificationsPublishedTotal,
			notificationsSuppressedTotal,
			sseClientsActive,
			uploadsTotal,
			uploadsRejectedTotal,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for served requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ChatConnectionsTotal exposes the counter for accepted chat sockets.
func ChatConnectionsTotal() prometheus.Counter {
	RegisterMetrics()
	return chatConnectionsTotal
}

// ChatMessagesSent exposes the counter for persisted chat messages.
func ChatMessagesSent() prometheus.Counter {
	RegisterMetrics()
	return chatMessagesSent
}

// NotificationsPublishedTotal exposes the counter for delivered notifications.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublishedTotal
}

// NotificationsSuppressedTotal exposes the counter for preference-gated drops.
func NotificationsSuppressedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsSuppressedTotal
}

// SSEClientsActive exposes the gauge for connected stream clients.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

// UploadsTotal exposes the counter for stored uploads.
func UploadsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsTotal
}

// UploadsRejectedTotal exposes the counter for rejected uploads.
func UploadsRejectedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsRejectedTotal
}
