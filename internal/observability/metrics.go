package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "party_http_requests_total",
			Help: "Total number of HTTP requests processed by the party service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "party_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "party_ws_active_connections",
			Help: "Number of active websocket connections per stream kind.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "party_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "party_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
	lifecycleEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "party_lifecycle_events_total",
			Help: "Total number of party lifecycle events.",
		},
		[]string{"event"},
	)
	statusUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "party_status_updates_total",
			Help: "Total number of host playback status writes.",
		},
	)
	chatMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "party_chat_messages_total",
			Help: "Total number of chat messages appended.",
		},
	)
	reactionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "party_reactions_total",
			Help: "Total number of reactions appended.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
		lifecycleEventsTotal,
		statusUpdatesTotal,
		chatMessagesTotal,
		reactionsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}

func IncLifecycleEvent(event string) {
	lifecycleEventsTotal.WithLabelValues(event).Inc()
}

func IncStatusUpdate() {
	statusUpdatesTotal.Inc()
}

func IncChatMessage() {
	chatMessagesTotal.Inc()
}

func IncReaction() {
	reactionsTotal.Inc()
}
