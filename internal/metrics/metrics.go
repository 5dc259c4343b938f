package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/notifyhub/jobboard/internal/queue"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	WSConnections prometheus.Gauge
	PushEvents    *prometheus.CounterVec
	EmailsSent    prometheus.Counter
	EmailsFailed  prometheus.Counter
	EmailRetries  prometheus.Counter
	EmailLatency  prometheus.Histogram
	HTTPRequests  *prometheus.CounterVec
	RateLimited   prometheus.Counter
}

// New registers all instruments with the given registerer and returns the
// populated Metrics struct. A private registry keeps tests isolated.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ws_connections",
			Help: "Number of open websocket connections.",
		}),
		PushEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realtime_events_total",
			Help: "Realtime pushes by event name and outcome (delivered or dropped).",
		}, []string{"event", "outcome"}),
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Emails accepted by the mail provider.",
		}),
		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emails_failed_total",
			Help: "Emails dropped after exhausting their attempts.",
		}),
		EmailRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "email_retries_total",
			Help: "Failed sends handed back for a delayed retry.",
		}),
		EmailLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "email_send_seconds",
			Help:    "Provider call latency for successful sends.",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter.",
		}),
	}

	reg.MustRegister(
		m.WSConnections,
		m.PushEvents,
		m.EmailsSent,
		m.EmailsFailed,
		m.EmailRetries,
		m.EmailLatency,
		m.HTTPRequests,
		m.RateLimited,
	)
	return m
}

// RegisterQueueDepth exposes the mail queue tiers as gauge funcs so the
// values are read at scrape time.
func RegisterQueueDepth(reg prometheus.Registerer, q *queue.PriorityQueue) {
	for _, tier := range []struct {
		name string
		pick func() int
	}{
		{"high", func() int { h, _, _ := q.Depths(); return h }},
		{"normal", func() int { _, n, _ := q.Depths(); return n }},
		{"low", func() int { _, _, l := q.Depths(); return l }},
	} {
		pick := tier.pick
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "mail_queue_depth",
			Help:        "Current number of emails waiting in the queue.",
			ConstLabels: prometheus.Labels{"priority": tier.name},
		}, func() float64 { return float64(pick()) }))
	}
}

// MailHooks returns the callbacks expected by worker.MetricHooks.
// Centralises the prometheus observation calls so the worker stays import-free.
func (m *Metrics) MailHooks() (
	onSent func(time.Duration),
	onFailed func(),
	onRetry func(),
) {
	onSent = func(latency time.Duration) {
		m.EmailsSent.Inc()
		m.EmailLatency.Observe(latency.Seconds())
	}
	onFailed = m.EmailsFailed.Inc
	onRetry = m.EmailRetries.Inc
	return
}

// PushHooks returns the delivered/dropped callbacks for realtime.Hooks.
func (m *Metrics) PushHooks() (onDelivered, onDropped func(event string)) {
	onDelivered = func(event string) { m.PushEvents.WithLabelValues(event, "delivered").Inc() }
	onDropped = func(event string) { m.PushEvents.WithLabelValues(event, "dropped").Inc() }
	return
}

// ConnHooks returns the connect/disconnect callbacks for realtime.HubHooks.
func (m *Metrics) ConnHooks() (onConnect, onDisconnect func()) {
	return m.WSConnections.Inc, m.WSConnections.Dec
}
