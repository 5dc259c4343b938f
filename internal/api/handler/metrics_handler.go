package handler

import (
	"net/http"

	"github.com/notifyhub/jobboard/internal/queue"
	"github.com/notifyhub/jobboard/internal/realtime"
	"github.com/notifyhub/jobboard/internal/worker"
)

// MetricsHandler serves a human-readable JSON snapshot of the mail queue
// and the realtime layer. Raw Prometheus metrics are available at /metrics.
type MetricsHandler struct {
	q        *queue.PriorityQueue
	retries  *worker.RetryWorker
	registry *realtime.Registry
	conns    *realtime.ConnSet
}

func NewMetricsHandler(q *queue.PriorityQueue, retries *worker.RetryWorker, registry *realtime.Registry, conns *realtime.ConnSet) *MetricsHandler {
	return &MetricsHandler{q: q, retries: retries, registry: registry, conns: conns}
}

// GetMetrics handles GET /api/v1/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	high, normal, low := h.q.Depths()
	respondJSON(w, http.StatusOK, map[string]any{
		"mail_queue_depth": map[string]int{
			"high":   high,
			"normal": normal,
			"low":    low,
			"total":  high + normal + low,
		},
		"mail_retries_pending": h.retries.Pending(),
		"realtime": map[string]int{
			"connections":     h.conns.Len(),
			"connected_users": h.registry.Len(),
		},
	})
}
