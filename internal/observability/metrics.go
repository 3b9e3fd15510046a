package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gridd",
			Subsystem: "admin",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gridd",
			Subsystem: "admin",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	replies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gridd",
			Subsystem: "reply",
			Name:      "total",
			Help:      "Replies sent, by status code and outcome.",
		},
		[]string{"code", "outcome"},
	)
	replyBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gridd",
			Subsystem: "reply",
			Name:      "bytes_total",
			Help:      "Reply frame bytes written to connections.",
		},
	)
	replySend = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gridd",
			Subsystem: "reply",
			Name:      "send_seconds",
			Help:      "Time spent writing reply frames.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	handlerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gridd",
			Subsystem: "handler",
			Name:      "invocations_total",
			Help:      "Handler invocations, by handler name and outcome.",
		},
		[]string{"handler", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, replies, replyBytes, replySend, handlerCalls)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordReply counts one reply attempt. outcome is "sent", "encode_failed"
// or "send_failed".
func RecordReply(code int, outcome string, written int, duration time.Duration) {
	RegisterMetrics()
	replies.WithLabelValues(strconv.Itoa(code), outcome).Inc()
	if written > 0 {
		replyBytes.Add(float64(written))
	}
	if duration > 0 {
		replySend.WithLabelValues(outcome).Observe(duration.Seconds())
	}
}

func RecordHandler(name string, err error) {
	RegisterMetrics()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	handlerCalls.WithLabelValues(name, outcome).Inc()
}
