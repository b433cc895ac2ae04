package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AlertMetrics records low-stock alert dispatch outcomes.
type AlertMetrics struct {
	enqueued prometheus.Counter
	dropped  prometheus.Counter
	sent     prometheus.Counter
	failed   prometheus.Counter
}

// NewAlertMetrics registers the alert dispatch metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewAlertMetrics(reg prometheus.Registerer) *AlertMetrics {
	if reg == nil {
		return &AlertMetrics{}
	}
	enqueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_alerts_enqueued_total",
		Help: "Low-stock alerts accepted onto the dispatch queue.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_alerts_dropped_total",
		Help: "Low-stock alerts dropped because the dispatch queue was full.",
	})
	sent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_alert_emails_sent_total",
		Help: "Alert emails handed to the mail transport successfully.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_alert_emails_failed_total",
		Help: "Alert emails the mail transport failed to deliver.",
	})
	reg.MustRegister(enqueued, dropped, sent, failed)
	return &AlertMetrics{
		enqueued: enqueued,
		dropped:  dropped,
		sent:     sent,
		failed:   failed,
	}
}

func (a *AlertMetrics) IncEnqueued() {
	if a == nil || a.enqueued == nil {
		return
	}
	a.enqueued.Inc()
}

func (a *AlertMetrics) IncDropped() {
	if a == nil || a.dropped == nil {
		return
	}
	a.dropped.Inc()
}

func (a *AlertMetrics) IncSent() {
	if a == nil || a.sent == nil {
		return
	}
	a.sent.Inc()
}

func (a *AlertMetrics) IncFailed() {
	if a == nil || a.failed == nil {
		return
	}
	a.failed.Inc()
}

// HTTPMetrics records request durations per method and status class.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the request histogram on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
	reg.MustRegister(duration)
	return &HTTPMetrics{duration: duration}
}

// Observe records one request.
func (h *HTTPMetrics) Observe(method, status string, elapsed time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	h.duration.WithLabelValues(method, status).Observe(elapsed.Seconds())
}
