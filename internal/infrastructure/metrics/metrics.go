package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ideasSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ideas_submitted_total",
			Help: "Total number of ideas submitted",
		},
	)

	reviewsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_recorded_total",
			Help: "Total number of reviews recorded",
		},
		[]string{"stage", "status"},
	)

	reviewConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_conflicts_total",
			Help: "Reviews rejected because the idea changed underneath them",
		},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification deliveries by sink and result",
		},
		[]string{"sink", "result"}, // result: ok, error
	)

	notificationsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Notifications dropped because the queue was full or closed",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(ideasSubmittedTotal)
	prometheus.MustRegister(reviewsRecordedTotal)
	prometheus.MustRegister(reviewConflictsTotal)
	prometheus.MustRegister(notificationsTotal)
	prometheus.MustRegister(notificationsDroppedTotal)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest takes the route template as path so label cardinality stays bounded.
func RecordHTTPRequest(method, path string, status int, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

func RecordIdeaSubmitted() {
	ideasSubmittedTotal.Inc()
}

func RecordReview(stage, status string) {
	reviewsRecordedTotal.WithLabelValues(stage, status).Inc()
}

func RecordReviewConflict() {
	reviewConflictsTotal.Inc()
}

func RecordNotification(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notificationsTotal.WithLabelValues(sink, result).Inc()
}

func RecordNotificationDropped() {
	notificationsDroppedTotal.Inc()
}
