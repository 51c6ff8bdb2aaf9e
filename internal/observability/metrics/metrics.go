package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluatorhub_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evaluatorhub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluatorhub_registrations_total",
		Help: "Count of registration attempts by result",
	}, []string{"result"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluatorhub_logins_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	resetEmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluatorhub_reset_emails_total",
		Help: "Count of password reset email dispatches by result",
	}, []string{"result"})

	pdfRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evaluatorhub_pdf_render_duration_seconds",
		Help:    "Duration of report PDF rendering",
		Buckets: prometheus.DefBuckets,
	})

	resetTokensSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evaluatorhub_reset_tokens_swept_total",
		Help: "Count of expired password reset tokens cleared by the sweeper",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRegistration records a registration attempt with a result label
func ObserveRegistration(result string) {
	registrationsTotal.WithLabelValues(result).Inc()
}

// ObserveLogin records a login attempt with a result label
func ObserveLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

// ObserveResetEmail records a password reset email dispatch
func ObserveResetEmail(result string) {
	resetEmailsTotal.WithLabelValues(result).Inc()
}

// ObservePDFRender records the duration of a report PDF render
func ObservePDFRender(duration time.Duration) {
	pdfRenderDuration.Observe(duration.Seconds())
}

// ObserveTokensSwept adds cleared tokens to the sweeper counter
func ObserveTokensSwept(count int64) {
	resetTokensSwept.Add(float64(count))
}
