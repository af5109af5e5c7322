// Package metrics provides Prometheus instrumentation for the messenger:
// HTTP traffic, authentication outcomes, conversation creation and message
// throughput.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts served requests by method, route template and
	// status code.
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration records request latency in seconds.
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "messenger_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "route"})

	// AuthAttemptsTotal counts register, login and logout calls by outcome.
	AuthAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_auth_attempts_total",
		Help: "Authentication attempts by action and result",
	}, []string{"action", "result"}) // result = "success", "failure"

	ConversationsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messenger_conversations_created_total",
		Help: "Total number of conversations created",
	})

	// MessagesTotal counts message appends, labeled "sent" or "rejected".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_messages_total",
		Help: "Total number of messages processed",
	}, []string{"type"})

	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messenger_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"scope"})
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	MessageSent     = "sent"
	MessageRejected = "rejected"
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AuthAttemptsTotal,
		ConversationsCreated,
		MessagesTotal,
		RateLimitedTotal,
	)
}

// ObserveAuth records the outcome of an authentication action.
func ObserveAuth(action string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	AuthAttemptsTotal.WithLabelValues(action, result).Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
