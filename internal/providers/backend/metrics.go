package backend

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK          = "ok"
	outcomeNetwork     = "network_error"
	outcomeClientError = "http_4xx"
	outcomeServerError = "http_5xx"
	outcomeOther       = "http_other"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubetext_backend_requests_total",
		Help: "Backend requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tubetext_backend_request_duration_seconds",
		Help:    "Time until response headers arrive, by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"endpoint"})
)

func observeRequest(endpoint, outcome string, elapsed time.Duration) {
	requestsTotal.WithLabelValues(endpoint, outcome).Inc()
	requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func outcomeForStatus(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return outcomeServerError
	case status >= http.StatusBadRequest:
		return outcomeClientError
	default:
		return outcomeOther
	}
}
