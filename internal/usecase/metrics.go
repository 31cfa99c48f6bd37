package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK        = "ok"
	outcomeFailed    = "failed"
	outcomeCancelled = "cancelled"
	outcomeBusy      = "busy"
	outcomeRejected  = "rejected"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubetext_operations_total",
		Help: "Orchestrator operations by mode and outcome",
	}, []string{"mode", "outcome"})

	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubetext_operation_failures_total",
		Help: "Classified operation failures by kind",
	}, []string{"kind"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tubetext_operation_duration_seconds",
		Help:    "Duration of successful operations by mode",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"mode"})
)
