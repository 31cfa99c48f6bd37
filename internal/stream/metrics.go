package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fragmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tubetext",
		Name:      "stream_fragments_total",
		Help:      "Translation fragments delivered to sinks",
	})

	framingErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tubetext",
		Name:      "stream_framing_errors_total",
		Help:      "Translation streams aborted by framing errors",
	}, []string{"reason"}) // malformed|truncated
)
