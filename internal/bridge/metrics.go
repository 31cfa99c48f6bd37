package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tubetext_bridge_ws_clients",
		Help: "Attached websocket clients",
	})

	wsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubetext_bridge_ws_dropped_total",
		Help: "Websocket clients disconnected for falling behind",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubetext_bridge_http_requests_total",
		Help: "Bridge HTTP requests by route and status code",
	}, []string{"route", "code"})
)
