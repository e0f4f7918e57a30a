package server

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus metrics for the dev server.
type metrics struct {
	requestsTotal    *prometheus.CounterVec
	reloadBroadcasts *prometheus.CounterVec
	connectedClients prometheus.Gauge
	portRetries      prometheus.Counter
}

// globalMetrics is the singleton metrics instance, created on first use so
// test binaries that never serve requests register nothing.
var (
	globalMetrics     *metrics
	globalMetricsOnce sync.Once
)

func getMetrics() *metrics {
	globalMetricsOnce.Do(func() {
		factory := promauto.With(prometheus.DefaultRegisterer)

		globalMetrics = &metrics{
			requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: "devserver",
				Name:      "requests_total",
				Help:      "HTTP requests served, by status code",
			}, []string{"code"}),

			reloadBroadcasts: factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: "devserver",
				Name:      "reload_broadcasts_total",
				Help:      "Reload-channel broadcasts, by message type",
			}, []string{"type"}),

			connectedClients: factory.NewGauge(prometheus.GaugeOpts{
				Namespace: "devserver",
				Name:      "reload_clients",
				Help:      "Currently subscribed reload clients",
			}),

			portRetries: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "devserver",
				Name:      "port_retries_total",
				Help:      "Bind attempts abandoned because the port was in use",
			}),
		}
	})
	return globalMetrics
}

func (m *metrics) observeRequest(status int) {
	m.requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (m *metrics) observeBroadcast(msgType string) {
	m.reloadBroadcasts.WithLabelValues(msgType).Inc()
}
