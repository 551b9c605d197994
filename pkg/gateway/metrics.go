package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts gateway outcomes. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the gateway collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memoir",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Exchanges with the remote service by outcome kind.",
		}, []string{"method", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "memoir",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Wall time of exchanges with the remote service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(method string, kind Kind, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, string(kind)).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}
