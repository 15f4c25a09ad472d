package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the traffic and faults of the adapters sharing it.
type Metrics struct {
	BytesRead    prometheus.Counter
	BytesWritten prometheus.Counter
	Faults       prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	factory := promauto.With(registerer)
	return &Metrics{
		BytesRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "pqnest_storage_read_bytes_total",
			Help: "Number of bytes read from adapted streams.",
		}),
		BytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "pqnest_storage_written_bytes_total",
			Help: "Number of bytes written to adapted streams.",
		}),
		Faults: factory.NewCounter(prometheus.CounterOpts{
			Name: "pqnest_storage_faults_total",
			Help: "Number of stream failures that faulted an adapter.",
		}),
	}
}
