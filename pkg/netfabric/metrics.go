package netfabric

import "github.com/prometheus/client_golang/prometheus"

// fabricMetrics mirrors the fabric's own dispatch counters into
// Prometheus. It is a read-only export: Network.Count/TotalCount never
// read these back, the atomics in Server and Network remain the source
// of truth.
type fabricMetrics struct {
	networkName    string
	totalAccepted  prometheus.Counter
	serverDispatch *prometheus.CounterVec
}

// newFabricMetrics registers a Network's counters against reg. A nil
// reg is valid and yields a no-op metrics set (registered against a
// private, never-exposed registry) so constructing a Network never
// requires a Prometheus registerer.
func newFabricMetrics(reg prometheus.Registerer, networkName string) *fabricMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &fabricMetrics{
		networkName: networkName,
		totalAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "netfabric",
			Name:        "envelopes_accepted_total",
			Help:        "Envelopes accepted into the fabric ingress, before any drop decision.",
			ConstLabels: prometheus.Labels{"network": networkName},
		}),
		serverDispatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "netfabric",
			Name:        "server_dispatch_total",
			Help:        "Dispatch attempts per mounted server, including unimplemented methods.",
			ConstLabels: prometheus.Labels{"network": networkName},
		}, []string{"server"}),
	}
	reg.MustRegister(m.totalAccepted, m.serverDispatch)
	return m
}

func (m *fabricMetrics) acceptEnvelope() {
	m.totalAccepted.Inc()
}

func (m *fabricMetrics) recordDispatch(serverName string) {
	m.serverDispatch.WithLabelValues(serverName).Inc()
}
