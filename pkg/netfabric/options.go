package netfabric

import "github.com/prometheus/client_golang/prometheus"

// Option configures a Network at construction time.
type Option func(*networkConfig)

type networkConfig struct {
	name       string
	workers    int
	logger     LoggerConfig
	registerer prometheus.Registerer
}

func defaultNetworkConfig() networkConfig {
	return networkConfig{
		name:    "default",
		workers: 0, // 0 means defaultWorkerCount()
		logger:  LoggerConfig{Level: LogLevelInfo},
	}
}

// WithName sets the network's name, used only to label its exported
// metrics; it has no effect on fabric semantics.
func WithName(name string) Option {
	return func(c *networkConfig) { c.name = name }
}

// WithWorkers overrides the processor pool size. The zero value (the
// default, if this option is omitted) sizes the pool to
// runtime.GOMAXPROCS(0) * 4 with a floor of 512 workers, oversized
// relative to core count because processors block their pool slot on
// time.Sleep.
func WithWorkers(n int) Option {
	return func(c *networkConfig) { c.workers = n }
}

// WithLogging configures the Network's structured logger. Omitting this
// option yields a Network that logs at info level to stdout.
func WithLogging(cfg LoggerConfig) Option {
	return func(c *networkConfig) { c.logger = cfg }
}

// WithMetricsRegisterer registers the Network's Prometheus counters
// against reg instead of a private, never-exposed registry. Pass
// prometheus.DefaultRegisterer to fold a Network's counters into a
// process's default /metrics endpoint.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *networkConfig) { c.registerer = reg }
}
