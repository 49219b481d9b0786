package config

// ObservabilityConfig contains metrics configuration.
type ObservabilityConfig struct {
	// StatsdEnabled toggles StatsD metric emission.
	StatsdEnabled bool `env:"STATSD_ENABLED" envDefault:"false"`

	// StatsdAddress is the host:port of the StatsD endpoint.
	StatsdAddress string `env:"STATSD_ADDRESS" envDefault:"localhost:8125"`

	// StatsdPrefix prefixes every emitted metric name.
	StatsdPrefix string `env:"STATSD_PREFIX" envDefault:"invoker"`
}
