// Package config defines the environment-driven configuration for the invoker
// service.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See the individual domain config files for
// available variables:
//   - database.go: Postgres and Redis configuration
//   - services.go: service modes, run parameters, driver and worker settings
//   - target.go:   target server and authentication configuration
//   - observability.go: metrics configuration
package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
type AppConfig struct {
	// IsDev controls development mode behavior. Set DEV=true for development.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// Service mode configuration (comma-delimited: driver, seed)
	Services string `env:"SERVICES" envDefault:"driver"`

	// Run parameters for the load run
	Run RunConfig

	// Driver loop configuration
	Driver DriverConfig

	// Invocation worker configuration
	Invoke InvokeConfig

	// User directory seeding configuration
	Seed SeedConfig

	// Target server configuration
	Target TargetConfig `envPrefix:"TARGET_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Run.Sanitize()
	c.Driver.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks NODE_ENV as a fallback for the DEV flag.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsDriverEnabled returns true if the event driver service is enabled.
func (c *AppConfig) IsDriverEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeDriver]
}

// IsSeedEnabled returns true if the user directory seeder is enabled.
func (c *AppConfig) IsSeedEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeSeed]
}
