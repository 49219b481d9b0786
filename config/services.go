package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benchkit/invoker/internal/core"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeDriver runs the event driver (scheduler + invocation worker).
	ServiceModeDriver ServiceMode = "driver"
	// ServiceModeSeed seeds the user directory before the run.
	ServiceModeSeed ServiceMode = "seed"
)

// ParseServices parses a comma-delimited string of service names and returns the
// enabled services. It validates that all service names are valid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeDriver, ServiceModeSeed:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: driver, seed)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// RunConfig contains the load-run parameters.
type RunConfig struct {
	// RunID prefixes every generated invocation name.
	RunID string `env:"RUN_ID" envDefault:"run"`

	// InvocationTarget is the total number of invocations to schedule.
	InvocationTarget int `env:"RUN_INVOCATION_TARGET" envDefault:"100"`

	// BatchSize bounds how many invocations one schedule event may emit.
	BatchSize int `env:"RUN_BATCH_SIZE" envDefault:"100"`

	// TimeBetweenInvocations paces consecutive invocations.
	TimeBetweenInvocations time.Duration `env:"RUN_TIME_BETWEEN_INVOCATIONS" envDefault:"50ms"`

	// MessagePattern is a literal message or a fmt verb pattern the running
	// total is substituted into.
	MessagePattern string `env:"RUN_MESSAGE_PATTERN" envDefault:"Message %07d"`

	// ScheduleEventName names the self-addressed schedule chain.
	ScheduleEventName string `env:"RUN_SCHEDULE_EVENT_NAME" envDefault:"scheduleInvocations"`
}

// Sanitize applies guardrails to run parameters.
func (c *RunConfig) Sanitize() {
	defaults := core.DefaultRunConfig()
	if strings.TrimSpace(c.RunID) == "" {
		c.RunID = defaults.RunID
	}
	if c.InvocationTarget < 0 {
		c.InvocationTarget = 0
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.TimeBetweenInvocations < 0 {
		c.TimeBetweenInvocations = defaults.TimeBetweenInvocations
	}
	if strings.TrimSpace(c.ScheduleEventName) == "" {
		c.ScheduleEventName = defaults.ScheduleEventName
	}
}

// Core converts the env-facing RunConfig into the core representation.
func (c *RunConfig) Core() core.RunConfig {
	return core.RunConfig{
		RunID:                  c.RunID,
		InvocationTarget:       c.InvocationTarget,
		BatchSize:              c.BatchSize,
		TimeBetweenInvocations: c.TimeBetweenInvocations,
		MessagePattern:         c.MessagePattern,
		ScheduleEventName:      c.ScheduleEventName,
	}
}

// DriverConfig contains event driver loop configuration.
type DriverConfig struct {
	// Interval is the queue polling period.
	Interval time.Duration `env:"DRIVER_INTERVAL" envDefault:"100ms"`

	// PopLimit bounds how many due events one tick may claim.
	PopLimit int `env:"DRIVER_POP_LIMIT" envDefault:"256"`

	// Concurrency bounds in-flight invocation workers per tick.
	Concurrency int `env:"DRIVER_CONCURRENCY" envDefault:"8"`
}

// Sanitize applies guardrails to driver settings.
func (c *DriverConfig) Sanitize() {
	if c.Interval <= 0 {
		c.Interval = 100 * time.Millisecond
	}
	if c.PopLimit <= 0 {
		c.PopLimit = 256
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
}

// InvokeConfig contains invocation worker policy configuration.
type InvokeConfig struct {
	// MarkFailedOnMissingUser transitions a record to failed when its user no
	// longer resolves, instead of leaving it scheduled forever.
	MarkFailedOnMissingUser bool `env:"INVOKE_MARK_FAILED_ON_MISSING_USER" envDefault:"false"`
}

// Core converts the env-facing InvokeConfig into the core representation.
func (c *InvokeConfig) Core() core.InvokeConfig {
	return core.InvokeConfig{MarkFailedOnMissingUser: c.MarkFailedOnMissingUser}
}

// SeedConfig contains user directory seeding configuration.
type SeedConfig struct {
	// UserCount is how many synthetic users to ensure exist.
	UserCount int `env:"SEED_USER_COUNT" envDefault:"10"`
	// UsernamePrefix prefixes every seeded username.
	UsernamePrefix string `env:"SEED_USERNAME_PREFIX" envDefault:"loaduser"`
	// Password is the shared password for seeded users.
	Password string `env:"SEED_PASSWORD" envDefault:"password"`
}
