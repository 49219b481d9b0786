package config

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"invoker"`
	Password string `env:"PASSWORD" envDefault:"invoker"`
	Name     string `env:"NAME"     envDefault:"invoker"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration for the event queue.
type RedisConfig struct {
	Addr     string `env:"ADDR"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"  envDefault:""`
	DB       int    `env:"DB"        envDefault:"0"`
	// QueueKey is the sorted-set key holding queued events.
	QueueKey string `env:"QUEUE_KEY" envDefault:"invoker:events"`
}
