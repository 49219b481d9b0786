package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/errgroup"

	"github.com/benchkit/invoker/config"
	"github.com/benchkit/invoker/internal/adapters/driver"
	"github.com/benchkit/invoker/internal/adapters/eventqueue"
	"github.com/benchkit/invoker/internal/adapters/target"
	"github.com/benchkit/invoker/internal/data"
	"github.com/benchkit/invoker/internal/devseed"
	"github.com/benchkit/invoker/internal/domain/event"
	"github.com/benchkit/invoker/internal/observability/statsd"
	"github.com/benchkit/invoker/internal/service"
)

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// Services holds the wired application components.
type Services struct {
	Driver  *driver.Runner
	Metrics *statsd.Client

	cfg    *config.AppConfig
	db     *sql.DB
	logger *slog.Logger
}

// NewServices wires repositories, services, and the event driver.
func NewServices(deps *ServiceDeps) (*Services, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil || deps.RedisClient == nil {
		return nil, errors.New("config, database, and redis client are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.StatsdEnabled,
		Address: cfg.Observability.StatsdAddress,
		Prefix:  cfg.Observability.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init statsd client: %w", err)
	}

	caller, err := target.New(target.Options{
		BaseURL:     cfg.Target.BaseURL,
		HelloPath:   cfg.Target.HelloPath,
		TokenSource: targetTokenSource(cfg.Target),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init target client: %w", err)
	}

	invocations := data.NewInvocationRepo(deps.DB, logger)
	users := data.NewUserRepo(deps.DB)

	runCfg := cfg.Run.Core()
	scheduler := service.NewScheduleService(service.ScheduleServiceOptions{
		Store:  invocations,
		Users:  users,
		Config: &runCfg,
		Logger: logger,
	})
	worker := service.NewInvokeService(service.InvokeServiceOptions{
		Store:   invocations,
		Users:   users,
		Caller:  caller,
		Config:  cfg.Invoke.Core(),
		Metrics: metrics,
		Logger:  logger,
	})

	queue := eventqueue.NewRedisQueue(deps.RedisClient, cfg.Redis.QueueKey)
	runner, err := driver.NewRunner(driver.RunnerOptions{
		Queue:       queue,
		Interval:    cfg.Driver.Interval,
		PopLimit:    cfg.Driver.PopLimit,
		Concurrency: cfg.Driver.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init driver runner: %w", err)
	}
	runner.Register(runCfg.ScheduleEventName, scheduler)
	runner.Register(event.NameInvoke, worker)

	return &Services{
		Driver:  runner,
		Metrics: metrics,
		cfg:     cfg,
		db:      deps.DB,
		logger:  logger,
	}, nil
}

// targetTokenSource builds the shared OAuth2 token source for oauth2 auth mode,
// or nil for per-user basic auth.
//
//nolint:ireturn // oauth2.TokenSource is the natural return type here.
func targetTokenSource(cfg config.TargetConfig) oauth2.TokenSource {
	if cfg.AuthMode != config.TargetAuthOAuth2 {
		return nil
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.OAuth2ClientID,
		ClientSecret: cfg.OAuth2ClientSecret,
		TokenURL:     cfg.OAuth2TokenURL,
		Scopes:       cfg.OAuth2Scopes,
	}
	return cc.TokenSource(context.Background())
}

// Run starts the enabled services and blocks until a shutdown signal arrives or
// a service reports an unrecoverable error.
func (s *Services) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if s.cfg.IsSeedEnabled() {
		if err := devseed.SeedUsers(ctx, devseed.Options{
			Users:  data.NewUserRepo(s.db),
			Config: s.cfg.Seed,
			Logger: s.logger,
		}); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	if !s.cfg.IsDriverEnabled() {
		s.logger.InfoContext(ctx, "driver not enabled, nothing left to run")
		return nil
	}

	if err := s.Driver.Seed(ctx, event.Event{
		Name: s.cfg.Run.ScheduleEventName,
	}); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Driver.Run(gctx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close releases service-owned resources.
func (s *Services) Close() error {
	if s.Metrics != nil {
		return s.Metrics.Close()
	}
	return nil
}
