// Package devseed populates the user directory with synthetic principals so a
// load run has users to authenticate as.
package devseed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/benchkit/invoker/config"
	"github.com/benchkit/invoker/internal/core"
	"github.com/benchkit/invoker/internal/domain/model"
)

// Options bundles the dependencies needed for user seeding.
type Options struct {
	Users interface {
		core.UserDirectory
		Create(ctx context.Context, user *model.User) error
	}
	Config config.SeedConfig
	Logger *slog.Logger
}

// SeedUsers ensures the configured number of synthetic users exist. Creation is
// idempotent: existing usernames are left untouched.
func SeedUsers(ctx context.Context, opts Options) error {
	if opts.Users == nil {
		return errors.New("user repository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	count := opts.Config.UserCount
	if count <= 0 {
		count = 10
	}
	prefix := opts.Config.UsernamePrefix
	if prefix == "" {
		prefix = "loaduser"
	}

	for i := 0; i < count; i++ {
		user := &model.User{
			Username: fmt.Sprintf("%s-%04d", prefix, i),
			Password: opts.Config.Password,
		}
		if err := opts.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", user.Username, err)
		}
	}

	logger.InfoContext(ctx, "user directory seeded", "count", count, "prefix", prefix)
	return nil
}
