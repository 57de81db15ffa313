// Package bootstrap wires the process-wide runtime shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/middleware"
	"yatube/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedGroups upserts the built-in group fixtures.
	SeedGroups bool
}

// InitRuntime connects to DB and Redis and optionally seeds the built-in groups.
// A nil Redis client means Redis is unreachable; callers fall back to in-process state.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb, err := cache.Connect(context.Background(), cfg.RedisURL)
	if err != nil {
		middleware.Logger.Warn("redis unavailable, using in-process cache and no session revocation", "error", err)
	} else {
		middleware.Logger.Info("redis connected", "addr", rdb.Options().Addr)
	}

	if opts.SeedGroups {
		if _, err := seed.Groups(db, seed.DefaultGroups()); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in groups: %w", err)
		}
	}

	return db, rdb, nil
}
