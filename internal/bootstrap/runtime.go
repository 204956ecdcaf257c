// Package bootstrap wires up runtime dependencies shared by the command
// entry points and integration tests.
package bootstrap

import (
	"fmt"

	"fetchfolio/internal/cache"
	"fetchfolio/internal/config"
	"fetchfolio/internal/database"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis and seeds the closed
// reference sets. The Redis client may be nil: the app runs uncached and
// unthrottled without it.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	if err := database.SeedReferenceData(db); err != nil {
		return nil, nil, fmt.Errorf("reference data seeding failed: %w", err)
	}

	return db, cache.GetClient(), nil
}
