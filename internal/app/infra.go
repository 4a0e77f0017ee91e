package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/coursehub/marketplace/internal/core/ports"
	"github.com/coursehub/marketplace/internal/infrastructure/config"
	mongostore "github.com/coursehub/marketplace/internal/infrastructure/db/mongo"
	redisstore "github.com/coursehub/marketplace/internal/infrastructure/db/redis"
	"github.com/coursehub/marketplace/internal/infrastructure/db/sqlite"
	"github.com/coursehub/marketplace/internal/infrastructure/http/handlers"
)

// store is the persistence backend selected by STORE_DRIVER.
type store struct {
	principals ports.PrincipalRepository
	courses    ports.CourseRepository
	purchases  ports.PurchaseRepository
	name       string
	ping       handlers.Check
	migrate    func(ctx context.Context) error
	close      func(ctx context.Context) error
}

// openStoreFunc is replaced in tests.
var openStoreFunc = openStore

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		s := mongostore.NewStore(client, db)
		return &store{
			principals: s.Principals,
			courses:    s.Courses,
			purchases:  s.Purchases,
			name:       "mongodb",
			ping:       s.Ping,
			migrate:    s.EnsureIndexes,
			close:      s.Close,
		}, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path})
		if err != nil {
			return nil, err
		}
		return &store{
			principals: s.Principals,
			courses:    s.Courses,
			purchases:  s.Purchases,
			name:       "sqlite",
			ping:       s.Ping,
			migrate:    s.Migrate,
			close:      func(context.Context) error { return s.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// openThrottle connects to Redis when REDIS_ADDR is set. Both results are nil
// when throttling is disabled.
func openThrottle(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*goredis.Client, ports.LoginThrottle, error) {
	if cfg.Redis.Addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
		return nil, nil, nil
	}
	client, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, redisstore.NewLoginThrottle(client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow), nil
}
