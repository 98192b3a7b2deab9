package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/oxbridge-lms/internal/config"
	"github.com/iliyamo/oxbridge-lms/internal/database"
	"github.com/iliyamo/oxbridge-lms/internal/kv"
	"github.com/iliyamo/oxbridge-lms/internal/logging"
)

// backend is the opened key-value store plus the optional redis client used
// by the rate limiter and response cache.
type backend struct {
	Store   kv.Store
	Redis   *redis.Client
	closers []func() error
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i]()
	}
}

// openBackend opens the store chosen by STORE_DRIVER.  Redis is mandatory
// for the redis driver and best effort otherwise.
func openBackend(ctx context.Context, cfg config.Config, log logging.Logger) (*backend, error) {
	b := &backend{}

	rdb, err := config.NewRedisClient(ctx)
	switch {
	case err == nil:
		b.Redis = rdb
		b.closers = append(b.closers, rdb.Close)
	case cfg.StoreDriver == "redis":
		return nil, fmt.Errorf("open redis store: %w", err)
	default:
		log.Warn(ctx, "redis unavailable; rate limiting and caching disabled", "err", err)
	}

	switch cfg.StoreDriver {
	case "memory":
		b.Store = kv.NewMemoryStore()
	case "redis":
		b.Store = kv.NewRedisStore(b.Redis, cfg.StorePrefix)
	case "mysql", "postgres", "sqlite3":
		dialect, err := kv.DialectFor(cfg.StoreDriver)
		if err != nil {
			b.Close()
			return nil, err
		}
		db, err := database.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
		}
		b.closers = append(b.closers, db.Close)
		s := kv.NewSQLStore(db, dialect)
		if err := s.Migrate(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("migrate %s store: %w", cfg.StoreDriver, err)
		}
		b.Store = s
	default:
		b.Close()
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	log.Info(ctx, "store ready", "driver", cfg.StoreDriver, "redis", b.Redis != nil)
	return b, nil
}
