package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/config"
	"github.com/spec-kit/reservation-service/internal/docstore"
	"github.com/spec-kit/reservation-service/internal/docstore/memory"
	pgstore "github.com/spec-kit/reservation-service/internal/docstore/postgres"
	"github.com/spec-kit/reservation-service/internal/docstore/rest"
	"github.com/spec-kit/reservation-service/internal/observability"
)

// Store is an opened document store plus the resources backing it.
type Store struct {
	docstore.Store
	Driver   string
	postgres *Postgres
}

// Close releases the backing connection pool, if any.
func (s *Store) Close() {
	if s != nil {
		s.postgres.Close()
	}
}

// OpenStore builds the configured document store and wraps it with call metrics and,
// unless disabled, a circuit breaker.
func OpenStore(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (*Store, error) {
	out := &Store{Driver: cfg.Store.Driver}
	var inner docstore.Store

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory document store; data is lost on restart")
		inner = memory.New()
	case config.StoreDriverPostgres:
		pg, err := OpenPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), DefaultMigrationsDir, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		out.postgres = pg
		inner = pgstore.New(pg.PoolHandle())
	case config.StoreDriverREST:
		client := rest.New(rest.Config{
			BaseURL:       cfg.Store.BaseURL,
			AdminEmail:    cfg.Store.AdminEmail,
			AdminPassword: cfg.Store.AdminPassword,
			Timeout:       cfg.Store.Timeout(),
		}, observability.Component(logger, "docstore"))
		if client.HasCredentials() {
			if err := client.Authenticate(ctx); err != nil {
				logger.Warn("document store admin authentication failed; continuing unauthenticated", zap.Error(err))
			}
		} else {
			logger.Warn("STORE_ADMIN_EMAIL/STORE_ADMIN_PASSWORD not set; store calls are anonymous")
		}
		inner = client
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	inner = docstore.Instrument(inner, metrics)
	if cfg.Store.CircuitBreaker {
		inner = docstore.WithBreaker(inner, "docstore-"+cfg.Store.Driver, observability.Component(logger, "docstore"))
	}
	out.Store = inner
	return out, nil
}
