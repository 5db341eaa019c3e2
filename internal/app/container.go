// Package app assembles the service graph shared by the API server and floorctl.
package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/auth"
	"github.com/spec-kit/reservation-service/internal/broker"
	"github.com/spec-kit/reservation-service/internal/config"
	"github.com/spec-kit/reservation-service/internal/events"
	"github.com/spec-kit/reservation-service/internal/lock"
	"github.com/spec-kit/reservation-service/internal/observability"
	"github.com/spec-kit/reservation-service/internal/persistence"
	"github.com/spec-kit/reservation-service/internal/repository"
	"github.com/spec-kit/reservation-service/internal/seating"
	"github.com/spec-kit/reservation-service/internal/service"
	"github.com/spec-kit/reservation-service/internal/worker"
)

// Container holds the wired services and the resources they own.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	Store  *persistence.Store
	Redis  *persistence.Redis
	Tokens *auth.TokenManager

	Reservations *service.ReservationService
	Holds        *service.HoldService
	Floor        *service.FloorService
}

// Build opens the store and optional Redis and wires every service.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	metrics := observability.NewMetrics()

	store, err := persistence.OpenStore(ctx, cfg, metrics, logger)
	if err != nil {
		return nil, err
	}
	redis := persistence.NewRedis(cfg.Redis, logger)

	var locker lock.TableLocker = lock.NewMemoryLocker()
	if redis != nil {
		locker = lock.NewRedisLocker(redis.Client)
	}

	dispatcher := events.NewInMemoryDispatcher(observability.Component(logger, "events"))
	worker.StartSubscribers(dispatcher,
		service.NewNotificationService(observability.Component(logger, "notifications")),
		broker.NewPublisher(cfg.Broker, observability.Component(logger, "broker")),
	)

	tables := repository.NewTableRepository(store)
	reservations := repository.NewReservationRepository(store)
	staffingRequests := repository.NewStaffingRequestRepository(store)

	staffing := service.NewStaffingService(service.StaffingDependencies{
		RequestRepo:   staffingRequests,
		OnCallRepo:    repository.NewOnCallRepository(store),
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        observability.Component(logger, "staffing"),
		BusyThreshold: cfg.Seating.BusyThreshold,
		DefaultBlock:  cfg.Seating.DefaultBlockMinutes,
	})

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Store:   store,
		Redis:   redis,
		Tokens:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		Reservations: service.NewReservationService(service.ReservationDependencies{
			TableRepo:           tables,
			ReservationRepo:     reservations,
			Staffing:            staffing,
			Locker:              locker,
			Dispatcher:          dispatcher,
			Metrics:             metrics,
			Logger:              observability.Component(logger, "reservations"),
			DefaultBlockMinutes: cfg.Seating.DefaultBlockMinutes,
			FallbackPolicy:      seating.ParseFallbackPolicy(cfg.Seating.FallbackPolicy),
			LockTTL:             cfg.Seating.LockTTL(),
		}),
		Holds: service.NewHoldService(service.HoldDependencies{
			TableRepo:       tables,
			ReservationRepo: reservations,
			Dispatcher:      dispatcher,
			Metrics:         metrics,
			Logger:          observability.Component(logger, "holds"),
			Location:        cfg.App.Location(),
			HoldMinutes:     cfg.Seating.HoldMinutes,
			DefaultBlock:    cfg.Seating.DefaultBlockMinutes,
		}),
		Floor: service.NewFloorService(tables, staffingRequests),
	}, nil
}

// Close releases the store and Redis connections.
func (c *Container) Close() {
	c.Redis.Close()
	c.Store.Close()
}
