package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/reservation-service/internal/api/http"
	"github.com/spec-kit/reservation-service/internal/api/http/handlers"
	"github.com/spec-kit/reservation-service/internal/app"
	"github.com/spec-kit/reservation-service/internal/auth"
	"github.com/spec-kit/reservation-service/internal/config"
	"github.com/spec-kit/reservation-service/internal/observability"
	"github.com/spec-kit/reservation-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build services", zap.Error(err))
	}
	defer c.Close()

	if cfg.Holds.Enabled {
		go worker.NewHoldWorker(c.Holds, cfg.Holds.Interval(), observability.Component(logger, "hold-worker")).Run(ctx)
	}

	server := httptransport.NewApp(cfg.App.Name, logger, c.Metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(server, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, c.Store, c.Redis),
		Reservations:   handlers.NewReservationsHandler(c.Reservations, cfg.App.Location()),
		Holds:          handlers.NewHoldsHandler(c.Holds),
		Floor:          handlers.NewFloorHandler(c.Floor),
		AuthMiddleware: auth.NewAuthMiddleware(c.Tokens),
		ExposeMetrics:  true,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", c.Store.Driver))
		if err := server.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = server.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
