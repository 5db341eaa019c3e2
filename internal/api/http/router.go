package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/reservation-service/internal/api/http/handlers"
	"github.com/spec-kit/reservation-service/internal/auth"
	"github.com/spec-kit/reservation-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Reservations   *handlers.ReservationsHandler
	Holds          *handlers.HoldsHandler
	Floor          *handlers.FloorHandler
	AuthMiddleware *auth.AuthMiddleware
	ExposeMetrics  bool
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.ExposeMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := app.Group("/api")
	api.Post("/reservations", cfg.Reservations.Create)

	authn := cfg.AuthMiddleware.Handle
	anyStaff := auth.RequireStaffRole()
	api.Get("/reservations", authn, anyStaff, cfg.Reservations.List)
	api.Patch("/reservations/:id/status", authn, anyStaff, cfg.Reservations.UpdateStatus)
	api.Get("/tables", authn, anyStaff, cfg.Floor.Tables)
	api.Get("/staffing-requests", authn, anyStaff, cfg.Floor.StaffingRequests)
	api.Post("/holds/apply", authn, auth.RequireStaffRole(domain.StaffRoleAdmin, domain.StaffRoleManager), cfg.Holds.Apply)
}
