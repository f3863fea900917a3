package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-sla/internal/auth"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Organizations  *handlers.OrganizationsHandler
	Notifications  *handlers.NotificationsHandler
	Scan           *handlers.ScanHandler
	AuthMiddleware *auth.AuthMiddleware
	ScanToken      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/sla", cfg.Tickets.GetTicketSla)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/first-response", cfg.Tickets.RecordFirstResponse)

	orgs := app.Group("/organizations", cfg.AuthMiddleware.Handle)
	orgs.Get("/:id/sla-policy", cfg.Organizations.GetSlaPolicy)
	orgs.Put("/:id/sla-policy", auth.RequireRole(domain.AgentRoleAdmin), cfg.Organizations.UpdateSlaPolicy)

	app.Get("/notifications", cfg.AuthMiddleware.Handle, cfg.Notifications.List)

	// external scheduler trigger, shared-secret guarded
	app.Post("/internal/sla/scan", auth.RequireScanToken(cfg.ScanToken), cfg.Scan.Trigger)
}
