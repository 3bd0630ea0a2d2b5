package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/property-service/internal/api/http/handlers"
	"github.com/spec-kit/property-service/internal/auth"
	"github.com/spec-kit/property-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Tickets        *handlers.TicketsHandler
	Properties     *handlers.PropertiesHandler
	Rents          *handlers.RentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Accounts.Register)
	authGroup.Post("/login", cfg.Accounts.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	tickets := api.Group("/tickets")
	tickets.Post("", auth.RequireRole(domain.RoleTenant), cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	// Route gating here is advisory; the workflow service enforces the
	// permission matrix against fresh scope facts.
	tickets.Post("/:id/transition", auth.RequireRole(domain.RoleOwner, domain.RoleProvider), cfg.Tickets.Transition)

	properties := api.Group("/properties")
	properties.Post("", auth.RequireRole(domain.RoleOwner), cfg.Properties.CreateProperty)
	properties.Get("", auth.RequireRole(domain.RoleOwner), cfg.Properties.ListProperties)
	properties.Post("/invitations", auth.RequireRole(domain.RoleOwner), cfg.Properties.Invite)
	properties.Post("/invitations/accept", cfg.Properties.AcceptInvite)

	rents := api.Group("/rents")
	rents.Post("", auth.RequireRole(domain.RoleOwner), cfg.Rents.CreateRent)
	rents.Get("", cfg.Rents.ListRents)
	rents.Post("/:id/pay", auth.RequireRole(domain.RoleOwner), cfg.Rents.MarkPaid)
}
