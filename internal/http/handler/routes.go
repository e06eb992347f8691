package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/collab"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/graphqlmock"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/service"
)

// Pinger is anything with a connectivity check, used by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the HTTP layer needs. Handlers stay thin: parse,
// call the service, translate errors.
type Deps struct {
	DB          *sql.DB
	Cache       Pinger
	Registry    *integration.Registry
	OAuth       OAuthFlow
	Approvals   service.ApprovalService
	Fulfillment service.FulfillmentService
	Assets      service.AssetService
	Insights    service.InsightService
	Hub         *collab.Hub
	Presence    collab.PresenceStore
}

// RegisterRoutes attaches all gateway routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	// Health endpoint: checks DB and cache connectivity.
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := d.DB.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		if d.Cache != nil {
			if err := d.Cache.Ping(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Backward-compatible simple liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Mock GraphQL endpoint (test fixture)
	app.Post("/graphql", graphqlmock.Handler())

	brain := app.Group("/api/brain")
	registerIntegrationRoutes(brain.Group("/integrations"), d)
	registerApprovalRoutes(brain.Group("/hitl"), d)
	registerFulfillmentRoutes(brain.Group("/fulfillment"), d)
	registerCollabRoutes(app, brain.Group("/collab"), d)
}
