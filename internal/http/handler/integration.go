package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/http/middleware"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/integration"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
)

// OAuthFlow is the authorization-code surface handlers need from the OAuth
// manager.
type OAuthFlow interface {
	AuthorizeURL(vendor, state string) (string, error)
	Exchange(ctx context.Context, tenantID, vendor, code string) (*model.IntegrationConnection, error)
	Status(ctx context.Context, tenantID, vendor string) (*model.IntegrationConnection, error)
}

// dispatchRequest is the POST body for the uniform vendor operation endpoint.
type dispatchRequest struct {
	Params map[string]any `json:"params"`
}

func registerIntegrationRoutes(g fiber.Router, d Deps) {
	// GET /api/brain/integrations lists mounted vendors and their operations.
	g.Get("/", func(c *fiber.Ctx) error {
		vendors := make([]fiber.Map, 0)
		for _, v := range d.Registry.Vendors() {
			conn, _ := d.Registry.Get(v)
			vendors = append(vendors, fiber.Map{
				"vendor":     v,
				"operations": conn.Operations(),
			})
		}
		return c.JSON(fiber.Map{"vendors": vendors})
	})

	// OAuth authorization-code flow.
	g.Get("/:vendor/oauth/start", func(c *fiber.Ctx) error {
		vendor := c.Params("vendor")
		state := c.Query("state")
		if state == "" {
			return writeError(c, fiber.StatusBadRequest, "STATE_REQUIRED", "state query parameter is required")
		}
		u, err := d.OAuth.AuthorizeURL(vendor, state)
		if err != nil {
			return writeError(c, fiber.StatusNotFound, "UNKNOWN_VENDOR", "no oauth provider for vendor")
		}
		return c.JSON(fiber.Map{"authorize_url": u})
	})

	g.Get("/:vendor/oauth/callback", func(c *fiber.Ctx) error {
		vendor := c.Params("vendor")
		code := c.Query("code")
		if code == "" {
			return writeError(c, fiber.StatusBadRequest, "CODE_REQUIRED", "code query parameter is required")
		}
		tenant := middleware.TenantFromCtx(c)
		conn, err := d.OAuth.Exchange(c.UserContext(), tenant, vendor, code)
		if err != nil {
			if errors.Is(err, integration.ErrUnknownVendor) {
				return writeError(c, fiber.StatusNotFound, "UNKNOWN_VENDOR", "no oauth provider for vendor")
			}
			return writeError(c, fiber.StatusBadGateway, "OAUTH_EXCHANGE_FAILED", "vendor rejected the authorization code")
		}
		return c.JSON(fiber.Map{
			"vendor":     conn.Vendor,
			"status":     conn.Status,
			"expires_at": conn.ExpiresAt,
		})
	})

	g.Get("/:vendor/status", func(c *fiber.Ctx) error {
		vendor := c.Params("vendor")
		tenant := middleware.TenantFromCtx(c)
		conn, err := d.OAuth.Status(c.UserContext(), tenant, vendor)
		if err != nil {
			if errors.Is(err, integration.ErrNotConnected) {
				return c.JSON(fiber.Map{"vendor": vendor, "status": model.ConnectionDisconnected})
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{
			"vendor":     conn.Vendor,
			"status":     conn.Status,
			"scope":      conn.Scope,
			"expires_at": conn.ExpiresAt,
		})
	})

	// POST /api/brain/integrations/:vendor/:operation is the uniform dispatch
	// surface: every vendor operation answers the same envelope.
	g.Post("/:vendor/:operation", func(c *fiber.Ctx) error {
		vendor := c.Params("vendor")
		op := c.Params("operation")

		var req dispatchRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
			}
		}

		conn, err := d.Registry.Get(vendor)
		if err != nil {
			return writeError(c, fiber.StatusNotFound, "UNKNOWN_VENDOR", "no connector for vendor")
		}

		tenant := middleware.TenantFromCtx(c)
		result, err := conn.Execute(c.UserContext(), tenant, op, req.Params)
		if err != nil {
			return writeVendorError(c, err)
		}

		var analysis map[string]any
		if d.Insights != nil {
			analysis = d.Insights.Analyze(c.UserContext(), vendor, op, result)
		}

		return c.JSON(fiber.Map{
			"success":         true,
			"vendor":          vendor,
			"operation":       op,
			"business_result": result,
			"agent_analysis":  analysis,
		})
	})
}

// writeVendorError maps integration errors onto the gateway error envelope.
func writeVendorError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, integration.ErrUnknownOperation):
		return writeError(c, fiber.StatusNotFound, "UNKNOWN_OPERATION", "vendor does not support this operation")
	case errors.Is(err, integration.ErrNotConnected):
		return writeError(c, fiber.StatusConflict, "NOT_CONNECTED", "tenant has no usable credentials for this vendor")
	case errors.Is(err, integration.ErrInvalidParams):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	}

	var ve *integration.VendorError
	if errors.As(err, &ve) {
		if ve.Retryable {
			return writeError(c, fiber.StatusBadGateway, "VENDOR_UNAVAILABLE", "vendor API is temporarily unavailable")
		}
		return writeError(c, fiber.StatusUnprocessableEntity, "VENDOR_REJECTED", "vendor API rejected the request")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
