package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const (
	// TenantHeader carries the caller's tenant on every gateway request.
	TenantHeader = "X-Tenant-ID"
	// TenantLocalKey is the key used to store the tenant ID in Fiber's context locals.
	TenantLocalKey = "tenant_id"
)

// Tenant extracts X-Tenant-ID into context locals, falling back to the
// configured default tenant for single-tenant deployments.
func Tenant(defaultTenant string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenant := c.Get(TenantHeader)
		if tenant == "" {
			tenant = defaultTenant
		}
		c.Locals(TenantLocalKey, tenant)
		return c.Next()
	}
}

// TenantFromCtx returns the tenant ID stored by the Tenant middleware.
func TenantFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(TenantLocalKey).(string); ok {
		return v
	}
	return ""
}
