package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
)

// RequireOwnTenant protege las rutas /api/tenants/:id. Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - rol platform → pasa con cualquier :id.
//   - rol admin    → solo si :id coincide con el tenant_id del token.
//   - otro caso    → 403 Forbidden.
func RequireOwnTenant(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == RolePlatform {
			return c.Next()
		}
		tenantID := GetTenantID(c)
		if role == RoleAdmin && tenantID != "" && tenantID == c.Params(param) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "no puede administrar otro restaurante",
		})
	}
}
