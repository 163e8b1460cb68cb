package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain/authz"
)

// RequirePermission deja pasar solo si la sesión tiene el permiso. Debe usarse DESPUÉS de
// AuthMiddleware (necesita LocalSession).
//
// Comportamiento:
//   - 401 Unauthorized → no hay sesión en el contexto.
//   - 403 Forbidden    → la sesión no tiene el permiso.
func RequirePermission(permission string) fiber.Handler {
	return gate([]string{permission}, (*authz.Session).HasAllPermissions)
}

// RequireAnyPermission al menos uno de los permisos.
func RequireAnyPermission(permissions ...string) fiber.Handler {
	return gate(permissions, (*authz.Session).HasAnyPermission)
}

// RequireAllPermissions todos los permisos.
func RequireAllPermissions(permissions ...string) fiber.Handler {
	return gate(permissions, (*authz.Session).HasAllPermissions)
}

func gate(permissions []string, allowed func(*authz.Session, ...string) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := GetSession(c)
		if session == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "sesión no encontrada en el contexto",
			})
		}
		if !allowed(session, permissions...) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "permiso requerido: " + strings.Join(permissions, ", "),
			})
		}
		return c.Next()
	}
}
