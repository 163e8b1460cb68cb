package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/authz"
	"github.com/jhoicas/stock-api/pkg/jwt"
)

// Locals keys que deja AuthMiddleware en Fiber.
const (
	LocalUserID    = "user_id"
	LocalCompanyID = "company_id"
	LocalSession   = "session"
	LocalClaims    = "claims"
)

// sessionResolver lo implementa *auth.AuthUseCase.
type sessionResolver interface {
	IsRevoked(ctx context.Context, claims *jwt.Claims) (bool, error)
	LoadSession(ctx context.Context, userID, companyID string) (*authz.Session, error)
}

// AuthMiddleware valida el Bearer Token, descarta tokens revocados y carga la sesión de
// permisos en c.Locals.
func AuthMiddleware(jwtSecret string, sessions sessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		revoked, err := sessions.IsRevoked(c.UserContext(), claims)
		if err != nil {
			return respondError(c, err)
		}
		if revoked {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "sesión cerrada"})
		}
		session, err := sessions.LoadSession(c.UserContext(), claims.UserID, claims.CompanyID)
		if err != nil {
			return respondError(c, err)
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalCompanyID, claims.CompanyID)
		c.Locals(LocalClaims, claims)
		c.Locals(LocalSession, session)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetCompanyID devuelve el CompanyID del contexto (después del middleware de auth).
func GetCompanyID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalCompanyID).(string)
	return s
}

// GetSession sesión de permisos de la petición; nil fuera de rutas protegidas.
func GetSession(c *fiber.Ctx) *authz.Session {
	s, _ := c.Locals(LocalSession).(*authz.Session)
	return s
}

// GetClaims claims del token de la petición.
func GetClaims(c *fiber.Ctx) *jwt.Claims {
	cl, _ := c.Locals(LocalClaims).(*jwt.Claims)
	return cl
}

// requireSession para handlers que necesitan la sesión explícitamente.
func requireSession(c *fiber.Ctx) (*authz.Session, error) {
	s := GetSession(c)
	if s == nil {
		return nil, domain.ErrUnauthorized
	}
	return s, nil
}
