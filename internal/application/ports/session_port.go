package ports

import (
	"context"
	"time"

	"github.com/jhoicas/stock-api/internal/domain/authz"
)

// SessionCache guarda la sesión de permisos de cada usuario para no resolver rol y permisos
// en cada petición. Las entradas expiran con el token y se invalidan explícitamente cuando
// cambian los permisos del rol o el rol del usuario.
type SessionCache interface {
	// Get devuelve (nil, nil) si no hay entrada.
	Get(ctx context.Context, userID string) (*authz.Session, error)
	Set(ctx context.Context, s *authz.Session, ttl time.Duration) error
	Delete(ctx context.Context, userIDs ...string) error
	// Revoke marca un token (jti) como cerrado hasta que expire.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
