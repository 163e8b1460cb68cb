package repository

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// GetByID/GetByEmail devuelven (nil, nil) si no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.User, error)
	// ListIDsByRole usado para invalidar sesiones cacheadas cuando cambian los permisos del rol.
	ListIDsByRole(ctx context.Context, roleID string) ([]string, error)
}

// RoleRepository persistencia de roles y sus permisos.
type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	Update(ctx context.Context, role *entity.Role) error
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Role, error)
	Delete(ctx context.Context, id string) error
}

// AuditLogRepository registro de acciones sensibles.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
	ListByCompany(ctx context.Context, companyID string, page Page) ([]*entity.AuditLog, int, error)
}
