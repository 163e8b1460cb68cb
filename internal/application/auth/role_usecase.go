package auth

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// Acciones registradas en la auditoría por este caso de uso.
const (
	AuditRoleCreate = "ROLE.CREATE"
	AuditRoleUpdate = "ROLE.UPDATE"
	AuditRoleDelete = "ROLE.DELETE"
)

// RoleUseCase administra roles. Cambiar los permisos de un rol invalida las sesiones
// cacheadas de sus usuarios.
type RoleUseCase struct {
	roles    repository.RoleRepository
	users    repository.UserRepository
	audit    repository.AuditLogRepository
	sessions ports.SessionCache
	log      *logger.Logger
}

// NewRoleUseCase construye el caso de uso.
func NewRoleUseCase(roles repository.RoleRepository, users repository.UserRepository, audit repository.AuditLogRepository, sessions ports.SessionCache, log *logger.Logger) *RoleUseCase {
	return &RoleUseCase{roles: roles, users: users, audit: audit, sessions: sessions, log: log}
}

// Create crea un rol con permisos del catálogo.
func (uc *RoleUseCase) Create(ctx context.Context, companyID, userID string, in dto.RoleRequest) (*dto.RoleResponse, error) {
	perms, err := normalizePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	role := &entity.Role{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Name:        strings.TrimSpace(in.Name),
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	uc.record(ctx, companyID, userID, AuditRoleCreate, role.ID+" "+role.Name)
	out := ToRoleResponse(role)
	return &out, nil
}

// Update reemplaza nombre y permisos e invalida la sesión de los usuarios con ese rol.
func (uc *RoleUseCase) Update(ctx context.Context, companyID, userID, id string, in dto.RoleRequest) (*dto.RoleResponse, error) {
	role, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	perms, err := normalizePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}
	role.Name = strings.TrimSpace(in.Name)
	role.Permissions = perms
	role.UpdatedAt = time.Now().UTC()
	if err := uc.roles.Update(ctx, role); err != nil {
		return nil, err
	}
	if err := uc.invalidateRole(ctx, role.ID); err != nil {
		return nil, err
	}
	uc.record(ctx, companyID, userID, AuditRoleUpdate, role.ID+" "+strings.Join(perms, ","))
	out := ToRoleResponse(role)
	return &out, nil
}

// Delete elimina un rol sin usuarios asignados.
func (uc *RoleUseCase) Delete(ctx context.Context, companyID, userID, id string) error {
	if _, err := uc.load(ctx, companyID, id); err != nil {
		return err
	}
	assigned, err := uc.users.ListIDsByRole(ctx, id)
	if err != nil {
		return err
	}
	if len(assigned) > 0 {
		return fmt.Errorf("rol con %d usuarios asignados: %w", len(assigned), domain.ErrConflict)
	}
	if err := uc.roles.Delete(ctx, id); err != nil {
		return err
	}
	uc.record(ctx, companyID, userID, AuditRoleDelete, id)
	return nil
}

// GetByID obtiene un rol.
func (uc *RoleUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.RoleResponse, error) {
	role, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	out := ToRoleResponse(role)
	return &out, nil
}

// List roles de la empresa.
func (uc *RoleUseCase) List(ctx context.Context, companyID string) ([]dto.RoleResponse, error) {
	list, err := uc.roles.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(list))
	for _, r := range list {
		out = append(out, ToRoleResponse(r))
	}
	return out, nil
}

// Permissions catálogo de permisos asignables.
func (uc *RoleUseCase) Permissions() []string {
	return append([]string(nil), entity.AllPermissions...)
}

func (uc *RoleUseCase) load(ctx context.Context, companyID, id string) (*entity.Role, error) {
	role, err := uc.roles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil || role.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return role, nil
}

func (uc *RoleUseCase) invalidateRole(ctx context.Context, roleID string) error {
	ids, err := uc.users.ListIDsByRole(ctx, roleID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := uc.sessions.Delete(ctx, ids...); err != nil {
		return err
	}
	uc.log.Info().Str("role_id", roleID).Int("sessions", len(ids)).Msg("sesiones invalidadas por cambio de rol")
	return nil
}

func (uc *RoleUseCase) record(ctx context.Context, companyID, userID, action, detail string) {
	Record(ctx, uc.audit, uc.log, companyID, userID, action, detail, true)
}

// Record agrega una entrada de auditoría. Un fallo se registra en el log y no interrumpe la operación.
func Record(ctx context.Context, audit repository.AuditLogRepository, log *logger.Logger, companyID, userID, action, detail string, accepted bool) {
	entry := &entity.AuditLog{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		Accepted:  accepted,
		CreatedAt: time.Now().UTC(),
	}
	if err := audit.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", action).Msg("no se pudo registrar auditoría")
	}
}

func normalizePermissions(in []string) ([]string, error) {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.ToUpper(strings.TrimSpace(p))
		if !entity.IsKnownPermission(p) {
			return nil, domain.NewValidationError("permissions", "permiso desconocido: "+p)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// ToRoleResponse mapea un rol.
func ToRoleResponse(r *entity.Role) dto.RoleResponse {
	return dto.RoleResponse{
		ID:          r.ID,
		CompanyID:   r.CompanyID,
		Name:        r.Name,
		Permissions: append([]string{}, r.Permissions...),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
