package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/stock-api/internal/application/auth"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// Acciones de auditoría sobre usuarios.
const (
	AuditUserRoleAssign = "USER.ROLE_ASSIGN"
	AuditUserStatus     = "USER.STATUS"
)

// UserUseCase consulta de usuarios, asignación de rol y estado. Todo cambio que altera los
// permisos efectivos descarta la sesión cacheada del usuario.
type UserUseCase struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	audit    repository.AuditLogRepository
	sessions ports.SessionCache
	log      *logger.Logger
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(users repository.UserRepository, roles repository.RoleRepository, audit repository.AuditLogRepository, sessions ports.SessionCache, log *logger.Logger) *UserUseCase {
	return &UserUseCase{users: users, roles: roles, audit: audit, sessions: sessions, log: log}
}

// GetByID obtiene un usuario de la empresa.
func (uc *UserUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	out := auth.ToUserResponse(user)
	return &out, nil
}

// List usuarios de la empresa.
func (uc *UserUseCase) List(ctx context.Context, companyID string) ([]dto.UserResponse, error) {
	list, err := uc.users.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, auth.ToUserResponse(u))
	}
	return out, nil
}

// AssignRole cambia el rol de un usuario.
func (uc *UserUseCase) AssignRole(ctx context.Context, companyID, actorID, id string, in dto.AssignRoleRequest) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	role, err := uc.roles.GetByID(ctx, in.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil || role.CompanyID != companyID {
		return nil, domain.NewValidationError("role_id", "rol inexistente")
	}
	user.RoleID = role.ID
	return uc.save(ctx, actorID, user, AuditUserRoleAssign, user.ID+" -> "+role.ID)
}

// SetStatus activa o suspende a un usuario. Un usuario no puede cambiar su propio estado.
func (uc *UserUseCase) SetStatus(ctx context.Context, companyID, actorID, id, status string) (*dto.UserResponse, error) {
	switch status {
	case entity.UserActive, entity.UserInactive, entity.UserSuspended:
	default:
		return nil, domain.NewValidationError("status", "estado inválido")
	}
	if id == actorID {
		return nil, domain.NewValidationError("id", "no puede cambiar su propio estado")
	}
	user, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	user.Status = status
	return uc.save(ctx, actorID, user, AuditUserStatus, user.ID+" -> "+status)
}

func (uc *UserUseCase) save(ctx context.Context, actorID string, user *entity.User, action, detail string) (*dto.UserResponse, error) {
	user.UpdatedAt = time.Now().UTC()
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.sessions.Delete(ctx, user.ID); err != nil {
		return nil, err
	}
	auth.Record(ctx, uc.audit, uc.log, user.CompanyID, actorID, action, detail, true)
	uc.log.Info().Str("user_id", user.ID).Str("action", action).Msg("usuario actualizado")
	out := auth.ToUserResponse(user)
	return &out, nil
}

func (uc *UserUseCase) load(ctx context.Context, companyID, id string) (*entity.User, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.CompanyID != companyID {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
