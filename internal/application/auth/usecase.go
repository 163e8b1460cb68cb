package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/authz"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/pkg/jwt"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// TTL duración de un token y de la sesión cacheada.
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpMinutes) * time.Minute
}

// AuthUseCase registro, login, logout y resolución de la sesión de permisos.
type AuthUseCase struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	sessions ports.SessionCache
	jwtCfg   JWTConfig
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, roleRepo repository.RoleRepository, sessions ports.SessionCache, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, roleRepo: roleRepo, sessions: sessions, jwtCfg: jwtCfg, log: log}
}

// RegisterUser crea un usuario en la empresa con el rol indicado. El email es único global
// porque el login no pide empresa.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, companyID string, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	role, err := uc.roleRepo.GetByID(ctx, in.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil || role.CompanyID != companyID {
		return nil, domain.NewValidationError("role_id", "rol inexistente")
	}
	user, err := NewUser(companyID, email, in.Password, in.Name, role.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("company_id", companyID).Str("role_id", role.ID).Msg("usuario registrado")
	out := ToUserResponse(user)
	return &out, nil
}

// Login verifica email/password, genera el JWT y deja la sesión de permisos en caché.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserActive {
		return nil, domain.ErrForbidden
	}
	session, err := uc.buildSession(ctx, user)
	if err != nil {
		return nil, err
	}
	token, claims, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.CompanyID, user.RoleID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Set(ctx, session, uc.jwtCfg.TTL()); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("no se pudo cachear la sesión")
	}
	uc.log.Info().Str("user_id", user.ID).Str("company_id", user.CompanyID).Msg("login")
	return &dto.LoginResponse{
		Token:       token,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        ToUserResponse(user),
		Permissions: session.Permissions,
	}, nil
}

// Logout revoca el token (jti) hasta su expiración y descarta la sesión cacheada.
func (uc *AuthUseCase) Logout(ctx context.Context, claims *jwt.Claims) error {
	if err := uc.sessions.Revoke(ctx, claims.TokenID(), claims.Remaining(time.Now())); err != nil {
		return err
	}
	if err := uc.sessions.Delete(ctx, claims.UserID); err != nil {
		return err
	}
	uc.log.Info().Str("user_id", claims.UserID).Msg("logout")
	return nil
}

// IsRevoked indica si el token fue cerrado con Logout.
func (uc *AuthUseCase) IsRevoked(ctx context.Context, claims *jwt.Claims) (bool, error) {
	return uc.sessions.IsRevoked(ctx, claims.TokenID())
}

// LoadSession devuelve la sesión de permisos del usuario: desde caché, o resolviendo usuario
// y rol si no está. Un usuario inactivo o de otra empresa no obtiene sesión.
func (uc *AuthUseCase) LoadSession(ctx context.Context, userID, companyID string) (*authz.Session, error) {
	cached, err := uc.sessions.Get(ctx, userID)
	if err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("caché de sesiones no disponible")
	}
	if cached != nil && cached.CompanyID == companyID {
		return cached, nil
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.CompanyID != companyID {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserActive {
		return nil, domain.ErrForbidden
	}
	session, err := uc.buildSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Set(ctx, session, uc.jwtCfg.TTL()); err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("no se pudo cachear la sesión")
	}
	return session, nil
}

// Me usuario autenticado con sus permisos efectivos.
func (uc *AuthUseCase) Me(ctx context.Context, s *authz.Session) (*dto.MeResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return &dto.MeResponse{User: ToUserResponse(user), Permissions: s.Permissions}, nil
}

// VerifyPassword reautentica al usuario (operaciones destructivas).
func (uc *AuthUseCase) VerifyPassword(ctx context.Context, userID, password string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.ErrUnauthorized
		}
		return err
	}
	return nil
}

func (uc *AuthUseCase) buildSession(ctx context.Context, user *entity.User) (*authz.Session, error) {
	var perms []string
	if user.RoleID != "" {
		role, err := uc.roleRepo.GetByID(ctx, user.RoleID)
		if err != nil {
			return nil, err
		}
		if role != nil && role.CompanyID == user.CompanyID {
			perms = role.Permissions
		}
	}
	return authz.NewSession(user.ID, user.CompanyID, user.RoleID, perms), nil
}

// NewUser hashea el password con bcrypt y arma un usuario activo.
func NewUser(companyID, email, password, name, roleID string) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if name == "" {
		name = email
	}
	return &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Name:         name,
		RoleID:       roleID,
		Status:       entity.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ToUserResponse mapea un usuario sin su hash.
func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		RoleID:    u.RoleID,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
