package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/auth"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-api/pkg/jwt"
	"github.com/jhoicas/stock-api/pkg/logger"
)

type authFixture struct {
	auth     *auth.AuthUseCase
	roles    *auth.RoleUseCase
	store    *memory.Store
	sessions *memory.SessionCache
	roleID   string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	sessions := memory.NewSessionCache()
	now := time.Now().UTC()

	require.NoError(t, repos.Companies.Create(ctx, &entity.Company{ID: "c1", Name: "Acme", Status: "active", CreatedAt: now, UpdatedAt: now}))
	role := &entity.Role{ID: "r-view", CompanyID: "c1", Name: "Consulta",
		Permissions: []string{entity.PermStockCorrectionView}, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Roles.Create(ctx, role))

	cfg := auth.JWTConfig{Secret: "secret", ExpMinutes: 60, Issuer: "stock-api"}
	return &authFixture{
		auth:     auth.NewAuthUseCase(repos.Users, repos.Roles, sessions, cfg, logger.Nop()),
		roles:    auth.NewRoleUseCase(repos.Roles, repos.Users, repos.Audit, sessions, logger.Nop()),
		store:    store,
		sessions: sessions,
		roleID:   role.ID,
	}
}

func (f *authFixture) register(t *testing.T, email string) *dto.UserResponse {
	t.Helper()
	u, err := f.auth.RegisterUser(context.Background(), "c1", dto.RegisterRequest{
		Email: email, Password: "secreto-123", RoleID: f.roleID,
	})
	require.NoError(t, err)
	return u
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro y login
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_EmailDuplicado(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ana@acme.test")

	_, err := f.auth.RegisterUser(context.Background(), "c1", dto.RegisterRequest{
		Email: "ANA@acme.test", Password: "otro-pass", RoleID: f.roleID,
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_RolDeOtraEmpresa(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.auth.RegisterUser(context.Background(), "c2", dto.RegisterRequest{
		Email: "x@acme.test", Password: "secreto-123", RoleID: f.roleID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_DevuelveTokenYPermisos(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "ana@acme.test")

	out, err := f.auth.Login(context.Background(), dto.LoginRequest{Email: "ana@acme.test", Password: "secreto-123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, out.User.ID)
	assert.Equal(t, []string{entity.PermStockCorrectionView}, out.Permissions)

	claims, err := jwt.Parse("secret", out.Token)
	require.NoError(t, err)
	assert.Equal(t, f.roleID, claims.RoleID)

	cached, err := f.sessions.Get(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, cached, "el login deja la sesión en caché")
	assert.True(t, cached.HasPermission(entity.PermStockCorrectionView))
}

func TestLogin_Rechazos(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ana@acme.test")
	ctx := context.Background()

	_, err := f.auth.Login(ctx, dto.LoginRequest{Email: "ana@acme.test", Password: "mal"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.auth.Login(ctx, dto.LoginRequest{Email: "nadie@acme.test", Password: "secreto-123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	repos := f.store.Repos()
	u, err := repos.Users.GetByEmail(ctx, "ana@acme.test")
	require.NoError(t, err)
	u.Status = entity.UserSuspended
	require.NoError(t, repos.Users.Update(ctx, u))
	_, err = f.auth.Login(ctx, dto.LoginRequest{Email: "ana@acme.test", Password: "secreto-123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogout_RevocaToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ana@acme.test")
	ctx := context.Background()

	out, err := f.auth.Login(ctx, dto.LoginRequest{Email: "ana@acme.test", Password: "secreto-123"})
	require.NoError(t, err)
	claims, err := jwt.Parse("secret", out.Token)
	require.NoError(t, err)

	revoked, err := f.auth.IsRevoked(ctx, claims)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, f.auth.Logout(ctx, claims))
	revoked, err = f.auth.IsRevoked(ctx, claims)
	require.NoError(t, err)
	assert.True(t, revoked)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión de permisos e invalidación
// ──────────────────────────────────────────────────────────────────────────────

func TestLoadSession_CambioDePermisosDelRolInvalidaCache(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "ana@acme.test")
	ctx := context.Background()

	s, err := f.auth.LoadSession(ctx, u.ID, "c1")
	require.NoError(t, err)
	assert.False(t, s.HasPermission(entity.PermStockCorrectionApprove))

	_, err = f.roles.Update(ctx, "c1", "admin", f.roleID, dto.RoleRequest{
		Name:        "Consulta",
		Permissions: []string{entity.PermStockCorrectionView, entity.PermStockCorrectionApprove},
	})
	require.NoError(t, err)

	s, err = f.auth.LoadSession(ctx, u.ID, "c1")
	require.NoError(t, err)
	assert.True(t, s.HasPermission(entity.PermStockCorrectionApprove))
}

func TestLoadSession_OtraEmpresa(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "ana@acme.test")

	_, err := f.auth.LoadSession(context.Background(), u.ID, "c2")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRole_PermisoDesconocidoYBorradoConUsuarios(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "ana@acme.test")
	ctx := context.Background()

	_, err := f.roles.Create(ctx, "c1", "admin", dto.RoleRequest{Name: "X", Permissions: []string{"NADA.PODER"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, f.roles.Delete(ctx, "c1", "admin", f.roleID), domain.ErrConflict)

	audit, total, err := f.store.Repos().Audit.ListByCompany(ctx, "c1", repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, audit)
}
