package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/auth"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/usecase"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-api/pkg/logger"
)

func bootstrap(t *testing.T, store *memory.Store) *dto.CompanyBootstrapResponse {
	t.Helper()
	uc := usecase.NewCompanyUseCase(store, store.Repos(), logger.Nop())
	out, err := uc.Create(context.Background(), dto.CreateCompanyRequest{
		Name: "Acme", AdminEmail: "Admin@Acme.test", AdminPassword: "secreto-123",
	})
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Company bootstrap
// ──────────────────────────────────────────────────────────────────────────────

func TestCompany_Create_ConRolYAdmin(t *testing.T) {
	store := memory.NewStore()
	out := bootstrap(t, store)

	assert.Equal(t, "Acme", out.Company.Name)
	assert.Equal(t, usecase.AdminRoleName, out.Role.Name)
	assert.ElementsMatch(t, entity.AllPermissions, out.Role.Permissions)
	assert.Equal(t, "admin@acme.test", out.Admin.Email)
	assert.Equal(t, out.Role.ID, out.Admin.RoleID)

	sessions := memory.NewSessionCache()
	repos := store.Repos()
	a := auth.NewAuthUseCase(repos.Users, repos.Roles, sessions,
		auth.JWTConfig{Secret: "s", ExpMinutes: 10}, logger.Nop())
	login, err := a.Login(context.Background(), dto.LoginRequest{Email: "admin@acme.test", Password: "secreto-123"})
	require.NoError(t, err)
	assert.Contains(t, login.Permissions, entity.PermSystemReset)
}

func TestCompany_Create_EmailRepetidoNoDejaRastro(t *testing.T) {
	store := memory.NewStore()
	first := bootstrap(t, store)

	uc := usecase.NewCompanyUseCase(store, store.Repos(), logger.Nop())
	_, err := uc.Create(context.Background(), dto.CreateCompanyRequest{
		Name: "Otra", AdminEmail: "admin@acme.test", AdminPassword: "secreto-123",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	roles, err := store.Repos().Roles.ListByCompany(context.Background(), first.Company.ID)
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestUser_AssignRole_InvalidaSesion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	b := bootstrap(t, store)
	repos := store.Repos()
	sessions := memory.NewSessionCache()
	log := logger.Nop()

	a := auth.NewAuthUseCase(repos.Users, repos.Roles, sessions, auth.JWTConfig{Secret: "s", ExpMinutes: 10}, log)
	roles := auth.NewRoleUseCase(repos.Roles, repos.Users, repos.Audit, sessions, log)
	users := usecase.NewUserUseCase(repos.Users, repos.Roles, repos.Audit, sessions, log)

	viewer, err := roles.Create(ctx, b.Company.ID, b.Admin.ID, dto.RoleRequest{
		Name: "Consulta", Permissions: []string{entity.PermStockCorrectionView},
	})
	require.NoError(t, err)
	clerk, err := a.RegisterUser(ctx, b.Company.ID, dto.RegisterRequest{
		Email: "clerk@acme.test", Password: "secreto-123", RoleID: viewer.ID,
	})
	require.NoError(t, err)

	s, err := a.LoadSession(ctx, clerk.ID, b.Company.ID)
	require.NoError(t, err)
	assert.False(t, s.HasPermission(entity.PermStockCorrectionApprove))

	_, err = users.AssignRole(ctx, b.Company.ID, b.Admin.ID, clerk.ID, dto.AssignRoleRequest{RoleID: b.Role.ID})
	require.NoError(t, err)

	s, err = a.LoadSession(ctx, clerk.ID, b.Company.ID)
	require.NoError(t, err)
	assert.True(t, s.HasPermission(entity.PermStockCorrectionApprove))

	entries, total, err := repos.Audit.ListByCompany(ctx, b.Company.ID, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total, "creación de rol y asignación")
	assert.NotEmpty(t, entries)
}

func TestUser_SetStatus_SuspendidoPierdeSesion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	b := bootstrap(t, store)
	repos := store.Repos()
	sessions := memory.NewSessionCache()
	log := logger.Nop()

	a := auth.NewAuthUseCase(repos.Users, repos.Roles, sessions, auth.JWTConfig{Secret: "s", ExpMinutes: 10}, log)
	users := usecase.NewUserUseCase(repos.Users, repos.Roles, repos.Audit, sessions, log)
	clerk, err := a.RegisterUser(ctx, b.Company.ID, dto.RegisterRequest{
		Email: "clerk@acme.test", Password: "secreto-123", RoleID: b.Role.ID,
	})
	require.NoError(t, err)
	_, err = a.LoadSession(ctx, clerk.ID, b.Company.ID)
	require.NoError(t, err)

	_, err = users.SetStatus(ctx, b.Company.ID, b.Admin.ID, clerk.ID, entity.UserSuspended)
	require.NoError(t, err)
	_, err = a.LoadSession(ctx, clerk.ID, b.Company.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = users.SetStatus(ctx, b.Company.ID, b.Admin.ID, b.Admin.ID, entity.UserInactive)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestProduct_SKUUnicoPorEmpresa(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	uc := usecase.NewProductUseCase(repos.Products, repos.Units)

	p, err := uc.Create(ctx, "c1", dto.CreateProductRequest{SKU: "amx-500", Name: "Amoxicilina", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, "AMX-500", p.SKU)
	assert.Equal(t, "unidad", p.UnitMeasure)

	_, err = uc.Create(ctx, "c1", dto.CreateProductRequest{SKU: "AMX-500", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.Create(ctx, "c2", dto.CreateProductRequest{SKU: "AMX-500", Name: "Otra empresa"})
	assert.NoError(t, err)

	_, err = uc.GetByID(ctx, "c2", p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	neg := decimal.NewFromInt(-1)
	_, err = uc.Update(ctx, "c1", p.ID, dto.UpdateProductRequest{Price: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := uc.List(ctx, "c1", "amox", dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.TotalCount)
}

func TestProduct_UnidadFactorPositivo(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	uc := usecase.NewProductUseCase(repos.Products, repos.Units)

	_, err := uc.CreateUnit(ctx, "c1", dto.CreateUnitRequest{Name: "Caja", Factor: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	u, err := uc.CreateUnit(ctx, "c1", dto.CreateUnitRequest{Name: "Caja x12", Factor: decimal.NewFromInt(12)})
	require.NoError(t, err)
	units, err := uc.ListUnits(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, u.ID, units[0].ID)
}

func TestProduct_DeleteUnit_EnUsoPorCorreccion(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	uc := usecase.NewProductUseCase(repos.Products, repos.Units)

	box, err := uc.CreateUnit(ctx, "c1", dto.CreateUnitRequest{Name: "Caja x12", Factor: decimal.NewFromInt(12)})
	require.NoError(t, err)
	loose, err := uc.CreateUnit(ctx, "c1", dto.CreateUnitRequest{Name: "Unidad", Factor: decimal.NewFromInt(1)})
	require.NoError(t, err)
	require.NoError(t, repos.Corrections.Create(ctx, &entity.StockCorrection{
		ID: "sc-1", CompanyID: "c1", Reference: "SC-1", Reason: entity.ReasonDamaged,
		Status: entity.CorrectionPending, StoreID: "store-1",
		Items: []entity.StockCorrectionItem{
			{ID: "it-1", CorrectionID: "sc-1", ProductID: "p1", BatchID: "b1", UnitOfMeasureID: box.ID, Quantity: decimal.NewFromInt(-1)},
		},
	}))

	err = uc.DeleteUnit(ctx, "c1", box.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))

	assert.ErrorIs(t, uc.DeleteUnit(ctx, "c2", loose.ID), domain.ErrNotFound)
	require.NoError(t, uc.DeleteUnit(ctx, "c1", loose.ID))
	units, err := uc.ListUnits(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, box.ID, units[0].ID)
}

func TestLocation_CRUD(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	uc := usecase.NewLocationUseCase(repos.Locations)

	_, err := uc.Create(ctx, "c1", dto.CreateLocationRequest{Type: "OFFICE", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	store, err := uc.Create(ctx, "c1", dto.CreateLocationRequest{Type: entity.LocationStore, Name: "Bodega"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "c1", dto.CreateLocationRequest{Type: entity.LocationShop, Name: "Tienda"})
	require.NoError(t, err)

	name := "Bodega Central"
	upd, err := uc.Update(ctx, "c1", store.ID, dto.UpdateLocationRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Bodega Central", upd.Name)
	assert.Equal(t, entity.LocationStore, upd.Type)

	shops, err := uc.List(ctx, "c1", entity.LocationShop, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, shops.TotalCount)

	require.NoError(t, uc.Delete(ctx, "c1", store.ID))
	_, err = uc.GetByID(ctx, "c1", store.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
