package admin_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/admin"
	"github.com/jhoicas/stock-api/internal/application/auth"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/application/usecase"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/authz"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-api/pkg/logger"
)

const password = "secreto-123"

type resetFixture struct {
	store   *memory.Store
	locker  *memory.Locker
	reset   *admin.ResetUseCase
	recon   *inventory.ReconciliationUseCase
	session *authz.Session
	company string
	batchID string
	storeID string
	shopID  string
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// newResetFixture empresa con compra de 50 en bodega, traslado de 10 a tienda y venta de 3.
func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	log := logger.Nop()

	b, err := usecase.NewCompanyUseCase(store, repos, log).Create(ctx, dto.CreateCompanyRequest{
		Name: "Acme", AdminEmail: "admin@acme.test", AdminPassword: password,
	})
	require.NoError(t, err)
	companyID := b.Company.ID

	locations := usecase.NewLocationUseCase(repos.Locations)
	st, err := locations.Create(ctx, companyID, dto.CreateLocationRequest{Type: entity.LocationStore, Name: "Bodega"})
	require.NoError(t, err)
	sh, err := locations.Create(ctx, companyID, dto.CreateLocationRequest{Type: entity.LocationShop, Name: "Tienda"})
	require.NoError(t, err)
	p, err := usecase.NewProductUseCase(repos.Products, repos.Units).Create(ctx, companyID, dto.CreateProductRequest{SKU: "P-1", Name: "Producto"})
	require.NoError(t, err)

	engine := inventory.NewStockEngine()
	purchase, err := inventory.NewPurchaseUseCase(store, repos, engine, log).Create(ctx, companyID, b.Admin.ID, dto.CreatePurchaseRequest{
		StoreID: st.ID,
		Items:   []dto.PurchaseItemRequest{{ProductID: p.ID, BatchNumber: "L1", Price: dec(2), Quantity: dec(50)}},
	})
	require.NoError(t, err)
	batchID := purchase.Items[0].BatchID

	_, err = inventory.NewTransferUseCase(store, repos, engine, log).Create(ctx, companyID, b.Admin.ID, dto.CreateTransferRequest{
		FromLocationType: entity.LocationStore, FromLocationID: st.ID,
		ToLocationType: entity.LocationShop, ToLocationID: sh.ID,
		Items: []dto.TransferItemRequest{{BatchID: batchID, Quantity: dec(10)}},
	})
	require.NoError(t, err)
	_, err = inventory.NewSellUseCase(store, repos, engine, log).Create(ctx, companyID, b.Admin.ID, dto.CreateSellRequest{
		InvoiceNo: "F-1", LocationType: entity.LocationShop, LocationID: sh.ID,
		Items: []dto.SellItemRequest{{ProductID: p.ID, UnitPrice: dec(5),
			Batches: []dto.SellItemBatchDTO{{BatchID: batchID, Quantity: dec(3)}}}},
	})
	require.NoError(t, err)

	sessions := memory.NewSessionCache()
	authUC := auth.NewAuthUseCase(repos.Users, repos.Roles, sessions, auth.JWTConfig{Secret: "s", ExpMinutes: 10}, log)
	session, err := authUC.LoadSession(ctx, b.Admin.ID, companyID)
	require.NoError(t, err)
	locker := memory.NewLocker()

	return &resetFixture{
		store:   store,
		locker:  locker,
		reset:   admin.NewResetUseCase(store, repos, authUC, locker, 30*time.Second, log),
		recon:   inventory.NewReconciliationUseCase(repos, log),
		session: session,
		company: companyID,
		batchID: batchID,
		storeID: st.ID,
		shopID:  sh.ID,
	}
}

func (f *resetFixture) stockAt(t *testing.T, locType, locID string) decimal.Decimal {
	t.Helper()
	s, err := f.store.Repos().Stock.Get(context.Background(), f.batchID, entity.LocationRef{Type: locType, ID: locID})
	require.NoError(t, err)
	require.NotNil(t, s)
	return s.Quantity
}

func (f *resetFixture) audit(t *testing.T) []*entity.AuditLog {
	t.Helper()
	list, _, err := f.store.Repos().Audit.ListByCompany(context.Background(), f.company, repository.Page{Limit: 50})
	require.NoError(t, err)
	return list
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre de año
// ──────────────────────────────────────────────────────────────────────────────

func TestYearEndReset_ConservaStockConSaldoInicial(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	out, err := f.reset.YearEndReset(ctx, f.session, dto.ResetRequest{Password: password, Confirmation: admin.PhraseYearEnd})
	require.NoError(t, err)
	assert.Equal(t, admin.KindYearEnd, out.Kind)
	assert.Equal(t, 2, out.OpeningBalances)

	assert.True(t, dec(40).Equal(f.stockAt(t, entity.LocationStore, f.storeID)))
	assert.True(t, dec(7).Equal(f.stockAt(t, entity.LocationShop, f.shopID)))

	entries, err := f.store.Repos().Ledger.ListAll(ctx, repository.LedgerFilter{CompanyID: f.company})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, entity.SourceOpeningBalance, e.SourceType)
		assert.Equal(t, entity.MovementADJUSTMENT, e.MovementType)
	}

	sells, total, err := f.store.Repos().Sells.List(ctx, repository.DocumentFilter{CompanyID: f.company}, repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, sells)

	rep, err := f.recon.Check(ctx, f.company, "")
	require.NoError(t, err)
	assert.True(t, rep.Consistent, "%+v", rep.Discrepancies)

	logs := f.audit(t)
	require.NotEmpty(t, logs)
	assert.Equal(t, admin.AuditYearEndReset, logs[0].Action)
	assert.True(t, logs[0].Accepted)
}

func TestPreview_NoModificaDatos(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	out, err := f.reset.Preview(ctx, f.company, admin.KindYearEnd)
	require.NoError(t, err)
	assert.Equal(t, 2, out.OpeningBalances)

	entries, err := f.store.Repos().Ledger.ListAll(ctx, repository.LedgerFilter{CompanyID: f.company})
	require.NoError(t, err)
	assert.Len(t, entries, 4, "compra, traslado (salida y entrada) y venta")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reinicio de fábrica
// ──────────────────────────────────────────────────────────────────────────────

func TestFactoryReset_BorraMaestrosYConservaUsuarios(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()
	repos := f.store.Repos()

	_, err := f.reset.FactoryReset(ctx, f.session, dto.ResetRequest{Password: password, Confirmation: admin.PhraseFactory})
	require.NoError(t, err)

	products, total, err := repos.Products.List(ctx, f.company, "", repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, products)
	_, total, err = repos.Locations.List(ctx, f.company, "", repository.Page{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	b, err := repos.Batches.GetByID(ctx, f.batchID)
	require.NoError(t, err)
	assert.Nil(t, b)

	users, err := repos.Users.ListByCompany(ctx, f.company)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rechazos
// ──────────────────────────────────────────────────────────────────────────────

func TestReset_Rechazos(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	noPerm := authz.NewSession(f.session.UserID, f.company, f.session.RoleID, []string{entity.PermLedgerView})
	_, err := f.reset.FactoryReset(ctx, noPerm, dto.ResetRequest{Password: password, Confirmation: admin.PhraseFactory})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.reset.FactoryReset(ctx, f.session, dto.ResetRequest{Password: "mal", Confirmation: admin.PhraseFactory})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.reset.FactoryReset(ctx, f.session, dto.ResetRequest{Password: password, Confirmation: admin.PhraseYearEnd})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.True(t, dec(40).Equal(f.stockAt(t, entity.LocationStore, f.storeID)), "ningún rechazo toca datos")

	logs := f.audit(t)
	require.Len(t, logs, 3)
	for _, l := range logs {
		assert.False(t, l.Accepted)
		assert.Equal(t, admin.AuditFactoryReset, l.Action)
	}
}

func TestReset_EnCursoDevuelveLocked(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	release, err := f.locker.Obtain(ctx, "company-reset:"+f.company, time.Minute)
	require.NoError(t, err)
	defer release()

	_, err = f.reset.Execute(ctx, f.company, f.session.UserID, admin.KindYearEnd)
	assert.ErrorIs(t, err, domain.ErrLocked)
}
