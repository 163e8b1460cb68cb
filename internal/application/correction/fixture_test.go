package correction_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/correction"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-api/pkg/logger"
)

const (
	companyID = "company-1"
	userID    = "user-1"
	storeID   = "store-1"
	shopID    = "shop-1"
	productID = "product-1"
	unitID    = "unit-1"
	boxUnitID = "unit-box"
)

// fakePDF captura el comprobante recibido.
type fakePDF struct {
	last ports.CorrectionVoucher
}

func (f *fakePDF) RenderCorrection(_ context.Context, v ports.CorrectionVoucher) ([]byte, error) {
	f.last = v
	return []byte("%PDF-fake"), nil
}

type fixture struct {
	store     *memory.Store
	locker    *memory.Locker
	pdf       *fakePDF
	stock     *correction.StockCorrectionUseCase
	sells     *correction.SellCorrectionUseCase
	sellUC    *inventory.SellUseCase
	purchases *inventory.PurchaseUseCase
	transfers *inventory.TransferUseCase
	recon     *inventory.ReconciliationUseCase
	batchID   string
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// newFixture arma empresa, bodega, tienda, producto, unidades (1 y caja x12) y un lote con
// 100 unidades en la bodega.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	now := time.Now().UTC()
	log := logger.Nop()

	require.NoError(t, repos.Companies.Create(ctx, &entity.Company{ID: companyID, Name: "Droguería Central", Status: "active", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Locations.Create(ctx, &entity.Location{ID: storeID, CompanyID: companyID, Type: entity.LocationStore, Name: "Bodega", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Locations.Create(ctx, &entity.Location{ID: shopID, CompanyID: companyID, Type: entity.LocationShop, Name: "Tienda Norte", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: productID, CompanyID: companyID, SKU: "AMX-500", Name: "Amoxicilina 500mg", Price: dec(10), UnitMeasure: "unidad", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Units.Create(ctx, &entity.UnitOfMeasure{ID: unitID, CompanyID: companyID, Name: "Unidad", Factor: dec(1), CreatedAt: now}))
	require.NoError(t, repos.Units.Create(ctx, &entity.UnitOfMeasure{ID: boxUnitID, CompanyID: companyID, Name: "Caja x12", Factor: dec(12), CreatedAt: now}))

	engine := inventory.NewStockEngine()
	locker := memory.NewLocker()
	pdf := &fakePDF{}
	purchases := inventory.NewPurchaseUseCase(store, repos, engine, log)
	p, err := purchases.Create(ctx, companyID, userID, dto.CreatePurchaseRequest{
		StoreID: storeID,
		Items: []dto.PurchaseItemRequest{
			{ProductID: productID, BatchNumber: "lt-001", Price: dec(4), Quantity: dec(100)},
		},
	})
	require.NoError(t, err)

	return &fixture{
		store:     store,
		locker:    locker,
		pdf:       pdf,
		stock:     correction.NewStockCorrectionUseCase(store, repos, engine, locker, 30*time.Second, pdf, log),
		sells:     correction.NewSellCorrectionUseCase(store, repos, engine, locker, 30*time.Second, log),
		sellUC:    inventory.NewSellUseCase(store, repos, engine, log),
		purchases: purchases,
		transfers: inventory.NewTransferUseCase(store, repos, engine, log),
		recon:     inventory.NewReconciliationUseCase(repos, log),
		batchID:   p.Items[0].BatchID,
	}
}

func (f *fixture) stockAt(t *testing.T, locType, locID string) decimal.Decimal {
	t.Helper()
	return f.stockOf(t, f.batchID, locType, locID)
}

func (f *fixture) stockOf(t *testing.T, batchID, locType, locID string) decimal.Decimal {
	t.Helper()
	s, err := f.store.Repos().Stock.Get(context.Background(), batchID, entity.LocationRef{Type: locType, ID: locID})
	require.NoError(t, err)
	return s.Quantity
}

// secondBatch recibe en la bodega un segundo lote del producto con la cantidad dada.
func (f *fixture) secondBatch(t *testing.T, qty int64) string {
	t.Helper()
	p, err := f.purchases.Create(context.Background(), companyID, userID, dto.CreatePurchaseRequest{
		StoreID: storeID,
		Items: []dto.PurchaseItemRequest{
			{ProductID: productID, BatchNumber: "lt-002", Price: dec(5), Quantity: dec(qty)},
		},
	})
	require.NoError(t, err)
	return p.Items[0].BatchID
}

func (f *fixture) ledger(t *testing.T, sourceType string) []*entity.StockLedgerEntry {
	t.Helper()
	return f.ledgerFor(t, sourceType, "")
}

func (f *fixture) ledgerFor(t *testing.T, sourceType, sourceID string) []*entity.StockLedgerEntry {
	t.Helper()
	all, err := f.store.Repos().Ledger.ListAll(context.Background(), repository.LedgerFilter{CompanyID: companyID, SourceType: sourceType})
	require.NoError(t, err)
	if sourceID == "" {
		return all
	}
	out := all[:0]
	for _, e := range all {
		if e.SourceID == sourceID {
			out = append(out, e)
		}
	}
	return out
}

func (f *fixture) requireConsistent(t *testing.T) {
	t.Helper()
	rep, err := f.recon.Check(context.Background(), companyID, "")
	require.NoError(t, err)
	require.True(t, rep.Consistent, "ledger y stock deben coincidir: %+v", rep.Discrepancies)
}
