package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/domain"
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
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type env struct {
	store     *memory.Store
	purchases *inventory.PurchaseUseCase
	transfers *inventory.TransferUseCase
	sells     *inventory.SellUseCase
	recon     *inventory.ReconciliationUseCase
}

// newEnv arma empresa, bodega, tienda y un producto sin stock.
func newEnv(t *testing.T) *env {
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

	engine := inventory.NewStockEngine()
	return &env{
		store:     store,
		purchases: inventory.NewPurchaseUseCase(store, repos, engine, log),
		transfers: inventory.NewTransferUseCase(store, repos, engine, log),
		sells:     inventory.NewSellUseCase(store, repos, engine, log),
		recon:     inventory.NewReconciliationUseCase(repos, log),
	}
}

// receive compra qty unidades del lote indicado en la bodega y devuelve el id del lote.
func (e *env) receive(t *testing.T, batchNumber string, qty int64) string {
	t.Helper()
	p, err := e.purchases.Create(context.Background(), companyID, userID, dto.CreatePurchaseRequest{
		StoreID: storeID,
		Items:   []dto.PurchaseItemRequest{{ProductID: productID, BatchNumber: batchNumber, Price: dec(4), Quantity: dec(qty)}},
	})
	require.NoError(t, err)
	return p.Items[0].BatchID
}

func (e *env) stock(t *testing.T, batchID, locType, locID string) decimal.Decimal {
	t.Helper()
	s, err := e.store.Repos().Stock.Get(context.Background(), batchID, entity.LocationRef{Type: locType, ID: locID})
	require.NoError(t, err)
	if s == nil {
		return decimal.Zero
	}
	return s.Quantity
}

func (e *env) ledger(t *testing.T, sourceType string) []*entity.StockLedgerEntry {
	t.Helper()
	all, err := e.store.Repos().Ledger.ListAll(context.Background(), repository.LedgerFilter{CompanyID: companyID, SourceType: sourceType})
	require.NoError(t, err)
	return all
}

func (e *env) requireConsistent(t *testing.T) {
	t.Helper()
	rep, err := e.recon.Check(context.Background(), companyID, "")
	require.NoError(t, err)
	require.True(t, rep.Consistent, "ledger y stock deben coincidir: %+v", rep.Discrepancies)
}

func storeToShop(items ...dto.TransferItemRequest) dto.CreateTransferRequest {
	return dto.CreateTransferRequest{
		FromLocationType: entity.LocationStore, FromLocationID: storeID,
		ToLocationType: entity.LocationShop, ToLocationID: shopID,
		Items: items,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras
// ──────────────────────────────────────────────────────────────────────────────

func TestPurchase_Create_RecibeLotesEnBodega(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.purchases.Create(ctx, companyID, userID, dto.CreatePurchaseRequest{
		StoreID: storeID,
		Items: []dto.PurchaseItemRequest{
			{ProductID: productID, BatchNumber: "lt-001", Price: dec(4), Quantity: dec(30)},
			{ProductID: productID, BatchNumber: "lt-002", Price: dec(5), Quantity: dec(20)},
		},
	})
	require.NoError(t, err)
	require.Len(t, p.Items, 2)
	assert.NotEqual(t, p.Items[0].BatchID, p.Items[1].BatchID)

	assert.True(t, e.stock(t, p.Items[0].BatchID, entity.LocationStore, storeID).Equal(dec(30)))
	assert.True(t, e.stock(t, p.Items[1].BatchID, entity.LocationStore, storeID).Equal(dec(20)))
	assert.Len(t, e.ledger(t, entity.SourcePurchase), 2)
	e.requireConsistent(t)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_Create_MueveEntreUbicaciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	batch := e.receive(t, "lt-001", 10)

	tr, err := e.transfers.Create(ctx, companyID, userID, storeToShop(dto.TransferItemRequest{BatchID: batch, Quantity: dec(4)}))
	require.NoError(t, err)
	assert.NotEmpty(t, tr.Reference)

	assert.True(t, e.stock(t, batch, entity.LocationStore, storeID).Equal(dec(6)))
	assert.True(t, e.stock(t, batch, entity.LocationShop, shopID).Equal(dec(4)))
	assert.Len(t, e.ledger(t, entity.SourceTransfer), 2)
	e.requireConsistent(t)
}

func TestTransfer_Create_SobregiroEsAtomico(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first := e.receive(t, "lt-001", 10)
	second := e.receive(t, "lt-002", 3)

	// El primer ítem cabe; el segundo deja el lote en negativo y tumba todo el traslado.
	_, err := e.transfers.Create(ctx, companyID, userID, storeToShop(
		dto.TransferItemRequest{BatchID: first, Quantity: dec(6)},
		dto.TransferItemRequest{BatchID: second, Quantity: dec(5)},
	))
	var se *domain.StockError
	require.True(t, errors.As(err, &se), "se esperaba *domain.StockError, llegó %v", err)
	assert.Equal(t, second, se.BatchID)
	assert.Equal(t, entity.LocationStore, se.LocationType)
	assert.True(t, se.Available.Equal(dec(3)))
	assert.True(t, se.Requested.Equal(dec(5)))
	assert.Equal(t, domain.CodeInsufficientStock, domain.CodeOf(err))

	assert.True(t, e.stock(t, first, entity.LocationStore, storeID).Equal(dec(10)))
	assert.True(t, e.stock(t, first, entity.LocationShop, shopID).IsZero())
	assert.True(t, e.stock(t, second, entity.LocationStore, storeID).Equal(dec(3)))
	assert.Empty(t, e.ledger(t, entity.SourceTransfer))
	list, err := e.transfers.List(ctx, companyID, dto.DocumentQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, list.TotalCount)
	e.requireConsistent(t)
}

func TestTransfer_Create_MismoOrigenYDestino(t *testing.T) {
	e := newEnv(t)
	batch := e.receive(t, "lt-001", 10)

	req := storeToShop(dto.TransferItemRequest{BatchID: batch, Quantity: dec(1)})
	req.ToLocationType, req.ToLocationID = entity.LocationStore, storeID
	_, err := e.transfers.Create(context.Background(), companyID, userID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestSell_Create_SinStockEnTiendaEsAtomico(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	batch := e.receive(t, "lt-001", 10)
	_, err := e.transfers.Create(ctx, companyID, userID, storeToShop(dto.TransferItemRequest{BatchID: batch, Quantity: dec(2)}))
	require.NoError(t, err)

	_, err = e.sells.Create(ctx, companyID, userID, dto.CreateSellRequest{
		InvoiceNo:    "INV-9001",
		LocationType: entity.LocationShop,
		LocationID:   shopID,
		Items: []dto.SellItemRequest{{
			ProductID: productID,
			UnitPrice: dec(10),
			Batches:   []dto.SellItemBatchDTO{{BatchID: batch, Quantity: dec(3)}},
		}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, e.stock(t, batch, entity.LocationShop, shopID).Equal(dec(2)))
	assert.Empty(t, e.ledger(t, entity.SourceSell))
	list, err := e.sells.List(ctx, companyID, dto.DocumentQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, list.TotalCount)
	e.requireConsistent(t)
}
