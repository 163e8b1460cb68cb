package correction_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// sellAtShop traslada 20 unidades a la tienda y vende 5 a precio 10 con la factura dada.
func sellAtShop(t *testing.T, f *fixture, invoice string) *dto.SellResponse {
	t.Helper()
	ctx := context.Background()
	_, err := f.transfers.Create(ctx, companyID, userID, dto.CreateTransferRequest{
		FromLocationType: entity.LocationStore, FromLocationID: storeID,
		ToLocationType: entity.LocationShop, ToLocationID: shopID,
		Items: []dto.TransferItemRequest{{BatchID: f.batchID, Quantity: dec(20)}},
	})
	require.NoError(t, err)
	s, err := f.sellUC.Create(ctx, companyID, userID, dto.CreateSellRequest{
		InvoiceNo:    invoice,
		LocationType: entity.LocationShop,
		LocationID:   shopID,
		Items: []dto.SellItemRequest{{
			ProductID: productID,
			UnitPrice: dec(10),
			Batches:   []dto.SellItemBatchDTO{{BatchID: f.batchID, Quantity: dec(5)}},
		}},
	})
	require.NoError(t, err)
	require.True(t, f.stockAt(t, entity.LocationShop, shopID).Equal(dec(15)))
	return s
}

func correctionReq(s *dto.SellResponse, batchID string, delta int64) dto.CreateSellCorrectionRequest {
	return dto.CreateSellCorrectionRequest{
		SellID: s.ID,
		Items: []dto.SellCorrectionItemRequest{{
			SellItemID: s.Items[0].ID,
			Batches:    []dto.SellCorrectionBatchDTO{{BatchID: batchID, Quantity: dec(delta)}},
		}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Draft / Create
// ──────────────────────────────────────────────────────────────────────────────

func TestSellCorrection_Draft_CopiaVentaConDeltaCero(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-0900")

	d, err := f.sells.Draft(context.Background(), companyID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-0900", d.Reference)
	assert.True(t, d.Total.IsZero())
	require.Len(t, d.Items, 1)
	assert.Equal(t, s.Items[0].ID, d.Items[0].SellItemID)
	assert.True(t, d.Items[0].UnitPrice.Equal(dec(10)))
	require.Len(t, d.Items[0].Batches, 1)
	assert.True(t, d.Items[0].Batches[0].Quantity.IsZero())
}

func TestSellCorrection_Create_EscenarioINV1001(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-1001")

	out, err := f.sells.Create(context.Background(), companyID, userID, correctionReq(s, f.batchID, -3))
	require.NoError(t, err)
	assert.Equal(t, "INV-1001", out.Reference)
	assert.Equal(t, entity.CorrectionPending, out.Status)
	assert.False(t, out.IsChecked)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Quantity.Equal(dec(-3)))
	assert.True(t, out.Items[0].TotalPrice.Equal(dec(30)))
	assert.Equal(t, entity.ItemSalePending, out.Items[0].ItemSaleStatus)
	assert.True(t, out.Total.Equal(dec(30)))
	assert.True(t, f.stockAt(t, entity.LocationShop, shopID).Equal(dec(15)), "pendiente no toca stock")
}

func TestSellCorrection_Create_CantidadDerivada(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-2000")
	ctx := context.Background()

	req := correctionReq(s, f.batchID, -2)
	wrong := dec(-5)
	req.Items[0].Quantity = &wrong
	_, err := f.sells.Create(ctx, companyID, userID, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "la cantidad enviada debe coincidir con la suma de lotes")

	right := dec(-2)
	req.Items[0].Quantity = &right
	out, err := f.sells.Create(ctx, companyID, userID, req)
	require.NoError(t, err)
	assert.True(t, out.Items[0].Quantity.Equal(dec(-2)))
}

func TestSellCorrection_Create_DescartaItemsSinCambios(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-2001")

	_, err := f.sells.Create(context.Background(), companyID, userID, correctionReq(s, f.batchID, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	list, err := f.sells.ListBySell(context.Background(), companyID, s.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSellCorrection_Create_NoDevuelveMasDeLoVendido(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-2002")
	ctx := context.Background()

	_, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -6))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	first, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -4))
	require.NoError(t, err)
	_, err = f.sells.Approve(ctx, companyID, userID, first.ID, nil)
	require.NoError(t, err)

	_, err = f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -2))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "ya se devolvieron 4 de 5")
	_, err = f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -1))
	assert.NoError(t, err)
}

func TestSellCorrection_Create_LoteAjenoALaLinea(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-2003")

	_, err := f.sells.Create(context.Background(), companyID, userID, correctionReq(s, "otro-lote", -1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Approve / Reject
// ──────────────────────────────────────────────────────────────────────────────

func TestSellCorrection_Approve_DevuelveStock(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-1001")
	ctx := context.Background()

	c, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -3))
	require.NoError(t, err)
	out, err := f.sells.Approve(ctx, companyID, "approver", c.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.CorrectionApproved, out.Status)
	assert.Equal(t, entity.ItemSaleApproved, out.Items[0].ItemSaleStatus)
	assert.Equal(t, "approver", out.DecidedBy)

	assert.True(t, f.stockAt(t, entity.LocationShop, shopID).Equal(dec(18)))
	entries := f.ledgerFor(t, entity.SourceSellStockCorrection, c.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.MovementRETURN, entries[0].MovementType)
	assert.True(t, entries[0].Quantity.Equal(dec(3)))
	assert.Equal(t, "INV-1001", entries[0].Reference)
	f.requireConsistent(t)
}

func TestSellCorrection_Approve_EntregaAdicional(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-3000")
	ctx := context.Background()

	c, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, 2))
	require.NoError(t, err)
	_, err = f.sells.Approve(ctx, companyID, userID, c.ID, nil)
	require.NoError(t, err)

	assert.True(t, f.stockAt(t, entity.LocationShop, shopID).Equal(dec(13)))
	entries := f.ledgerFor(t, entity.SourceSellStockCorrection, c.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.MovementOUT, entries[0].MovementType)
	assert.True(t, entries[0].Quantity.Equal(dec(-2)))
}

func TestSellCorrection_Approve_SinStockNoCambiaNada(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-3001")
	ctx := context.Background()

	c, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, 16))
	require.NoError(t, err)
	_, err = f.sells.Approve(ctx, companyID, userID, c.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.sells.GetByID(ctx, companyID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CorrectionPending, got.Status)
	assert.Equal(t, entity.ItemSalePending, got.Items[0].ItemSaleStatus)
	assert.True(t, f.stockAt(t, entity.LocationShop, shopID).Equal(dec(15)))
}

func TestSellCorrection_Approve_LimiteEntreCorreccionesDeLaMismaVenta(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-2100")
	ctx := context.Background()

	first, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -4))
	require.NoError(t, err)
	second, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -4))
	require.NoError(t, err, "ninguna está aprobada todavía")

	_, err = f.sells.Approve(ctx, companyID, userID, first.ID, nil)
	require.NoError(t, err)
	_, err = f.sells.Approve(ctx, companyID, userID, second.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "4 + 4 supera las 5 vendidas")

	assert.True(t, f.stockAt(t, entity.LocationShop, shopID).Equal(dec(19)))
	assert.Empty(t, f.ledgerFor(t, entity.SourceSellStockCorrection, second.ID))
	got, err := f.sells.GetByID(ctx, companyID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CorrectionPending, got.Status)
	f.requireConsistent(t)
}

func TestSellCorrection_Approve_ConcurrentesNoSuperanLoVendido(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-2101")
	ctx := context.Background()

	ids := make([]string, 2)
	for i := range ids {
		c, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -4))
		require.NoError(t, err)
		ids[i] = c.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.sells.Approve(ctx, companyID, userID, id, nil)
		}(i, id)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	assert.Equal(t, 1, ok, "solo una devolución de 4 cabe en 5 vendidas")
	assert.True(t, f.stockAt(t, entity.LocationShop, shopID).Equal(dec(19)))
	f.requireConsistent(t)
}

func TestSellCorrection_ApproveItems_Parcial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.transfers.Create(ctx, companyID, userID, dto.CreateTransferRequest{
		FromLocationType: entity.LocationStore, FromLocationID: storeID,
		ToLocationType: entity.LocationShop, ToLocationID: shopID,
		Items: []dto.TransferItemRequest{{BatchID: f.batchID, Quantity: dec(20)}},
	})
	require.NoError(t, err)
	s, err := f.sellUC.Create(ctx, companyID, userID, dto.CreateSellRequest{
		InvoiceNo: "INV-4000", LocationType: entity.LocationShop, LocationID: shopID,
		Items: []dto.SellItemRequest{
			{ProductID: productID, UnitPrice: dec(10), Batches: []dto.SellItemBatchDTO{{BatchID: f.batchID, Quantity: dec(4)}}},
			{ProductID: productID, UnitPrice: dec(8), Batches: []dto.SellItemBatchDTO{{BatchID: f.batchID, Quantity: dec(6)}}},
		},
	})
	require.NoError(t, err)

	c, err := f.sells.Create(ctx, companyID, userID, dto.CreateSellCorrectionRequest{
		SellID: s.ID,
		Items: []dto.SellCorrectionItemRequest{
			{SellItemID: s.Items[0].ID, Batches: []dto.SellCorrectionBatchDTO{{BatchID: f.batchID, Quantity: dec(-1)}}},
			{SellItemID: s.Items[1].ID, Batches: []dto.SellCorrectionBatchDTO{{BatchID: f.batchID, Quantity: dec(-2)}}},
		},
	})
	require.NoError(t, err)
	assert.True(t, c.Total.Equal(decimal.NewFromInt(26)), "1×10 + 2×8")

	out, err := f.sells.Approve(ctx, companyID, userID, c.ID, []string{c.Items[1].ID})
	require.NoError(t, err)
	assert.Equal(t, entity.CorrectionPartial, out.Status)
	assert.Equal(t, entity.ItemSaleRejected, out.Items[0].ItemSaleStatus)
	assert.Equal(t, entity.ItemSaleApproved, out.Items[1].ItemSaleStatus)
	assert.True(t, f.stockAt(t, entity.LocationShop, shopID).Equal(dec(12)), "20 - 10 vendidos + 2 devueltos")

	_, err = f.sells.Approve(ctx, companyID, userID, c.ID, nil)
	assert.ErrorIs(t, err, domain.ErrCorrectionFinalized)
}

func TestSellCorrection_Reject_Irreversible(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-5000")
	ctx := context.Background()

	c, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -1))
	require.NoError(t, err)
	out, err := f.sells.Reject(ctx, companyID, userID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CorrectionRejected, out.Status)

	_, err = f.sells.Approve(ctx, companyID, userID, c.ID, nil)
	assert.ErrorIs(t, err, domain.ErrCorrectionFinalized)
	_, err = f.sells.Reject(ctx, companyID, userID, c.ID)
	assert.ErrorIs(t, err, domain.ErrCorrectionFinalized)
	assert.Empty(t, f.ledgerFor(t, entity.SourceSellStockCorrection, c.ID))
}

func TestSellCorrection_Approve_CandadoTomado(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-5001")
	ctx := context.Background()

	c, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -1))
	require.NoError(t, err)
	release, err := f.locker.Obtain(ctx, "sell-correction:"+c.ID, time.Minute)
	require.NoError(t, err)
	defer release()

	_, err = f.sells.Approve(ctx, companyID, userID, c.ID, nil)
	assert.ErrorIs(t, err, domain.ErrLocked)
}

// ──────────────────────────────────────────────────────────────────────────────
// Revisión (isChecked)
// ──────────────────────────────────────────────────────────────────────────────

func TestSellCorrection_MarkAsChecked_Monotono(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-6000")
	ctx := context.Background()

	c, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -1))
	require.NoError(t, err)

	first, err := f.sells.MarkAsChecked(ctx, companyID, "checker-1", c.ID)
	require.NoError(t, err)
	assert.True(t, first.IsChecked)
	assert.Equal(t, "checker-1", first.CheckedBy)

	second, err := f.sells.MarkAsChecked(ctx, companyID, "checker-2", c.ID)
	require.NoError(t, err)
	assert.True(t, second.IsChecked)
	assert.Equal(t, "checker-1", second.CheckedBy, "la segunda marca no cambia nada")
	assert.Equal(t, first.CheckedAt, second.CheckedAt)
	assert.Equal(t, entity.CorrectionPending, second.Status, "la revisión no decide la corrección")
}

func TestSellCorrection_MarkManyAsChecked_ResultadoPorID(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-6001")
	ctx := context.Background()

	c, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -1))
	require.NoError(t, err)

	res := f.sells.MarkManyAsChecked(ctx, companyID, userID, []string{c.ID, "no-existe"})
	require.Len(t, res, 2)
	assert.True(t, res[0].OK)
	assert.False(t, res[1].OK)
	assert.Equal(t, domain.CodeNotFound, res[1].Code)

	list, err := f.sells.List(ctx, companyID, dto.SellCorrectionQuery{IsChecked: "true"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.TotalCount)

	_, err = f.sells.List(ctx, companyID, dto.SellCorrectionQuery{IsChecked: "quizás"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSellCorrection_RoundTrip(t *testing.T) {
	f := newFixture(t)
	s := sellAtShop(t, f, "INV-7000")
	ctx := context.Background()

	created, err := f.sells.Create(ctx, companyID, userID, correctionReq(s, f.batchID, -2))
	require.NoError(t, err)
	got, err := f.sells.GetByID(ctx, companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)

	bySell, err := f.sells.ListBySell(ctx, companyID, s.ID)
	require.NoError(t, err)
	require.Len(t, bySell, 1)
	assert.Equal(t, created.ID, bySell[0].ID)
}
