package correction_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
)

func storeCorrection(f *fixture, reason string, unit string, qty int64) dto.StockCorrectionRequest {
	return dto.StockCorrectionRequest{
		Reason:  reason,
		StoreID: storeID,
		Items: []dto.StockCorrectionItemRequest{
			{ProductID: productID, BatchID: f.batchID, UnitOfMeasureID: unit, Quantity: dec(qty)},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create / Update
// ──────────────────────────────────────────────────────────────────────────────

func TestStockCorrection_Create_QuedaPendienteSinEfecto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.stock.Create(ctx, companyID, userID, storeCorrection(f, entity.ReasonDamaged, unitID, -5))
	require.NoError(t, err)
	assert.Equal(t, entity.CorrectionPending, out.Status)
	assert.True(t, strings.HasPrefix(out.Reference, "SC-"))
	assert.Equal(t, userID, out.CreatedBy)
	assert.True(t, f.stockAt(t, entity.LocationStore, storeID).Equal(dec(100)))
	assert.Empty(t, f.ledger(t, entity.SourceStockCorrection))
}

func TestStockCorrection_Create_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]dto.StockCorrectionRequest{
		"EXPIRED con cantidad positiva": storeCorrection(f, entity.ReasonExpired, unitID, 3),
		"cantidad cero":                 storeCorrection(f, entity.ReasonManualAdjustment, unitID, 0),
		"tienda y bodega a la vez": func() dto.StockCorrectionRequest {
			r := storeCorrection(f, entity.ReasonManualAdjustment, unitID, 1)
			r.ShopID = shopID
			return r
		}(),
		"purchase_id con otro motivo": func() dto.StockCorrectionRequest {
			r := storeCorrection(f, entity.ReasonDamaged, unitID, -1)
			r.PurchaseID = "p-x"
			return r
		}(),
		"compra inexistente": func() dto.StockCorrectionRequest {
			r := storeCorrection(f, entity.ReasonPurchaseError, unitID, -1)
			r.PurchaseID = "no-existe"
			return r
		}(),
		"lote de otro producto": func() dto.StockCorrectionRequest {
			r := storeCorrection(f, entity.ReasonManualAdjustment, unitID, 1)
			r.Items[0].ProductID = "otro"
			return r
		}(),
	}
	for name, req := range cases {
		req := req
		t.Run(name, func(t *testing.T) {
			_, err := f.stock.Create(ctx, companyID, userID, req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestStockCorrection_Update_ReemplazaItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.stock.Create(ctx, companyID, userID, storeCorrection(f, entity.ReasonDamaged, unitID, -5))
	require.NoError(t, err)

	upd := storeCorrection(f, entity.ReasonManualAdjustment, unitID, 7)
	upd.Notes = "conteo físico"
	out, err := f.stock.Update(ctx, companyID, userID, c.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, c.Reference, out.Reference)
	assert.Equal(t, entity.ReasonManualAdjustment, out.Reason)
	assert.Equal(t, "conteo físico", out.Notes)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Quantity.Equal(dec(7)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Approve
// ──────────────────────────────────────────────────────────────────────────────

func TestStockCorrection_Approve_AplicaFactorDeUnidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.stock.Create(ctx, companyID, userID, storeCorrection(f, entity.ReasonDamaged, boxUnitID, -2))
	require.NoError(t, err)

	out, err := f.stock.Approve(ctx, companyID, "approver", c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CorrectionApproved, out.Status)
	assert.Equal(t, "approver", out.ApprovedBy)
	require.NotNil(t, out.ApprovedAt)

	assert.True(t, f.stockAt(t, entity.LocationStore, storeID).Equal(dec(76)), "100 - 2 cajas x12")
	entries := f.ledgerFor(t, entity.SourceStockCorrection, c.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.MovementADJUSTMENT, entries[0].MovementType)
	assert.True(t, entries[0].Quantity.Equal(dec(-24)))
	assert.Equal(t, c.Reference, entries[0].Reference)
	f.requireConsistent(t)
}

func TestStockCorrection_Approve_SinLote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := storeCorrection(f, entity.ReasonManualAdjustment, unitID, 3)
	req.Items[0].BatchID = ""
	c, err := f.stock.Create(ctx, companyID, userID, req)
	require.NoError(t, err, "sin lote se admite mientras esté pendiente")

	_, err = f.stock.Approve(ctx, companyID, userID, c.ID)
	assert.ErrorIs(t, err, domain.ErrBatchRequired)
	assert.Equal(t, domain.CodeBatchRequired, domain.CodeOf(err))

	got, err := f.stock.GetByID(ctx, companyID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CorrectionPending, got.Status)
}

func TestStockCorrection_Approve_UnidadEnUsoNoSeElimina(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.stock.Create(ctx, companyID, userID, storeCorrection(f, entity.ReasonDamaged, boxUnitID, -1))
	require.NoError(t, err)
	err = f.store.Repos().Units.Delete(ctx, boxUnitID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.stock.Approve(ctx, companyID, userID, c.ID)
	require.NoError(t, err)
	assert.True(t, f.stockAt(t, entity.LocationStore, storeID).Equal(dec(88)), "100 - 1 caja x12")
}

func TestStockCorrection_Approve_VariosLotesConservaCantidades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	second := f.secondBatch(t, 50)

	req := storeCorrection(f, entity.ReasonManualAdjustment, unitID, -5)
	req.Items = append(req.Items,
		dto.StockCorrectionItemRequest{ProductID: productID, BatchID: second, UnitOfMeasureID: unitID, Quantity: dec(3)},
		dto.StockCorrectionItemRequest{ProductID: productID, BatchID: second, UnitOfMeasureID: boxUnitID, Quantity: dec(-1)},
	)
	c, err := f.stock.Create(ctx, companyID, userID, req)
	require.NoError(t, err)

	_, err = f.stock.Approve(ctx, companyID, userID, c.ID)
	require.NoError(t, err)

	assert.True(t, f.stockOf(t, f.batchID, entity.LocationStore, storeID).Equal(dec(95)), "100 - 5")
	assert.True(t, f.stockOf(t, second, entity.LocationStore, storeID).Equal(dec(41)), "50 + 3 - 12")

	perBatch := map[string]decimal.Decimal{}
	for _, e := range f.ledgerFor(t, entity.SourceStockCorrection, c.ID) {
		perBatch[e.BatchID] = perBatch[e.BatchID].Add(e.Quantity)
	}
	require.Len(t, perBatch, 2)
	assert.True(t, perBatch[f.batchID].Equal(dec(-5)))
	assert.True(t, perBatch[second].Equal(dec(-9)))
	f.requireConsistent(t)
}

func TestStockCorrection_Approve_StockInsuficienteEsAtomico(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Dos ítems del mismo lote: el primero cabe, la suma no.
	req := storeCorrection(f, entity.ReasonDamaged, unitID, -60)
	req.Items = append(req.Items, dto.StockCorrectionItemRequest{
		ProductID: productID, BatchID: f.batchID, UnitOfMeasureID: unitID, Quantity: dec(-50),
	})
	c, err := f.stock.Create(ctx, companyID, userID, req)
	require.NoError(t, err)

	_, err = f.stock.Approve(ctx, companyID, userID, c.ID)
	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Available.Equal(dec(100)))
	assert.True(t, se.Requested.Equal(dec(110)))

	assert.True(t, f.stockAt(t, entity.LocationStore, storeID).Equal(dec(100)))
	assert.Empty(t, f.ledger(t, entity.SourceStockCorrection))
	got, err := f.stock.GetByID(ctx, companyID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CorrectionPending, got.Status)
}

func TestStockCorrection_Approve_CandadoTomado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.stock.Create(ctx, companyID, userID, storeCorrection(f, entity.ReasonDamaged, unitID, -1))
	require.NoError(t, err)

	release, err := f.locker.Obtain(ctx, "stock-correction:"+c.ID, time.Minute)
	require.NoError(t, err)
	_, err = f.stock.Approve(ctx, companyID, userID, c.ID)
	assert.ErrorIs(t, err, domain.ErrLocked)
	release()

	_, err = f.stock.Approve(ctx, companyID, userID, c.ID)
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Irreversibilidad
// ──────────────────────────────────────────────────────────────────────────────

func TestStockCorrection_Finalizada_NoAdmiteCambios(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	approved, err := f.stock.Create(ctx, companyID, userID, storeCorrection(f, entity.ReasonDamaged, unitID, -4))
	require.NoError(t, err)
	_, err = f.stock.Approve(ctx, companyID, userID, approved.ID)
	require.NoError(t, err)

	rejected, err := f.stock.Create(ctx, companyID, userID, storeCorrection(f, entity.ReasonDamaged, unitID, -4))
	require.NoError(t, err)
	out, err := f.stock.Reject(ctx, companyID, "reviewer", rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CorrectionRejected, out.Status)
	assert.Equal(t, "reviewer", out.RejectedBy)

	for _, id := range []string{approved.ID, rejected.ID} {
		_, err = f.stock.Approve(ctx, companyID, userID, id)
		assert.ErrorIs(t, err, domain.ErrCorrectionFinalized)
		_, err = f.stock.Reject(ctx, companyID, userID, id)
		assert.ErrorIs(t, err, domain.ErrCorrectionFinalized)
		_, err = f.stock.Update(ctx, companyID, userID, id, storeCorrection(f, entity.ReasonDamaged, unitID, -1))
		assert.ErrorIs(t, err, domain.ErrCorrectionFinalized)
		assert.ErrorIs(t, f.stock.Delete(ctx, companyID, userID, id), domain.ErrCorrectionFinalized)
	}

	assert.True(t, f.stockAt(t, entity.LocationStore, storeID).Equal(dec(96)), "solo la aprobada afecta el stock, una vez")
	assert.Len(t, f.ledger(t, entity.SourceStockCorrection), 1)
	f.requireConsistent(t)
}

func TestStockCorrection_Delete_Pendiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.stock.Create(ctx, companyID, userID, storeCorrection(f, entity.ReasonDamaged, unitID, -1))
	require.NoError(t, err)
	require.NoError(t, f.stock.Delete(ctx, companyID, userID, c.ID))

	_, err = f.stock.GetByID(ctx, companyID, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStockCorrection_OtraEmpresa_NoEncontrada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.stock.Create(ctx, companyID, userID, storeCorrection(f, entity.ReasonDamaged, unitID, -1))
	require.NoError(t, err)

	_, err = f.stock.GetByID(ctx, "otra", c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.stock.Approve(ctx, "otra", userID, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestStockCorrection_List_FiltraYPagina(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		c, err := f.stock.Create(ctx, companyID, userID, storeCorrection(f, entity.ReasonDamaged, unitID, -1))
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	_, err := f.stock.Reject(ctx, companyID, userID, ids[0])
	require.NoError(t, err)

	pending, err := f.stock.List(ctx, companyID, dto.StockCorrectionQuery{Status: entity.CorrectionPending})
	require.NoError(t, err)
	assert.Equal(t, 2, pending.TotalCount)

	page, err := f.stock.List(ctx, companyID, dto.StockCorrectionQuery{PageRequest: dto.PageRequest{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Len(t, page.Data, 1)

	_, err = f.stock.List(ctx, companyID, dto.StockCorrectionQuery{From: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockCorrection_PDF_ResuelveNombres(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.stock.Create(ctx, companyID, userID, storeCorrection(f, entity.ReasonDamaged, boxUnitID, -1))
	require.NoError(t, err)

	data, name, err := f.stock.PDF(ctx, companyID, c.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "correccion-"+c.Reference+".pdf", name)
	assert.Equal(t, "Droguería Central", f.pdf.last.CompanyName)
	assert.Equal(t, "Bodega", f.pdf.last.LocationName)
	assert.Equal(t, "Amoxicilina 500mg", f.pdf.last.ProductNames[productID])
	assert.Equal(t, "LT-001", f.pdf.last.BatchNumbers[f.batchID])
	assert.Equal(t, "Caja x12", f.pdf.last.UnitNames[boxUnitID])
}

// ──────────────────────────────────────────────────────────────────────────────
// Ida y vuelta
// ──────────────────────────────────────────────────────────────────────────────

func itemKeys(items []dto.StockCorrectionItemResponse) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ProductID+"|"+it.BatchID+"|"+it.UnitOfMeasureID+"|"+it.Quantity.String())
	}
	return out
}

func TestStockCorrection_RoundTrip_VariosLotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	second := f.secondBatch(t, 50)

	req := storeCorrection(f, entity.ReasonManualAdjustment, unitID, -5)
	req.Items = append(req.Items,
		dto.StockCorrectionItemRequest{ProductID: productID, BatchID: second, UnitOfMeasureID: unitID, Quantity: dec(3)},
		dto.StockCorrectionItemRequest{ProductID: productID, BatchID: second, UnitOfMeasureID: boxUnitID, Quantity: dec(-1)},
	)
	created, err := f.stock.Create(ctx, companyID, userID, req)
	require.NoError(t, err)

	got, err := f.stock.GetByID(ctx, companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Reference, got.Reference)
	assert.Equal(t, created.Status, got.Status)
	assert.ElementsMatch(t, itemKeys(created.Items), itemKeys(got.Items))
	assert.ElementsMatch(t, []string{
		productID + "|" + f.batchID + "|" + unitID + "|-5",
		productID + "|" + second + "|" + unitID + "|3",
		productID + "|" + second + "|" + boxUnitID + "|-1",
	}, itemKeys(got.Items))
}
