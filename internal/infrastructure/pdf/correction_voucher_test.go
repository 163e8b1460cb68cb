package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain/entity"
)

func TestRenderCorrection_GeneraPDF(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	v := ports.CorrectionVoucher{
		CompanyName:  "Acme",
		LocationName: "Bodega central",
		Correction: dto.StockCorrectionResponse{
			ID: "c1", Reference: "SC-0001", Reason: entity.ReasonDamaged, Status: entity.CorrectionApproved,
			StoreID: "s1", Notes: "Caja golpeada", CreatedBy: "u1", ApprovedBy: "u2", ApprovedAt: &now, CreatedAt: now,
			Items: []dto.StockCorrectionItemResponse{
				{ID: "i1", ProductID: "p1", BatchID: "b1", UnitOfMeasureID: "u-caja", Quantity: decimal.NewFromInt(-2)},
				{ID: "i2", ProductID: "p2", UnitOfMeasureID: "u-und", Quantity: decimal.NewFromInt(-1)},
			},
		},
		ProductNames: map[string]string{"p1": "Arroz 1kg"},
		BatchNumbers: map[string]string{"b1": "L-100"},
		UnitNames:    map[string]string{"u-caja": "Caja x12"},
	}

	out, err := NewMarotoCorrectionRenderer().RenderCorrection(context.Background(), v)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderCorrection_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMarotoCorrectionRenderer().RenderCorrection(ctx, ports.CorrectionVoucher{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "+5", formatQuantity("5"))
	assert.Equal(t, "-2.5", formatQuantity("-2.5"))
	assert.Equal(t, "0", formatQuantity("0"))
}
