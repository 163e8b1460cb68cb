package correction

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/infrastructure/memory"
)

func TestAdjustmentMovements_UnidadInexistenteFalla(t *testing.T) {
	repos := memory.NewStore().Repos()
	c := &entity.StockCorrection{
		ID: "sc-1", CompanyID: "c1", Reference: "SC-1", StoreID: "store-1",
		Items: []entity.StockCorrectionItem{
			{ProductID: "p1", BatchID: "b1", UnitOfMeasureID: "caja-borrada", Quantity: decimal.NewFromInt(-1)},
		},
	}

	movs, err := adjustmentMovements(context.Background(), repos, c)
	assert.Nil(t, movs)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	var v *domain.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "items[0].unit_of_measure_id")
}

func TestAdjustmentMovements_AplicaFactor(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	require.NoError(t, repos.Units.Create(ctx, &entity.UnitOfMeasure{ID: "caja", CompanyID: "c1", Name: "Caja x6", Factor: decimal.NewFromInt(6)}))
	c := &entity.StockCorrection{
		ID: "sc-1", CompanyID: "c1", Reference: "SC-1", ShopID: "shop-1",
		Items: []entity.StockCorrectionItem{
			{ProductID: "p1", BatchID: "b1", UnitOfMeasureID: "caja", Quantity: decimal.NewFromInt(2)},
		},
	}

	movs, err := adjustmentMovements(ctx, repos, c)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.True(t, movs[0].Quantity.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, entity.LocationRef{Type: entity.LocationShop, ID: "shop-1"}, movs[0].Location)
	assert.Equal(t, entity.MovementADJUSTMENT, movs[0].Type)
}
