package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-api/internal/domain"
)

func TestCodeOf(t *testing.T) {
	stockErr := &domain.StockError{Code: domain.CodeInsufficientStock, BatchID: "b1",
		Available: decimal.NewFromInt(1), Requested: decimal.NewFromInt(3)}

	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{domain.ErrNotFound, domain.CodeNotFound},
		{fmt.Errorf("lote x: %w", domain.ErrNotFound), domain.CodeNotFound},
		{domain.NewValidationError("items", "vacío"), domain.CodeValidation},
		{stockErr, domain.CodeInsufficientStock},
		{fmt.Errorf("aprobar: %w", stockErr), domain.CodeInsufficientStock},
		{domain.ErrCorrectionFinalized, domain.CodeCorrectionFinalized},
		{domain.ErrBatchRequired, domain.CodeBatchRequired},
		{domain.ErrDuplicate, domain.CodeConflict},
		{domain.ErrLocked, domain.CodeLocked},
		{errors.New("boom"), domain.CodeInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, domain.CodeOf(tc.err), "%v", tc.err)
	}
}

func TestStockError_DetalleAccesibleConAs(t *testing.T) {
	var err error = fmt.Errorf("venta: %w", &domain.StockError{
		Code: domain.CodeInsufficientStock, BatchID: "b1", LocationType: "SHOP", LocationID: "s1",
		Available: decimal.NewFromInt(2), Requested: decimal.NewFromInt(5),
	})
	var se *domain.StockError
	if assert.True(t, errors.As(err, &se)) {
		assert.Equal(t, "b1", se.BatchID)
		assert.True(t, se.Available.Equal(decimal.NewFromInt(2)))
	}
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestValidationError_MensajeOrdenado(t *testing.T) {
	v := &domain.ValidationError{Fields: map[string]string{"b": "dos", "a": "uno"}}
	assert.Contains(t, v.Error(), "a: uno; b: dos")
	assert.True(t, errors.Is(v, domain.ErrInvalidInput))
}
