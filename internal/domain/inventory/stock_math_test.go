package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-api/internal/domain/inventory"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestApplyDelta(t *testing.T) {
	next, ok := inventory.ApplyDelta(d(10), d(-3))
	assert.True(t, ok)
	assert.True(t, next.Equal(d(7)))

	next, ok = inventory.ApplyDelta(d(10), d(-10))
	assert.True(t, ok, "dejar el lote en cero es válido")
	assert.True(t, next.IsZero())

	next, ok = inventory.ApplyDelta(d(2), d(-3))
	assert.False(t, ok, "no se permite stock negativo")
	assert.True(t, next.Equal(d(2)), "ante rechazo se devuelve el valor original")
}

func TestSortedKeys_OrdenDeterminista(t *testing.T) {
	m := map[inventory.StockKey]decimal.Decimal{
		{BatchID: "b2", LocationType: "STORE", LocationID: "s1"}: d(1),
		{BatchID: "b1", LocationType: "STORE", LocationID: "s2"}: d(1),
		{BatchID: "b1", LocationType: "SHOP", LocationID: "s9"}:  d(1),
	}
	keys := inventory.SortedKeys(m)
	assert.Equal(t, "b1", keys[0].BatchID)
	assert.Equal(t, "SHOP", keys[0].LocationType)
	assert.Equal(t, "s2", keys[1].LocationID)
	assert.Equal(t, "b2", keys[2].BatchID)
}

func TestReconcile(t *testing.T) {
	ok := inventory.StockKey{BatchID: "b1", LocationType: "STORE", LocationID: "s1"}
	drift := inventory.StockKey{BatchID: "b2", LocationType: "STORE", LocationID: "s1"}
	orphan := inventory.StockKey{BatchID: "b3", LocationType: "SHOP", LocationID: "t1"}

	ledger := map[inventory.StockKey]decimal.Decimal{ok: d(5), drift: d(8)}
	snap := map[inventory.StockKey]decimal.Decimal{ok: d(5), drift: d(6), orphan: d(2)}

	out := inventory.Reconcile(ledger, snap)
	if assert.Len(t, out, 2) {
		assert.Equal(t, drift, out[0].Key)
		assert.True(t, out[0].Difference.Equal(d(-2)))
		assert.Equal(t, orphan, out[1].Key)
		assert.True(t, out[1].LedgerQuantity.IsZero())
		assert.True(t, out[1].Difference.Equal(d(2)))
	}
}

func TestNormalizeBatchNumber(t *testing.T) {
	cases := map[string]string{
		"lt-001":       "LT-001",
		"  LT-001  ":   "LT-001",
		"ＬＴ－００１":       "LT-001",
		"lote  a\t 7":  "LOTE A 7",
		"":             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, inventory.NormalizeBatchNumber(in), "entrada %q", in)
	}
}
