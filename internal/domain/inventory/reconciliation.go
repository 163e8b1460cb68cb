package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Discrepancy diferencia entre la suma del ledger y el snapshot de stock de un lote/ubicación.
type Discrepancy struct {
	Key            StockKey
	LedgerQuantity decimal.Decimal
	StockQuantity  decimal.Decimal
	Difference     decimal.Decimal // StockQuantity - LedgerQuantity
}

// Reconcile compara Σ ledger con el snapshot. Claves presentes en un solo lado cuentan como 0 en el otro.
// El resultado viene ordenado por clave.
func Reconcile(ledgerSums, snapshots map[StockKey]decimal.Decimal) []Discrepancy {
	all := make(map[StockKey]decimal.Decimal, len(ledgerSums)+len(snapshots))
	for k := range ledgerSums {
		all[k] = decimal.Zero
	}
	for k := range snapshots {
		all[k] = decimal.Zero
	}
	var out []Discrepancy
	for _, k := range SortedKeys(all) {
		l := ledgerSums[k]
		s := snapshots[k]
		if l.Equal(s) {
			continue
		}
		out = append(out, Discrepancy{Key: k, LedgerQuantity: l, StockQuantity: s, Difference: s.Sub(l)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key.less(out[j].Key) })
	return out
}
