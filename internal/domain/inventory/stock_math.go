package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// StockKey identifica una fila de stock: lote en una ubicación.
type StockKey struct {
	BatchID      string
	LocationType string
	LocationID   string
}

// KeyOf construye la clave desde lote y ubicación.
func KeyOf(batchID string, loc entity.LocationRef) StockKey {
	return StockKey{BatchID: batchID, LocationType: loc.Type, LocationID: loc.ID}
}

// Location devuelve la ubicación de la clave.
func (k StockKey) Location() entity.LocationRef {
	return entity.LocationRef{Type: k.LocationType, ID: k.LocationID}
}

func (k StockKey) less(o StockKey) bool {
	if k.BatchID != o.BatchID {
		return k.BatchID < o.BatchID
	}
	if k.LocationType != o.LocationType {
		return k.LocationType < o.LocationType
	}
	return k.LocationID < o.LocationID
}

// SortedKeys devuelve las claves en orden determinista. Bloquear filas siempre en este
// orden evita interbloqueos entre transacciones que tocan los mismos lotes.
func SortedKeys(m map[StockKey]decimal.Decimal) []StockKey {
	keys := make([]StockKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	return keys
}

// ApplyDelta suma delta al stock actual. ok=false si el resultado sería negativo.
func ApplyDelta(current, delta decimal.Decimal) (decimal.Decimal, bool) {
	next := current.Add(delta)
	if next.IsNegative() {
		return current, false
	}
	return next, true
}
