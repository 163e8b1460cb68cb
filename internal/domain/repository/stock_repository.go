package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/inventory"
)

// StockRepository define el puerto para consultar/actualizar stock por lote+ubicación.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve cantidad cero si no hay fila.
	Get(ctx context.Context, batchID string, loc entity.LocationRef) (*entity.BatchStock, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, batchID string, loc entity.LocationRef) (*entity.BatchStock, error)
	Upsert(ctx context.Context, stock *entity.BatchStock) error
	ListByBatch(ctx context.Context, batchID string) ([]*entity.BatchStock, error)
	// Snapshot devuelve todas las cantidades de la empresa (opcionalmente de un lote).
	Snapshot(ctx context.Context, companyID, batchID string) (map[inventory.StockKey]decimal.Decimal, error)
}

// StockLedgerRepository ledger append-only de movimientos.
type StockLedgerRepository interface {
	Append(ctx context.Context, entry *entity.StockLedgerEntry) error
	List(ctx context.Context, filter LedgerFilter, page Page) ([]*entity.StockLedgerEntry, int, error)
	// ListAll sin paginar, para exportación.
	ListAll(ctx context.Context, filter LedgerFilter) ([]*entity.StockLedgerEntry, error)
	// Sums suma el ledger por lote+ubicación (opcionalmente de un lote).
	Sums(ctx context.Context, companyID, batchID string) (map[inventory.StockKey]decimal.Decimal, error)
}
