package inventory

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// Repos agrupa los repositorios. Dentro de TxRunner.Run todos comparten la misma transacción;
// fuera de ella cada llamada es independiente.
type Repos struct {
	Companies       repository.CompanyRepository
	Users           repository.UserRepository
	Roles           repository.RoleRepository
	Audit           repository.AuditLogRepository
	Locations       repository.LocationRepository
	Products        repository.ProductRepository
	Units           repository.UnitOfMeasureRepository
	Batches         repository.BatchRepository
	Stock           repository.StockRepository
	Ledger          repository.StockLedgerRepository
	Corrections     repository.StockCorrectionRepository
	SellCorrections repository.SellStockCorrectionRepository
	Sells           repository.SellRepository
	Transfers       repository.TransferRepository
	Purchases       repository.PurchaseRepository
	Maintenance     repository.MaintenanceRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback en otro caso. Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
