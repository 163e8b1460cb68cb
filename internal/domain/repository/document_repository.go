package repository

import (
	"context"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// SellRepository persistencia de ventas con ítems y asignación por lote.
type SellRepository interface {
	Create(ctx context.Context, sell *entity.Sell) error
	GetByID(ctx context.Context, id string) (*entity.Sell, error)
	// GetForUpdate bloquea la cabecera de la venta hasta el fin de la tx. Serializa las
	// correcciones que compiten por el mismo límite de devolución.
	GetForUpdate(ctx context.Context, id string) (*entity.Sell, error)
	GetByInvoiceNo(ctx context.Context, companyID, invoiceNo string) (*entity.Sell, error)
	List(ctx context.Context, filter DocumentFilter, page Page) ([]*entity.Sell, int, error)
}

// TransferRepository persistencia de traslados entre ubicaciones.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	List(ctx context.Context, filter DocumentFilter, page Page) ([]*entity.Transfer, int, error)
}

// PurchaseRepository persistencia de compras (recepción de lotes).
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	List(ctx context.Context, filter DocumentFilter, page Page) ([]*entity.Purchase, int, error)
}

// MaintenanceRepository operaciones masivas de reinicio. Solo se invoca dentro de una tx.
type MaintenanceRepository interface {
	// PurgeTransactions borra ventas, correcciones, traslados, compras y ledger de la empresa.
	PurgeTransactions(ctx context.Context, companyID string) error
	// PurgeMasterData borra lotes, stock, productos, unidades y ubicaciones de la empresa.
	PurgeMasterData(ctx context.Context, companyID string) error
}
