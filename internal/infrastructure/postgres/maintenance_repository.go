package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ repository.MaintenanceRepository = (*MaintenanceRepo)(nil)

// MaintenanceRepo borrados masivos por empresa para los reinicios. Debe recibir una pgx.Tx.
type MaintenanceRepo struct {
	q Querier
}

// NewMaintenanceRepository construye el adaptador de mantenimiento.
func NewMaintenanceRepository(q Querier) *MaintenanceRepo {
	return &MaintenanceRepo{q: q}
}

// PurgeTransactions borra documentos y ledger. Los hijos caen en cascada y
// product_batches.purchase_id queda en NULL.
func (r *MaintenanceRepo) PurgeTransactions(ctx context.Context, companyID string) error {
	b := &pgx.Batch{}
	for _, table := range []string{"sell_stock_corrections", "sells", "stock_corrections", "transfers", "purchases", "stock_ledger"} {
		b.Queue(`DELETE FROM `+table+` WHERE company_id = $1`, companyID)
	}
	if err := execBatch(ctx, r.q, b); err != nil {
		return fmt.Errorf("purge transactions: %w", err)
	}
	return nil
}

// PurgeMasterData borra stock, lotes, productos, unidades y ubicaciones.
func (r *MaintenanceRepo) PurgeMasterData(ctx context.Context, companyID string) error {
	b := &pgx.Batch{}
	b.Queue(`DELETE FROM batch_stock s USING product_batches pb WHERE pb.id = s.batch_id AND pb.company_id = $1`, companyID)
	for _, table := range []string{"product_batches", "units_of_measure", "products", "locations"} {
		b.Queue(`DELETE FROM `+table+` WHERE company_id = $1`, companyID)
	}
	if err := execBatch(ctx, r.q, b); err != nil {
		return fmt.Errorf("purge master data: %w", err)
	}
	return nil
}
