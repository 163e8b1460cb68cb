package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-api/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con todos los repos atados a la tx y
// hace Commit o Rollback. La consistencia del stock la dan los SELECT ... FOR UPDATE.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepos repositorios sobre un pool (fuera de tx) o una tx.
func NewRepos(q Querier) inventory.Repos {
	return inventory.Repos{
		Companies:       NewCompanyRepository(q),
		Users:           NewUserRepository(q),
		Roles:           NewRoleRepository(q),
		Audit:           NewAuditLogRepository(q),
		Locations:       NewLocationRepository(q),
		Products:        NewProductRepository(q),
		Units:           NewUnitRepository(q),
		Batches:         NewBatchRepository(q),
		Stock:           NewStockRepository(q),
		Ledger:          NewLedgerRepository(q),
		Corrections:     NewStockCorrectionRepository(q),
		SellCorrections: NewSellCorrectionRepository(q),
		Sells:           NewSellRepository(q),
		Transfers:       NewTransferRepository(q),
		Purchases:       NewPurchaseRepository(q),
		Maintenance:     NewMaintenanceRepository(q),
	}
}
