package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/inventory"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var (
	_ repository.StockRepository       = (*StockRepo)(nil)
	_ repository.StockLedgerRepository = (*LedgerRepo)(nil)
)

// StockRepo cantidades por lote y ubicación (tabla batch_stock).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock de un lote en una ubicación; cero si no hay fila.
func (r *StockRepo) Get(ctx context.Context, batchID string, loc entity.LocationRef) (*entity.BatchStock, error) {
	var s entity.BatchStock
	err := r.q.QueryRow(ctx, `
		SELECT batch_id, location_type, location_id, quantity, updated_at
		FROM batch_stock WHERE batch_id = $1 AND location_type = $2 AND location_id = $3`,
		batchID, loc.Type, loc.ID,
	).Scan(&s.BatchID, &s.LocationType, &s.LocationID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return &entity.BatchStock{BatchID: batchID, LocationType: loc.Type, LocationID: loc.ID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate bloquea la fila hasta el fin de la tx. Crea la fila en cero si no existe para que
// dos transacciones concurrentes sobre un par nuevo también se serialicen.
func (r *StockRepo) GetForUpdate(ctx context.Context, batchID string, loc entity.LocationRef) (*entity.BatchStock, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO batch_stock (batch_id, location_type, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (batch_id, location_type, location_id) DO NOTHING`,
		batchID, loc.Type, loc.ID)
	if err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	var s entity.BatchStock
	err = r.q.QueryRow(ctx, `
		SELECT batch_id, location_type, location_id, quantity, updated_at
		FROM batch_stock WHERE batch_id = $1 AND location_type = $2 AND location_id = $3
		FOR UPDATE`,
		batchID, loc.Type, loc.ID,
	).Scan(&s.BatchID, &s.LocationType, &s.LocationID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad.
func (r *StockRepo) Upsert(ctx context.Context, s *entity.BatchStock) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO batch_stock (batch_id, location_type, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (batch_id, location_type, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		s.BatchID, s.LocationType, s.LocationID, s.Quantity, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByBatch saldos del lote en todas las ubicaciones.
func (r *StockRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.BatchStock, error) {
	rows, err := r.q.Query(ctx, `
		SELECT batch_id, location_type, location_id, quantity, updated_at
		FROM batch_stock WHERE batch_id = $1 ORDER BY location_type, location_id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.BatchStock
	for rows.Next() {
		var s entity.BatchStock
		if err := rows.Scan(&s.BatchID, &s.LocationType, &s.LocationID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Snapshot cantidades de la empresa (o de un lote) por clave.
func (r *StockRepo) Snapshot(ctx context.Context, companyID, batchID string) (map[inventory.StockKey]decimal.Decimal, error) {
	w := &where{}
	w.add("b.company_id = $%d", companyID)
	w.addIf(batchID != "", "s.batch_id = $%d", batchID)
	rows, err := r.q.Query(ctx, `
		SELECT s.batch_id, s.location_type, s.location_id, s.quantity
		FROM batch_stock s JOIN product_batches b ON b.id = s.batch_id`+w.String(), w.args...)
	if err != nil {
		return nil, fmt.Errorf("stock snapshot: %w", err)
	}
	return collectQuantities(rows)
}

func collectQuantities(rows pgx.Rows) (map[inventory.StockKey]decimal.Decimal, error) {
	defer rows.Close()
	out := make(map[inventory.StockKey]decimal.Decimal)
	for rows.Next() {
		var k inventory.StockKey
		var q decimal.Decimal
		if err := rows.Scan(&k.BatchID, &k.LocationType, &k.LocationID, &q); err != nil {
			return nil, fmt.Errorf("scan quantity: %w", err)
		}
		out[k] = q
	}
	return out, rows.Err()
}

// LedgerRepo ledger append-only.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del ledger.
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `id, company_id, batch_id, product_id, location_type, location_id, movement_type, quantity,
	reference, source_type, source_id, user_id, movement_date, created_at`

// Append inserta un movimiento.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.StockLedgerEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_ledger (`+ledgerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.CompanyID, e.BatchID, e.ProductID, e.LocationType, e.LocationID, e.MovementType, e.Quantity,
		e.Reference, e.SourceType, e.SourceID, e.UserID, e.MovementDate, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	return nil
}

func ledgerWhere(f repository.LedgerFilter) *where {
	w := &where{}
	w.add("company_id = $%d", f.CompanyID)
	w.addIf(f.BatchID != "", "batch_id = $%d", f.BatchID)
	w.addIf(f.ProductID != "", "product_id = $%d", f.ProductID)
	w.addIf(f.LocationType != "", "location_type = $%d", f.LocationType)
	w.addIf(f.LocationID != "", "location_id = $%d", f.LocationID)
	w.addIf(f.MovementType != "", "movement_type = $%d", f.MovementType)
	w.addIf(f.SourceType != "", "source_type = $%d", f.SourceType)
	w.dateRange("movement_date", f.Date)
	return w
}

func (r *LedgerRepo) scan(rows pgx.Rows) ([]*entity.StockLedgerEntry, error) {
	defer rows.Close()
	var list []*entity.StockLedgerEntry
	for rows.Next() {
		var e entity.StockLedgerEntry
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.BatchID, &e.ProductID, &e.LocationType, &e.LocationID,
			&e.MovementType, &e.Quantity, &e.Reference, &e.SourceType, &e.SourceID, &e.UserID,
			&e.MovementDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// List entradas filtradas, más recientes primero.
func (r *LedgerRepo) List(ctx context.Context, f repository.LedgerFilter, page repository.Page) ([]*entity.StockLedgerEntry, int, error) {
	w := ledgerWhere(f)
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_ledger`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+ledgerColumns+` FROM stock_ledger`+w.String()+
		` ORDER BY movement_date DESC, created_at DESC, id`+w.page(page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger: %w", err)
	}
	list, err := r.scan(rows)
	return list, total, err
}

// ListAll sin paginar, para exportación.
func (r *LedgerRepo) ListAll(ctx context.Context, f repository.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	w := ledgerWhere(f)
	rows, err := r.q.Query(ctx, `SELECT `+ledgerColumns+` FROM stock_ledger`+w.String()+
		` ORDER BY movement_date DESC, created_at DESC, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return r.scan(rows)
}

// Sums Σ quantity por lote y ubicación.
func (r *LedgerRepo) Sums(ctx context.Context, companyID, batchID string) (map[inventory.StockKey]decimal.Decimal, error) {
	w := &where{}
	w.add("company_id = $%d", companyID)
	w.addIf(batchID != "", "batch_id = $%d", batchID)
	rows, err := r.q.Query(ctx, `
		SELECT batch_id, location_type, location_id, SUM(quantity)
		FROM stock_ledger`+w.String()+`
		GROUP BY batch_id, location_type, location_id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("ledger sums: %w", err)
	}
	return collectQuantities(rows)
}
