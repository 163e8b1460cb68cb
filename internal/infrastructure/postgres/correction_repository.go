package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ repository.StockCorrectionRepository = (*StockCorrectionRepo)(nil)

// StockCorrectionRepo implementa StockCorrectionRepository.
type StockCorrectionRepo struct {
	q Querier
}

// NewStockCorrectionRepository construye el adaptador de correcciones de stock.
func NewStockCorrectionRepository(q Querier) *StockCorrectionRepo {
	return &StockCorrectionRepo{q: q}
}

const correctionColumns = `id, company_id, reference, reason, status, COALESCE(purchase_id,''), COALESCE(transfer_id,''),
	COALESCE(store_id,''), COALESCE(shop_id,''), notes, created_by, approved_by, approved_at, rejected_by, rejected_at,
	created_at, updated_at`

func scanCorrection(row pgx.Row) (*entity.StockCorrection, error) {
	var c entity.StockCorrection
	err := row.Scan(&c.ID, &c.CompanyID, &c.Reference, &c.Reason, &c.Status, &c.PurchaseID, &c.TransferID,
		&c.StoreID, &c.ShopID, &c.Notes, &c.CreatedBy, &c.ApprovedBy, &c.ApprovedAt, &c.RejectedBy, &c.RejectedAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserta cabecera e ítems.
func (r *StockCorrectionRepo) Create(ctx context.Context, c *entity.StockCorrection) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_corrections (id, company_id, reference, reason, status, purchase_id, transfer_id, store_id,
			shop_id, notes, created_by, approved_by, approved_at, rejected_by, rejected_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		c.ID, c.CompanyID, c.Reference, c.Reason, c.Status, nullIfEmpty(c.PurchaseID), nullIfEmpty(c.TransferID),
		nullIfEmpty(c.StoreID), nullIfEmpty(c.ShopID), c.Notes, c.CreatedBy, c.ApprovedBy, c.ApprovedAt,
		c.RejectedBy, c.RejectedAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock correction: %w", err)
	}
	return r.insertItems(ctx, c)
}

func (r *StockCorrectionRepo) insertItems(ctx context.Context, c *entity.StockCorrection) error {
	b := &pgx.Batch{}
	for i, it := range c.Items {
		b.Queue(`
			INSERT INTO stock_correction_items (id, correction_id, position, product_id, batch_id, unit_of_measure_id, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, c.ID, i, it.ProductID, nullIfEmpty(it.BatchID), it.UnitOfMeasureID, it.Quantity)
	}
	if err := execBatch(ctx, r.q, b); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("unidad de medida eliminada: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert stock correction items: %w", err)
	}
	return nil
}

func (r *StockCorrectionRepo) get(ctx context.Context, id, suffix string) (*entity.StockCorrection, error) {
	c, err := scanCorrection(r.q.QueryRow(ctx, `SELECT `+correctionColumns+` FROM stock_corrections WHERE id = $1`+suffix, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock correction: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.StockCorrection{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID obtiene la corrección con sus ítems; (nil, nil) si no existe.
func (r *StockCorrectionRepo) GetByID(ctx context.Context, id string) (*entity.StockCorrection, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate igual que GetByID pero bloquea la cabecera (SELECT ... FOR UPDATE).
func (r *StockCorrectionRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockCorrection, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *StockCorrectionRepo) loadItems(ctx context.Context, list []*entity.StockCorrection) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	byID := make(map[string]*entity.StockCorrection, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
		byID[c.ID] = c
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, correction_id, product_id, COALESCE(batch_id,''), unit_of_measure_id, quantity
		FROM stock_correction_items WHERE correction_id = ANY($1) ORDER BY correction_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list stock correction items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.StockCorrectionItem
		if err := rows.Scan(&it.ID, &it.CorrectionID, &it.ProductID, &it.BatchID, &it.UnitOfMeasureID, &it.Quantity); err != nil {
			return fmt.Errorf("scan stock correction item: %w", err)
		}
		c := byID[it.CorrectionID]
		c.Items = append(c.Items, it)
	}
	return rows.Err()
}

// Update reescribe la cabecera y reemplaza los ítems.
func (r *StockCorrectionRepo) Update(ctx context.Context, c *entity.StockCorrection) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_corrections SET reason = $2, status = $3, purchase_id = $4, transfer_id = $5, store_id = $6,
			shop_id = $7, notes = $8, approved_by = $9, approved_at = $10, rejected_by = $11, rejected_at = $12,
			updated_at = $13
		WHERE id = $1`,
		c.ID, c.Reason, c.Status, nullIfEmpty(c.PurchaseID), nullIfEmpty(c.TransferID), nullIfEmpty(c.StoreID),
		nullIfEmpty(c.ShopID), c.Notes, c.ApprovedBy, c.ApprovedAt, c.RejectedBy, c.RejectedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock correction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_correction_items WHERE correction_id = $1`, c.ID); err != nil {
		return fmt.Errorf("delete stock correction items: %w", err)
	}
	return r.insertItems(ctx, c)
}

// Delete elimina la corrección; los ítems caen en cascada.
func (r *StockCorrectionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_corrections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock correction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List filtra por estado, motivo, ubicación y rango de creación.
func (r *StockCorrectionRepo) List(ctx context.Context, f repository.CorrectionFilter, page repository.Page) ([]*entity.StockCorrection, int, error) {
	w := &where{}
	w.add("company_id = $%d", f.CompanyID)
	w.addIf(f.Status != "", "status = $%d", f.Status)
	w.addIf(f.Reason != "", "reason = $%d", f.Reason)
	switch f.LocationType {
	case entity.LocationStore:
		w.conds = append(w.conds, "store_id IS NOT NULL")
		w.addIf(f.LocationID != "", "store_id = $%d", f.LocationID)
	case entity.LocationShop:
		w.conds = append(w.conds, "shop_id IS NOT NULL")
		w.addIf(f.LocationID != "", "shop_id = $%d", f.LocationID)
	default:
		w.addIf(f.LocationID != "", "COALESCE(store_id, shop_id) = $%d", f.LocationID)
	}
	w.dateRange("created_at", f.Created)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_corrections`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock corrections: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+correctionColumns+` FROM stock_corrections`+w.String()+
		` ORDER BY created_at DESC, id`+w.page(page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock corrections: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockCorrection
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stock correction: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()
	if err := r.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
