package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ repository.SellStockCorrectionRepository = (*SellCorrectionRepo)(nil)

// SellCorrectionRepo implementa SellStockCorrectionRepository.
type SellCorrectionRepo struct {
	q Querier
}

// NewSellCorrectionRepository construye el adaptador de correcciones de venta.
func NewSellCorrectionRepository(q Querier) *SellCorrectionRepo {
	return &SellCorrectionRepo{q: q}
}

const sellCorrectionColumns = `id, company_id, sell_id, reference, notes, status, total, is_checked, checked_by, checked_at,
	created_by, decided_by, decided_at, created_at, updated_at`

func scanSellCorrection(row pgx.Row) (*entity.SellStockCorrection, error) {
	var c entity.SellStockCorrection
	err := row.Scan(&c.ID, &c.CompanyID, &c.SellID, &c.Reference, &c.Notes, &c.Status, &c.Total, &c.IsChecked,
		&c.CheckedBy, &c.CheckedAt, &c.CreatedBy, &c.DecidedBy, &c.DecidedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserta cabecera, ítems y lotes en un solo batch.
func (r *SellCorrectionRepo) Create(ctx context.Context, c *entity.SellStockCorrection) error {
	b := &pgx.Batch{}
	b.Queue(`
		INSERT INTO sell_stock_corrections (`+sellCorrectionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.CompanyID, c.SellID, c.Reference, c.Notes, c.Status, c.Total, c.IsChecked, c.CheckedBy, c.CheckedAt,
		c.CreatedBy, c.DecidedBy, c.DecidedAt, c.CreatedAt, c.UpdatedAt)
	for i, it := range c.Items {
		b.Queue(`
			INSERT INTO sell_stock_correction_items (id, correction_id, position, sell_item_id, product_id, unit_price,
				quantity, total_price, item_sale_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, c.ID, i, it.SellItemID, it.ProductID, it.UnitPrice, it.Quantity, it.TotalPrice, it.ItemSaleStatus)
		for j, bt := range it.Batches {
			b.Queue(`INSERT INTO sell_stock_correction_batches (item_id, position, batch_id, quantity) VALUES ($1, $2, $3, $4)`,
				it.ID, j, bt.BatchID, bt.Quantity)
		}
	}
	if err := execBatch(ctx, r.q, b); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert sell correction: %w", err)
	}
	return nil
}

func (r *SellCorrectionRepo) get(ctx context.Context, id, suffix string) (*entity.SellStockCorrection, error) {
	c, err := scanSellCorrection(r.q.QueryRow(ctx, `SELECT `+sellCorrectionColumns+` FROM sell_stock_corrections WHERE id = $1`+suffix, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sell correction: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.SellStockCorrection{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID (nil, nil) si no existe.
func (r *SellCorrectionRepo) GetByID(ctx context.Context, id string) (*entity.SellStockCorrection, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera hasta el fin de la tx.
func (r *SellCorrectionRepo) GetForUpdate(ctx context.Context, id string) (*entity.SellStockCorrection, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *SellCorrectionRepo) loadItems(ctx context.Context, list []*entity.SellStockCorrection) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	byID := make(map[string]*entity.SellStockCorrection, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
		byID[c.ID] = c
	}
	rows, err := r.q.Query(ctx, `
		SELECT i.id, i.correction_id, i.sell_item_id, i.product_id, i.unit_price, i.quantity, i.total_price,
			i.item_sale_status, b.batch_id, b.quantity
		FROM sell_stock_correction_items i
		LEFT JOIN sell_stock_correction_batches b ON b.item_id = i.id
		WHERE i.correction_id = ANY($1)
		ORDER BY i.correction_id, i.position, b.position`, ids)
	if err != nil {
		return fmt.Errorf("list sell correction items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SellStockCorrectionItem
		var bt struct {
			batchID  *string
			quantity decimal.NullDecimal
		}
		if err := rows.Scan(&it.ID, &it.CorrectionID, &it.SellItemID, &it.ProductID, &it.UnitPrice, &it.Quantity,
			&it.TotalPrice, &it.ItemSaleStatus, &bt.batchID, &bt.quantity); err != nil {
			return fmt.Errorf("scan sell correction item: %w", err)
		}
		c := byID[it.CorrectionID]
		n := len(c.Items)
		if n == 0 || c.Items[n-1].ID != it.ID {
			c.Items = append(c.Items, it)
			n++
		}
		if bt.batchID != nil {
			c.Items[n-1].Batches = append(c.Items[n-1].Batches, entity.SellStockCorrectionBatch{
				BatchID: *bt.batchID, Quantity: bt.quantity.Decimal,
			})
		}
	}
	return rows.Err()
}

// Update persiste estado, revisión, decisión y estado por ítem.
func (r *SellCorrectionRepo) Update(ctx context.Context, c *entity.SellStockCorrection) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sell_stock_corrections SET notes = $2, status = $3, total = $4, is_checked = $5, checked_by = $6,
			checked_at = $7, decided_by = $8, decided_at = $9, updated_at = $10
		WHERE id = $1`,
		c.ID, c.Notes, c.Status, c.Total, c.IsChecked, c.CheckedBy, c.CheckedAt, c.DecidedBy, c.DecidedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update sell correction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	b := &pgx.Batch{}
	for _, it := range c.Items {
		b.Queue(`UPDATE sell_stock_correction_items SET item_sale_status = $2 WHERE id = $1`, it.ID, it.ItemSaleStatus)
	}
	if err := execBatch(ctx, r.q, b); err != nil {
		return fmt.Errorf("update sell correction items: %w", err)
	}
	return nil
}

func (r *SellCorrectionRepo) list(ctx context.Context, w *where, suffix string) ([]*entity.SellStockCorrection, error) {
	rows, err := r.q.Query(ctx, `SELECT `+sellCorrectionColumns+` FROM sell_stock_corrections`+w.String()+
		` ORDER BY created_at DESC, id`+suffix, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list sell corrections: %w", err)
	}
	defer rows.Close()
	var list []*entity.SellStockCorrection
	for rows.Next() {
		c, err := scanSellCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sell correction: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListBySell correcciones de una venta, más recientes primero.
func (r *SellCorrectionRepo) ListBySell(ctx context.Context, sellID string) ([]*entity.SellStockCorrection, error) {
	w := &where{}
	w.add("sell_id = $%d", sellID)
	return r.list(ctx, w, "")
}

// List filtra por venta, estado y marca de revisión.
func (r *SellCorrectionRepo) List(ctx context.Context, f repository.SellCorrectionFilter, page repository.Page) ([]*entity.SellStockCorrection, int, error) {
	w := &where{}
	w.add("company_id = $%d", f.CompanyID)
	w.addIf(f.SellID != "", "sell_id = $%d", f.SellID)
	w.addIf(f.Status != "", "status = $%d", f.Status)
	if f.IsChecked != nil {
		w.add("is_checked = $%d", *f.IsChecked)
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sell_stock_corrections`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sell corrections: %w", err)
	}
	list, err := r.list(ctx, w, w.page(page))
	return list, total, err
}
