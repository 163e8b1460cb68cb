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

var (
	_ repository.SellRepository     = (*SellRepo)(nil)
	_ repository.TransferRepository = (*TransferRepo)(nil)
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
)

// ── Ventas ───────────────────────────────────────────────────────────────────

// SellRepo implementa SellRepository.
type SellRepo struct {
	q Querier
}

// NewSellRepository construye el adaptador de ventas.
func NewSellRepository(q Querier) *SellRepo {
	return &SellRepo{q: q}
}

const sellColumns = `id, company_id, invoice_no, location_type, location_id, customer_name, total, sold_by, sold_at, created_at`

func scanSell(row pgx.Row) (*entity.Sell, error) {
	var s entity.Sell
	if err := row.Scan(&s.ID, &s.CompanyID, &s.InvoiceNo, &s.LocationType, &s.LocationID, &s.CustomerName,
		&s.Total, &s.SoldBy, &s.SoldAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserta la venta con sus líneas y asignaciones por lote.
func (r *SellRepo) Create(ctx context.Context, s *entity.Sell) error {
	_, err := r.q.Exec(ctx, `INSERT INTO sells (`+sellColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.CompanyID, s.InvoiceNo, s.LocationType, s.LocationID, s.CustomerName, s.Total, s.SoldBy, s.SoldAt, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sell: %w", err)
	}
	b := &pgx.Batch{}
	for i, it := range s.Items {
		b.Queue(`
			INSERT INTO sell_items (id, sell_id, position, product_id, unit_price, quantity, total_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, s.ID, i, it.ProductID, it.UnitPrice, it.Quantity, it.TotalPrice)
		for j, sb := range it.Batches {
			b.Queue(`INSERT INTO sell_item_batches (sell_item_id, position, batch_id, quantity) VALUES ($1, $2, $3, $4)`,
				it.ID, j, sb.BatchID, sb.Quantity)
		}
	}
	if err := execBatch(ctx, r.q, b); err != nil {
		return fmt.Errorf("insert sell items: %w", err)
	}
	return nil
}

func (r *SellRepo) getOne(ctx context.Context, sql string, args ...any) (*entity.Sell, error) {
	s, err := scanSell(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sell: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Sell{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID (nil, nil) si no existe.
func (r *SellRepo) GetByID(ctx context.Context, id string) (*entity.Sell, error) {
	return r.getOne(ctx, `SELECT `+sellColumns+` FROM sells WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera hasta el fin de la tx.
func (r *SellRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sell, error) {
	return r.getOne(ctx, `SELECT `+sellColumns+` FROM sells WHERE id = $1 FOR UPDATE`, id)
}

// GetByInvoiceNo busca por número de factura dentro de la empresa.
func (r *SellRepo) GetByInvoiceNo(ctx context.Context, companyID, invoiceNo string) (*entity.Sell, error) {
	return r.getOne(ctx, `SELECT `+sellColumns+` FROM sells WHERE company_id = $1 AND invoice_no = $2`, companyID, invoiceNo)
}

func (r *SellRepo) loadItems(ctx context.Context, list []*entity.Sell) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	byID := make(map[string]*entity.Sell, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
		byID[s.ID] = s
	}
	rows, err := r.q.Query(ctx, `
		SELECT i.id, i.sell_id, i.product_id, i.unit_price, i.quantity, i.total_price, b.batch_id, b.quantity
		FROM sell_items i
		LEFT JOIN sell_item_batches b ON b.sell_item_id = i.id
		WHERE i.sell_id = ANY($1)
		ORDER BY i.sell_id, i.position, b.position`, ids)
	if err != nil {
		return fmt.Errorf("list sell items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SellItem
		var batchID *string
		var qty decimal.NullDecimal
		if err := rows.Scan(&it.ID, &it.SellID, &it.ProductID, &it.UnitPrice, &it.Quantity, &it.TotalPrice, &batchID, &qty); err != nil {
			return fmt.Errorf("scan sell item: %w", err)
		}
		s := byID[it.SellID]
		n := len(s.Items)
		if n == 0 || s.Items[n-1].ID != it.ID {
			s.Items = append(s.Items, it)
			n++
		}
		if batchID != nil {
			s.Items[n-1].Batches = append(s.Items[n-1].Batches, entity.SellItemBatch{BatchID: *batchID, Quantity: qty.Decimal})
		}
	}
	return rows.Err()
}

// List ventas por ubicación y rango de fecha de venta.
func (r *SellRepo) List(ctx context.Context, f repository.DocumentFilter, page repository.Page) ([]*entity.Sell, int, error) {
	w := &where{}
	w.add("company_id = $%d", f.CompanyID)
	w.addIf(f.LocationType != "", "location_type = $%d", f.LocationType)
	w.addIf(f.LocationID != "", "location_id = $%d", f.LocationID)
	w.dateRange("sold_at", f.Created)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sells`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sells: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+sellColumns+` FROM sells`+w.String()+` ORDER BY sold_at DESC, id`+w.page(page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sells: %w", err)
	}
	list, err := collectHeaders(rows, scanSell)
	if err != nil {
		return nil, 0, fmt.Errorf("scan sell: %w", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// collectHeaders lee y cierra las filas antes de cargar los hijos (una sola conexión por tx).
func collectHeaders[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()
	var list []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// ── Traslados ────────────────────────────────────────────────────────────────

// TransferRepo implementa TransferRepository.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traslados.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, company_id, reference, from_location_type, from_location_id, to_location_type, to_location_id,
	notes, created_by, created_at`

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	if err := row.Scan(&t.ID, &t.CompanyID, &t.Reference, &t.FromLocationType, &t.FromLocationID, &t.ToLocationType,
		&t.ToLocationID, &t.Notes, &t.CreatedBy, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserta el traslado y sus ítems.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	b := &pgx.Batch{}
	b.Queue(`INSERT INTO transfers (`+transferColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.CompanyID, t.Reference, t.FromLocationType, t.FromLocationID, t.ToLocationType, t.ToLocationID,
		t.Notes, t.CreatedBy, t.CreatedAt)
	for i, it := range t.Items {
		b.Queue(`INSERT INTO transfer_items (transfer_id, position, batch_id, quantity) VALUES ($1, $2, $3, $4)`,
			t.ID, i, it.BatchID, it.Quantity)
	}
	if err := execBatch(ctx, r.q, b); err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Transfer{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TransferRepo) loadItems(ctx context.Context, list []*entity.Transfer) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	byID := make(map[string]*entity.Transfer, len(list))
	for _, t := range list {
		ids = append(ids, t.ID)
		byID[t.ID] = t
	}
	rows, err := r.q.Query(ctx, `
		SELECT transfer_id, batch_id, quantity FROM transfer_items
		WHERE transfer_id = ANY($1) ORDER BY transfer_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var transferID string
		var it entity.TransferItem
		if err := rows.Scan(&transferID, &it.BatchID, &it.Quantity); err != nil {
			return fmt.Errorf("scan transfer item: %w", err)
		}
		byID[transferID].Items = append(byID[transferID].Items, it)
	}
	return rows.Err()
}

// List con filtro de ubicación incluye traslados que salen o llegan a ella.
func (r *TransferRepo) List(ctx context.Context, f repository.DocumentFilter, page repository.Page) ([]*entity.Transfer, int, error) {
	w := &where{}
	w.add("company_id = $%d", f.CompanyID)
	w.addIf(f.LocationType != "", "(from_location_type = $%[1]d OR to_location_type = $%[1]d)", f.LocationType)
	w.addIf(f.LocationID != "", "(from_location_id = $%[1]d OR to_location_id = $%[1]d)", f.LocationID)
	w.dateRange("created_at", f.Created)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transfers`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+transferColumns+` FROM transfers`+w.String()+` ORDER BY created_at DESC, id`+w.page(page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	list, err := collectHeaders(rows, scanTransfer)
	if err != nil {
		return nil, 0, fmt.Errorf("scan transfer: %w", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ── Compras ──────────────────────────────────────────────────────────────────

// PurchaseRepo implementa PurchaseRepository.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador de compras.
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `id, company_id, reference, supplier_name, store_id, total, created_by, created_at`

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Reference, &p.SupplierName, &p.StoreID, &p.Total, &p.CreatedBy, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserta la compra y sus líneas. Los lotes se crean aparte (BatchRepo).
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	b := &pgx.Batch{}
	b.Queue(`INSERT INTO purchases (`+purchaseColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.CompanyID, p.Reference, p.SupplierName, p.StoreID, p.Total, p.CreatedBy, p.CreatedAt)
	for i, it := range p.Items {
		b.Queue(`
			INSERT INTO purchase_items (purchase_id, position, product_id, batch_id, batch_number, expiry_date, price,
				quantity, warning_quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID, i, it.ProductID, it.BatchID, it.BatchNumber, it.ExpiryDate, it.Price, it.Quantity, it.WarningQuantity)
	}
	if err := execBatch(ctx, r.q, b); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Purchase{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PurchaseRepo) loadItems(ctx context.Context, list []*entity.Purchase) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, 0, len(list))
	byID := make(map[string]*entity.Purchase, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}
	rows, err := r.q.Query(ctx, `
		SELECT purchase_id, product_id, batch_id, batch_number, expiry_date, price, quantity, warning_quantity
		FROM purchase_items WHERE purchase_id = ANY($1) ORDER BY purchase_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var purchaseID string
		var it entity.PurchaseItem
		if err := rows.Scan(&purchaseID, &it.ProductID, &it.BatchID, &it.BatchNumber, &it.ExpiryDate, &it.Price,
			&it.Quantity, &it.WarningQuantity); err != nil {
			return fmt.Errorf("scan purchase item: %w", err)
		}
		byID[purchaseID].Items = append(byID[purchaseID].Items, it)
	}
	return rows.Err()
}

// List una compra siempre ocurre en una bodega (STORE).
func (r *PurchaseRepo) List(ctx context.Context, f repository.DocumentFilter, page repository.Page) ([]*entity.Purchase, int, error) {
	if f.LocationType != "" && f.LocationType != entity.LocationStore {
		return nil, 0, nil
	}
	w := &where{}
	w.add("company_id = $%d", f.CompanyID)
	w.addIf(f.LocationID != "", "store_id = $%d", f.LocationID)
	w.dateRange("created_at", f.Created)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM purchases`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchases: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+purchaseColumns+` FROM purchases`+w.String()+` ORDER BY created_at DESC, id`+w.page(page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list purchases: %w", err)
	}
	list, err := collectHeaders(rows, scanPurchase)
	if err != nil {
		return nil, 0, fmt.Errorf("scan purchase: %w", err)
	}
	if err := r.loadItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
