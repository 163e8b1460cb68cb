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
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.UnitOfMeasureRepository = (*UnitRepo)(nil)
	_ repository.BatchRepository         = (*BatchRepo)(nil)
)

const productColumns = `id, company_id, sku, name, description, price, unit_measure, warning_quantity, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.UnitMeasure,
		&p.WarningQuantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. SKU repetido en la empresa devuelve ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.CompanyID, p.SKU, p.Name, p.Description, p.Price, p.UnitMeasure, p.WarningQuantity, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByCompanyAndSKU obtiene un producto por empresa y SKU.
func (r *ProductRepo) GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE company_id = $1 AND sku = $2`, companyID, sku))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// Update actualiza datos de catálogo. El SKU no cambia.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, description = $3, price = $4, unit_measure = $5, warning_quantity = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Price, p.UnitMeasure, p.WarningQuantity, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List busca por nombre o SKU (ILIKE), más recientes primero.
func (r *ProductRepo) List(ctx context.Context, companyID, search string, page repository.Page) ([]*entity.Product, int, error) {
	w := &where{}
	w.add("company_id = $%d", companyID)
	if search != "" {
		w.add("(name ILIKE $%[1]d OR sku ILIKE $%[1]d)", "%"+search+"%")
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products`+w.String()+` ORDER BY created_at DESC, id`+w.page(page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// Delete elimina un producto sin lotes. Con lotes devuelve ErrConflict.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UnitRepo unidades de medida.
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador de unidades.
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

// Create persiste una unidad. Nombre repetido (sin distinguir mayúsculas) devuelve ErrDuplicate.
func (r *UnitRepo) Create(ctx context.Context, u *entity.UnitOfMeasure) error {
	_, err := r.q.Exec(ctx, `INSERT INTO units_of_measure (id, company_id, name, factor, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.CompanyID, u.Name, u.Factor, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert unit: %w", err)
	}
	return nil
}

// GetByID obtiene una unidad.
func (r *UnitRepo) GetByID(ctx context.Context, id string) (*entity.UnitOfMeasure, error) {
	var u entity.UnitOfMeasure
	err := r.q.QueryRow(ctx, `SELECT id, company_id, name, factor, created_at FROM units_of_measure WHERE id = $1`, id).
		Scan(&u.ID, &u.CompanyID, &u.Name, &u.Factor, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return &u, nil
}

// ListByCompany unidades de la empresa por nombre.
func (r *UnitRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.UnitOfMeasure, error) {
	rows, err := r.q.Query(ctx, `SELECT id, company_id, name, factor, created_at FROM units_of_measure WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()
	var list []*entity.UnitOfMeasure
	for rows.Next() {
		var u entity.UnitOfMeasure
		if err := rows.Scan(&u.ID, &u.CompanyID, &u.Name, &u.Factor, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// Delete elimina una unidad. Si algún ítem de corrección la referencia devuelve ErrConflict.
func (r *UnitRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM units_of_measure WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete unit: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const batchColumns = `id, company_id, product_id, store_id, COALESCE(purchase_id, ''), batch_number, expiry_date,
	price, stock, warning_quantity, created_at, updated_at`

// BatchRepo lotes de producto.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes.
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

func scanBatch(row pgx.Row) (*entity.ProductBatch, error) {
	var b entity.ProductBatch
	err := row.Scan(&b.ID, &b.CompanyID, &b.ProductID, &b.StoreID, &b.PurchaseID, &b.BatchNumber, &b.ExpiryDate,
		&b.Price, &b.Stock, &b.WarningQuantity, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create persiste un lote. Número repetido para el producto devuelve ErrDuplicate.
func (r *BatchRepo) Create(ctx context.Context, b *entity.ProductBatch) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_batches (id, company_id, product_id, store_id, purchase_id, batch_number, expiry_date,
			price, stock, warning_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.CompanyID, b.ProductID, b.StoreID, nullIfEmpty(b.PurchaseID), b.BatchNumber, b.ExpiryDate,
		b.Price, b.Stock, b.WarningQuantity, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.ProductBatch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM product_batches WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// GetByProductAndNumber busca un lote por producto y número ya normalizado.
func (r *BatchRepo) GetByProductAndNumber(ctx context.Context, productID, batchNumber string) (*entity.ProductBatch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM product_batches WHERE product_id = $1 AND batch_number = $2`,
		productID, batchNumber))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch by number: %w", err)
	}
	return b, nil
}

// List lotes filtrados, más recientes primero.
func (r *BatchRepo) List(ctx context.Context, f repository.BatchFilter, page repository.Page) ([]*entity.ProductBatch, int, error) {
	w := &where{}
	w.add("company_id = $%d", f.CompanyID)
	w.addIf(f.ProductID != "", "product_id = $%d", f.ProductID)
	w.addIf(f.StoreID != "", "store_id = $%d", f.StoreID)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM product_batches`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count batches: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+batchColumns+` FROM product_batches`+w.String()+` ORDER BY created_at DESC, id`+w.page(page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, total, rows.Err()
}

// SetStock refleja la cantidad del almacén de recepción en el lote.
func (r *BatchRepo) SetStock(ctx context.Context, batchID string, quantity decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `UPDATE product_batches SET stock = $2, updated_at = now() WHERE id = $1`, batchID, quantity)
	if err != nil {
		return fmt.Errorf("set batch stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
