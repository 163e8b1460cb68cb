package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// List busca por nombre o SKU (search vacío = todos).
	List(ctx context.Context, companyID, search string, page Page) ([]*entity.Product, int, error)
	Delete(ctx context.Context, id string) error
}

// UnitOfMeasureRepository unidades de medida con su factor a unidad base.
type UnitOfMeasureRepository interface {
	Create(ctx context.Context, unit *entity.UnitOfMeasure) error
	GetByID(ctx context.Context, id string) (*entity.UnitOfMeasure, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.UnitOfMeasure, error)
	Delete(ctx context.Context, id string) error
}

// BatchRepository lotes de producto.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.ProductBatch) error
	GetByID(ctx context.Context, id string) (*entity.ProductBatch, error)
	GetByProductAndNumber(ctx context.Context, productID, batchNumber string) (*entity.ProductBatch, error)
	List(ctx context.Context, filter BatchFilter, page Page) ([]*entity.ProductBatch, int, error)
	// SetStock refleja en el lote la cantidad en su almacén de recepción.
	SetStock(ctx context.Context, batchID string, quantity decimal.Decimal) error
}
