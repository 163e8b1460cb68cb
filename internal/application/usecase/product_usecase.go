package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos y unidades de medida.
// El stock vive en los lotes y se maneja vía movimientos.
type ProductUseCase struct {
	repo  repository.ProductRepository
	units repository.UnitOfMeasureRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, units repository.UnitOfMeasureRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, units: units}
}

// Create crea un nuevo producto. Devuelve ErrDuplicate si el SKU ya existe en la empresa.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	existing, err := uc.repo.GetByCompanyAndSKU(ctx, companyID, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := validateAmounts(in.Price, in.WarningQuantity); err != nil {
		return nil, err
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "unidad"
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		SKU:             sku,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Price:           in.Price,
		UnitMeasure:     in.UnitMeasure,
		WarningQuantity: in.WarningQuantity,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	out := toProductResponse(product)
	return &out, nil
}

// GetByID obtiene un producto de la empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	out := toProductResponse(product)
	return &out, nil
}

// Update actualiza datos de catálogo. El SKU no cambia.
func (uc *ProductUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.UnitMeasure != nil {
		product.UnitMeasure = *in.UnitMeasure
	}
	if in.WarningQuantity != nil {
		product.WarningQuantity = in.WarningQuantity
	}
	if err := validateAmounts(product.Price, product.WarningQuantity); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	out := toProductResponse(product)
	return &out, nil
}

// List lista productos por empresa con búsqueda por nombre o SKU.
func (uc *ProductUseCase) List(ctx context.Context, companyID, search string, page dto.PageRequest) (dto.ListResponse[dto.ProductResponse], error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, companyID, strings.TrimSpace(search), repository.Page{Limit: page.Limit, Offset: page.Offset()})
	if err != nil {
		return dto.ListResponse[dto.ProductResponse]{}, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, toProductResponse(p))
	}
	return dto.NewListResponse(items, total, page), nil
}

// Delete elimina un producto sin lotes. Devuelve ErrConflict si ya tiene lotes.
func (uc *ProductUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.load(ctx, companyID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// CreateUnit registra una unidad de medida con factor > 0.
func (uc *ProductUseCase) CreateUnit(ctx context.Context, companyID string, in dto.CreateUnitRequest) (*dto.UnitResponse, error) {
	if !in.Factor.IsPositive() {
		return nil, domain.NewValidationError("factor", "debe ser mayor a cero")
	}
	u := &entity.UnitOfMeasure{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      strings.TrimSpace(in.Name),
		Factor:    in.Factor,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.units.Create(ctx, u); err != nil {
		return nil, err
	}
	out := toUnitResponse(u)
	return &out, nil
}

// ListUnits unidades de la empresa.
func (uc *ProductUseCase) ListUnits(ctx context.Context, companyID string) ([]dto.UnitResponse, error) {
	list, err := uc.units.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UnitResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUnitResponse(u))
	}
	return out, nil
}

// DeleteUnit elimina una unidad de la empresa. Devuelve ErrConflict si una corrección la usa.
func (uc *ProductUseCase) DeleteUnit(ctx context.Context, companyID, id string) error {
	u, err := uc.units.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil || u.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return uc.units.Delete(ctx, id)
}

func (uc *ProductUseCase) load(ctx context.Context, companyID, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func validateAmounts(price decimal.Decimal, warning *decimal.Decimal) error {
	if price.IsNegative() {
		return domain.NewValidationError("price", "no puede ser negativo")
	}
	if warning != nil && warning.IsNegative() {
		return domain.NewValidationError("warning_quantity", "no puede ser negativo")
	}
	return nil
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:              p.ID,
		CompanyID:       p.CompanyID,
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		UnitMeasure:     p.UnitMeasure,
		WarningQuantity: p.WarningQuantity,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toUnitResponse(u *entity.UnitOfMeasure) dto.UnitResponse {
	return dto.UnitResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Name:      u.Name,
		Factor:    u.Factor,
		CreatedAt: u.CreatedAt,
	}
}
