package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/inventory"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// PurchaseUseCase recepción de compras: cada ítem crea un lote en el almacén con un IN en el ledger.
type PurchaseUseCase struct {
	tx     TxRunner
	repos  Repos
	engine *StockEngine
	log    *logger.Logger
}

// NewPurchaseUseCase construye el caso de uso.
func NewPurchaseUseCase(tx TxRunner, repos Repos, engine *StockEngine, log *logger.Logger) *PurchaseUseCase {
	return &PurchaseUseCase{tx: tx, repos: repos, engine: engine, log: log}
}

// Create registra la compra y sus lotes en una sola transacción.
func (uc *PurchaseUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "se requiere al menos un ítem")
	}
	v := &domain.ValidationError{Fields: map[string]string{}}
	seen := make(map[string]bool, len(in.Items))
	for i, it := range in.Items {
		key := fmt.Sprintf("items[%d]", i)
		if !it.Quantity.IsPositive() {
			v.Fields[key+".quantity"] = "debe ser mayor a cero"
		}
		if it.Price.IsNegative() {
			v.Fields[key+".price"] = "no puede ser negativo"
		}
		number := inventory.NormalizeBatchNumber(it.BatchNumber)
		if number == "" {
			v.Fields[key+".batch_number"] = "requerido"
		}
		if seen[it.ProductID+"|"+number] {
			v.Fields[key+".batch_number"] = "lote repetido en la compra"
		}
		seen[it.ProductID+"|"+number] = true
	}
	if len(v.Fields) > 0 {
		return nil, v
	}

	now := time.Now().UTC()
	p := &entity.Purchase{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		Reference:    in.Reference,
		SupplierName: in.SupplierName,
		StoreID:      in.StoreID,
		CreatedBy:    userID,
		CreatedAt:    now,
		Total:        decimal.Zero,
	}
	if p.Reference == "" {
		p.Reference = NewReference("PO", now)
	}
	store := entity.LocationRef{Type: entity.LocationStore, ID: in.StoreID}

	err := uc.tx.Run(ctx, func(r Repos) error {
		loc, err := r.Locations.GetByID(ctx, in.StoreID)
		if err != nil {
			return err
		}
		if loc == nil || loc.CompanyID != companyID || loc.Type != entity.LocationStore {
			return fmt.Errorf("almacén %s: %w", in.StoreID, domain.ErrNotFound)
		}
		movs := make([]Movement, 0, len(in.Items))
		batches := make([]*entity.ProductBatch, 0, len(in.Items))
		for i, it := range in.Items {
			product, err := r.Products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if product == nil || product.CompanyID != companyID {
				return fmt.Errorf("items[%d] producto %s: %w", i, it.ProductID, domain.ErrNotFound)
			}
			b := &entity.ProductBatch{
				ID:              uuid.New().String(),
				CompanyID:       companyID,
				ProductID:       it.ProductID,
				StoreID:         in.StoreID,
				PurchaseID:      p.ID,
				BatchNumber:     inventory.NormalizeBatchNumber(it.BatchNumber),
				ExpiryDate:      it.ExpiryDate,
				Price:           it.Price,
				Stock:           decimal.Zero,
				WarningQuantity: it.WarningQuantity,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			batches = append(batches, b)
			p.Items = append(p.Items, entity.PurchaseItem{
				ProductID:       it.ProductID,
				BatchID:         b.ID,
				BatchNumber:     b.BatchNumber,
				ExpiryDate:      it.ExpiryDate,
				Price:           it.Price,
				Quantity:        it.Quantity,
				WarningQuantity: it.WarningQuantity,
			})
			p.Total = p.Total.Add(it.Price.Mul(it.Quantity))
			movs = append(movs, Movement{
				BatchID: b.ID, Location: store, Type: entity.MovementIN, Quantity: it.Quantity,
				Reference: p.Reference, SourceType: entity.SourcePurchase, SourceID: p.ID,
			})
		}
		// La compra va antes que los lotes: product_batches.purchase_id la referencia.
		if err := r.Purchases.Create(ctx, p); err != nil {
			return err
		}
		for _, b := range batches {
			if err := r.Batches.Create(ctx, b); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					return domain.NewValidationError("batch_number", "el lote "+b.BatchNumber+" ya existe para el producto")
				}
				return err
			}
		}
		return uc.engine.Apply(ctx, r, companyID, userID, now, movs)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("purchase_id", p.ID).Str("reference", p.Reference).
		Int("batches", len(p.Items)).Msg("compra recibida")
	out := ToPurchaseResponse(p)
	return &out, nil
}

// GetByID obtiene una compra.
func (uc *PurchaseUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.PurchaseResponse, error) {
	p, err := uc.repos.Purchases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	out := ToPurchaseResponse(p)
	return &out, nil
}

// List lista compras.
func (uc *PurchaseUseCase) List(ctx context.Context, companyID string, q dto.DocumentQuery) (dto.ListResponse[dto.PurchaseResponse], error) {
	f, page, err := BuildDocumentFilter(companyID, &q)
	if err != nil {
		return dto.ListResponse[dto.PurchaseResponse]{}, err
	}
	list, total, err := uc.repos.Purchases.List(ctx, f, page)
	if err != nil {
		return dto.ListResponse[dto.PurchaseResponse]{}, err
	}
	out := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToPurchaseResponse(p))
	}
	return dto.NewListResponse(out, total, q.PageRequest), nil
}

// ToPurchaseResponse mapea una compra.
func ToPurchaseResponse(p *entity.Purchase) dto.PurchaseResponse {
	out := dto.PurchaseResponse{
		ID:           p.ID,
		Reference:    p.Reference,
		SupplierName: p.SupplierName,
		StoreID:      p.StoreID,
		Total:        p.Total,
		CreatedBy:    p.CreatedBy,
		CreatedAt:    p.CreatedAt,
		Items:        make([]dto.PurchaseItemResponse, 0, len(p.Items)),
	}
	for _, it := range p.Items {
		out.Items = append(out.Items, dto.PurchaseItemResponse{
			ProductID:   it.ProductID,
			BatchID:     it.BatchID,
			BatchNumber: it.BatchNumber,
			ExpiryDate:  it.ExpiryDate,
			Price:       it.Price,
			Quantity:    it.Quantity,
		})
	}
	return out
}
