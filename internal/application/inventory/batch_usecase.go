package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// BatchUseCase consultas de lotes y del reporte de stock bajo.
type BatchUseCase struct {
	repos Repos
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(repos Repos) *BatchUseCase {
	return &BatchUseCase{repos: repos}
}

// List lista lotes de la empresa con filtros y paginación.
func (uc *BatchUseCase) List(ctx context.Context, companyID string, q dto.BatchListQuery) (dto.ListResponse[dto.BatchResponse], error) {
	page := ToPage(&q.PageRequest)
	list, total, err := uc.repos.Batches.List(ctx, repository.BatchFilter{
		CompanyID: companyID,
		ProductID: q.ProductID,
		StoreID:   q.StoreID,
	}, page)
	if err != nil {
		return dto.ListResponse[dto.BatchResponse]{}, err
	}
	out := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, ToBatchResponse(b, nil))
	}
	return dto.NewListResponse(out, total, q.PageRequest), nil
}

// GetByID devuelve el lote con su distribución por ubicación.
func (uc *BatchUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.BatchResponse, error) {
	b, err := uc.repos.Batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil || b.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	stocks, err := uc.repos.Stock.ListByBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToBatchResponse(b, stocks)
	return &out, nil
}

// LowStock devuelve los lotes cuyo stock total (todas las ubicaciones) está en o bajo su
// umbral. El umbral del lote tiene prioridad sobre el del producto. Ordenado por urgencia:
// menor proporción stock/umbral primero.
func (uc *BatchUseCase) LowStock(ctx context.Context, companyID string) ([]dto.LowStockResponse, error) {
	batches, _, err := uc.repos.Batches.List(ctx, repository.BatchFilter{CompanyID: companyID}, repository.Page{})
	if err != nil {
		return nil, err
	}
	snapshot, err := uc.repos.Stock.Snapshot(ctx, companyID, "")
	if err != nil {
		return nil, err
	}
	totals := make(map[string]decimal.Decimal, len(batches))
	for k, q := range snapshot {
		totals[k.BatchID] = totals[k.BatchID].Add(q)
	}

	products := make(map[string]*entity.Product)
	factor := decimal.NewFromFloat(1.5)
	out := make([]dto.LowStockResponse, 0)
	for _, b := range batches {
		p, ok := products[b.ProductID]
		if !ok {
			if p, err = uc.repos.Products.GetByID(ctx, b.ProductID); err != nil {
				return nil, fmt.Errorf("producto %s: %w", b.ProductID, err)
			}
			products[b.ProductID] = p
		}
		warning := b.WarningQuantity
		if warning == nil && p != nil {
			warning = p.WarningQuantity
		}
		if warning == nil {
			continue
		}
		total := totals[b.ID]
		if total.GreaterThan(*warning) {
			continue
		}
		suggested := warning.Mul(factor).Sub(total)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		item := dto.LowStockResponse{
			BatchID:         b.ID,
			BatchNumber:     b.BatchNumber,
			ProductID:       b.ProductID,
			TotalStock:      total,
			WarningQuantity: *warning,
			SuggestedQty:    suggested,
		}
		if p != nil {
			item.ProductName = p.Name
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri := ratio(out[i].TotalStock, out[i].WarningQuantity)
		rj := ratio(out[j].TotalStock, out[j].WarningQuantity)
		if !ri.Equal(rj) {
			return ri.LessThan(rj)
		}
		return out[i].BatchNumber < out[j].BatchNumber
	})
	return out, nil
}

func ratio(stock, warning decimal.Decimal) decimal.Decimal {
	if warning.IsZero() {
		return decimal.Zero
	}
	return stock.Div(warning)
}

// ToBatchResponse mapea el lote; stocks puede ser nil en listados.
func ToBatchResponse(b *entity.ProductBatch, stocks []*entity.BatchStock) dto.BatchResponse {
	out := dto.BatchResponse{
		ID:              b.ID,
		CompanyID:       b.CompanyID,
		ProductID:       b.ProductID,
		StoreID:         b.StoreID,
		PurchaseID:      b.PurchaseID,
		BatchNumber:     b.BatchNumber,
		ExpiryDate:      b.ExpiryDate,
		Price:           b.Price,
		Stock:           b.Stock,
		WarningQuantity: b.WarningQuantity,
		CreatedAt:       b.CreatedAt,
	}
	for _, s := range stocks {
		out.Locations = append(out.Locations, dto.StockLocationResponse{
			LocationType: s.LocationType,
			LocationID:   s.LocationID,
			Quantity:     s.Quantity,
		})
	}
	return out
}
