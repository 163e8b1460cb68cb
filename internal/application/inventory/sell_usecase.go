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
	"github.com/jhoicas/stock-api/pkg/logger"
)

// SellUseCase ventas completadas. Cada línea trae su asignación por lote; no se elige lote
// automáticamente.
type SellUseCase struct {
	tx     TxRunner
	repos  Repos
	engine *StockEngine
	log    *logger.Logger
}

// NewSellUseCase construye el caso de uso.
func NewSellUseCase(tx TxRunner, repos Repos, engine *StockEngine, log *logger.Logger) *SellUseCase {
	return &SellUseCase{tx: tx, repos: repos, engine: engine, log: log}
}

// Create registra la venta y descuenta cada lote con un OUT en la ubicación de venta.
func (uc *SellUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateSellRequest) (*dto.SellResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "se requiere al menos un ítem")
	}
	v := &domain.ValidationError{Fields: map[string]string{}}
	for i, it := range in.Items {
		key := fmt.Sprintf("items[%d]", i)
		if it.UnitPrice.IsNegative() {
			v.Fields[key+".unit_price"] = "no puede ser negativo"
		}
		if len(it.Batches) == 0 {
			v.Fields[key+".batches"] = "se requiere al menos un lote"
		}
		for j, b := range it.Batches {
			if !b.Quantity.IsPositive() {
				v.Fields[fmt.Sprintf("%s.batches[%d].quantity", key, j)] = "debe ser mayor a cero"
			}
		}
	}
	if len(v.Fields) > 0 {
		return nil, v
	}

	now := time.Now().UTC()
	loc := entity.LocationRef{Type: in.LocationType, ID: in.LocationID}
	s := &entity.Sell{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		InvoiceNo:    in.InvoiceNo,
		LocationType: loc.Type,
		LocationID:   loc.ID,
		CustomerName: in.CustomerName,
		Total:        decimal.Zero,
		SoldBy:       userID,
		SoldAt:       now,
		CreatedAt:    now,
	}

	err := uc.tx.Run(ctx, func(r Repos) error {
		existing, err := r.Sells.GetByInvoiceNo(ctx, companyID, in.InvoiceNo)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.NewValidationError("invoice_no", "la factura ya está registrada")
		}
		var movs []Movement
		for i, it := range in.Items {
			item := entity.SellItem{
				ID:        uuid.New().String(),
				SellID:    s.ID,
				ProductID: it.ProductID,
				UnitPrice: it.UnitPrice,
				Quantity:  decimal.Zero,
			}
			for j, b := range it.Batches {
				batch, err := r.Batches.GetByID(ctx, b.BatchID)
				if err != nil {
					return err
				}
				if batch == nil || batch.CompanyID != companyID {
					return fmt.Errorf("items[%d].batches[%d] lote %s: %w", i, j, b.BatchID, domain.ErrNotFound)
				}
				if batch.ProductID != it.ProductID {
					return domain.NewValidationError(fmt.Sprintf("items[%d].batches[%d].batch_id", i, j), "el lote no corresponde al producto")
				}
				item.Batches = append(item.Batches, entity.SellItemBatch{BatchID: b.BatchID, Quantity: b.Quantity})
				item.Quantity = item.Quantity.Add(b.Quantity)
				movs = append(movs, Movement{
					BatchID: b.BatchID, Location: loc, Type: entity.MovementOUT, Quantity: b.Quantity.Neg(),
					Reference: s.InvoiceNo, SourceType: entity.SourceSell, SourceID: s.ID,
				})
			}
			item.TotalPrice = item.Quantity.Mul(item.UnitPrice)
			s.Total = s.Total.Add(item.TotalPrice)
			s.Items = append(s.Items, item)
		}
		if err := r.Sells.Create(ctx, s); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.NewValidationError("invoice_no", "la factura ya está registrada")
			}
			return err
		}
		return uc.engine.Apply(ctx, r, companyID, userID, now, movs)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sell_id", s.ID).Str("invoice_no", s.InvoiceNo).Str("location", loc.Key()).
		Str("total", s.Total.String()).Msg("venta registrada")
	out := ToSellResponse(s)
	return &out, nil
}

// GetByID obtiene una venta.
func (uc *SellUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.SellResponse, error) {
	s, err := uc.repos.Sells.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil || s.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	out := ToSellResponse(s)
	return &out, nil
}

// List lista ventas.
func (uc *SellUseCase) List(ctx context.Context, companyID string, q dto.DocumentQuery) (dto.ListResponse[dto.SellResponse], error) {
	f, page, err := BuildDocumentFilter(companyID, &q)
	if err != nil {
		return dto.ListResponse[dto.SellResponse]{}, err
	}
	list, total, err := uc.repos.Sells.List(ctx, f, page)
	if err != nil {
		return dto.ListResponse[dto.SellResponse]{}, err
	}
	out := make([]dto.SellResponse, 0, len(list))
	for _, s := range list {
		out = append(out, ToSellResponse(s))
	}
	return dto.NewListResponse(out, total, q.PageRequest), nil
}

// ToSellResponse mapea una venta.
func ToSellResponse(s *entity.Sell) dto.SellResponse {
	out := dto.SellResponse{
		ID:           s.ID,
		InvoiceNo:    s.InvoiceNo,
		LocationType: s.LocationType,
		LocationID:   s.LocationID,
		CustomerName: s.CustomerName,
		Total:        s.Total,
		SoldBy:       s.SoldBy,
		SoldAt:       s.SoldAt,
		Items:        make([]dto.SellItemResponse, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		row := dto.SellItemResponse{
			ID:         it.ID,
			ProductID:  it.ProductID,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
			TotalPrice: it.TotalPrice,
			Batches:    make([]dto.SellItemBatchDTO, 0, len(it.Batches)),
		}
		for _, b := range it.Batches {
			row.Batches = append(row.Batches, dto.SellItemBatchDTO{BatchID: b.BatchID, Quantity: b.Quantity})
		}
		out.Items = append(out.Items, row)
	}
	return out
}
