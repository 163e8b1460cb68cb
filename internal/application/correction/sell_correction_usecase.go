package correction

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// SellCorrectionUseCase correcciones de cantidades entregadas en una venta completada.
type SellCorrectionUseCase struct {
	tx      inventory.TxRunner
	repos   inventory.Repos
	engine  *inventory.StockEngine
	locker  ports.Locker
	lockTTL time.Duration
	log     *logger.Logger
}

// NewSellCorrectionUseCase construye el caso de uso.
func NewSellCorrectionUseCase(
	tx inventory.TxRunner,
	repos inventory.Repos,
	engine *inventory.StockEngine,
	locker ports.Locker,
	lockTTL time.Duration,
	log *logger.Logger,
) *SellCorrectionUseCase {
	return &SellCorrectionUseCase{tx: tx, repos: repos, engine: engine, locker: locker, lockTTL: lockTTL, log: log}
}

func sellLockKey(id string) string { return "sell-correction:" + id }

// Draft arma el formulario por defecto: ítems y lotes de la venta con delta 0. No persiste nada.
func (uc *SellCorrectionUseCase) Draft(ctx context.Context, companyID, sellID string) (*dto.SellCorrectionResponse, error) {
	s, err := loadSell(ctx, uc.repos, companyID, sellID, false)
	if err != nil {
		return nil, err
	}
	c := &entity.SellStockCorrection{
		SellID:    s.ID,
		Reference: s.InvoiceNo,
		Status:    entity.CorrectionPending,
		Items:     entity.NewSellCorrectionDraft(s),
	}
	c.RecomputeTotal()
	out := ToSellCorrectionResponse(c)
	return &out, nil
}

// Create registra la corrección en PENDING. La cantidad de cada ítem se deriva de sus lotes;
// los ítems con delta neto cero se descartan y, si no queda ninguno, se rechaza.
func (uc *SellCorrectionUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateSellCorrectionRequest) (*dto.SellCorrectionResponse, error) {
	var c *entity.SellStockCorrection
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		s, err := loadSell(ctx, r, companyID, in.SellID, true)
		if err != nil {
			return err
		}
		items, err := buildItems(s, in.Items)
		if err != nil {
			return err
		}
		items = entity.PruneZeroItems(items)
		if len(items) == 0 {
			return domain.NewValidationError("items", "la corrección no tiene cambios")
		}
		if err := checkReturnLimits(ctx, r, s, "", items); err != nil {
			return err
		}

		now := time.Now().UTC()
		c = &entity.SellStockCorrection{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			SellID:    s.ID,
			Reference: s.InvoiceNo,
			Notes:     in.Notes,
			Status:    entity.CorrectionPending,
			Items:     items,
			CreatedBy: userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		for i := range c.Items {
			c.Items[i].ID = uuid.New().String()
			c.Items[i].CorrectionID = c.ID
		}
		c.RecomputeTotal()
		return r.SellCorrections.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sell_correction_id", c.ID).Str("sell_id", c.SellID).Str("reference", c.Reference).
		Str("total", c.Total.String()).Msg("corrección de venta creada")
	out := ToSellCorrectionResponse(c)
	return &out, nil
}

// Approve aprueba los ítems indicados (todos si itemIDs está vacío) y rechaza el resto.
// Los ítems aprobados aplican -delta en la ubicación de la venta: RETURN si vuelve stock,
// OUT si se entrega más.
func (uc *SellCorrectionUseCase) Approve(ctx context.Context, companyID, userID, id string, itemIDs []string) (*dto.SellCorrectionResponse, error) {
	var approveIDs map[string]bool
	if len(itemIDs) > 0 {
		approveIDs = make(map[string]bool, len(itemIDs))
		for _, itemID := range itemIDs {
			approveIDs[itemID] = true
		}
	}

	var out dto.SellCorrectionResponse
	err := inventory.WithLock(ctx, uc.locker, sellLockKey(id), uc.lockTTL, func() error {
		return uc.tx.Run(ctx, func(r inventory.Repos) error {
			c, err := loadSellCorrection(ctx, r, companyID, id, true)
			if err != nil {
				return err
			}
			s, err := loadSell(ctx, r, companyID, c.SellID, true)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			approved, err := c.Decide(approveIDs, userID, now)
			if err != nil {
				return err
			}
			if err := checkReturnLimits(ctx, r, s, c.ID, approved); err != nil {
				return err
			}
			movs := make([]inventory.Movement, 0, len(approved))
			for _, it := range approved {
				for _, b := range it.Batches {
					movType := entity.MovementOUT
					if b.Quantity.IsNegative() {
						movType = entity.MovementRETURN
					}
					movs = append(movs, inventory.Movement{
						BatchID:    b.BatchID,
						Location:   s.Location(),
						Type:       movType,
						Quantity:   b.Quantity.Neg(),
						Reference:  c.Reference,
						SourceType: entity.SourceSellStockCorrection,
						SourceID:   c.ID,
					})
				}
			}
			if err := uc.engine.Apply(ctx, r, companyID, userID, now, movs); err != nil {
				return err
			}
			if err := r.SellCorrections.Update(ctx, c); err != nil {
				return err
			}
			out = ToSellCorrectionResponse(c)
			return nil
		})
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("sell_correction_id", id).Str("user_id", userID).Msg("aprobación de corrección de venta rechazada")
		return nil, err
	}
	uc.log.Info().Str("sell_correction_id", id).Str("status", out.Status).Str("user_id", userID).
		Msg("corrección de venta decidida")
	return &out, nil
}

// Reject rechaza todos los ítems sin tocar el stock.
func (uc *SellCorrectionUseCase) Reject(ctx context.Context, companyID, userID, id string) (*dto.SellCorrectionResponse, error) {
	var out dto.SellCorrectionResponse
	err := inventory.WithLock(ctx, uc.locker, sellLockKey(id), uc.lockTTL, func() error {
		return uc.tx.Run(ctx, func(r inventory.Repos) error {
			c, err := loadSellCorrection(ctx, r, companyID, id, true)
			if err != nil {
				return err
			}
			if err := c.Reject(userID, time.Now().UTC()); err != nil {
				return err
			}
			if err := r.SellCorrections.Update(ctx, c); err != nil {
				return err
			}
			out = ToSellCorrectionResponse(c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sell_correction_id", id).Str("user_id", userID).Msg("corrección de venta rechazada")
	return &out, nil
}

// MarkAsChecked marca la revisión. Repetirla no cambia nada y devuelve la corrección tal cual.
func (uc *SellCorrectionUseCase) MarkAsChecked(ctx context.Context, companyID, userID, id string) (*dto.SellCorrectionResponse, error) {
	var (
		out     dto.SellCorrectionResponse
		changed bool
	)
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		c, err := loadSellCorrection(ctx, r, companyID, id, true)
		if err != nil {
			return err
		}
		if changed = c.MarkChecked(userID, time.Now().UTC()); changed {
			if err := r.SellCorrections.Update(ctx, c); err != nil {
				return err
			}
		}
		out = ToSellCorrectionResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		uc.log.Info().Str("sell_correction_id", id).Str("user_id", userID).Msg("corrección de venta revisada")
	}
	return &out, nil
}

// MarkManyAsChecked marca cada ID por separado; un fallo no afecta a los demás.
func (uc *SellCorrectionUseCase) MarkManyAsChecked(ctx context.Context, companyID, userID string, ids []string) []dto.BatchOutcome {
	out := make([]dto.BatchOutcome, 0, len(ids))
	for _, id := range ids {
		_, err := uc.MarkAsChecked(ctx, companyID, userID, id)
		res := dto.BatchOutcome{ID: id, OK: err == nil}
		if err != nil {
			res.Code = domain.CodeOf(err)
			res.Error = err.Error()
		}
		out = append(out, res)
	}
	return out
}

// GetByID obtiene una corrección de venta.
func (uc *SellCorrectionUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.SellCorrectionResponse, error) {
	c, err := loadSellCorrection(ctx, uc.repos, companyID, id, false)
	if err != nil {
		return nil, err
	}
	out := ToSellCorrectionResponse(c)
	return &out, nil
}

// ListBySell devuelve las correcciones de una venta, más recientes primero.
func (uc *SellCorrectionUseCase) ListBySell(ctx context.Context, companyID, sellID string) ([]dto.SellCorrectionResponse, error) {
	if _, err := loadSell(ctx, uc.repos, companyID, sellID, false); err != nil {
		return nil, err
	}
	list, err := uc.repos.SellCorrections.ListBySell(ctx, sellID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SellCorrectionResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToSellCorrectionResponse(c))
	}
	return out, nil
}

// List lista correcciones de venta paginadas.
func (uc *SellCorrectionUseCase) List(ctx context.Context, companyID string, q dto.SellCorrectionQuery) (dto.ListResponse[dto.SellCorrectionResponse], error) {
	page := inventory.ToPage(&q.PageRequest)
	f := repository.SellCorrectionFilter{CompanyID: companyID, SellID: q.SellID, Status: q.Status}
	if q.IsChecked != "" {
		checked, err := strconv.ParseBool(q.IsChecked)
		if err != nil {
			return dto.ListResponse[dto.SellCorrectionResponse]{}, domain.NewValidationError("is_checked", "debe ser true o false")
		}
		f.IsChecked = &checked
	}
	list, total, err := uc.repos.SellCorrections.List(ctx, f, page)
	if err != nil {
		return dto.ListResponse[dto.SellCorrectionResponse]{}, err
	}
	out := make([]dto.SellCorrectionResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToSellCorrectionResponse(c))
	}
	return dto.NewListResponse(out, total, q.PageRequest), nil
}

// loadSell con forUpdate bloquea la venta: el límite de devolución se calcula sobre las
// correcciones ya aprobadas y dos aprobaciones concurrentes no pueden verse entre sí.
func loadSell(ctx context.Context, r inventory.Repos, companyID, id string, forUpdate bool) (*entity.Sell, error) {
	get := r.Sells.GetByID
	if forUpdate {
		get = r.Sells.GetForUpdate
	}
	s, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil || s.CompanyID != companyID {
		return nil, fmt.Errorf("venta %s: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

func loadSellCorrection(ctx context.Context, r inventory.Repos, companyID, id string, forUpdate bool) (*entity.SellStockCorrection, error) {
	get := r.SellCorrections.GetByID
	if forUpdate {
		get = r.SellCorrections.GetForUpdate
	}
	c, err := get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// buildItems toma de la venta producto y precio unitario; el cliente solo aporta deltas por lote.
func buildItems(s *entity.Sell, reqs []dto.SellCorrectionItemRequest) ([]entity.SellStockCorrectionItem, error) {
	if len(reqs) == 0 {
		return nil, domain.NewValidationError("items", "se requiere al menos un ítem")
	}
	v := &domain.ValidationError{Fields: map[string]string{}}
	seenItems := make(map[string]bool, len(reqs))
	items := make([]entity.SellStockCorrectionItem, 0, len(reqs))
	for i, req := range reqs {
		key := fmt.Sprintf("items[%d]", i)
		si := s.ItemByID(req.SellItemID)
		if si == nil {
			v.Fields[key+".sell_item_id"] = "la línea no pertenece a la venta"
			continue
		}
		if seenItems[si.ID] {
			v.Fields[key+".sell_item_id"] = "línea repetida"
			continue
		}
		seenItems[si.ID] = true

		it := entity.SellStockCorrectionItem{
			SellItemID:     si.ID,
			ProductID:      si.ProductID,
			UnitPrice:      si.UnitPrice,
			ItemSaleStatus: entity.ItemSalePending,
		}
		seenBatches := make(map[string]bool, len(req.Batches))
		for j, b := range req.Batches {
			bkey := fmt.Sprintf("%s.batches[%d]", key, j)
			if si.SoldFromBatch(b.BatchID).IsZero() {
				v.Fields[bkey+".batch_id"] = "el lote no se vendió en esta línea"
				continue
			}
			if seenBatches[b.BatchID] {
				v.Fields[bkey+".batch_id"] = "lote repetido"
				continue
			}
			seenBatches[b.BatchID] = true
			it.Batches = append(it.Batches, entity.SellStockCorrectionBatch{BatchID: b.BatchID, Quantity: b.Quantity})
		}
		it.Recompute()
		if req.Quantity != nil && !req.Quantity.Equal(it.Quantity) {
			v.Fields[key+".quantity"] = "no coincide con la suma de los lotes (" + it.Quantity.String() + ")"
		}
		items = append(items, it)
	}
	if len(v.Fields) > 0 {
		return nil, v
	}
	return items, nil
}

// checkReturnLimits impide devolver más de lo vendido por línea y lote:
// vendido + deltas ya aprobados (de otras correcciones) + delta nuevo >= 0.
func checkReturnLimits(ctx context.Context, r inventory.Repos, s *entity.Sell, excludeID string, items []entity.SellStockCorrectionItem) error {
	if len(items) == 0 {
		return nil
	}
	previous, err := r.SellCorrections.ListBySell(ctx, s.ID)
	if err != nil {
		return err
	}
	approved := make(map[string]decimal.Decimal)
	for _, c := range previous {
		if c.ID == excludeID {
			continue
		}
		for _, it := range c.Items {
			if it.ItemSaleStatus != entity.ItemSaleApproved {
				continue
			}
			for _, b := range it.Batches {
				k := it.SellItemID + "|" + b.BatchID
				approved[k] = approved[k].Add(b.Quantity)
			}
		}
	}
	for _, it := range items {
		si := s.ItemByID(it.SellItemID)
		if si == nil {
			return domain.NewValidationError("sell_item_id", "la línea "+it.SellItemID+" no pertenece a la venta")
		}
		for _, b := range it.Batches {
			sold := si.SoldFromBatch(b.BatchID)
			after := sold.Add(approved[it.SellItemID+"|"+b.BatchID]).Add(b.Quantity)
			if after.IsNegative() {
				return domain.NewValidationError("items",
					fmt.Sprintf("no se puede devolver más de lo vendido del lote %s (vendido neto %s, delta %s)",
						b.BatchID, sold.Add(approved[it.SellItemID+"|"+b.BatchID]).String(), b.Quantity.String()))
			}
		}
	}
	return nil
}
