// Package correction contiene los flujos de corrección: correcciones de stock sobre una
// tienda o bodega y correcciones posteriores a una venta.
package correction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/inventory"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/pkg/logger"
)

// StockCorrectionUseCase ciclo de vida de una corrección de stock: PENDING → APPROVED | REJECTED.
type StockCorrectionUseCase struct {
	tx      inventory.TxRunner
	repos   inventory.Repos
	engine  *inventory.StockEngine
	locker  ports.Locker
	lockTTL time.Duration
	pdf     ports.CorrectionPDFRenderer
	log     *logger.Logger
}

// NewStockCorrectionUseCase construye el caso de uso.
func NewStockCorrectionUseCase(
	tx inventory.TxRunner,
	repos inventory.Repos,
	engine *inventory.StockEngine,
	locker ports.Locker,
	lockTTL time.Duration,
	pdf ports.CorrectionPDFRenderer,
	log *logger.Logger,
) *StockCorrectionUseCase {
	return &StockCorrectionUseCase{tx: tx, repos: repos, engine: engine, locker: locker, lockTTL: lockTTL, pdf: pdf, log: log}
}

func stockLockKey(id string) string { return "stock-correction:" + id }

// Create registra la corrección en PENDING, sin efecto sobre el stock.
func (uc *StockCorrectionUseCase) Create(ctx context.Context, companyID, userID string, in dto.StockCorrectionRequest) (*dto.StockCorrectionResponse, error) {
	now := time.Now().UTC()
	c := &entity.StockCorrection{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Status:    entity.CorrectionPending,
		CreatedBy: userID,
		CreatedAt: now,
	}
	applyRequest(c, in, now)
	if c.Reference == "" {
		c.Reference = inventory.NewReference("SC", now)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		if err := validateRefs(ctx, r, companyID, c); err != nil {
			return err
		}
		return r.Corrections.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("correction_id", c.ID).Str("reference", c.Reference).Str("reason", c.Reason).
		Int("items", len(c.Items)).Msg("corrección de stock creada")
	out := ToStockCorrectionResponse(c)
	return &out, nil
}

// Update reemplaza motivo, alcance, notas e ítems de una corrección PENDING.
func (uc *StockCorrectionUseCase) Update(ctx context.Context, companyID, userID, id string, in dto.StockCorrectionRequest) (*dto.StockCorrectionResponse, error) {
	var out dto.StockCorrectionResponse
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		c, err := loadCorrection(ctx, r, companyID, id, true)
		if err != nil {
			return err
		}
		if err := c.EnsureEditable(); err != nil {
			return err
		}
		ref := c.Reference
		applyRequest(c, in, time.Now().UTC())
		if c.Reference == "" {
			c.Reference = ref
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := validateRefs(ctx, r, companyID, c); err != nil {
			return err
		}
		if err := r.Corrections.Update(ctx, c); err != nil {
			return err
		}
		out = ToStockCorrectionResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("correction_id", id).Str("user_id", userID).Msg("corrección de stock actualizada")
	return &out, nil
}

// Approve aplica la corrección al stock como movimientos ADJUSTMENT (cantidad × factor de unidad)
// y la deja APPROVED. Falla con ErrBatchRequired si algún ítem no tiene lote y con
// *domain.StockError si algún saldo quedaría negativo; en ambos casos no cambia nada.
func (uc *StockCorrectionUseCase) Approve(ctx context.Context, companyID, userID, id string) (*dto.StockCorrectionResponse, error) {
	var out dto.StockCorrectionResponse
	err := inventory.WithLock(ctx, uc.locker, stockLockKey(id), uc.lockTTL, func() error {
		return uc.tx.Run(ctx, func(r inventory.Repos) error {
			c, err := loadCorrection(ctx, r, companyID, id, true)
			if err != nil {
				return err
			}
			if err := c.EnsureEditable(); err != nil {
				return err
			}
			movs, err := adjustmentMovements(ctx, r, c)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			if err := uc.engine.Apply(ctx, r, companyID, userID, now, movs); err != nil {
				return err
			}
			if err := c.Approve(userID, now); err != nil {
				return err
			}
			if err := r.Corrections.Update(ctx, c); err != nil {
				return err
			}
			out = ToStockCorrectionResponse(c)
			return nil
		})
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("correction_id", id).Str("user_id", userID).Msg("aprobación de corrección rechazada")
		return nil, err
	}
	uc.log.Info().Str("correction_id", id).Str("user_id", userID).Msg("corrección de stock aprobada")
	return &out, nil
}

// Reject deja la corrección REJECTED sin tocar el stock.
func (uc *StockCorrectionUseCase) Reject(ctx context.Context, companyID, userID, id string) (*dto.StockCorrectionResponse, error) {
	var out dto.StockCorrectionResponse
	err := inventory.WithLock(ctx, uc.locker, stockLockKey(id), uc.lockTTL, func() error {
		return uc.tx.Run(ctx, func(r inventory.Repos) error {
			c, err := loadCorrection(ctx, r, companyID, id, true)
			if err != nil {
				return err
			}
			if err := c.Reject(userID, time.Now().UTC()); err != nil {
				return err
			}
			if err := r.Corrections.Update(ctx, c); err != nil {
				return err
			}
			out = ToStockCorrectionResponse(c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("correction_id", id).Str("user_id", userID).Msg("corrección de stock rechazada")
	return &out, nil
}

// Delete elimina una corrección PENDING.
func (uc *StockCorrectionUseCase) Delete(ctx context.Context, companyID, userID, id string) error {
	err := uc.tx.Run(ctx, func(r inventory.Repos) error {
		c, err := loadCorrection(ctx, r, companyID, id, true)
		if err != nil {
			return err
		}
		if err := c.EnsureEditable(); err != nil {
			return err
		}
		return r.Corrections.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("correction_id", id).Str("user_id", userID).Msg("corrección de stock eliminada")
	return nil
}

// GetByID obtiene una corrección de la empresa.
func (uc *StockCorrectionUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.StockCorrectionResponse, error) {
	c, err := loadCorrection(ctx, uc.repos, companyID, id, false)
	if err != nil {
		return nil, err
	}
	out := ToStockCorrectionResponse(c)
	return &out, nil
}

// List lista correcciones paginadas y filtradas, más recientes primero.
func (uc *StockCorrectionUseCase) List(ctx context.Context, companyID string, q dto.StockCorrectionQuery) (dto.ListResponse[dto.StockCorrectionResponse], error) {
	page := inventory.ToPage(&q.PageRequest)
	created, err := inventory.ParseDateRange(q.From, q.To)
	if err != nil {
		return dto.ListResponse[dto.StockCorrectionResponse]{}, err
	}
	f := repository.CorrectionFilter{
		CompanyID:    companyID,
		Status:       q.Status,
		Reason:       q.Reason,
		LocationType: q.LocationType,
		LocationID:   q.LocationID,
		Created:      created,
	}
	list, total, err := uc.repos.Corrections.List(ctx, f, page)
	if err != nil {
		return dto.ListResponse[dto.StockCorrectionResponse]{}, err
	}
	out := make([]dto.StockCorrectionResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToStockCorrectionResponse(c))
	}
	return dto.NewListResponse(out, total, q.PageRequest), nil
}

// PDF genera el comprobante imprimible. Devuelve también el nombre de archivo sugerido.
func (uc *StockCorrectionUseCase) PDF(ctx context.Context, companyID, id string) ([]byte, string, error) {
	c, err := loadCorrection(ctx, uc.repos, companyID, id, false)
	if err != nil {
		return nil, "", err
	}
	v := ports.CorrectionVoucher{
		Correction:   ToStockCorrectionResponse(c),
		ProductNames: map[string]string{},
		BatchNumbers: map[string]string{},
		UnitNames:    map[string]string{},
	}
	company, err := uc.repos.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	if company != nil {
		v.CompanyName = company.Name
	}
	loc, err := uc.repos.Locations.GetByID(ctx, c.Location().ID)
	if err != nil {
		return nil, "", err
	}
	if loc != nil {
		v.LocationName = loc.Name
	}
	for _, it := range c.Items {
		if p, err := uc.repos.Products.GetByID(ctx, it.ProductID); err != nil {
			return nil, "", err
		} else if p != nil {
			v.ProductNames[it.ProductID] = p.Name
		}
		if it.BatchID != "" {
			if b, err := uc.repos.Batches.GetByID(ctx, it.BatchID); err != nil {
				return nil, "", err
			} else if b != nil {
				v.BatchNumbers[it.BatchID] = b.BatchNumber
			}
		}
		if u, err := uc.repos.Units.GetByID(ctx, it.UnitOfMeasureID); err != nil {
			return nil, "", err
		} else if u != nil {
			v.UnitNames[it.UnitOfMeasureID] = u.Name
		}
	}
	data, err := uc.pdf.RenderCorrection(ctx, v)
	if err != nil {
		return nil, "", fmt.Errorf("generar pdf de corrección: %w", err)
	}
	return data, "correccion-" + c.Reference + ".pdf", nil
}

func applyRequest(c *entity.StockCorrection, in dto.StockCorrectionRequest, now time.Time) {
	c.Reference = in.Reference
	c.Reason = in.Reason
	c.PurchaseID = in.PurchaseID
	c.TransferID = in.TransferID
	c.StoreID = in.StoreID
	c.ShopID = in.ShopID
	c.Notes = in.Notes
	c.UpdatedAt = now
	c.Items = make([]entity.StockCorrectionItem, 0, len(in.Items))
	for _, it := range in.Items {
		c.Items = append(c.Items, entity.StockCorrectionItem{
			ID:              uuid.New().String(),
			CorrectionID:    c.ID,
			ProductID:       it.ProductID,
			BatchID:         it.BatchID,
			UnitOfMeasureID: it.UnitOfMeasureID,
			Quantity:        it.Quantity,
		})
	}
}

// loadCorrection trae la corrección (con FOR UPDATE si forUpdate) y oculta las de otra empresa.
func loadCorrection(ctx context.Context, r inventory.Repos, companyID, id string, forUpdate bool) (*entity.StockCorrection, error) {
	get := r.Corrections.GetByID
	if forUpdate {
		get = r.Corrections.GetForUpdate
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

// validateRefs comprueba que ubicación, compra, traslado, productos, unidades y lotes existan
// en la empresa y que cada lote sea del producto del ítem.
func validateRefs(ctx context.Context, r inventory.Repos, companyID string, c *entity.StockCorrection) error {
	ref := c.Location()
	loc, err := r.Locations.GetByID(ctx, ref.ID)
	if err != nil {
		return err
	}
	if loc == nil || loc.CompanyID != companyID || loc.Type != ref.Type {
		return domain.NewValidationError("scope", "ubicación inexistente")
	}
	if c.PurchaseID != "" {
		p, err := r.Purchases.GetByID(ctx, c.PurchaseID)
		if err != nil {
			return err
		}
		if p == nil || p.CompanyID != companyID {
			return domain.NewValidationError("purchase_id", "compra inexistente")
		}
	}
	if c.TransferID != "" {
		t, err := r.Transfers.GetByID(ctx, c.TransferID)
		if err != nil {
			return err
		}
		if t == nil || t.CompanyID != companyID {
			return domain.NewValidationError("transfer_id", "traslado inexistente")
		}
	}

	v := &domain.ValidationError{Fields: map[string]string{}}
	for i, it := range c.Items {
		key := fmt.Sprintf("items[%d]", i)
		p, err := r.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			return err
		}
		if p == nil || p.CompanyID != companyID {
			v.Fields[key+".product_id"] = "producto inexistente"
		}
		u, err := r.Units.GetByID(ctx, it.UnitOfMeasureID)
		if err != nil {
			return err
		}
		if u == nil || u.CompanyID != companyID {
			v.Fields[key+".unit_of_measure_id"] = "unidad inexistente"
		}
		if it.BatchID == "" {
			continue
		}
		b, err := r.Batches.GetByID(ctx, it.BatchID)
		if err != nil {
			return err
		}
		if b == nil || b.CompanyID != companyID {
			v.Fields[key+".batch_id"] = "lote inexistente"
		} else if b.ProductID != it.ProductID {
			v.Fields[key+".batch_id"] = "el lote no corresponde al producto"
		}
	}
	if len(v.Fields) > 0 {
		return v
	}
	return nil
}

// adjustmentMovements convierte cada ítem a unidades base en la ubicación de la corrección.
func adjustmentMovements(ctx context.Context, r inventory.Repos, c *entity.StockCorrection) ([]inventory.Movement, error) {
	loc := c.Location()
	movs := make([]inventory.Movement, 0, len(c.Items))
	for i, it := range c.Items {
		if it.BatchID == "" {
			return nil, fmt.Errorf("items[%d]: %w", i, domain.ErrBatchRequired)
		}
		u, err := r.Units.GetByID(ctx, it.UnitOfMeasureID)
		if err != nil {
			return nil, err
		}
		if u == nil || u.CompanyID != c.CompanyID {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].unit_of_measure_id", i), "unidad inexistente")
		}
		movs = append(movs, inventory.Movement{
			BatchID:    it.BatchID,
			Location:   loc,
			Type:       entity.MovementADJUSTMENT,
			Quantity:   u.ToBase(it.Quantity),
			Reference:  c.Reference,
			SourceType: entity.SourceStockCorrection,
			SourceID:   c.ID,
		})
	}
	return movs, nil
}
