package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/inventory"
)

// Movement efecto sobre el stock de un lote en una ubicación. Quantity es el delta firmado
// (positivo entra, negativo sale) y se registra tal cual en el ledger.
type Movement struct {
	BatchID    string
	Location   entity.LocationRef
	Type       string
	Quantity   decimal.Decimal
	Reference  string
	SourceType string
	SourceID   string
}

// StockEngine es el único punto que modifica BatchStock. Siempre corre dentro de la
// transacción del llamador (Repos de TxRunner.Run).
type StockEngine struct{}

// NewStockEngine construye el motor.
func NewStockEngine() *StockEngine { return &StockEngine{} }

// Apply valida lotes y ubicaciones, agrupa los deltas por lote+ubicación, bloquea las filas
// (SELECT FOR UPDATE) en orden de clave y rechaza con *domain.StockError si algún saldo
// quedaría negativo, antes de escribir nada. Luego actualiza el stock y agrega una entrada
// de ledger por movimiento.
func (e *StockEngine) Apply(ctx context.Context, r Repos, companyID, userID string, now time.Time, movs []Movement) error {
	if len(movs) == 0 {
		return nil
	}
	batches := make(map[string]*entity.ProductBatch)
	locations := make(map[string]bool)
	net := make(map[inventory.StockKey]decimal.Decimal)

	for i, m := range movs {
		if m.Quantity.IsZero() {
			return domain.NewValidationError(fmt.Sprintf("movements[%d].quantity", i), "la cantidad no puede ser cero")
		}
		if !entity.IsValidMovementType(m.Type) {
			return domain.NewValidationError(fmt.Sprintf("movements[%d].type", i), "tipo de movimiento inválido")
		}
		if _, ok := batches[m.BatchID]; !ok {
			b, err := r.Batches.GetByID(ctx, m.BatchID)
			if err != nil {
				return err
			}
			if b == nil || b.CompanyID != companyID {
				return fmt.Errorf("lote %s: %w", m.BatchID, domain.ErrNotFound)
			}
			batches[m.BatchID] = b
		}
		if err := e.checkLocation(ctx, r, companyID, m.Location, locations); err != nil {
			return err
		}
		key := inventory.KeyOf(m.BatchID, m.Location)
		net[key] = net[key].Add(m.Quantity)
	}

	// Primero bloquear y verificar todo; escribir solo si ningún saldo queda negativo.
	keys := inventory.SortedKeys(net)
	next := make(map[inventory.StockKey]decimal.Decimal, len(keys))
	for _, k := range keys {
		row, err := r.Stock.GetForUpdate(ctx, k.BatchID, k.Location())
		if err != nil {
			return err
		}
		q, ok := inventory.ApplyDelta(row.Quantity, net[k])
		if !ok {
			return &domain.StockError{
				Code:         domain.CodeInsufficientStock,
				BatchID:      k.BatchID,
				LocationType: k.LocationType,
				LocationID:   k.LocationID,
				Available:    row.Quantity,
				Requested:    net[k].Neg(),
			}
		}
		next[k] = q
	}

	for _, k := range keys {
		if err := r.Stock.Upsert(ctx, &entity.BatchStock{
			BatchID:      k.BatchID,
			LocationType: k.LocationType,
			LocationID:   k.LocationID,
			Quantity:     next[k],
			UpdatedAt:    now,
		}); err != nil {
			return err
		}
		b := batches[k.BatchID]
		if k.LocationType == entity.LocationStore && k.LocationID == b.StoreID {
			if err := r.Batches.SetStock(ctx, b.ID, next[k]); err != nil {
				return err
			}
		}
	}

	for _, m := range movs {
		entry := &entity.StockLedgerEntry{
			ID:           uuid.New().String(),
			CompanyID:    companyID,
			BatchID:      m.BatchID,
			ProductID:    batches[m.BatchID].ProductID,
			LocationType: m.Location.Type,
			LocationID:   m.Location.ID,
			MovementType: m.Type,
			Quantity:     m.Quantity,
			Reference:    m.Reference,
			SourceType:   m.SourceType,
			SourceID:     m.SourceID,
			UserID:       userID,
			MovementDate: now,
			CreatedAt:    now,
		}
		if err := r.Ledger.Append(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (e *StockEngine) checkLocation(ctx context.Context, r Repos, companyID string, ref entity.LocationRef, seen map[string]bool) error {
	if seen[ref.Key()] {
		return nil
	}
	if !entity.IsValidLocationType(ref.Type) {
		return domain.NewValidationError("location_type", "debe ser STORE o SHOP")
	}
	loc, err := r.Locations.GetByID(ctx, ref.ID)
	if err != nil {
		return err
	}
	if loc == nil || loc.CompanyID != companyID || loc.Type != ref.Type {
		return fmt.Errorf("ubicación %s: %w", ref.Key(), domain.ErrNotFound)
	}
	seen[ref.Key()] = true
	return nil
}
