package entity

import (
	"time"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Estado por ítem dentro de una corrección de venta.
const (
	ItemSalePending  = "PENDING"
	ItemSaleApproved = "APPROVED"
	ItemSaleRejected = "REJECTED"
)

// SellStockCorrection ajuste posterior a una venta completada.
// Un delta negativo reduce lo entregado (el stock vuelve al lote); positivo entrega más.
// IsChecked es una marca de revisión independiente del estado: solo pasa de false a true.
type SellStockCorrection struct {
	ID        string
	CompanyID string
	SellID    string
	Reference string
	Notes     string
	Status    string
	Total     decimal.Decimal
	IsChecked bool
	CheckedBy string
	CheckedAt *time.Time
	Items     []SellStockCorrectionItem
	CreatedBy string
	DecidedBy string
	DecidedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SellStockCorrectionItem la cantidad se deriva de sus lotes; no se captura directamente.
type SellStockCorrectionItem struct {
	ID             string
	CorrectionID   string
	SellItemID     string
	ProductID      string
	UnitPrice      decimal.Decimal
	Quantity       decimal.Decimal
	TotalPrice     decimal.Decimal
	ItemSaleStatus string
	Batches        []SellStockCorrectionBatch
}

// SellStockCorrectionBatch delta firmado sobre un lote de la venta.
type SellStockCorrectionBatch struct {
	BatchID  string
	Quantity decimal.Decimal
}

// NewSellCorrectionDraft copia ítems y lotes de la venta con delta 0 ("sin cambios").
func NewSellCorrectionDraft(s *Sell) []SellStockCorrectionItem {
	items := make([]SellStockCorrectionItem, 0, len(s.Items))
	for _, si := range s.Items {
		it := SellStockCorrectionItem{
			SellItemID:     si.ID,
			ProductID:      si.ProductID,
			UnitPrice:      si.UnitPrice,
			ItemSaleStatus: ItemSalePending,
			Batches:        make([]SellStockCorrectionBatch, 0, len(si.Batches)),
		}
		for _, b := range si.Batches {
			it.Batches = append(it.Batches, SellStockCorrectionBatch{BatchID: b.BatchID, Quantity: decimal.Zero})
		}
		it.Recompute()
		items = append(items, it)
	}
	return items
}

// Recompute recalcula Quantity = Σ lotes y TotalPrice = |Quantity| × UnitPrice.
func (it *SellStockCorrectionItem) Recompute() {
	q := decimal.Zero
	for _, b := range it.Batches {
		q = q.Add(b.Quantity)
	}
	it.Quantity = q
	it.TotalPrice = q.Abs().Mul(it.UnitPrice)
}

// SetBatchQuantity fija el delta de un lote y recalcula el ítem.
// Devuelve ErrNotFound si el lote no pertenece al ítem.
func (it *SellStockCorrectionItem) SetBatchQuantity(batchID string, q decimal.Decimal) error {
	for i := range it.Batches {
		if it.Batches[i].BatchID == batchID {
			it.Batches[i].Quantity = q
			it.Recompute()
			return nil
		}
	}
	return domain.ErrNotFound
}

// PruneZeroItems descarta ítems con delta neto cero y, en los que quedan, los lotes en cero.
func PruneZeroItems(items []SellStockCorrectionItem) []SellStockCorrectionItem {
	out := make([]SellStockCorrectionItem, 0, len(items))
	for _, it := range items {
		it := it
		it.Recompute()
		if it.Quantity.IsZero() {
			continue
		}
		batches := make([]SellStockCorrectionBatch, 0, len(it.Batches))
		for _, b := range it.Batches {
			if !b.Quantity.IsZero() {
				batches = append(batches, b)
			}
		}
		it.Batches = batches
		out = append(out, it)
	}
	return out
}

// RecomputeTotal Total = Σ TotalPrice de los ítems.
func (c *SellStockCorrection) RecomputeTotal() {
	total := decimal.Zero
	for i := range c.Items {
		c.Items[i].Recompute()
		total = total.Add(c.Items[i].TotalPrice)
	}
	c.Total = total
}

// IsFinal indica si ya se decidió (APPROVED, REJECTED o PARTIAL).
func (c *SellStockCorrection) IsFinal() bool {
	return c.Status != CorrectionPending
}

// Decide aprueba los ítems indicados y rechaza el resto. approveIDs nil aprueba todos.
// Resultado: APPROVED si todos, REJECTED si ninguno, PARTIAL en otro caso.
// Devuelve los ítems aprobados.
func (c *SellStockCorrection) Decide(approveIDs map[string]bool, userID string, now time.Time) ([]SellStockCorrectionItem, error) {
	if c.IsFinal() {
		return nil, domain.ErrCorrectionFinalized
	}
	for id := range approveIDs {
		if !c.hasItem(id) {
			return nil, domain.NewValidationError("item_ids", "ítem "+id+" no pertenece a la corrección")
		}
	}
	approved := make([]SellStockCorrectionItem, 0, len(c.Items))
	for i := range c.Items {
		if approveIDs == nil || approveIDs[c.Items[i].ID] {
			c.Items[i].ItemSaleStatus = ItemSaleApproved
			approved = append(approved, c.Items[i])
		} else {
			c.Items[i].ItemSaleStatus = ItemSaleRejected
		}
	}
	switch {
	case len(approved) == len(c.Items):
		c.Status = CorrectionApproved
	case len(approved) == 0:
		c.Status = CorrectionRejected
	default:
		c.Status = CorrectionPartial
	}
	c.DecidedBy = userID
	c.DecidedAt = &now
	c.UpdatedAt = now
	return approved, nil
}

// Reject rechaza todos los ítems.
func (c *SellStockCorrection) Reject(userID string, now time.Time) error {
	_, err := c.Decide(map[string]bool{}, userID, now)
	return err
}

// MarkChecked marca la revisión. Devuelve false si ya estaba marcada (no-op).
func (c *SellStockCorrection) MarkChecked(userID string, now time.Time) bool {
	if c.IsChecked {
		return false
	}
	c.IsChecked = true
	c.CheckedBy = userID
	c.CheckedAt = &now
	c.UpdatedAt = now
	return true
}

func (c *SellStockCorrection) hasItem(id string) bool {
	for _, it := range c.Items {
		if it.ID == id {
			return true
		}
	}
	return false
}
