package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sell venta completada. Cada ítem ya viene asignado a uno o más lotes (SellItemBatch).
type Sell struct {
	ID           string
	CompanyID    string
	InvoiceNo    string
	LocationType string
	LocationID   string
	CustomerName string
	Items        []SellItem
	Total        decimal.Decimal
	SoldBy       string
	SoldAt       time.Time
	CreatedAt    time.Time
}

// SellItem línea de venta; Quantity = Σ Batches[].Quantity.
type SellItem struct {
	ID         string
	SellID     string
	ProductID  string
	UnitPrice  decimal.Decimal
	Quantity   decimal.Decimal
	TotalPrice decimal.Decimal
	Batches    []SellItemBatch
}

// SellItemBatch cantidad tomada de un lote para una línea de venta.
type SellItemBatch struct {
	BatchID  string
	Quantity decimal.Decimal
}

// Location ubicación donde se vendió.
func (s *Sell) Location() LocationRef {
	return LocationRef{Type: s.LocationType, ID: s.LocationID}
}

// ItemByID busca una línea por ID.
func (s *Sell) ItemByID(id string) *SellItem {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i]
		}
	}
	return nil
}

// SoldFromBatch cantidad vendida de un lote en la línea.
func (it *SellItem) SoldFromBatch(batchID string) decimal.Decimal {
	total := decimal.Zero
	for _, b := range it.Batches {
		if b.BatchID == batchID {
			total = total.Add(b.Quantity)
		}
	}
	return total
}
